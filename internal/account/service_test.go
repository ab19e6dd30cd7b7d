package account

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"cvmatch-backend/internal/analyses"
	"cvmatch-backend/internal/documents"
)

func seedRepos(t *testing.T, userID string, docs int, atsScores []int) (*documents.MemoryRepo, *analyses.MemoryRepo) {
	t.Helper()
	ctx := context.Background()

	docRepo := documents.NewMemoryRepo()
	for i := 0; i < docs; i++ {
		err := docRepo.Create(ctx, documents.Document{
			ID:        "doc-" + userID + string(rune('a'+i)),
			UserID:    userID,
			FileName:  "cv.txt",
			Consent:   true,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("seed document: %v", err)
		}
	}

	analysisRepo := analyses.NewMemoryRepo()
	for i, ats := range atsScores {
		err := analysisRepo.Create(ctx, analyses.Analysis{
			ID:        "analysis-" + userID + string(rune('a'+i)),
			UserID:    userID,
			ATS:       ats,
			CreatedAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("seed analysis: %v", err)
		}
	}
	return docRepo, analysisRepo
}

func TestSummaryAggregatesUserData(t *testing.T) {
	docRepo, analysisRepo := seedRepos(t, "user-1", 2, []int{60, 70, 80})
	svc := NewService(docRepo, analysisRepo)

	summary, err := svc.Summary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Analyses != 3 {
		t.Fatalf("analyses = %d, want 3", summary.Analyses)
	}
	if summary.AverageATS != 70 {
		t.Fatalf("averageAts = %v, want 70", summary.AverageATS)
	}
	if summary.Documents != 2 {
		t.Fatalf("documents = %d, want 2", summary.Documents)
	}
}

func TestSummaryEmptyUser(t *testing.T) {
	svc := NewService(documents.NewMemoryRepo(), analyses.NewMemoryRepo())

	summary, err := svc.Summary(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Analyses != 0 || summary.Documents != 0 || summary.AverageATS != 0 {
		t.Fatalf("expected zero summary, got %+v", summary)
	}
}

func TestClaimGuestMovesHistory(t *testing.T) {
	ctx := context.Background()
	docRepo, analysisRepo := seedRepos(t, "guest:abc", 1, []int{55, 65})
	svc := NewService(docRepo, analysisRepo)

	result, err := svc.ClaimGuest(ctx, "guest:abc", "google:123")
	if err != nil {
		t.Fatalf("ClaimGuest: %v", err)
	}
	if result.MigratedDocuments != 1 || result.MigratedAnalyses != 2 {
		t.Fatalf("migrated = %+v, want 1 document and 2 analyses", result)
	}

	// The guest identity no longer owns anything.
	guestSummary, err := svc.Summary(ctx, "guest:abc")
	if err != nil {
		t.Fatalf("Summary guest: %v", err)
	}
	if guestSummary.Analyses != 0 || guestSummary.Documents != 0 {
		t.Fatalf("guest still owns data: %+v", guestSummary)
	}

	authedSummary, err := svc.Summary(ctx, "google:123")
	if err != nil {
		t.Fatalf("Summary authed: %v", err)
	}
	if authedSummary.Analyses != 2 || authedSummary.Documents != 1 {
		t.Fatalf("authed summary = %+v, want claimed history", authedSummary)
	}
}

func TestClaimGuestRequiresBothIdentities(t *testing.T) {
	svc := NewService(documents.NewMemoryRepo(), analyses.NewMemoryRepo())

	if _, err := svc.ClaimGuest(context.Background(), "", "google:123"); err == nil {
		t.Fatal("expected error for empty guest identity")
	}
	if _, err := svc.ClaimGuest(context.Background(), "guest:abc", " "); err == nil {
		t.Fatal("expected error for empty authed identity")
	}
}

func TestClaimGuestUsesSingleTransactionOnPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	svc := NewService(&documents.PGRepo{DB: db}, &analyses.PGRepo{DB: db})

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE documents SET user_id").
		WithArgs("google:123", "guest:abc").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE analysis_events SET user_id").
		WithArgs("google:123", "guest:abc").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	result, err := svc.ClaimGuest(context.Background(), "guest:abc", "google:123")
	if err != nil {
		t.Fatalf("ClaimGuest: %v", err)
	}
	if result.MigratedDocuments != 2 || result.MigratedAnalyses != 3 {
		t.Fatalf("result = %+v, want 2 documents and 3 analyses", result)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRetainedCVsListsAcrossUsers(t *testing.T) {
	ctx := context.Background()
	docRepo := documents.NewMemoryRepo()
	for _, userID := range []string{"user-1", "user-2"} {
		err := docRepo.Create(ctx, documents.Document{
			ID:        "doc-" + userID,
			UserID:    userID,
			FileName:  "cv.txt",
			Consent:   true,
			CreatedAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("seed document: %v", err)
		}
	}
	svc := NewService(docRepo, analyses.NewMemoryRepo())

	docs, err := svc.RetainedCVs(ctx, 50, 0)
	if err != nil {
		t.Fatalf("RetainedCVs: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("retained docs = %d, want 2", len(docs))
	}
}
