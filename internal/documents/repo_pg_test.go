package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateDefaultsProvider(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO documents").
		WithArgs("doc-1", "user-1", "cv.pdf", "application/pdf", int64(2048), "local", "key/cv.pdf", true, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), Document{
		ID:         "doc-1",
		UserID:     "user-1",
		FileName:   "cv.pdf",
		MimeType:   "application/pdf",
		SizeBytes:  2048,
		StorageKey: "key/cv.pdf",
		Consent:    true,
		CreatedAt:  now,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoGetCurrentByUser(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "file_name", "mime_type", "size_bytes",
		"storage_provider", "storage_key", "consent", "created_at",
	}).AddRow("doc-2", "user-1", "cv.txt", "text/plain", int64(128), "s3", "key/cv.txt", true, now)

	mock.ExpectQuery("SELECT id, user_id, file_name").
		WithArgs("user-1").
		WillReturnRows(rows)

	doc, err := repo.GetCurrentByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetCurrentByUser: %v", err)
	}
	if doc.ID != "doc-2" || doc.StorageProvider != "s3" || !doc.Consent {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, user_id, file_name").
		WithArgs("user-1", "missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "file_name", "mime_type", "size_bytes",
			"storage_provider", "storage_key", "consent", "created_at",
		}))

	_, err := repo.GetByID(context.Background(), "user-1", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoDeleteSoftDeletes(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE documents SET deleted_at = NOW").
		WithArgs("user-1", "doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "user-1", "doc-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	mock.ExpectExec("UPDATE documents SET deleted_at = NOW").
		WithArgs("user-1", "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "user-1", "gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for second delete", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoClaimGuestCountsRows(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE documents SET user_id").
		WithArgs("google:123", "guest:abc").
		WillReturnResult(sqlmock.NewResult(0, 3))

	moved, err := repo.ClaimGuest(context.Background(), "guest:abc", "google:123")
	if err != nil {
		t.Fatalf("ClaimGuest: %v", err)
	}
	if moved != 3 {
		t.Fatalf("moved = %d, want 3", moved)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
