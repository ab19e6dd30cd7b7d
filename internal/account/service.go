package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"cvmatch-backend/internal/analyses"
	"cvmatch-backend/internal/documents"
)

// Service aggregates per-user and global account data.
type Service struct {
	DocRepo      documents.DocumentsRepo
	AnalysisRepo analyses.Repo
}

// NewService constructs a Service.
func NewService(docRepo documents.DocumentsRepo, analysisRepo analyses.Repo) *Service {
	return &Service{DocRepo: docRepo, AnalysisRepo: analysisRepo}
}

// Summary holds per-user account stats.
type Summary struct {
	Analyses   int     `json:"analyses"`
	AverageATS float64 `json:"averageAts"`
	Documents  int     `json:"documents"`
}

// Summary returns stats for one user.
func (s *Service) Summary(ctx context.Context, userID string) (Summary, error) {
	stats, err := s.AnalysisRepo.StatsByUser(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	docs, err := s.DocRepo.ListByUser(ctx, userID, 100, 0)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Analyses:   stats.Count,
		AverageATS: stats.AverageATS,
		Documents:  len(docs),
	}, nil
}

// GlobalStats returns stats across all users for the admin dashboard.
func (s *Service) GlobalStats(ctx context.Context) (analyses.Stats, error) {
	return s.AnalysisRepo.GlobalStats(ctx)
}

// RetainedCVs lists retained documents across all users.
func (s *Service) RetainedCVs(ctx context.Context, limit, offset int) ([]documents.Document, error) {
	lister, ok := s.DocRepo.(retentionLister)
	if !ok {
		return nil, errors.New("documents repo does not support retention listing")
	}
	return lister.ListAll(ctx, limit, offset)
}

// ClaimResult summarizes a guest-to-account migration.
type ClaimResult struct {
	MigratedDocuments int `json:"migratedDocuments"`
	MigratedAnalyses  int `json:"migratedAnalyses"`
}

// ClaimGuest moves a guest identity's documents and analyses to an
// authenticated user.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}

	if docPG, ok := s.DocRepo.(*documents.PGRepo); ok && docPG != nil && docPG.DB != nil {
		if analysisPG, ok := s.AnalysisRepo.(*analyses.PGRepo); ok && analysisPG != nil && analysisPG.DB != nil {
			return claimWithTx(ctx, docPG.DB, guestUserID, authedUserID)
		}
	}

	docCount, err := claimDocs(ctx, s.DocRepo, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	analysisCount, err := claimAnalyses(ctx, s.AnalysisRepo, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedDocuments: docCount, MigratedAnalyses: analysisCount}, nil
}

func claimWithTx(ctx context.Context, db *sql.DB, guestUserID, authedUserID string) (ClaimResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ClaimResult{}, err
	}
	defer tx.Rollback()

	docRes, err := tx.ExecContext(ctx, `UPDATE documents SET user_id = $1 WHERE user_id = $2 AND deleted_at IS NULL`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	docCount, _ := docRes.RowsAffected()

	analysisRes, err := tx.ExecContext(ctx, `UPDATE analysis_events SET user_id = $1 WHERE user_id = $2`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	analysisCount, _ := analysisRes.RowsAffected()

	if err := tx.Commit(); err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedDocuments: int(docCount), MigratedAnalyses: int(analysisCount)}, nil
}

type retentionLister interface {
	ListAll(ctx context.Context, limit, offset int) ([]documents.Document, error)
}

type guestClaimer interface {
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}

func claimDocs(ctx context.Context, repo documents.DocumentsRepo, guestUserID, authedUserID string) (int, error) {
	if claimer, ok := repo.(guestClaimer); ok {
		return claimer.ClaimGuest(ctx, guestUserID, authedUserID)
	}
	return 0, errors.New("documents repo does not support claim")
}

func claimAnalyses(ctx context.Context, repo analyses.Repo, guestUserID, authedUserID string) (int, error) {
	if claimer, ok := repo.(guestClaimer); ok {
		return claimer.ClaimGuest(ctx, guestUserID, authedUserID)
	}
	return 0, errors.New("analyses repo does not support claim")
}
