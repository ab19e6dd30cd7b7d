package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"cvmatch-backend/internal/analyses/advisory"
	"cvmatch-backend/internal/shared/metrics"
	"cvmatch-backend/internal/shared/telemetry"
	"cvmatch-backend/internal/usage"
)

// ErrInvalidInput is returned when either text side is missing.
var ErrInvalidInput = errors.New("cv text and jd text are required")

// maxInputChars caps each text side; oversized input is truncated, not
// rejected.
const maxInputChars = 60000

// Service runs analyses for users: credit bookkeeping, the pipeline itself
// and persistence of the resulting event.
type Service struct {
	Repo        Repo
	Usage       *usage.Service
	Engine      *Engine
	AnalyzeCost int
	RewriteCost int
}

// Analyze runs the full pipeline synchronously and stores the result.
func (s *Service) Analyze(ctx context.Context, userID, cvText, jdText string) (Analysis, Report, error) {
	cvText = strings.TrimSpace(cvText)
	jdText = strings.TrimSpace(jdText)
	if cvText == "" || jdText == "" {
		return Analysis{}, Report{}, ErrInvalidInput
	}
	cvText = capRunes(cvText, maxInputChars)
	jdText = capRunes(jdText, maxInputChars)

	if err := s.consumeCredits(ctx, userID, s.AnalyzeCost); err != nil {
		metrics.IncAnalysisFailed()
		return Analysis{}, Report{}, err
	}

	metrics.IncAnalysisStarted()
	started := time.Now()
	report := s.Engine.Analyze(ctx, cvText, jdText)
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(float64(time.Since(started).Microseconds()) / 1000.0)

	analysis := Analysis{
		ID:              uuid.NewString(),
		UserID:          userID,
		ATS:             report.Scores.ATS,
		AdvisoryEnabled: report.Meta.AdvisoryEnabled,
		Model:           reportModel(report),
		Report:          reportToMap(report),
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, analysis); err != nil {
		// The caller still gets their report; persistence is best-effort.
		telemetry.Error("analysis.store_failed", map[string]any{
			"analysis_id": analysis.ID,
			"error":       err.Error(),
		})
	}

	telemetry.Info("analysis.completed", map[string]any{
		"analysis_id": analysis.ID,
		"user_id":     userID,
		"ats":         analysis.ATS,
		"advisory":    analysis.AdvisoryEnabled,
	})
	return analysis, report, nil
}

// Rewrite runs the bullet-rewrite advisory task.
func (s *Service) Rewrite(ctx context.Context, userID, cvText, jdText string) ([]advisory.BulletRewrite, advisory.Meta, error) {
	cvText = strings.TrimSpace(cvText)
	if cvText == "" {
		return nil, advisory.Meta{}, ErrInvalidInput
	}
	if err := s.consumeCredits(ctx, userID, s.RewriteCost); err != nil {
		return nil, advisory.Meta{}, err
	}
	rewrites, meta := s.Engine.Advisory.RewriteBullets(ctx, capRunes(cvText, maxInputChars), capRunes(jdText, maxInputChars))
	return rewrites, meta, nil
}

// Get returns one of the user's stored analyses.
func (s *Service) Get(ctx context.Context, userID, analysisID string) (Analysis, error) {
	if analysisID == "" {
		return Analysis{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID, analysisID)
}

// List returns the user's analyses newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) consumeCredits(ctx context.Context, userID string, cost int) error {
	if s.Usage == nil || cost <= 0 {
		return nil
	}
	ok, _, err := s.Usage.CanConsume(ctx, userID, cost)
	if err != nil {
		return err
	}
	if !ok {
		return usage.ErrLimitReached
	}
	_, err = s.Usage.Consume(ctx, userID, cost)
	return err
}

// reportModel picks the model name to store with the event: the first
// advisory section that actually reached a model.
func reportModel(report Report) string {
	for _, meta := range []advisory.Meta{
		report.Meta.Scores,
		report.Meta.Categories,
		report.Meta.Insights,
		report.Meta.SkillGroups,
	} {
		if meta.Model != "" {
			return meta.Model
		}
	}
	return ""
}

func reportToMap(report Report) map[string]any {
	payload, err := json.Marshal(report)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil
	}
	return out
}

func capRunes(s string, limit int) string {
	runes := 0
	for i := range s {
		if runes == limit {
			return s[:i]
		}
		runes++
	}
	return s
}
