package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new analysis event.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO analysis_events (id, user_id, ats, advisory_enabled, model, report, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	payload, err := marshalJSONB(analysis.Report)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		analysis.ID,
		analysis.UserID,
		analysis.ATS,
		analysis.AdvisoryEnabled,
		analysis.Model,
		payload,
		analysis.CreatedAt,
	)
	return err
}

// GetByID returns a user's analysis by ID.
func (r *PGRepo) GetByID(ctx context.Context, userID, analysisID string) (Analysis, error) {
	const query = `
SELECT id, user_id, ats, advisory_enabled, model, report, created_at
FROM analysis_events
WHERE id = $1 AND user_id = $2
LIMIT 1`
	var a Analysis
	var model sql.NullString
	var report sql.NullString
	err := r.DB.QueryRowContext(ctx, query, analysisID, userID).Scan(
		&a.ID,
		&a.UserID,
		&a.ATS,
		&a.AdvisoryEnabled,
		&model,
		&report,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	if model.Valid {
		a.Model = model.String
	}
	if report.Valid {
		a.Report = map[string]any{}
		if err := json.Unmarshal([]byte(report.String), &a.Report); err != nil {
			a.Report = nil
		}
	}
	return a, nil
}

// ListByUser lists analyses for a user ordered newest-first. Report
// payloads are omitted to keep the listing light.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	const query = `
SELECT id, user_id, ats, advisory_enabled, model, created_at
FROM analysis_events
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Analysis{}
	for rows.Next() {
		var a Analysis
		var model sql.NullString
		if err := rows.Scan(&a.ID, &a.UserID, &a.ATS, &a.AdvisoryEnabled, &model, &a.CreatedAt); err != nil {
			return nil, err
		}
		if model.Valid {
			a.Model = model.String
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// StatsByUser summarizes one user's analyses.
func (r *PGRepo) StatsByUser(ctx context.Context, userID string) (Stats, error) {
	const query = `
SELECT COUNT(*), COALESCE(AVG(ats), 0)
FROM analysis_events
WHERE user_id = $1`
	var s Stats
	if err := r.DB.QueryRowContext(ctx, query, userID).Scan(&s.Count, &s.AverageATS); err != nil {
		return Stats{}, err
	}
	return s, nil
}

// GlobalStats summarizes all analyses for the admin dashboard.
func (r *PGRepo) GlobalStats(ctx context.Context) (Stats, error) {
	const query = `SELECT COUNT(*), COALESCE(AVG(ats), 0) FROM analysis_events`
	var s Stats
	if err := r.DB.QueryRowContext(ctx, query).Scan(&s.Count, &s.AverageATS); err != nil {
		return Stats{}, err
	}
	return s, nil
}

// ClaimGuest reassigns analyses owned by a guest user to an authenticated user.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	const query = `
UPDATE analysis_events SET user_id = $1
WHERE user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

var _ Repo = (*PGRepo)(nil)

func marshalJSONB(value any) ([]byte, error) {
	if value == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(value)
}
