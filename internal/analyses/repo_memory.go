package analyses

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores analyses in memory and is safe for concurrent use.
// Used when no database is configured.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]Analysis
	byUser map[string][]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Analysis),
		byUser: make(map[string][]string),
	}
}

// Create stores the analysis.
func (r *MemoryRepo) Create(ctx context.Context, analysis Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[analysis.ID] = analysis
	r.byUser[analysis.UserID] = append(r.byUser[analysis.UserID], analysis.ID)
	return nil
}

// GetByID returns a user's analysis by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, analysisID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	analysis, ok := r.byID[analysisID]
	if !ok || analysis.UserID != userID {
		return Analysis{}, ErrNotFound
	}
	return analysis, nil
}

// ListByUser returns analyses for a user, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	ids := r.byUser[userID]
	analyses := make([]Analysis, 0, len(ids))
	for _, id := range ids {
		analyses = append(analyses, r.byID[id])
	}
	r.mu.RUnlock()

	sort.Slice(analyses, func(i, j int) bool {
		return analyses[i].CreatedAt.After(analyses[j].CreatedAt)
	})
	if offset >= len(analyses) {
		return []Analysis{}, nil
	}
	end := len(analyses)
	if offset+limit < end {
		end = offset + limit
	}
	return analyses[offset:end], nil
}

// StatsByUser summarizes one user's analyses.
func (r *MemoryRepo) StatsByUser(ctx context.Context, userID string) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return statsOver(r.byUser[userID], r.byID), nil
}

// GlobalStats summarizes every stored analysis.
func (r *MemoryRepo) GlobalStats(ctx context.Context) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	return statsOver(ids, r.byID), nil
}

// ClaimGuest reassigns analyses owned by a guest user to an authenticated user.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.byUser[guestUserID]
	if len(ids) == 0 {
		return 0, nil
	}
	for _, id := range ids {
		analysis := r.byID[id]
		analysis.UserID = authedUserID
		r.byID[id] = analysis
	}
	r.byUser[authedUserID] = append(r.byUser[authedUserID], ids...)
	delete(r.byUser, guestUserID)
	return len(ids), nil
}

func statsOver(ids []string, byID map[string]Analysis) Stats {
	if len(ids) == 0 {
		return Stats{}
	}
	total := 0
	for _, id := range ids {
		total += byID[id].ATS
	}
	return Stats{
		Count:      len(ids),
		AverageATS: float64(total) / float64(len(ids)),
	}
}

var _ Repo = (*MemoryRepo)(nil)
