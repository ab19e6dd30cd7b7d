package gemini

import (
	"sync"
	"time"
)

// supportedModelsTTL bounds how often the models list is re-fetched.
const supportedModelsTTL = 5 * time.Minute

// SelectionState tracks which models the API currently serves and which one
// last produced a good response. Safe for concurrent use.
type SelectionState struct {
	mu        sync.Mutex
	lastGood  string
	supported []string
	fetchedAt time.Time

	now func() time.Time
}

func NewSelectionState() *SelectionState {
	return &SelectionState{now: time.Now}
}

// RecordSuccess marks model as the first candidate for subsequent requests.
func (s *SelectionState) RecordSuccess(model string) {
	s.mu.Lock()
	s.lastGood = model
	s.mu.Unlock()
}

func (s *SelectionState) LastGood() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastGood
}

// SupportedModels returns the cached models list, refreshing it via fetch
// when the cache is older than supportedModelsTTL. A failed fetch keeps the
// stale list; nil means no list is available and filtering is skipped.
func (s *SelectionState) SupportedModels(fetch func() ([]string, error)) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.supported != nil && s.now().Sub(s.fetchedAt) < supportedModelsTTL {
		return s.supported
	}
	models, err := fetch()
	if err != nil || len(models) == 0 {
		return s.supported
	}
	s.supported = models
	s.fetchedAt = s.now()
	return s.supported
}

// Candidates builds the attempt order for one request: the last good model
// first, then the configured default, then the static preference list,
// deduplicated. When a supported-models list is available the order is
// filtered to it, unless the intersection would be empty. The result is
// capped at maxModelAttempts.
func (s *SelectionState) Candidates(defaultModel string, preferred, supported []string) []string {
	s.mu.Lock()
	lastGood := s.lastGood
	s.mu.Unlock()

	ordered := make([]string, 0, len(preferred)+2)
	seen := make(map[string]bool)
	add := func(m string) {
		if m == "" || seen[m] {
			return
		}
		seen[m] = true
		ordered = append(ordered, m)
	}
	add(lastGood)
	add(defaultModel)
	for _, m := range preferred {
		add(m)
	}

	if len(supported) > 0 {
		available := make(map[string]bool, len(supported))
		for _, m := range supported {
			available[m] = true
		}
		filtered := make([]string, 0, len(ordered))
		for _, m := range ordered {
			if available[m] {
				filtered = append(filtered, m)
			}
		}
		if len(filtered) > 0 {
			ordered = filtered
		}
	}

	if len(ordered) > maxModelAttempts {
		ordered = ordered[:maxModelAttempts]
	}
	return ordered
}
