package analyses

import "time"

// Analysis is one stored analysis run: who ran it, the headline score and
// the full report payload.
type Analysis struct {
	ID              string         `json:"id"`
	UserID          string         `json:"userId"`
	ATS             int            `json:"ats"`
	AdvisoryEnabled bool           `json:"advisoryEnabled"`
	Model           string         `json:"model,omitempty"`
	Report          map[string]any `json:"report,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// Stats summarizes a set of analyses for the account and admin views.
type Stats struct {
	Count      int     `json:"count"`
	AverageATS float64 `json:"averageAts"`
}
