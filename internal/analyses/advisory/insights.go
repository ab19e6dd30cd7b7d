package advisory

import (
	"context"
)

// Suggestion is one recruiter-style improvement suggestion. Priority is
// assigned later, during the merge with the heuristic pool.
type Suggestion struct {
	Type     string   `json:"type"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Examples []string `json:"examples"`
}

// Insights is the free-text half of the report.
type Insights struct {
	ProfileSummary string
	Suggestions    []Suggestion
}

// GenerateInsights asks for a candidate summary and improvement
// suggestions. There is no deeper cascade here; prose has no strict
// downstream consumer, so a failed call simply yields empty insights.
func (s *Service) GenerateInsights(ctx context.Context, cvText, jdText string) (Insights, Meta) {
	if !s.Enabled() {
		return emptyInsights(), metaDisabled()
	}

	payload := cvJDPayload(cvText, jdText, insightsCVBudget, insightsJDBudget)
	parsed, resp, err := s.generateJSON(ctx, "insights", insightsSystemPrompt, payload, 1536)
	if err != nil {
		return emptyInsights(), metaError(resp.Model, err)
	}

	insights := coerceInsights(parsed)
	meta := Meta{Enabled: true, Model: resp.Model, Status: StatusOK}
	switch {
	case insights.ProfileSummary == "" && len(insights.Suggestions) == 0:
		meta.Status = StatusEmpty
	case resp.Truncated:
		meta.Status = StatusPartial
	}
	return insights, meta
}

func emptyInsights() Insights {
	return Insights{Suggestions: []Suggestion{}}
}

func coerceInsights(parsed map[string]any) Insights {
	out := emptyInsights()
	if parsed == nil {
		return out
	}
	out.ProfileSummary = asString(parsed, "profile_summary", "")
	for _, raw := range asMapSlice(parsed, "suggestions") {
		title := asString(raw, "title", "")
		if title == "" {
			continue
		}
		out.Suggestions = append(out.Suggestions, Suggestion{
			Type:     "recruiter_insight",
			Title:    title,
			Body:     asString(raw, "body", ""),
			Examples: asStringSlice(raw, "examples"),
		})
	}
	return out
}
