package advisory

import (
	"context"
)

// BulletRewrite is one rewritten CV bullet.
type BulletRewrite struct {
	Before    string `json:"before"`
	After     string `json:"after"`
	Rationale string `json:"rationale"`
}

const maxBulletRewrites = 5

// RewriteBullets asks the model to rewrite the CV's weakest bullet points
// toward the JD. Empty or unusable output degrades to an empty list.
func (s *Service) RewriteBullets(ctx context.Context, cvText, jdText string) ([]BulletRewrite, Meta) {
	if !s.Enabled() {
		return []BulletRewrite{}, metaDisabled()
	}

	payload := cvJDPayload(cvText, jdText, rewriteCVBudget, rewriteJDBudget)
	parsed, resp, err := s.generateJSON(ctx, "rewrite", rewriteSystemPrompt, payload, 1536)
	if err != nil {
		return []BulletRewrite{}, metaError(resp.Model, err)
	}

	rewrites := coerceRewrites(parsed)
	meta := Meta{Enabled: true, Model: resp.Model, Status: StatusOK}
	if len(rewrites) == 0 {
		meta.Status = StatusEmpty
	} else if resp.Truncated {
		meta.Status = StatusPartial
	}
	return rewrites, meta
}

func coerceRewrites(parsed map[string]any) []BulletRewrite {
	out := []BulletRewrite{}
	if parsed == nil {
		return out
	}
	for _, raw := range asMapSlice(parsed, "rewrites") {
		before := asString(raw, "before", "")
		after := asString(raw, "after", "")
		if before == "" || after == "" {
			continue
		}
		out = append(out, BulletRewrite{
			Before:    before,
			After:     after,
			Rationale: asString(raw, "rationale", ""),
		})
		if len(out) == maxBulletRewrites {
			break
		}
	}
	return out
}
