package advisory

import (
	"context"

	"cvmatch-backend/internal/llm"
	"cvmatch-backend/internal/shared/telemetry"
)

const repairSystemPrompt = "You are a JSON repair tool. The user gives you text that was meant to be a single JSON object but is malformed. Reply with ONLY the corrected JSON object. No prose, no code fences."

// repairRawBudget caps how much broken output is sent back for reformatting.
const repairRawBudget = 4000

// repair re-submits unparseable output and asks the model to reformat it,
// at half the original output budget. Failure is non-fatal; the caller
// falls through to schema defaults.
func (s *Service) repair(ctx context.Context, task, raw, originalSystem string, maxTokens int) map[string]any {
	budget := maxTokens / 2
	if budget < 256 {
		budget = 256
	}
	user := "The following output does not parse as JSON. It was produced for this instruction:\n" +
		originalSystem +
		"\n\nReformat it into a single valid JSON object:\n" +
		truncateRunes(raw, repairRawBudget)

	resp, err := s.client.Generate(ctx, llm.Request{
		System:          repairSystemPrompt,
		User:            user,
		Temperature:     0,
		MaxOutputTokens: budget,
		JSONOutput:      true,
	})
	if err != nil || resp.Text == "" {
		telemetry.Warn("advisory.repair_failed", map[string]any{"task": task})
		return nil
	}
	parsed := ParseLooseJSON(resp.Text)
	if parsed == nil {
		telemetry.Warn("advisory.repair_unparseable", map[string]any{"task": task})
	}
	return parsed
}
