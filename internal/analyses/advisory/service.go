package advisory

import (
	"context"

	"cvmatch-backend/internal/llm"
	"cvmatch-backend/internal/shared/telemetry"
)

// Service runs the narrow advisory-model tasks and normalizes their output.
// All methods degrade instead of failing: a disabled client, a dead service
// or garbage output all produce default-shaped results with honest Meta.
type Service struct {
	client llm.Client
}

func NewService(client llm.Client) *Service {
	if client == nil {
		client = llm.Disabled{}
	}
	return &Service{client: client}
}

// Enabled reports whether advisory calls will actually reach a model.
func (s *Service) Enabled() bool { return s.client.Enabled() }

// generateJSON performs one advisory call and recovers an object from the
// output, invoking the repair pass when the text resists loose parsing.
// The returned map is nil when nothing usable came back.
func (s *Service) generateJSON(ctx context.Context, task, system, user string, maxTokens int) (map[string]any, llm.Response, error) {
	resp, err := s.client.Generate(ctx, llm.Request{
		System:          system,
		User:            user,
		Temperature:     0.2,
		MaxOutputTokens: maxTokens,
		JSONOutput:      true,
	})
	if err != nil {
		telemetry.Warn("advisory.call_failed", map[string]any{"task": task, "error": err.Error()})
		return nil, resp, err
	}
	if resp.Text == "" {
		return nil, resp, nil
	}

	parsed := ParseLooseJSON(resp.Text)
	if parsed == nil {
		parsed = s.repair(ctx, task, resp.Text, system, maxTokens)
	}
	return parsed, resp, nil
}

// generateText performs one advisory call expecting plain text, used by the
// delimited fallback prompts.
func (s *Service) generateText(ctx context.Context, task, system, user string, maxTokens int) (string, llm.Response, error) {
	resp, err := s.client.Generate(ctx, llm.Request{
		System:          system,
		User:            user,
		Temperature:     0.2,
		MaxOutputTokens: maxTokens,
	})
	if err != nil {
		telemetry.Warn("advisory.call_failed", map[string]any{"task": task, "error": err.Error()})
		return "", resp, err
	}
	return resp.Text, resp, nil
}
