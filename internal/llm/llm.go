package llm

import (
	"context"
	"errors"
)

// Request describes a single generation call to the advisory model.
type Request struct {
	System          string
	User            string
	Temperature     float32
	MaxOutputTokens int
	// JSONOutput asks the provider for a JSON response MIME type when supported.
	JSONOutput bool
}

// Response is the provider-agnostic result of a generation call.
type Response struct {
	Text         string
	FinishReason string
	Model        string
	// Truncated marks a degraded result assembled from a token-limited output.
	Truncated bool
}

// Client abstracts the advisory text-generation service.
type Client interface {
	// Enabled reports whether the client is configured to make network calls.
	// A disabled client returns empty responses without error.
	Enabled() bool
	Generate(ctx context.Context, req Request) (Response, error)
}

// ErrNoSupportedModel is returned when every candidate model failed to
// produce output.
var ErrNoSupportedModel = errors.New("no supported model produced output")

// Disabled is the no-credential client. The pipeline treats its empty
// responses as "advisory absent", never as an error.
type Disabled struct{}

func (Disabled) Enabled() bool { return false }

func (Disabled) Generate(ctx context.Context, req Request) (Response, error) {
	_ = ctx
	_ = req
	return Response{}, nil
}

var _ Client = Disabled{}
