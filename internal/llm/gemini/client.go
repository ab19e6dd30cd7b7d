package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cvmatch-backend/internal/llm"
	"cvmatch-backend/internal/shared/telemetry"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// maxModelAttempts bounds the candidate cascade for one logical request.
	maxModelAttempts = 6

	// truncationMinChars: a token-limited response shorter than this is
	// treated as likely-truncated and the cascade advances.
	truncationMinChars = 200
)

// preferredModels is the static fallback order tried after the configured
// default model.
var preferredModels = []string{
	"gemini-1.5-pro",
	"gemini-1.5-flash",
	"gemini-1.5-flash-8b",
	"gemini-pro",
}

// Client implements llm.Client against the Gemini generateContent REST API.
type Client struct {
	apiKey       string
	defaultModel string
	baseURL      string
	httpClient   *http.Client
	state        *SelectionState
}

// NewClient constructs a Gemini client. An empty apiKey yields a disabled
// client: Generate returns empty responses without touching the network.
func NewClient(apiKey, model string, timeout time.Duration, state *SelectionState) *Client {
	if strings.TrimSpace(model) == "" {
		model = "gemini-1.5-pro"
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	if state == nil {
		state = NewSelectionState()
	}
	return &Client{
		apiKey:       strings.TrimSpace(apiKey),
		defaultModel: model,
		baseURL:      defaultBaseURL,
		httpClient:   &http.Client{Timeout: timeout},
		state:        state,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c.apiKey != "" }

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
	SafetySettings    []safetySetting  `json:"safetySettings"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float32 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// CV and JD text trips the service's abuse filters often enough that all
// categories are explicitly relaxed.
var permissiveSafety = []safetySetting{
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_NONE"},
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

type listModelsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// apiError is a non-2xx service response. 404-class errors advance the
// candidate cascade; everything else is fatal for the call.
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("gemini error: status %d: %s", e.StatusCode, e.Message)
}

func (e *apiError) NotFound() bool { return e.StatusCode == http.StatusNotFound }

// Generate runs the candidate-model cascade for one logical request.
//
// Per candidate: 404 advances, any other service error is fatal, a transport
// failure is recorded and the next candidate is tried, and a token-limited
// short response is remembered as a last-resort fallback. If every candidate
// fails but a truncated output was seen, the longest one is returned as a
// degraded success.
func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	if !c.Enabled() {
		return llm.Response{}, nil
	}

	supported := c.state.SupportedModels(func() ([]string, error) {
		return c.listModels(ctx)
	})
	candidates := c.state.Candidates(c.defaultModel, preferredModels, supported)

	var longest llm.Response
	var lastTransportErr error

	for _, model := range candidates {
		resp, err := c.generateOnce(ctx, model, req)
		if err != nil {
			var svcErr *apiError
			if errors.As(err, &svcErr) {
				if svcErr.NotFound() {
					telemetry.Info("gemini.model_unsupported", map[string]any{"model": model})
					continue
				}
				return llm.Response{}, err
			}
			telemetry.Warn("gemini.transport_error", map[string]any{
				"model": model,
				"error": err.Error(),
			})
			lastTransportErr = err
			continue
		}

		if likelyTruncated(resp) {
			telemetry.Warn("gemini.truncated", map[string]any{
				"model": model,
				"chars": len(resp.Text),
			})
			if len(resp.Text) > len(longest.Text) {
				longest = resp
				longest.Truncated = true
			}
			continue
		}

		c.state.RecordSuccess(model)
		return resp, nil
	}

	if longest.Text != "" {
		return longest, nil
	}
	if lastTransportErr != nil {
		return llm.Response{}, fmt.Errorf("%w: %s", llm.ErrNoSupportedModel, lastTransportErr)
	}
	return llm.Response{}, llm.ErrNoSupportedModel
}

func likelyTruncated(resp llm.Response) bool {
	return strings.EqualFold(resp.FinishReason, "MAX_TOKENS") && len(resp.Text) < truncationMinChars
}

func (c *Client) generateOnce(ctx context.Context, model string, req llm.Request) (llm.Response, error) {
	body := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: req.User}}},
		},
		GenerationConfig: generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxOutputTokens,
		},
		SafetySettings: permissiveSafety,
	}
	if strings.TrimSpace(req.System) != "" {
		body.SystemInstruction = &content{Role: "system", Parts: []part{{Text: req.System}}}
	}
	if req.JSONOutput {
		body.GenerationConfig.ResponseMIMEType = "application/json"
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return llm.Response{}, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return llm.Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return llm.Response{}, fmt.Errorf("gemini request timeout: %w", err)
		}
		return llm.Response{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.Response{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return llm.Response{}, &apiError{
			StatusCode: resp.StatusCode,
			Message:    truncateMessage(string(raw), 300),
		}
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return llm.Response{}, fmt.Errorf("gemini response parse: %w", err)
	}
	if parsed.Error != nil {
		return llm.Response{}, &apiError{StatusCode: parsed.Error.Code, Message: parsed.Error.Message}
	}
	if len(parsed.Candidates) == 0 {
		return llm.Response{}, fmt.Errorf("gemini response missing candidates")
	}

	cand := parsed.Candidates[0]
	var b strings.Builder
	for _, p := range cand.Content.Parts {
		b.WriteString(p.Text)
	}
	return llm.Response{
		Text:         b.String(),
		FinishReason: cand.FinishReason,
		Model:        model,
	}, nil
}

func (c *Client) listModels(ctx context.Context) ([]string, error) {
	url := fmt.Sprintf("%s/models?key=%s", c.baseURL, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini list models: status %d", resp.StatusCode)
	}

	var parsed listModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	models := make([]string, 0, len(parsed.Models))
	for _, m := range parsed.Models {
		name := strings.TrimPrefix(strings.TrimSpace(m.Name), "models/")
		if name != "" {
			models = append(models, name)
		}
	}
	return models, nil
}

func truncateMessage(msg string, max int) string {
	msg = strings.TrimSpace(msg)
	if len(msg) > max {
		return msg[:max]
	}
	return msg
}

var _ llm.Client = (*Client)(nil)
