package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cvmatch-backend/internal/llm"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("test-key", "model-a", 5*time.Second, NewSelectionState())
	c.baseURL = srv.URL
	return c, srv
}

func writeCandidate(w http.ResponseWriter, text, finishReason string) {
	resp := map[string]any{
		"candidates": []map[string]any{
			{
				"content":      map[string]any{"parts": []map[string]any{{"text": text}}},
				"finishReason": finishReason,
			},
		},
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func modelFromPath(path string) string {
	rest := strings.TrimPrefix(path, "/models/")
	if i := strings.Index(rest, ":"); i >= 0 {
		return rest[:i]
	}
	return rest
}

func TestGenerateDisabledWithoutKey(t *testing.T) {
	c := NewClient("", "model-a", time.Second, nil)
	if c.Enabled() {
		t.Fatal("client with empty key reports enabled")
	}
	resp, err := c.Generate(context.Background(), llm.Request{User: "hello"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Text != "" {
		t.Fatalf("disabled client produced text %q", resp.Text)
	}
}

func TestGenerateSuccessFirstCandidate(t *testing.T) {
	var gotBody generateRequest
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/models") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeCandidate(w, `{"ok": true}`, "STOP")
	}))

	resp, err := c.Generate(context.Background(), llm.Request{
		System:          "be terse",
		User:            "analyze this",
		Temperature:     0.2,
		MaxOutputTokens: 1000,
		JSONOutput:      true,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Text != `{"ok": true}` {
		t.Fatalf("text = %q", resp.Text)
	}
	if resp.Model != "model-a" {
		t.Fatalf("model = %q, want model-a", resp.Model)
	}
	if resp.Truncated {
		t.Fatal("successful response marked truncated")
	}
	if gotBody.SystemInstruction == nil || gotBody.SystemInstruction.Parts[0].Text != "be terse" {
		t.Fatal("system instruction not forwarded")
	}
	if gotBody.GenerationConfig.ResponseMIMEType != "application/json" {
		t.Fatalf("responseMimeType = %q", gotBody.GenerationConfig.ResponseMIMEType)
	}
	if len(gotBody.SafetySettings) != 4 {
		t.Fatalf("safety settings = %d, want 4", len(gotBody.SafetySettings))
	}
	if got := c.state.LastGood(); got != "model-a" {
		t.Fatalf("lastGood = %q after success", got)
	}
}

func TestGenerateAdvancesPast404(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/models") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if modelFromPath(r.URL.Path) == "model-a" {
			http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
			return
		}
		writeCandidate(w, "long enough output from the fallback model", "STOP")
	}))

	resp, err := c.Generate(context.Background(), llm.Request{User: "hi"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Model == "model-a" {
		t.Fatal("cascade did not advance past 404 model")
	}
	if got := c.state.LastGood(); got != resp.Model {
		t.Fatalf("lastGood = %q, want %q", got, resp.Model)
	}
}

func TestGenerateNon404ServiceErrorIsFatal(t *testing.T) {
	calls := 0
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/models") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		calls++
		http.Error(w, `{"error":{"code":429,"message":"quota"}}`, http.StatusTooManyRequests)
	}))

	_, err := c.Generate(context.Background(), llm.Request{User: "hi"})
	if err == nil {
		t.Fatal("expected error for 429")
	}
	var svcErr *apiError
	if !errors.As(err, &svcErr) || svcErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("error = %v, want apiError 429", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (non-404 must not advance cascade)", calls)
	}
}

func TestGenerateDegradedSuccessReturnsLongestTruncated(t *testing.T) {
	outputs := map[string]string{}
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/models") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		model := modelFromPath(r.URL.Path)
		text := strings.Repeat("x", 20+10*len(outputs))
		outputs[model] = text
		writeCandidate(w, text, "MAX_TOKENS")
	}))

	resp, err := c.Generate(context.Background(), llm.Request{User: "hi"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !resp.Truncated {
		t.Fatal("degraded success not marked truncated")
	}
	longest := ""
	for _, text := range outputs {
		if len(text) > len(longest) {
			longest = text
		}
	}
	if resp.Text != longest {
		t.Fatalf("text len %d, want longest %d", len(resp.Text), len(longest))
	}
	if c.state.LastGood() != "" {
		t.Fatal("truncated output must not update lastGood")
	}
}

func TestGenerateAllCandidatesUnsupported(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/models") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
	}))

	_, err := c.Generate(context.Background(), llm.Request{User: "hi"})
	if !errors.Is(err, llm.ErrNoSupportedModel) {
		t.Fatalf("error = %v, want ErrNoSupportedModel", err)
	}
}

func TestGenerateFiltersByListedModels(t *testing.T) {
	var requested []string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/models") {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"models": []map[string]any{
					{"name": "models/gemini-1.5-flash"},
				},
			})
			return
		}
		requested = append(requested, modelFromPath(r.URL.Path))
		writeCandidate(w, "a completion long enough to not look truncated", "STOP")
	}))

	resp, err := c.Generate(context.Background(), llm.Request{User: "hi"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Model != "gemini-1.5-flash" {
		t.Fatalf("model = %q, want only listed model", resp.Model)
	}
	if len(requested) != 1 || requested[0] != "gemini-1.5-flash" {
		t.Fatalf("requested = %v", requested)
	}
}

func TestGenerateCascadeCapsAttempts(t *testing.T) {
	calls := 0
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/models") {
			// Advertise more models than the cascade may try.
			models := make([]map[string]any, 0, 10)
			for i := 0; i < 10; i++ {
				models = append(models, map[string]any{"name": fmt.Sprintf("models/extra-%d", i)})
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"models": models})
			return
		}
		calls++
		http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
	}))
	c.state.supported = nil // force fetch through the handler above

	_, err := c.Generate(context.Background(), llm.Request{User: "hi"})
	if !errors.Is(err, llm.ErrNoSupportedModel) {
		t.Fatalf("error = %v", err)
	}
	if calls > maxModelAttempts {
		t.Fatalf("cascade tried %d models, cap is %d", calls, maxModelAttempts)
	}
}
