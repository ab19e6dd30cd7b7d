package advisory

import (
	"context"
	"testing"

	"cvmatch-backend/internal/llm"
)

// fakeClient replays scripted responses and records every request.
type fakeClient struct {
	responses []llm.Response
	errs      []error
	calls     []llm.Request
}

func (f *fakeClient) Enabled() bool { return true }

func (f *fakeClient) Generate(_ context.Context, req llm.Request) (llm.Response, error) {
	i := len(f.calls)
	f.calls = append(f.calls, req)
	if i < len(f.errs) && f.errs[i] != nil {
		return llm.Response{}, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return llm.Response{}, nil
}

func scripted(texts ...string) *fakeClient {
	f := &fakeClient{}
	for _, t := range texts {
		f.responses = append(f.responses, llm.Response{Text: t, Model: "fake-model", FinishReason: "STOP"})
	}
	return f
}

func TestDisabledServiceShortCircuits(t *testing.T) {
	s := NewService(llm.Disabled{})
	if s.Enabled() {
		t.Fatal("disabled client reported enabled")
	}

	cats, meta := s.ExtractCategories(context.Background(), "cv", "jd")
	if meta.Enabled || meta.Status != StatusEmpty {
		t.Fatalf("meta = %+v, want disabled/empty", meta)
	}
	if len(cats.Key) != 0 {
		t.Fatalf("disabled service produced categories: %v", cats.Key)
	}

	scores, meta := s.ScoreAndQuickMatch(context.Background(), "cv", "jd")
	if meta.Enabled {
		t.Fatal("scores meta enabled for disabled client")
	}
	if scores.HasScores || scores.HasQuickMatch {
		t.Fatal("disabled service produced score data")
	}
}

func TestGenerateJSONInvokesRepairOnGarbage(t *testing.T) {
	// First response resists every loose-parse stage; second is the repair
	// pass returning valid JSON.
	client := scripted(
		`completely { broken ] output`,
		`{"profile_summary": "fixed", "suggestions": []}`,
	)
	s := NewService(client)

	insights, meta := s.GenerateInsights(context.Background(), "cv", "jd")
	if len(client.calls) != 2 {
		t.Fatalf("calls = %d, want original + repair", len(client.calls))
	}
	if insights.ProfileSummary != "fixed" {
		t.Fatalf("profileSummary = %q", insights.ProfileSummary)
	}
	if meta.Status != StatusOK {
		t.Fatalf("status = %q", meta.Status)
	}
	if client.calls[1].MaxOutputTokens >= client.calls[0].MaxOutputTokens {
		t.Fatal("repair pass did not reduce the output budget")
	}
}

func TestProseWrappedJSONSkipsRepair(t *testing.T) {
	client := scripted("Here is the JSON: {\"profile_summary\": \"good fit\", \"suggestions\": []}\nHope this helps!")
	s := NewService(client)

	insights, _ := s.GenerateInsights(context.Background(), "cv", "jd")
	if len(client.calls) != 1 {
		t.Fatalf("calls = %d, prose-wrapped JSON must parse without a repair call", len(client.calls))
	}
	if insights.ProfileSummary != "good fit" {
		t.Fatalf("profileSummary = %q", insights.ProfileSummary)
	}
}
