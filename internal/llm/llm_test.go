package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// mockProvider replays canned fragments through the delta callback.
type mockProvider struct {
	fragments []string
	usage     Usage
	err       error

	gotSystem string
	gotUser   string
}

func (m *mockProvider) Stream(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64, onDelta func(text string)) (Usage, error) {
	m.gotSystem = systemPrompt
	m.gotUser = userPrompt
	if m.err != nil {
		return Usage{}, m.err
	}
	for _, f := range m.fragments {
		if onDelta != nil {
			onDelta(f)
		}
	}
	return m.usage, nil
}

// installMock swaps the provider factory for the test's lifetime.
func installMock(t *testing.T, p Provider, factoryErr error) *mockProvider {
	t.Helper()
	orig := NewProvider
	t.Cleanup(func() { NewProvider = orig })
	NewProvider = func(providerName, model string) (Provider, error) {
		if factoryErr != nil {
			return nil, factoryErr
		}
		return p, nil
	}
	if m, ok := p.(*mockProvider); ok {
		return m
	}
	return nil
}

func TestReview_AccumulatesStreamedFeedback(t *testing.T) {
	mock := installMock(t, &mockProvider{
		fragments: []string{"The plan ", "references a ", "missing file."},
		usage:     Usage{InputTokens: 120, OutputTokens: 9},
	}, nil)

	var streamed strings.Builder
	feedback, usage, err := Review(context.Background(), ContextInput{PlanText: "do things"}, Options{
		ContextTokens: 1000,
		OnDelta:       func(text string) { streamed.WriteString(text) },
	})
	if err != nil {
		t.Fatalf("Review error: %v", err)
	}
	want := "The plan references a missing file."
	if feedback != want {
		t.Errorf("feedback = %q, want %q", feedback, want)
	}
	if streamed.String() != want {
		t.Errorf("streamed = %q, want the same fragments", streamed.String())
	}
	if usage.InputTokens != 120 || usage.OutputTokens != 9 {
		t.Errorf("usage = %+v", usage)
	}
	if !strings.Contains(mock.gotUser, "do things") {
		t.Errorf("user prompt missing plan text: %q", mock.gotUser)
	}
	if mock.gotSystem == "" {
		t.Error("system prompt not passed through")
	}
}

func TestReview_StreamErrorWrapped(t *testing.T) {
	streamErr := errors.New("stream broke")
	installMock(t, &mockProvider{err: streamErr}, nil)

	_, _, err := Review(context.Background(), ContextInput{PlanText: "p"}, Options{ContextTokens: 1000})
	if !errors.Is(err, streamErr) {
		t.Errorf("err = %v, want wrapped stream error", err)
	}
}

func TestReview_FactoryErrorWrapped(t *testing.T) {
	factoryErr := errors.New("no such provider")
	installMock(t, nil, factoryErr)

	_, _, err := Review(context.Background(), ContextInput{PlanText: "p"}, Options{ContextTokens: 1000})
	if !errors.Is(err, factoryErr) {
		t.Errorf("err = %v, want wrapped factory error", err)
	}
}

func TestBuildUserPrompt_DropsLowPriorityFirst(t *testing.T) {
	in := ContextInput{
		PlanText:    "short plan",
		TreeSummary: strings.Repeat("t", 100000),
		Docs:        strings.Repeat("d", 100000),
	}
	prompt, skipped := BuildUserPrompt(in, 500)

	if !strings.Contains(prompt, "short plan") {
		t.Errorf("prompt dropped the plan: %q", prompt)
	}
	skippedSet := make(map[string]bool)
	for _, k := range skipped {
		skippedSet[k] = true
	}
	if !skippedSet["docs"] || !skippedSet["tree"] {
		t.Errorf("skipped = %v, want docs and tree dropped", skipped)
	}
}

func TestBuildUserPrompt_EmptyFieldsNotOffered(t *testing.T) {
	prompt, skipped := BuildUserPrompt(ContextInput{PlanText: "p"}, 100000)
	if len(skipped) != 0 {
		t.Errorf("skipped = %v, want none", skipped)
	}
	if strings.Contains(prompt, "Prior Feedback") || strings.Contains(prompt, "Project Docs") {
		t.Errorf("prompt contains sections for empty inputs: %q", prompt)
	}
}

func TestBuildUserPrompt_SectionOrder(t *testing.T) {
	in := ContextInput{
		PlanText:      "the plan body",
		Findings:      "## Static Analysis Findings\n\nbad path",
		PriorFeedback: "earlier feedback",
	}
	prompt, _ := BuildUserPrompt(in, 100000)

	plan := strings.Index(prompt, "the plan body")
	findings := strings.Index(prompt, "bad path")
	prior := strings.Index(prompt, "earlier feedback")
	if plan < 0 || findings < 0 || prior < 0 {
		t.Fatalf("prompt missing sections: %q", prompt)
	}
	if !(plan < findings && findings < prior) {
		t.Errorf("section order wrong: plan=%d findings=%d prior=%d", plan, findings, prior)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureCategory
	}{
		{"nil", nil, FailureUnknown},
		{"context canceled", context.Canceled, FailureCanceled},
		{"deadline", context.DeadlineExceeded, FailureCanceled},
		{"unauthorized", errors.New("API error 401 Unauthorized"), FailureAuth},
		{"bad key", errors.New("invalid api key provided"), FailureAuth},
		{"rate limit", errors.New("429 Too Many Requests"), FailureRateLimit},
		{"quota", errors.New("quota exceeded for project"), FailureRateLimit},
		{"dial", errors.New("dial tcp 10.0.0.1:443: i/o timeout"), FailureNetwork},
		{"eof", errors.New("unexpected EOF"), FailureNetwork},
		{"other", errors.New("model returned garbage"), FailureUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if msg := UserMessage(errors.New("401 unauthorized")); !strings.Contains(msg, "API key") {
		t.Errorf("auth message = %q", msg)
	}
	if msg := UserMessage(context.Canceled); msg != "request canceled" {
		t.Errorf("cancel message = %q", msg)
	}
}
