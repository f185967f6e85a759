// Package llm handles provider communication for the verification request:
// streamed completions, prompt assembly under the token budget, and
// user-facing classification of provider failures.
//
// One request is outstanding per verification invocation. The delta callback
// is invoked once per received text fragment, in arrival order; usage totals
// are available only after the stream completes. Cancellation, timeouts, and
// retries are the caller's concern.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/plancheck/internal/budget"
)

// Usage reports token consumption for one completed request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Provider is the interface for streaming LLM backends. onDelta receives
// each text fragment as it arrives; it may be nil.
type Provider interface {
	Stream(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64, onDelta func(text string)) (Usage, error)
}

// NewProvider is the factory for creating providers. It is a package-level
// variable so tests can replace it with a mock without modifying the call
// site. Tests must restore the original value; use t.Cleanup to do so safely.
var NewProvider func(providerName, model string) (Provider, error) = defaultNewProvider

// Options configures a Review call.
type Options struct {
	Provider      string
	Model         string
	MaxTokens     int
	Temperature   float64
	ContextTokens int
	// OnDelta receives streamed feedback fragments; nil discards them.
	OnDelta func(text string)
}

// ContextInput carries the prioritized context fragments for one review.
// Empty fields are simply not offered to the allocator.
type ContextInput struct {
	PlanText        string
	Findings        string
	PriorFeedback   string
	Docs            string
	ReferencedFiles string
	TreeSummary     string
}

const systemPrompt = `You are a senior engineer reviewing an AI-generated coding plan against the real project.
Focus on references that do not match the project: file paths, schema models and fields, SQL tables, imports, environment variables, and routes.
When a static analysis findings section is present, confirm or refute each finding explicitly.
Point out incorrect references by their exact text and name the correct one when you can.`

// instructionHeader opens the user prompt; it always fits (priority 0).
const instructionHeader = "Review the following coding plan against the project context below. Call out any reference that does not exist in the project."

// BuildUserPrompt assembles the user prompt from in under contextTokens,
// selecting fragments greedily by priority: instructions, plan, findings,
// prior feedback, referenced files, docs, tree. Returns the prompt and the
// keys of fragments dropped for space.
func BuildUserPrompt(in ContextInput, contextTokens int) (string, []string) {
	items := []budget.Item{
		{Key: "instructions", Content: instructionHeader, Priority: 0},
		{Key: "plan", Content: section("Plan", in.PlanText), Priority: 1},
	}
	if in.Findings != "" {
		items = append(items, budget.Item{Key: "findings", Content: in.Findings + "\n", Priority: 2})
	}
	if in.PriorFeedback != "" {
		items = append(items, budget.Item{Key: "prior-feedback", Content: section("Prior Feedback", in.PriorFeedback), Priority: 3})
	}
	if in.ReferencedFiles != "" {
		items = append(items, budget.Item{Key: "referenced-files", Content: section("Referenced Files", in.ReferencedFiles), Priority: 4})
	}
	if in.Docs != "" {
		items = append(items, budget.Item{Key: "docs", Content: section("Project Docs", in.Docs), Priority: 5})
	}
	if in.TreeSummary != "" {
		items = append(items, budget.Item{Key: "tree", Content: in.TreeSummary, Priority: 6})
	}

	sel := budget.Allocate(items, contextTokens)
	var sb strings.Builder
	for _, it := range sel.Items {
		sb.WriteString(it.Content)
		sb.WriteByte('\n')
	}
	return sb.String(), sel.SkippedKeys
}

func section(title, body string) string {
	return fmt.Sprintf("## %s\n\n%s\n", title, body)
}

// Review issues one streamed verification request and returns the full
// feedback text with usage totals. The request runs to completion or
// failure; no partial-cancellation path exists.
func Review(ctx context.Context, in ContextInput, opts Options) (string, Usage, error) {
	provider, err := NewProvider(opts.Provider, opts.Model)
	if err != nil {
		return "", Usage{}, fmt.Errorf("llm: create provider: %w", err)
	}

	userPrompt, _ := BuildUserPrompt(in, opts.ContextTokens)

	var feedback strings.Builder
	onDelta := func(text string) {
		feedback.WriteString(text)
		if opts.OnDelta != nil {
			opts.OnDelta(text)
		}
	}

	usage, err := provider.Stream(ctx, systemPrompt, userPrompt, opts.MaxTokens, opts.Temperature, onDelta)
	if err != nil {
		return "", Usage{}, fmt.Errorf("llm: stream: %w", err)
	}
	return feedback.String(), usage, nil
}

// defaultNewProvider dispatches to the appropriate provider implementation.
func defaultNewProvider(providerName, model string) (Provider, error) {
	switch strings.ToLower(providerName) {
	case "anthropic", "":
		return newAnthropicProvider(model)
	case "openai":
		return newOpenAIProvider(model)
	case "google":
		return newGoogleProvider(model)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", providerName)
	}
}
