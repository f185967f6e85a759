// Package schema defines the canonical data types shared across plancheck:
// checker results, telemetry entries, session history, and benchmark records.
package schema

import "time"

// Category labels the kind of hallucination a checker detected. Each checker
// draws from its own closed subset of these values.
type Category string

const (
	CategoryPath    Category = "hallucinated-path"
	CategoryModel   Category = "hallucinated-model"
	CategoryField   Category = "hallucinated-field"
	CategoryTable   Category = "hallucinated-table"
	CategoryColumn  Category = "hallucinated-column"
	CategoryEnvVar  Category = "hallucinated-env-var"
	CategoryRoute   Category = "hallucinated-route"
	CategoryMethod  Category = "method-not-allowed"
	CategoryPackage Category = "package-not-found"
	CategorySubpath Category = "subpath-not-exported"
	CategoryMember  Category = "member-not-found"
)

// Hallucination is a single reference that does not exist in the project.
type Hallucination struct {
	Raw        string   `json:"raw"`
	Category   Category `json:"category"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// CheckerResult is the uniform envelope every checker returns from Run.
//
// Analysis carries checker-specific detail consumed only by that checker's
// own formatters, which type-assert it back to their concrete analysis type.
type CheckerResult struct {
	CheckerID      string          `json:"checker_id"`
	Applicable     bool            `json:"applicable"`
	CheckedRefs    int             `json:"checked_refs"`
	Hallucinated   int             `json:"hallucinated"`
	Hallucinations []Hallucination `json:"hallucinations"`
	SkippedRefs    int             `json:"skipped_refs,omitempty"`
	Analysis       any             `json:"-"`
}

// RawStrings returns the raw text of every hallucination, in order.
// Used for telemetry item lists.
func (r *CheckerResult) RawStrings() []string {
	if len(r.Hallucinations) == 0 {
		return nil
	}
	out := make([]string, len(r.Hallucinations))
	for i, h := range r.Hallucinations {
		out[i] = h.Raw
	}
	return out
}

// NotApplicable builds the canonical result for a checker whose ground-truth
// artifact is absent or unparseable: zero counts, no hallucinations.
func NotApplicable(checkerID string) *CheckerResult {
	return &CheckerResult{CheckerID: checkerID, Applicable: false}
}

// CheckerTally is the per-checker slot in a telemetry entry.
type CheckerTally struct {
	Checked      int      `json:"checked"`
	Hallucinated int      `json:"hallucinated"`
	Items        []string `json:"items,omitempty"`
}

// CatchEntry is one line of the append-only telemetry log. Project holds the
// project's base directory name only; full paths are never recorded.
// Checkers has a fixed shape: every registered catch key is present, mapped
// to nil when that checker was not applicable.
type CatchEntry struct {
	Timestamp         time.Time                `json:"timestamp"`
	Tool              string                   `json:"tool"`
	Project           string                   `json:"project"`
	Checkers          map[string]*CheckerTally `json:"checkers"`
	TotalChecked      int                      `json:"total_checked"`
	TotalHallucinated int                      `json:"total_hallucinated"`
}

// SessionEntry is one element of a project's capped session history.
type SessionEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	PlanSnippet string    `json:"plan_snippet"`
	Feedback    string    `json:"feedback"`
}

// DetectionMethod identifies which scorer tier caught a hallucination.
// The empty value means no tier matched.
type DetectionMethod string

const (
	MethodDirect    DetectionMethod = "direct"
	MethodSentiment DetectionMethod = "sentiment"
	MethodSection   DetectionMethod = "section"
	MethodDirectory DetectionMethod = "directory"
)

// PathDetection records whether a reviewer's output caught one known
// hallucinated path, and through which tier.
type PathDetection struct {
	Path     string          `json:"path"`
	Detected bool            `json:"detected"`
	Method   DetectionMethod `json:"method,omitempty"`
}

// Tier2Case is one secondary-injection case in a benchmark run.
type Tier2Case struct {
	Path     string          `json:"path"`
	Category string          `json:"category"`
	Applied  bool            `json:"applied"`
	Detected bool            `json:"detected"`
	Method   DetectionMethod `json:"method,omitempty"`
}

// BenchmarkRun holds one verification attempt's rates and API usage.
type BenchmarkRun struct {
	HallucinationRate float64     `json:"hallucination_rate"`
	DetectionRate     float64     `json:"detection_rate"`
	InputTokens       int         `json:"input_tokens"`
	OutputTokens      int         `json:"output_tokens"`
	Tier2             []Tier2Case `json:"tier2,omitempty"`
}

// Rate is a detected/total pair with its derived rate.
type Rate struct {
	Detected int     `json:"detected"`
	Total    int     `json:"total"`
	Rate     float64 `json:"rate"`
}

// Tier2Summary is the secondary-injection breakdown of a benchmark summary.
// Rates consider only cases where the injection was actually applied.
type Tier2Summary struct {
	AppliedCases  int                      `json:"applied_cases"`
	DetectedCases int                      `json:"detected_cases"`
	DetectionRate float64                  `json:"detection_rate"`
	ByCategory    map[string]Rate          `json:"by_category"`
	ByMethod      map[DetectionMethod]Rate `json:"by_method"`
	Cases         []Tier2Case              `json:"cases"`
}

// BenchmarkSummary aggregates many benchmark runs.
type BenchmarkSummary struct {
	Runs                 int           `json:"runs"`
	AvgHallucinationRate float64       `json:"avg_hallucination_rate"`
	AvgDetectionRate     float64       `json:"avg_detection_rate"`
	TotalInputTokens     int           `json:"total_input_tokens"`
	TotalOutputTokens    int           `json:"total_output_tokens"`
	APICalls             int           `json:"api_calls"`
	Tier2                *Tier2Summary `json:"tier2,omitempty"`
}
