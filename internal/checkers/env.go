package checkers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dshills/plancheck/internal/extract"
	"github.com/dshills/plancheck/internal/groundtruth"
	"github.com/dshills/plancheck/internal/match"
	"github.com/dshills/plancheck/internal/schema"
)

// envAccessPatterns cover env-var access idioms across the host languages a
// plan may sketch: Node, Python, Ruby, and Go.
var envAccessPatterns = []*regexp.Regexp{
	regexp.MustCompile(`process\.env\.([A-Z][A-Z0-9_]*)`),
	regexp.MustCompile(`process\.env\[['"]([A-Z][A-Z0-9_]*)['"]\]`),
	regexp.MustCompile(`os\.environ(?:\.get\(|\[)['"]([A-Z][A-Z0-9_]*)['"]`),
	regexp.MustCompile(`ENV\[['"]([A-Z][A-Z0-9_]*)['"]\]`),
	regexp.MustCompile(`os\.Getenv\("([A-Z][A-Z0-9_]*)"\)`),
}

// runtimeEnvSkipSet lists platform-provided variables. References to these
// are extracted but excluded from both checked and hallucinated counts; they
// are tallied as skipped refs instead.
var runtimeEnvSkipSet = map[string]bool{
	"PATH":     true,
	"HOME":     true,
	"PWD":      true,
	"USER":     true,
	"SHELL":    true,
	"TERM":     true,
	"TMPDIR":   true,
	"LANG":     true,
	"HOSTNAME": true,
	"NODE_ENV": true,
	"CI":       true,
	"PORT":     true,
}

var envPipeline = extract.Pipeline{Patterns: envAccessPatterns}

// EnvAnalysis is the checker-specific payload behind the env result.
type EnvAnalysis struct {
	Index   *groundtruth.EnvIndex
	Valid   []string
	Skipped []string
}

// EnvChecker verifies that environment variables referenced by a plan are
// defined in the project's env files.
type EnvChecker struct{}

func (c *EnvChecker) ID() string          { return "env" }
func (c *EnvChecker) DisplayName() string { return "Environment Variables" }
func (c *EnvChecker) CatchKey() string    { return "envVars" }
func (c *EnvChecker) Experimental() bool  { return false }

func (c *EnvChecker) Run(planText, projectDir string, opts map[string]string) (*schema.CheckerResult, error) {
	idx, ok := groundtruth.BuildEnvIndex(projectDir)
	if !ok {
		return schema.NotApplicable(c.ID()), nil
	}

	analysis := &EnvAnalysis{Index: idx}
	result := &schema.CheckerResult{CheckerID: c.ID(), Applicable: true, Analysis: analysis}

	for _, name := range envPipeline.Extract(planText) {
		if runtimeEnvSkipSet[name] {
			analysis.Skipped = append(analysis.Skipped, name)
			result.SkippedRefs++
			continue
		}
		result.CheckedRefs++
		if idx.Defined(name) {
			analysis.Valid = append(analysis.Valid, name)
			continue
		}
		h := schema.Hallucination{Raw: name, Category: schema.CategoryEnvVar}
		if s, ok := match.Closest(name, idx.Keys); ok {
			h.Suggestion = s
		}
		result.Hallucinations = append(result.Hallucinations, h)
	}
	result.Hallucinated = len(result.Hallucinations)
	return result, nil
}

func (c *EnvChecker) FormatReport(result *schema.CheckerResult, projectDir string) []string {
	analysis, _ := result.Analysis.(*EnvAnalysis)
	lines := []string{
		fmt.Sprintf("Checked %d env reference(s): %d hallucinated, %d runtime-skipped.",
			result.CheckedRefs, result.Hallucinated, result.SkippedRefs),
	}
	for _, h := range result.Hallucinations {
		line := fmt.Sprintf("  ✗ %s", h.Raw)
		if h.Suggestion != "" {
			line += fmt.Sprintf(" (did you mean %s?)", h.Suggestion)
		}
		lines = append(lines, line)
	}
	if analysis != nil {
		lines = append(lines, fmt.Sprintf("Ground truth: %d key(s) from %s.",
			len(analysis.Index.Keys), strings.Join(analysis.Index.Files, ", ")))
		for _, k := range analysis.Index.Keys {
			lines = append(lines, "  "+k)
		}
	}
	return lines
}

func (c *EnvChecker) FormatFindings(result *schema.CheckerResult) (string, bool) {
	if result.Hallucinated == 0 {
		return "", false
	}
	var sb strings.Builder
	sb.WriteString("Environment variables referenced by the plan but not defined in any env file:\n")
	for _, h := range result.Hallucinations {
		fmt.Fprintf(&sb, "- %s", h.Raw)
		if h.Suggestion != "" {
			fmt.Fprintf(&sb, " (defined key %s is the closest match)", h.Suggestion)
		}
		sb.WriteByte('\n')
	}
	return sb.String(), true
}
