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

// pathTokenRe matches file-path-like tokens: at least one directory segment
// and a dotted extension. Leading "./" is tolerated and stripped.
var pathTokenRe = regexp.MustCompile(`(?:\./)?((?:[\w.-]+/)+[\w.-]+\.\w{1,8})`)

// domainPrefixRe rejects bare-domain tokens (docs.example.com/guide.html)
// that survive the URL-scheme reject because the scheme sits outside the
// matched token.
var domainPrefixRe = regexp.MustCompile(`^[\w-]+\.(?:com|org|net|io|dev|app|co)/`)

// creationVerbRe marks a plan line as describing a file to be created.
var creationVerbRe = regexp.MustCompile(`(?i)\b(create|add|new|generate|scaffold|introduce|write)\b`)

var pathPipeline = extract.Pipeline{
	Patterns: []*regexp.Regexp{pathTokenRe},
	Reject: append([]extract.RejectFn{
		func(c string) bool { return domainPrefixRe.MatchString(c) },
	}, extract.DefaultRejects...),
}

// PathsAnalysis is the checker-specific payload behind the paths result.
type PathsAnalysis struct {
	Tree  *groundtruth.Tree
	Valid []string
	// New holds paths classified as intentionally-new, not hallucinated.
	New []string
	// DirMismatch flags hallucinations whose suggestion shares the basename
	// but lives in a different directory, keyed by raw reference.
	DirMismatch map[string]bool
}

// PathsChecker verifies that file paths mentioned in a plan exist in the
// project tree, distinguishing hallucinations from intentionally-new files.
type PathsChecker struct{}

func (c *PathsChecker) ID() string          { return "paths" }
func (c *PathsChecker) DisplayName() string { return "File Paths" }
func (c *PathsChecker) CatchKey() string    { return "paths" }
func (c *PathsChecker) Experimental() bool  { return false }

func (c *PathsChecker) Run(planText, projectDir string, opts map[string]string) (*schema.CheckerResult, error) {
	tree, err := groundtruth.BuildTree(projectDir, splitIgnoreOpt(opts))
	if err != nil {
		// An unreadable project root means there is no ground truth to check
		// against; degrade rather than fail the run.
		return schema.NotApplicable(c.ID()), nil
	}

	analysis := &PathsAnalysis{Tree: tree, DirMismatch: make(map[string]bool)}
	result := &schema.CheckerResult{CheckerID: c.ID(), Applicable: true, Analysis: analysis}

	for _, ref := range pathPipeline.Extract(planText) {
		result.CheckedRefs++
		if tree.Contains(ref) {
			analysis.Valid = append(analysis.Valid, ref)
			continue
		}
		if isIntentionallyNew(planText, ref) {
			analysis.New = append(analysis.New, ref)
			continue
		}
		h := schema.Hallucination{Raw: ref, Category: schema.CategoryPath}
		if s, ok := match.ClosestPath(ref, tree.Paths); ok {
			h.Suggestion = s.Path
			analysis.DirMismatch[ref] = s.DirMismatch
		}
		result.Hallucinations = append(result.Hallucinations, h)
	}
	result.Hallucinated = len(result.Hallucinations)
	return result, nil
}

// isIntentionallyNew reports whether the plan plausibly describes ref as a
// file to be created: a creation verb on its line, or a "new file(s)" label.
func isIntentionallyNew(planText, ref string) bool {
	line := extract.ContextLine(planText, ref)
	if line == "" {
		return false
	}
	if creationVerbRe.MatchString(line) {
		return true
	}
	return strings.Contains(strings.ToLower(line), "new file")
}

func (c *PathsChecker) FormatReport(result *schema.CheckerResult, projectDir string) []string {
	analysis, _ := result.Analysis.(*PathsAnalysis)
	newCount := 0
	if analysis != nil {
		newCount = len(analysis.New)
	}
	lines := []string{
		fmt.Sprintf("Checked %d path reference(s): %d hallucinated, %d intentionally new.",
			result.CheckedRefs, result.Hallucinated, newCount),
	}
	for _, h := range result.Hallucinations {
		line := fmt.Sprintf("  ✗ %s", h.Raw)
		if h.Suggestion != "" {
			if analysis != nil && analysis.DirMismatch[h.Raw] {
				line += fmt.Sprintf(" (directory mismatch — found %s)", h.Suggestion)
			} else {
				line += fmt.Sprintf(" (did you mean %s?)", h.Suggestion)
			}
		}
		lines = append(lines, line)
	}
	if analysis != nil {
		for _, p := range analysis.New {
			lines = append(lines, fmt.Sprintf("  + %s (new file)", p))
		}
		lines = append(lines, fmt.Sprintf("Ground truth: %d file(s) indexed.", len(analysis.Tree.Paths)))
		for _, p := range analysis.Tree.Paths {
			lines = append(lines, "  "+p)
		}
	}
	return lines
}

func (c *PathsChecker) FormatFindings(result *schema.CheckerResult) (string, bool) {
	if result.Hallucinated == 0 {
		return "", false
	}
	analysis, _ := result.Analysis.(*PathsAnalysis)
	var sb strings.Builder
	sb.WriteString("Nonexistent file paths referenced by the plan:\n")
	for _, h := range result.Hallucinations {
		fmt.Fprintf(&sb, "- %s does not exist", h.Raw)
		if h.Suggestion != "" {
			if analysis != nil && analysis.DirMismatch[h.Raw] {
				fmt.Fprintf(&sb, "; the file lives at %s", h.Suggestion)
			} else {
				fmt.Fprintf(&sb, "; closest real path is %s", h.Suggestion)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String(), true
}

// splitIgnoreOpt parses the comma-separated "ignore" option.
func splitIgnoreOpt(opts map[string]string) []string {
	raw := optValue(opts, "ignore")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
