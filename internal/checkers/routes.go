package checkers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dshills/plancheck/internal/groundtruth"
	"github.com/dshills/plancheck/internal/match"
	"github.com/dshills/plancheck/internal/schema"
)

// routeMethodPathRe matches "GET /users/:id" style references in prose.
var routeMethodPathRe = regexp.MustCompile(`\b(GET|POST|PUT|PATCH|DELETE|OPTIONS|HEAD)\s+(/[\w/:.\-{}]*)`)

// routePathLiteralRe matches quoted API-path literals. Restricting to /api
// keeps generic absolute paths (which belong to the paths checker) out.
var routePathLiteralRe = regexp.MustCompile(`['"` + "`" + `](/api/[\w/:.\-{}]*)['"` + "`" + `]`)

// RoutesAnalysis is the checker-specific payload behind the routes result.
type RoutesAnalysis struct {
	Index *groundtruth.RouteIndex
	Valid []string
}

// RoutesChecker verifies HTTP routes referenced by a plan against route
// registrations scanned from project source.
type RoutesChecker struct{}

func (c *RoutesChecker) ID() string          { return "routes" }
func (c *RoutesChecker) DisplayName() string { return "HTTP Routes" }
func (c *RoutesChecker) CatchKey() string    { return "routes" }
func (c *RoutesChecker) Experimental() bool  { return false }

func (c *RoutesChecker) Run(planText, projectDir string, opts map[string]string) (*schema.CheckerResult, error) {
	idx, ok := groundtruth.BuildRouteIndex(projectDir)
	if !ok {
		return schema.NotApplicable(c.ID()), nil
	}

	analysis := &RoutesAnalysis{Index: idx}
	result := &schema.CheckerResult{CheckerID: c.ID(), Applicable: true, Analysis: analysis}

	seen := make(map[string]bool)
	check := func(method, path string) {
		key := method + " " + path
		if seen[key] {
			return
		}
		seen[key] = true
		result.CheckedRefs++

		pathKnown, methodAllowed := idx.Allows(path, method)
		switch {
		case pathKnown && methodAllowed:
			analysis.Valid = append(analysis.Valid, strings.TrimSpace(key))
		case pathKnown:
			result.Hallucinations = append(result.Hallucinations, schema.Hallucination{
				Raw:      strings.TrimSpace(key),
				Category: schema.CategoryMethod,
			})
		default:
			h := schema.Hallucination{Raw: strings.TrimSpace(key), Category: schema.CategoryRoute}
			if s, ok := match.Closest(path, idx.PathOrder); ok {
				h.Suggestion = s
			}
			result.Hallucinations = append(result.Hallucinations, h)
		}
	}

	for _, m := range routeMethodPathRe.FindAllStringSubmatch(planText, -1) {
		check(m[1], m[2])
	}
	for _, m := range routePathLiteralRe.FindAllStringSubmatch(planText, -1) {
		if !seenWithAnyMethod(seen, m[1]) {
			check("", m[1])
		}
	}

	result.Hallucinated = len(result.Hallucinations)
	return result, nil
}

// seenWithAnyMethod avoids double-counting a path literal already checked as
// part of a METHOD /path pair.
func seenWithAnyMethod(seen map[string]bool, path string) bool {
	for key := range seen {
		if strings.HasSuffix(key, " "+path) {
			return true
		}
	}
	return false
}

func (c *RoutesChecker) FormatReport(result *schema.CheckerResult, projectDir string) []string {
	analysis, _ := result.Analysis.(*RoutesAnalysis)
	lines := []string{
		fmt.Sprintf("Checked %d route reference(s): %d hallucinated.",
			result.CheckedRefs, result.Hallucinated),
	}
	for _, h := range result.Hallucinations {
		line := fmt.Sprintf("  ✗ %s [%s]", h.Raw, h.Category)
		if h.Suggestion != "" {
			line += fmt.Sprintf(" (did you mean %s?)", h.Suggestion)
		}
		lines = append(lines, line)
	}
	if analysis != nil {
		lines = append(lines, fmt.Sprintf("Ground truth: %d registered route path(s).", len(analysis.Index.PathOrder)))
		for _, p := range analysis.Index.PathOrder {
			var methods []string
			for _, e := range analysis.Index.Routes[p] {
				methods = append(methods, e.Method)
			}
			lines = append(lines, fmt.Sprintf("  %s [%s]", p, strings.Join(methods, ", ")))
		}
	}
	return lines
}

func (c *RoutesChecker) FormatFindings(result *schema.CheckerResult) (string, bool) {
	if result.Hallucinated == 0 {
		return "", false
	}
	var sb strings.Builder
	sb.WriteString("Routes referenced by the plan that are not registered in the code:\n")
	for _, h := range result.Hallucinations {
		fmt.Fprintf(&sb, "- %s (%s)", h.Raw, h.Category)
		if h.Suggestion != "" {
			fmt.Fprintf(&sb, "; registered path %s is the closest match", h.Suggestion)
		}
		sb.WriteByte('\n')
	}
	return sb.String(), true
}
