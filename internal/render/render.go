// Package render produces the combined checker report and the findings
// block injected as reviewer context.
package render

import (
	"fmt"
	"strings"

	"github.com/dshills/plancheck/internal/registry"
	"github.com/dshills/plancheck/internal/schema"
)

// CombinedReport renders every applicable checker's section in registration
// order, each self-delimited by a heading. Applicable checkers with zero
// hallucinations still render ("All refs valid."); inapplicable checkers are
// silently omitted rather than shown as empty sections.
func CombinedReport(checkers []registry.Checker, results map[string]*schema.CheckerResult, projectDir string) string {
	var sb strings.Builder
	for _, c := range checkers {
		result, ok := results[c.ID()]
		if !ok || !result.Applicable {
			continue
		}
		fmt.Fprintf(&sb, "## %s\n", c.DisplayName())
		if result.Hallucinated == 0 {
			sb.WriteString("All refs valid.\n")
		}
		for _, line := range c.FormatReport(result, projectDir) {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FindingsSection builds the "Static Analysis Findings" block fed to the
// reviewer. ok is false when no checker has findings; the block is then
// omitted entirely from the request context.
func FindingsSection(checkers []registry.Checker, results map[string]*schema.CheckerResult) (string, bool) {
	var parts []string
	for _, c := range checkers {
		result, found := results[c.ID()]
		if !found || !result.Applicable {
			continue
		}
		if text, has := c.FormatFindings(result); has {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return "## Static Analysis Findings\n\n" + strings.Join(parts, "\n"), true
}
