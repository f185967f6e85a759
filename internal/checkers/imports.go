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

// importSpecifierPatterns match module specifiers in ESM and CommonJS forms.
var importSpecifierPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bimport\s+[^'"]*?from\s+['"]([^'"]+)['"]`),
	regexp.MustCompile(`\bimport\s*\(\s*['"]([^'"]+)['"]\s*\)`),
	regexp.MustCompile(`\brequire\s*\(\s*['"]([^'"]+)['"]\s*\)`),
}

// nodeBuiltins are resolved by the runtime, not package.json.
var nodeBuiltins = map[string]bool{
	"assert": true, "buffer": true, "child_process": true, "crypto": true,
	"events": true, "fs": true, "http": true, "https": true, "net": true,
	"os": true, "path": true, "process": true, "stream": true, "url": true,
	"util": true, "zlib": true,
}

// isBuiltinSpecifier covers both "fs" and "node:fs" forms, including
// subpaths such as "fs/promises".
func isBuiltinSpecifier(spec string) bool {
	if strings.HasPrefix(spec, "node:") {
		return true
	}
	name, _ := groundtruth.PackageName(spec)
	return nodeBuiltins[name]
}

// isRelativeSpecifier covers project-internal imports; those are the paths
// checker's territory.
func isRelativeSpecifier(spec string) bool {
	return strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") ||
		strings.HasPrefix(spec, "@/") || strings.HasPrefix(spec, "~/")
}

var importPipeline = extract.Pipeline{
	Patterns: importSpecifierPatterns,
	Reject: []extract.RejectFn{
		extract.IsURL,
		isRelativeSpecifier,
		isBuiltinSpecifier,
	},
}

// ImportsAnalysis is the checker-specific payload behind the imports result.
type ImportsAnalysis struct {
	Index *groundtruth.PackageIndex
	Valid []string
}

// ImportsChecker verifies that package specifiers imported by a plan resolve
// against the project's declared and installed dependencies.
type ImportsChecker struct{}

func (c *ImportsChecker) ID() string          { return "imports" }
func (c *ImportsChecker) DisplayName() string { return "Package Imports" }
func (c *ImportsChecker) CatchKey() string    { return "imports" }
func (c *ImportsChecker) Experimental() bool  { return false }

func (c *ImportsChecker) Run(planText, projectDir string, opts map[string]string) (*schema.CheckerResult, error) {
	idx, ok := groundtruth.BuildPackageIndex(projectDir)
	if !ok {
		return schema.NotApplicable(c.ID()), nil
	}

	analysis := &ImportsAnalysis{Index: idx}
	result := &schema.CheckerResult{CheckerID: c.ID(), Applicable: true, Analysis: analysis}

	for _, spec := range importPipeline.Extract(planText) {
		result.CheckedRefs++
		if !idx.Resolves(spec) {
			h := schema.Hallucination{Raw: spec, Category: schema.CategoryPackage}
			name, _ := groundtruth.PackageName(spec)
			if s, ok := match.Closest(name, idx.Declared); ok {
				h.Suggestion = s
			}
			result.Hallucinations = append(result.Hallucinations, h)
			continue
		}
		if exported, inspected := idx.SubpathExported(spec); inspected && !exported {
			result.Hallucinations = append(result.Hallucinations, schema.Hallucination{
				Raw:      spec,
				Category: schema.CategorySubpath,
			})
			continue
		}
		analysis.Valid = append(analysis.Valid, spec)
	}
	result.Hallucinated = len(result.Hallucinations)
	return result, nil
}

func (c *ImportsChecker) FormatReport(result *schema.CheckerResult, projectDir string) []string {
	analysis, _ := result.Analysis.(*ImportsAnalysis)
	lines := []string{
		fmt.Sprintf("Checked %d import specifier(s): %d hallucinated.",
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
		lines = append(lines, fmt.Sprintf("Ground truth: %d declared dependencies.", len(analysis.Index.Declared)))
		for _, d := range analysis.Index.Declared {
			lines = append(lines, "  "+d)
		}
	}
	return lines
}

func (c *ImportsChecker) FormatFindings(result *schema.CheckerResult) (string, bool) {
	if result.Hallucinated == 0 {
		return "", false
	}
	var sb strings.Builder
	sb.WriteString("Import specifiers in the plan that do not resolve:\n")
	for _, h := range result.Hallucinations {
		fmt.Fprintf(&sb, "- %s (%s)", h.Raw, h.Category)
		if h.Suggestion != "" {
			fmt.Fprintf(&sb, "; installed package %s is the closest match", h.Suggestion)
		}
		sb.WriteByte('\n')
	}
	return sb.String(), true
}
