package checkers

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dshills/plancheck/internal/groundtruth"
	"github.com/dshills/plancheck/internal/match"
	"github.com/dshills/plancheck/internal/schema"
)

// namedImportRe matches ESM named-import lists with their source package:
// import { a, b as c } from 'pkg'.
var namedImportRe = regexp.MustCompile(`\bimport\s*\{([^}]*)\}\s*from\s+['"]([^'"]+)['"]`)

// PackageAPIAnalysis is the checker-specific payload behind the package-API
// result.
type PackageAPIAnalysis struct {
	Index *groundtruth.PackageIndex
	Valid []string
	// Unverifiable lists packages whose export surface could not be read;
	// their members are not checked rather than flagged.
	Unverifiable []string
}

// PackageAPIChecker verifies that named imports actually exist in the
// imported package's export surface. Experimental: export scanning is
// entry-file based and misses re-exports, so it is opt-in.
type PackageAPIChecker struct{}

func (c *PackageAPIChecker) ID() string          { return "pkgapi" }
func (c *PackageAPIChecker) DisplayName() string { return "Package API" }
func (c *PackageAPIChecker) CatchKey() string    { return "packageAPI" }
func (c *PackageAPIChecker) Experimental() bool  { return true }

func (c *PackageAPIChecker) Run(planText, projectDir string, opts map[string]string) (*schema.CheckerResult, error) {
	idx, ok := groundtruth.BuildPackageIndex(projectDir)
	if !ok {
		return schema.NotApplicable(c.ID()), nil
	}

	analysis := &PackageAPIAnalysis{Index: idx}
	result := &schema.CheckerResult{CheckerID: c.ID(), Applicable: true, Analysis: analysis}

	unverifiable := make(map[string]bool)
	seen := make(map[string]bool)
	for _, m := range namedImportRe.FindAllStringSubmatch(planText, -1) {
		spec := m[2]
		if isRelativeSpecifier(spec) || isBuiltinSpecifier(spec) {
			continue
		}
		name, sub := groundtruth.PackageName(spec)
		if sub != "" {
			// Subpath export surfaces are not scanned; the imports checker
			// already validates subpath reachability.
			continue
		}
		if !idx.Resolves(name) {
			key := "p:" + name
			if !seen[key] {
				seen[key] = true
				result.CheckedRefs++
				result.Hallucinations = append(result.Hallucinations, schema.Hallucination{
					Raw:      name,
					Category: schema.CategoryPackage,
				})
			}
			continue
		}
		members, readable := idx.ExportedMembers(name)
		if !readable {
			if !unverifiable[name] {
				unverifiable[name] = true
				analysis.Unverifiable = append(analysis.Unverifiable, name)
			}
			continue
		}
		memberOrder := sortedKeys(members)
		for _, imp := range splitImportList(m[1]) {
			ref := name + "#" + imp
			if seen[ref] {
				continue
			}
			seen[ref] = true
			result.CheckedRefs++
			if members[imp] {
				analysis.Valid = append(analysis.Valid, ref)
				continue
			}
			h := schema.Hallucination{Raw: ref, Category: schema.CategoryMember}
			if s, ok := match.Closest(imp, memberOrder); ok {
				h.Suggestion = name + "#" + s
			}
			result.Hallucinations = append(result.Hallucinations, h)
		}
	}

	result.Hallucinated = len(result.Hallucinations)
	return result, nil
}

// splitImportList splits "a, b as c, type D" into the imported local names
// as the source package exports them (the name before "as").
func splitImportList(list string) []string {
	var out []string
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		part = strings.TrimPrefix(part, "type ")
		if as := strings.Index(part, " as "); as >= 0 {
			part = strings.TrimSpace(part[:as])
		}
		if part != "" && part != "default" {
			out = append(out, part)
		}
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (c *PackageAPIChecker) FormatReport(result *schema.CheckerResult, projectDir string) []string {
	analysis, _ := result.Analysis.(*PackageAPIAnalysis)
	lines := []string{
		fmt.Sprintf("Checked %d package-API reference(s): %d hallucinated.",
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
		if len(analysis.Unverifiable) > 0 {
			lines = append(lines, "Unverifiable export surfaces: "+strings.Join(analysis.Unverifiable, ", "))
		}
		lines = append(lines, fmt.Sprintf("Ground truth: %d declared dependencies.", len(analysis.Index.Declared)))
	}
	return lines
}

func (c *PackageAPIChecker) FormatFindings(result *schema.CheckerResult) (string, bool) {
	if result.Hallucinated == 0 {
		return "", false
	}
	var sb strings.Builder
	sb.WriteString("Package exports imported by the plan that do not exist:\n")
	for _, h := range result.Hallucinations {
		fmt.Fprintf(&sb, "- %s (%s)", h.Raw, h.Category)
		if h.Suggestion != "" {
			fmt.Fprintf(&sb, "; closest export is %s", h.Suggestion)
		}
		sb.WriteByte('\n')
	}
	return sb.String(), true
}
