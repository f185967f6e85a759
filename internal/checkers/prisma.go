package checkers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dshills/plancheck/internal/groundtruth"
	"github.com/dshills/plancheck/internal/match"
	"github.com/dshills/plancheck/internal/schema"
)

// prismaAccessorRe matches client accessor chains: prisma.user.findMany.
var prismaAccessorRe = regexp.MustCompile(`\bprisma\.(\w+)\.\w+`)

// modelFieldRe matches dotted model/field pairs: User.email. Only pairs whose
// left side names a known model are considered references; arbitrary
// capitalized identifiers are far too noisy to flag.
var modelFieldRe = regexp.MustCompile(`\b([A-Z]\w*)\.(\w+)\b`)

// PrismaAnalysis is the checker-specific payload behind the ORM result.
type PrismaAnalysis struct {
	Schema     *groundtruth.PrismaSchema
	SchemaPath string
	Valid      []string
}

// PrismaChecker verifies ORM model accessors and field references against a
// declarative schema file.
type PrismaChecker struct{}

func (c *PrismaChecker) ID() string          { return "prisma" }
func (c *PrismaChecker) DisplayName() string { return "Prisma Schema" }
func (c *PrismaChecker) CatchKey() string    { return "prismaSchema" }
func (c *PrismaChecker) Experimental() bool  { return false }

func (c *PrismaChecker) Run(planText, projectDir string, opts map[string]string) (*schema.CheckerResult, error) {
	rel := optValue(opts, "schemaPath")
	if rel == "" {
		rel = groundtruth.FindPrismaSchema(projectDir)
	}
	if rel == "" {
		return schema.NotApplicable(c.ID()), nil
	}
	gt, ok := groundtruth.ParsePrismaFile(projectDir, rel)
	if !ok {
		// Malformed schema degrades to not-applicable, never to a stack-level
		// failure or spurious hallucinations.
		return schema.NotApplicable(c.ID()), nil
	}

	analysis := &PrismaAnalysis{Schema: gt, SchemaPath: rel}
	result := &schema.CheckerResult{CheckerID: c.ID(), Applicable: true, Analysis: analysis}
	accessors := gt.AccessorModels()
	accessorOrder := make([]string, 0, len(gt.ModelOrder))
	for _, m := range gt.ModelOrder {
		accessorOrder = append(accessorOrder, groundtruth.Accessor(m))
	}

	seen := make(map[string]bool)
	for _, m := range prismaAccessorRe.FindAllStringSubmatch(planText, -1) {
		accessor := m[1]
		if seen["a:"+accessor] {
			continue
		}
		seen["a:"+accessor] = true
		result.CheckedRefs++
		if _, ok := accessors[accessor]; ok {
			analysis.Valid = append(analysis.Valid, "prisma."+accessor)
			continue
		}
		h := schema.Hallucination{Raw: "prisma." + accessor, Category: schema.CategoryModel}
		if s, ok := match.Closest(accessor, accessorOrder); ok {
			h.Suggestion = "prisma." + s
		}
		result.Hallucinations = append(result.Hallucinations, h)
	}

	for _, m := range modelFieldRe.FindAllStringSubmatch(planText, -1) {
		model, field := m[1], m[2]
		fields, known := gt.Models[model]
		if !known || gt.Enums[model] {
			continue
		}
		ref := model + "." + field
		if seen["f:"+ref] {
			continue
		}
		seen["f:"+ref] = true
		result.CheckedRefs++
		if fields[field] {
			analysis.Valid = append(analysis.Valid, ref)
			continue
		}
		h := schema.Hallucination{Raw: ref, Category: schema.CategoryField}
		if s, ok := match.Closest(field, gt.FieldOrder[model]); ok {
			h.Suggestion = model + "." + s
		}
		result.Hallucinations = append(result.Hallucinations, h)
	}

	result.Hallucinated = len(result.Hallucinations)
	return result, nil
}

func (c *PrismaChecker) FormatReport(result *schema.CheckerResult, projectDir string) []string {
	analysis, _ := result.Analysis.(*PrismaAnalysis)
	lines := []string{
		fmt.Sprintf("Checked %d schema reference(s): %d hallucinated.",
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
		lines = append(lines, fmt.Sprintf("Ground truth (%s): %d model(s).",
			analysis.SchemaPath, len(analysis.Schema.ModelOrder)))
		for _, m := range analysis.Schema.ModelOrder {
			lines = append(lines, fmt.Sprintf("  %s: %s",
				m, strings.Join(analysis.Schema.FieldOrder[m], ", ")))
		}
		if enums := analysis.Schema.SortedEnums(); len(enums) > 0 {
			lines = append(lines, "Enums: "+strings.Join(enums, ", "))
		}
	}
	return lines
}

func (c *PrismaChecker) FormatFindings(result *schema.CheckerResult) (string, bool) {
	if result.Hallucinated == 0 {
		return "", false
	}
	var sb strings.Builder
	sb.WriteString("Schema references in the plan that do not exist in schema.prisma:\n")
	for _, h := range result.Hallucinations {
		fmt.Fprintf(&sb, "- %s (%s)", h.Raw, h.Category)
		if h.Suggestion != "" {
			fmt.Fprintf(&sb, "; closest match is %s", h.Suggestion)
		}
		sb.WriteByte('\n')
	}
	return sb.String(), true
}
