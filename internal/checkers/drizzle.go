package checkers

import (
	"fmt"
	"strings"

	"github.com/dshills/plancheck/internal/groundtruth"
	"github.com/dshills/plancheck/internal/match"
	"github.com/dshills/plancheck/internal/schema"
)

// DrizzleAnalysis is the checker-specific payload behind the alternate
// schema-source result.
type DrizzleAnalysis struct {
	Schema     *groundtruth.DrizzleSchema
	SchemaPath string
	Valid      []string
}

// DrizzleChecker verifies table and column references against Drizzle-style
// table definitions in TypeScript source. Experimental: projects that define
// their schema in both SQL and TypeScript would see doubled findings, so it
// is opt-in.
type DrizzleChecker struct{}

func (c *DrizzleChecker) ID() string          { return "dbschema" }
func (c *DrizzleChecker) DisplayName() string { return "DB Schema (TypeScript)" }
func (c *DrizzleChecker) CatchKey() string    { return "dbSchema" }
func (c *DrizzleChecker) Experimental() bool  { return true }

func (c *DrizzleChecker) Run(planText, projectDir string, opts map[string]string) (*schema.CheckerResult, error) {
	rel := optValue(opts, "schemaPath")
	if rel == "" {
		rel = groundtruth.FindDrizzleSchema(projectDir)
	}
	if rel == "" {
		return schema.NotApplicable(c.ID()), nil
	}
	gt, ok := groundtruth.ParseDrizzleFile(projectDir, rel)
	if !ok {
		return schema.NotApplicable(c.ID()), nil
	}

	analysis := &DrizzleAnalysis{Schema: gt, SchemaPath: rel}
	result := &schema.CheckerResult{CheckerID: c.ID(), Applicable: true, Analysis: analysis}

	// Reference shapes are shared with the SQL checker: table positions in
	// SQL-ish text plus qualified column pairs.
	seen := make(map[string]bool)
	for _, m := range sqlTableRefRe.FindAllStringSubmatch(planText, -1) {
		table := strings.ToLower(m[1])
		if sqlKeywordTables[table] || seen["t:"+table] {
			continue
		}
		seen["t:"+table] = true
		result.CheckedRefs++
		if _, ok := gt.Tables[table]; ok {
			analysis.Valid = append(analysis.Valid, table)
			continue
		}
		h := schema.Hallucination{Raw: table, Category: schema.CategoryTable}
		if s, ok := match.Closest(table, gt.TableOrder); ok {
			h.Suggestion = s
		}
		result.Hallucinations = append(result.Hallucinations, h)
	}
	for _, m := range sqlColumnRefRe.FindAllStringSubmatch(planText, -1) {
		table, column := strings.ToLower(m[1]), strings.ToLower(m[2])
		cols, known := gt.Tables[table]
		if !known {
			continue
		}
		ref := table + "." + column
		if seen["c:"+ref] {
			continue
		}
		seen["c:"+ref] = true
		result.CheckedRefs++
		if cols[column] {
			analysis.Valid = append(analysis.Valid, ref)
			continue
		}
		h := schema.Hallucination{Raw: ref, Category: schema.CategoryColumn}
		if s, ok := match.Closest(column, gt.ColumnOrder[table]); ok {
			h.Suggestion = table + "." + s
		}
		result.Hallucinations = append(result.Hallucinations, h)
	}

	result.Hallucinated = len(result.Hallucinations)
	return result, nil
}

func (c *DrizzleChecker) FormatReport(result *schema.CheckerResult, projectDir string) []string {
	analysis, _ := result.Analysis.(*DrizzleAnalysis)
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
		lines = append(lines, fmt.Sprintf("Ground truth (%s): %d table(s).",
			analysis.SchemaPath, len(analysis.Schema.TableOrder)))
		for _, t := range analysis.Schema.TableOrder {
			lines = append(lines, fmt.Sprintf("  %s: %s",
				t, strings.Join(analysis.Schema.ColumnOrder[t], ", ")))
		}
	}
	return lines
}

func (c *DrizzleChecker) FormatFindings(result *schema.CheckerResult) (string, bool) {
	if result.Hallucinated == 0 {
		return "", false
	}
	var sb strings.Builder
	sb.WriteString("Tables/columns referenced by the plan but absent from the TypeScript schema:\n")
	for _, h := range result.Hallucinations {
		fmt.Fprintf(&sb, "- %s (%s)", h.Raw, h.Category)
		if h.Suggestion != "" {
			fmt.Fprintf(&sb, "; closest match is %s", h.Suggestion)
		}
		sb.WriteByte('\n')
	}
	return sb.String(), true
}
