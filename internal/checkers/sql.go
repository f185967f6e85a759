package checkers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dshills/plancheck/internal/groundtruth"
	"github.com/dshills/plancheck/internal/match"
	"github.com/dshills/plancheck/internal/schema"
)

// sqlTableRefRe matches table positions in SQL-ish plan text.
var sqlTableRefRe = regexp.MustCompile(`(?i)\b(?:FROM|JOIN|INSERT\s+INTO|UPDATE|DELETE\s+FROM|TRUNCATE\s+TABLE)\s+["` + "`" + `]?(\w+)["` + "`" + `]?`)

// sqlColumnRefRe matches qualified column references: table.column.
var sqlColumnRefRe = regexp.MustCompile(`\b([a-z_]\w*)\.([a-z_]\w*)\b`)

// sqlKeywordTables are tokens sqlTableRefRe can capture that are never table
// names (e.g. "UPDATE users SET x" vs "FROM (SELECT").
var sqlKeywordTables = map[string]bool{
	"select": true,
	"where":  true,
	"values": true,
	"set":    true,
}

// SQLAnalysis is the checker-specific payload behind the SQL result.
type SQLAnalysis struct {
	Schema *groundtruth.SQLSchema
	Files  []string
	Valid  []string
}

// SQLChecker verifies table and column references in SQL-style plan text
// against CREATE TABLE definitions found in the project.
type SQLChecker struct{}

func (c *SQLChecker) ID() string          { return "sql" }
func (c *SQLChecker) DisplayName() string { return "SQL Tables" }
func (c *SQLChecker) CatchKey() string    { return "sqlTables" }
func (c *SQLChecker) Experimental() bool  { return false }

func (c *SQLChecker) Run(planText, projectDir string, opts map[string]string) (*schema.CheckerResult, error) {
	files := groundtruth.FindSQLFiles(projectDir)
	if rel := optValue(opts, "sqlPath"); rel != "" {
		files = []string{rel}
	}
	if len(files) == 0 {
		return schema.NotApplicable(c.ID()), nil
	}
	gt, ok := groundtruth.ParseSQLFiles(projectDir, files)
	if !ok {
		return schema.NotApplicable(c.ID()), nil
	}

	analysis := &SQLAnalysis{Schema: gt, Files: files}
	result := &schema.CheckerResult{CheckerID: c.ID(), Applicable: true, Analysis: analysis}

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

func (c *SQLChecker) FormatReport(result *schema.CheckerResult, projectDir string) []string {
	analysis, _ := result.Analysis.(*SQLAnalysis)
	lines := []string{
		fmt.Sprintf("Checked %d SQL reference(s): %d hallucinated.",
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
			strings.Join(analysis.Files, ", "), len(analysis.Schema.TableOrder)))
		for _, t := range analysis.Schema.TableOrder {
			lines = append(lines, fmt.Sprintf("  %s: %s",
				t, strings.Join(analysis.Schema.ColumnOrder[t], ", ")))
		}
	}
	return lines
}

func (c *SQLChecker) FormatFindings(result *schema.CheckerResult) (string, bool) {
	if result.Hallucinated == 0 {
		return "", false
	}
	var sb strings.Builder
	sb.WriteString("SQL tables/columns referenced by the plan but absent from the schema:\n")
	for _, h := range result.Hallucinations {
		fmt.Fprintf(&sb, "- %s (%s)", h.Raw, h.Category)
		if h.Suggestion != "" {
			fmt.Fprintf(&sb, "; closest match is %s", h.Suggestion)
		}
		sb.WriteByte('\n')
	}
	return sb.String(), true
}
