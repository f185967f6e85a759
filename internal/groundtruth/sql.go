package groundtruth

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// SQLSchema is the table ground truth parsed from CREATE TABLE statements.
type SQLSchema struct {
	// Tables maps table name (lowercased) to its column-name set.
	Tables map[string]map[string]bool
	// TableOrder pins iteration order: file path order, then statement order.
	TableOrder []string
	// ColumnOrder pins per-table column order as declared.
	ColumnOrder map[string][]string
}

var (
	createTableRe = regexp.MustCompile(`(?is)CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?["` + "`" + `]?(\w+)["` + "`" + `]?\s*\((.*?)\)\s*;`)
	sqlColumnRe   = regexp.MustCompile(`(?m)^\s*["` + "`" + `]?(\w+)["` + "`" + `]?\s+\w+`)
)

// sqlConstraintKeywords start table-level constraint lines, not columns.
var sqlConstraintKeywords = map[string]bool{
	"primary":    true,
	"foreign":    true,
	"unique":     true,
	"constraint": true,
	"check":      true,
	"index":      true,
	"key":        true,
}

// FindSQLFiles returns .sql files under root (depth-bounded by the tree
// walk), in lexical order.
func FindSQLFiles(root string) []string {
	tree, err := BuildTree(root, nil)
	if err != nil {
		return nil
	}
	var out []string
	for _, p := range tree.Paths {
		if strings.HasSuffix(p, ".sql") {
			out = append(out, p)
		}
	}
	return out
}

// ParseSQLFiles parses every given file (relative to root) into one combined
// schema. ok is false when no table definitions were found.
func ParseSQLFiles(root string, files []string) (*SQLSchema, bool) {
	s := &SQLSchema{
		Tables:      make(map[string]map[string]bool),
		ColumnOrder: make(map[string][]string),
	}
	for _, rel := range files {
		data, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			continue
		}
		s.parseStatements(string(data))
	}
	if len(s.Tables) == 0 {
		return nil, false
	}
	return s, true
}

// ParseSQL parses table-definition statements from a single SQL text.
func ParseSQL(content string) (*SQLSchema, bool) {
	s := &SQLSchema{
		Tables:      make(map[string]map[string]bool),
		ColumnOrder: make(map[string][]string),
	}
	s.parseStatements(content)
	if len(s.Tables) == 0 {
		return nil, false
	}
	return s, true
}

func (s *SQLSchema) parseStatements(content string) {
	for _, m := range createTableRe.FindAllStringSubmatch(content, -1) {
		table := strings.ToLower(m[1])
		body := m[2]

		cols, exists := s.Tables[table]
		if !exists {
			cols = make(map[string]bool)
			s.Tables[table] = cols
			s.TableOrder = append(s.TableOrder, table)
		}
		for _, cm := range sqlColumnRe.FindAllStringSubmatch(body, -1) {
			col := strings.ToLower(cm[1])
			if sqlConstraintKeywords[col] || cols[col] {
				continue
			}
			cols[col] = true
			s.ColumnOrder[table] = append(s.ColumnOrder[table], col)
		}
	}
}
