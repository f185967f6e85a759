package groundtruth

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DrizzleSchema is the alternate schema-source ground truth, parsed from
// Drizzle-style table definitions in TypeScript source.
type DrizzleSchema struct {
	// Tables maps table name (lowercased) to its column-name set.
	Tables map[string]map[string]bool
	// TableOrder pins iteration order: file order, then definition order.
	TableOrder []string
	// ColumnOrder pins per-table column order as declared.
	ColumnOrder map[string][]string
}

// drizzleTableRe matches pgTable/mysqlTable/sqliteTable definitions and
// captures the table name and the column object body.
var drizzleTableRe = regexp.MustCompile(`(?s)\b(?:pgTable|mysqlTable|sqliteTable)\s*\(\s*['"](\w+)['"]\s*,\s*\{(.*?)\n\s*\}`)

// drizzleColumnRe captures column keys inside a table's column object.
var drizzleColumnRe = regexp.MustCompile(`(?m)^\s*(\w+)\s*:`)

// drizzleCandidatePaths are the schema file locations tried in order.
var drizzleCandidatePaths = []string{
	"src/db/schema.ts",
	"db/schema.ts",
	"src/schema.ts",
	"drizzle/schema.ts",
}

// FindDrizzleSchema returns the first existing candidate schema path relative
// to root, or "" when none exists.
func FindDrizzleSchema(root string) string {
	for _, rel := range drizzleCandidatePaths {
		if _, err := os.Stat(filepath.Join(root, rel)); err == nil {
			return rel
		}
	}
	return ""
}

// ParseDrizzleFile reads and parses the schema at root/rel. ok is false when
// the file is missing or defines no tables.
func ParseDrizzleFile(root, rel string) (*DrizzleSchema, bool) {
	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		return nil, false
	}
	return ParseDrizzle(string(data))
}

// ParseDrizzle parses table definitions from TypeScript source text.
func ParseDrizzle(content string) (*DrizzleSchema, bool) {
	s := &DrizzleSchema{
		Tables:      make(map[string]map[string]bool),
		ColumnOrder: make(map[string][]string),
	}
	for _, m := range drizzleTableRe.FindAllStringSubmatch(content, -1) {
		table := strings.ToLower(m[1])
		cols, exists := s.Tables[table]
		if !exists {
			cols = make(map[string]bool)
			s.Tables[table] = cols
			s.TableOrder = append(s.TableOrder, table)
		}
		for _, cm := range drizzleColumnRe.FindAllStringSubmatch(m[2], -1) {
			col := strings.ToLower(cm[1])
			if cols[col] {
				continue
			}
			cols[col] = true
			s.ColumnOrder[table] = append(s.ColumnOrder[table], col)
		}
	}
	if len(s.Tables) == 0 {
		return nil, false
	}
	return s, true
}
