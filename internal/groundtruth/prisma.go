package groundtruth

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// PrismaSchema is the ORM ground truth parsed from a schema.prisma file.
type PrismaSchema struct {
	// Models maps model name to its field-name set.
	Models map[string]map[string]bool
	// ModelOrder pins iteration order for deterministic suggestions.
	ModelOrder []string
	// FieldOrder pins per-model field order as declared in the file.
	FieldOrder map[string][]string
	// Enums is the set of declared enum names.
	Enums map[string]bool
}

// prismaDefaultPaths are the schema locations tried when no explicit path is
// given, in order.
var prismaDefaultPaths = []string{
	"prisma/schema.prisma",
	"schema.prisma",
	"db/schema.prisma",
}

var (
	prismaBlockRe = regexp.MustCompile(`(?ms)^(model|enum)\s+(\w+)\s*\{(.*?)^\}`)
	prismaFieldRe = regexp.MustCompile(`^\s*(\w+)\s+\S+`)
)

// FindPrismaSchema returns the first existing default schema path relative to
// root, or "" when none exists.
func FindPrismaSchema(root string) string {
	for _, rel := range prismaDefaultPaths {
		if _, err := os.Stat(filepath.Join(root, rel)); err == nil {
			return rel
		}
	}
	return ""
}

// ParsePrismaFile reads and parses the schema at root/rel.
// ok is false when the file is missing or yields no models, in which case the
// ORM checker is not applicable.
func ParsePrismaFile(root, rel string) (*PrismaSchema, bool) {
	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		return nil, false
	}
	return ParsePrisma(string(data))
}

// ParsePrisma parses declarative schema text into model/field and enum sets.
func ParsePrisma(content string) (*PrismaSchema, bool) {
	s := &PrismaSchema{
		Models:     make(map[string]map[string]bool),
		FieldOrder: make(map[string][]string),
		Enums:      make(map[string]bool),
	}
	for _, m := range prismaBlockRe.FindAllStringSubmatch(content, -1) {
		kind, name, body := m[1], m[2], m[3]
		if kind == "enum" {
			s.Enums[name] = true
			continue
		}
		fields := make(map[string]bool)
		var order []string
		for _, line := range strings.Split(body, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "@@") {
				continue
			}
			fm := prismaFieldRe.FindStringSubmatch(line)
			if fm == nil {
				continue
			}
			if !fields[fm[1]] {
				fields[fm[1]] = true
				order = append(order, fm[1])
			}
		}
		if _, dup := s.Models[name]; !dup {
			s.ModelOrder = append(s.ModelOrder, name)
		}
		s.Models[name] = fields
		s.FieldOrder[name] = order
	}
	if len(s.Models) == 0 {
		return nil, false
	}
	return s, true
}

// Accessor returns the Prisma client accessor for a model name
// (model User → prisma.user).
func Accessor(model string) string {
	if model == "" {
		return ""
	}
	r := []rune(model)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// AccessorModels maps each client accessor name to its model name.
// Keys iterate deterministically via ModelOrder.
func (s *PrismaSchema) AccessorModels() map[string]string {
	out := make(map[string]string, len(s.ModelOrder))
	for _, m := range s.ModelOrder {
		out[Accessor(m)] = m
	}
	return out
}

// SortedEnums returns enum names in sorted order.
func (s *PrismaSchema) SortedEnums() []string {
	out := make([]string, 0, len(s.Enums))
	for e := range s.Enums {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
