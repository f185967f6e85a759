package groundtruth

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// envFileNames are the recognized environment-file variants, checked in the
// project root in this order.
var envFileNames = []string{
	".env",
	".env.local",
	".env.development",
	".env.development.local",
	".env.production",
	".env.test",
	".env.example",
}

// EnvIndex is the environment-variable ground truth: the union of keys
// defined across every recognized env file in the project root.
type EnvIndex struct {
	// Keys pins iteration order: file order above, then line order.
	Keys []string
	// Files lists the env files that contributed, relative to the root.
	Files []string

	set map[string]bool
}

// Defined reports whether name is defined by any env file.
func (e *EnvIndex) Defined(name string) bool {
	return e.set[name]
}

// BuildEnvIndex scans root for recognized env files. ok is false when no env
// file exists, which makes the env checker not applicable — an absent ground
// truth is never treated as authoritative emptiness.
func BuildEnvIndex(root string) (*EnvIndex, bool) {
	idx := &EnvIndex{set: make(map[string]bool)}
	for _, name := range envFileNames {
		path := filepath.Join(root, name)
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		idx.Files = append(idx.Files, name)
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			line = strings.TrimPrefix(line, "export ")
			eq := strings.IndexByte(line, '=')
			if eq <= 0 {
				continue
			}
			key := strings.TrimSpace(line[:eq])
			if key == "" || idx.set[key] {
				continue
			}
			idx.set[key] = true
			idx.Keys = append(idx.Keys, key)
		}
		f.Close()
	}
	if len(idx.Files) == 0 {
		return nil, false
	}
	return idx, true
}
