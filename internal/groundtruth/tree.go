// Package groundtruth builds per-artifact indexes from the actual project
// contents. Indexes are built fresh on every checker run from the current
// project state; nothing is cached across invocations. Every indexer
// tolerates missing or unparseable ground truth by reporting absence rather
// than failing, so a parse problem degrades a checker to not-applicable
// instead of producing false hallucinations.
package groundtruth

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// maxTreeDepth bounds directory traversal to keep I/O cost predictable on
// large trees.
const maxTreeDepth = 10

// defaultIgnore is the built-in set of directory names never indexed:
// dependency directories, build output, VCS metadata, and plancheck's own
// state directory. Matching is against base names only.
var defaultIgnore = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	".next":        true,
	"__pycache__":  true,
	".plancheck":   true,
}

// Tree is the file-path ground truth for a project.
type Tree struct {
	// Paths holds every indexed file path relative to the root, using forward
	// slashes, in the deterministic lexical order produced by the walk.
	Paths []string

	set  map[string]bool
	dirs map[string]bool
}

// Contains reports whether rel is an indexed file.
func (t *Tree) Contains(rel string) bool {
	return t.set[rel]
}

// ContainsDir reports whether rel is a directory that exists in the tree.
func (t *Tree) ContainsDir(rel string) bool {
	return t.dirs[rel]
}

// BuildTree walks root and indexes every file not excluded by the built-in
// ignore set, the project's .gitignore directory entries, or extraIgnore.
// Traversal is depth-bounded.
func BuildTree(root string, extraIgnore []string) (*Tree, error) {
	ignore := make(map[string]bool, len(extraIgnore))
	for _, name := range extraIgnore {
		ignore[name] = true
	}
	for _, name := range loadGitignoreDirs(root) {
		ignore[name] = true
	}

	t := &Tree{
		set:  make(map[string]bool),
		dirs: make(map[string]bool),
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A root-level failure means there is no ground truth at all;
			// report it so callers can degrade instead of seeing an empty tree.
			if d == nil {
				return err
			}
			// Unreadable entries below the root are skipped, not fatal.
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				return nil
			}
			if defaultIgnore[d.Name()] || ignore[d.Name()] {
				return fs.SkipDir
			}
			if strings.Count(rel, "/")+1 > maxTreeDepth {
				return fs.SkipDir
			}
			t.dirs[rel] = true
			return nil
		}

		t.Paths = append(t.Paths, rel)
		t.set[rel] = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// loadGitignoreDirs reads the project's top-level .gitignore and returns
// entries that name a directory (trailing slash or bare name without glob
// metacharacters). Full gitignore glob semantics are out of scope; this
// honors the common case of ignoring build and cache directories.
func loadGitignoreDirs(root string) []string {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	defer f.Close()

	var dirs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		line = strings.TrimSuffix(line, "/")
		if line == "" || strings.ContainsAny(line, "*?[") || strings.Contains(line, "/") {
			continue
		}
		dirs = append(dirs, line)
	}
	return dirs
}

// TreeSummary renders the file list as an indented text block for LLM
// context. Paths appear in index order.
func (t *Tree) TreeSummary() string {
	var sb strings.Builder
	sb.WriteString("=== Project Files ===\n")
	for _, p := range t.Paths {
		sb.WriteString("  ")
		sb.WriteString(p)
		sb.WriteByte('\n')
	}
	return sb.String()
}
