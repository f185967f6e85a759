package groundtruth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// PackageIndex is the import ground truth built from the project's
// package.json and installed-package metadata under node_modules.
type PackageIndex struct {
	root string

	// Declared pins the order of declared dependency names: dependencies
	// first, then devDependencies, each in sorted order.
	Declared []string

	declared map[string]bool
}

// packageManifest is the subset of package.json plancheck reads.
type packageManifest struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	Main            string            `json:"main"`
	Module          string            `json:"module"`
	Exports         json.RawMessage   `json:"exports"`
}

// BuildPackageIndex reads root/package.json. ok is false when the manifest is
// missing or unparseable, which makes import checkers not applicable.
func BuildPackageIndex(root string) (*PackageIndex, bool) {
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return nil, false
	}
	var m packageManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false
	}

	idx := &PackageIndex{root: root, declared: make(map[string]bool)}
	for _, deps := range []map[string]string{m.Dependencies, m.DevDependencies} {
		names := make([]string, 0, len(deps))
		for name := range deps {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if !idx.declared[name] {
				idx.declared[name] = true
				idx.Declared = append(idx.Declared, name)
			}
		}
	}
	return idx, true
}

// PackageName splits an import specifier into its package name and subpath.
// Scoped specifiers keep both segments ("@scope/pkg/sub" → "@scope/pkg", "sub").
func PackageName(specifier string) (name, subpath string) {
	parts := strings.Split(specifier, "/")
	if strings.HasPrefix(specifier, "@") && len(parts) >= 2 {
		name = parts[0] + "/" + parts[1]
		subpath = strings.Join(parts[2:], "/")
		return name, subpath
	}
	name = parts[0]
	subpath = strings.Join(parts[1:], "/")
	return name, subpath
}

// Resolves reports whether the package behind specifier exists: either
// declared in package.json or physically installed under node_modules.
func (idx *PackageIndex) Resolves(specifier string) bool {
	name, _ := PackageName(specifier)
	if idx.declared[name] {
		return true
	}
	_, err := os.Stat(filepath.Join(idx.root, "node_modules", filepath.FromSlash(name), "package.json"))
	return err == nil
}

// SubpathExported reports whether the subpath of specifier is reachable.
// Packages without an installed manifest or without an "exports" map accept
// any subpath (pre-exports packages expose their whole tree); inspect is
// false in that case since nothing was verified.
func (idx *PackageIndex) SubpathExported(specifier string) (exported, inspect bool) {
	name, subpath := PackageName(specifier)
	if subpath == "" {
		return true, false
	}
	m, ok := idx.installedManifest(name)
	if !ok || len(m.Exports) == 0 {
		return true, false
	}
	var exports map[string]json.RawMessage
	if err := json.Unmarshal(m.Exports, &exports); err != nil {
		// "exports": "./index.js" — a single string exports only the root.
		return false, true
	}
	want := "./" + subpath
	for key := range exports {
		if key == want {
			return true, true
		}
		// Wildcard subpath patterns ("./lib/*").
		if strings.HasSuffix(key, "/*") && strings.HasPrefix(want, strings.TrimSuffix(key, "*")) {
			return true, true
		}
	}
	return false, true
}

// jsExportNameRe captures named exports from a CommonJS or ESM entry file.
var jsExportNameRe = regexp.MustCompile(`(?m)\bexports?\.(\w+)\s*=|\bexport\s+(?:async\s+)?(?:function|class|const|let|var)\s+(\w+)|\bexport\s*\{([^}]*)\}`)

// ExportedMembers scans the installed package's entry file for exported
// member names. ok is false when the package or its entry file cannot be
// read; the caller must treat that as unverifiable, not as absence.
func (idx *PackageIndex) ExportedMembers(name string) (map[string]bool, bool) {
	m, found := idx.installedManifest(name)
	if !found {
		return nil, false
	}
	entry := m.Main
	if entry == "" {
		entry = m.Module
	}
	if entry == "" {
		entry = "index.js"
	}
	data, err := os.ReadFile(filepath.Join(idx.root, "node_modules", filepath.FromSlash(name), filepath.FromSlash(entry)))
	if err != nil {
		return nil, false
	}

	members := make(map[string]bool)
	for _, match := range jsExportNameRe.FindAllStringSubmatch(string(data), -1) {
		switch {
		case match[1] != "":
			members[match[1]] = true
		case match[2] != "":
			members[match[2]] = true
		case match[3] != "":
			for _, part := range strings.Split(match[3], ",") {
				part = strings.TrimSpace(part)
				// "orig as alias" exports the alias.
				if as := strings.Split(part, " as "); len(as) == 2 {
					part = strings.TrimSpace(as[1])
				}
				if part != "" {
					members[part] = true
				}
			}
		}
	}
	if len(members) == 0 {
		return nil, false
	}
	return members, true
}

func (idx *PackageIndex) installedManifest(name string) (*packageManifest, bool) {
	data, err := os.ReadFile(filepath.Join(idx.root, "node_modules", filepath.FromSlash(name), "package.json"))
	if err != nil {
		return nil, false
	}
	var m packageManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false
	}
	return &m, true
}
