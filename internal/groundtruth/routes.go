package groundtruth

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// RouteEntry is one registration of an HTTP route in project source.
type RouteEntry struct {
	Method   string // upper-case HTTP method
	FilePath string // relative source file
}

// RouteIndex is the route ground truth scanned from source files.
type RouteIndex struct {
	// Routes maps URL path to its registrations.
	Routes map[string][]RouteEntry
	// PathOrder pins iteration order: file lexical order, then match order.
	PathOrder []string
}

// routeCallRe matches Express/Fastify-style registrations:
// app.get('/users', ...), router.post("/users/:id", ...).
var routeCallRe = regexp.MustCompile(`\b(?:app|router|server|api|fastify)\.(get|post|put|patch|delete|options|head|all)\s*\(\s*['"` + "`" + `](/[^'"` + "`" + `]*)['"` + "`" + `]`)

// routeSourceExts are the file extensions scanned for registrations.
var routeSourceExts = map[string]bool{
	".js":  true,
	".jsx": true,
	".ts":  true,
	".tsx": true,
	".mjs": true,
	".cjs": true,
}

// maxRouteFileSize bounds per-file reads during the route scan.
const maxRouteFileSize = 1 << 20 // 1 MB

// BuildRouteIndex scans source files under root for route-registration
// calls. ok is false when no registration was found anywhere, which makes
// the route checker not applicable.
func BuildRouteIndex(root string) (*RouteIndex, bool) {
	tree, err := BuildTree(root, nil)
	if err != nil {
		return nil, false
	}

	idx := &RouteIndex{Routes: make(map[string][]RouteEntry)}
	for _, rel := range tree.Paths {
		if !routeSourceExts[filepath.Ext(rel)] {
			continue
		}
		full := filepath.Join(root, filepath.FromSlash(rel))
		if info, statErr := os.Stat(full); statErr != nil || info.Size() > maxRouteFileSize {
			continue
		}
		data, readErr := os.ReadFile(full)
		if readErr != nil {
			continue
		}
		for _, m := range routeCallRe.FindAllStringSubmatch(string(data), -1) {
			method := strings.ToUpper(m[1])
			path := m[2]
			if _, seen := idx.Routes[path]; !seen {
				idx.PathOrder = append(idx.PathOrder, path)
			}
			idx.Routes[path] = append(idx.Routes[path], RouteEntry{Method: method, FilePath: rel})
		}
	}
	if len(idx.Routes) == 0 {
		return nil, false
	}
	return idx, true
}

// Allows reports whether path is registered and, if method is non-empty,
// whether that method is allowed on it. "ALL" registrations allow any method.
func (idx *RouteIndex) Allows(path, method string) (pathKnown, methodAllowed bool) {
	entries, ok := idx.Routes[path]
	if !ok {
		return false, false
	}
	if method == "" {
		return true, true
	}
	for _, e := range entries {
		if e.Method == method || e.Method == "ALL" {
			return true, true
		}
	}
	return true, false
}
