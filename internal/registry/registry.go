// Package registry holds the process-wide collection of checkers. It is
// populated once at startup, frozen, and read-only thereafter; registration
// order defines output ordering in combined reports.
package registry

import (
	"fmt"

	"github.com/dshills/plancheck/internal/schema"
)

// Checker is the closed contract every analyzer implements.
type Checker interface {
	// ID is the unique registry key.
	ID() string
	// DisplayName is the human-facing heading used in reports.
	DisplayName() string
	// CatchKey is the fixed key this checker occupies in telemetry entries.
	CatchKey() string
	// Experimental checkers are excluded from List unless requested.
	Experimental() bool

	// Run extracts references from planText, indexes ground truth under
	// projectDir, and classifies each reference. opts carries checker-specific
	// overrides (e.g. an explicit schema file path); nil uses defaults.
	Run(planText, projectDir string, opts map[string]string) (*schema.CheckerResult, error)

	// FormatReport renders the verbose combined-report section for result,
	// one line per element, including every ground-truth entry.
	FormatReport(result *schema.CheckerResult, projectDir string) []string

	// FormatFindings renders the compact findings block fed to the reviewer.
	// ok is false when the checker found nothing worth reporting.
	FormatFindings(result *schema.CheckerResult) (text string, ok bool)
}

// DuplicateCheckerError reports a second registration under an existing id.
// This is a startup configuration defect and aborts the process.
type DuplicateCheckerError struct {
	ID string
}

func (e *DuplicateCheckerError) Error() string {
	return fmt.Sprintf("registry: checker %q already registered", e.ID)
}

// Registry is an append-and-freeze ordered collection of checkers.
type Registry struct {
	ordered []Checker
	byID    map[string]Checker
	frozen  bool
}

// New returns an empty, unfrozen registry.
func New() *Registry {
	return &Registry{byID: make(map[string]Checker)}
}

// Register appends c in registration order. It returns a
// *DuplicateCheckerError if c's id is taken, or an error if the registry has
// been frozen.
func (r *Registry) Register(c Checker) error {
	if r.frozen {
		return fmt.Errorf("registry: register %q: registry is frozen", c.ID())
	}
	if _, exists := r.byID[c.ID()]; exists {
		return &DuplicateCheckerError{ID: c.ID()}
	}
	r.byID[c.ID()] = c
	r.ordered = append(r.ordered, c)
	return nil
}

// Freeze marks the registry read-only. Further Register calls fail.
func (r *Registry) Freeze() {
	r.frozen = true
}

// List returns checkers in registration order, filtering out experimental
// checkers unless includeExperimental is set.
func (r *Registry) List(includeExperimental bool) []Checker {
	out := make([]Checker, 0, len(r.ordered))
	for _, c := range r.ordered {
		if c.Experimental() && !includeExperimental {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Get returns the checker registered under id.
func (r *Registry) Get(id string) (Checker, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// Len returns the number of registered checkers, experimental included.
func (r *Registry) Len() int {
	return len(r.ordered)
}

// defaultRegistry is the process-wide registry. It is populated by the
// startup routine (checkers.RegisterAll) and frozen before first use.
var defaultRegistry = New()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}
