// Package checkers implements the concrete analyzers that cross-reference
// plan text against project ground truth. Each checker composes the shared
// extraction pipeline, its ground-truth indexer, and the fuzzy suggestion
// matcher behind the uniform registry.Checker contract.
//
// Checkers are stateless: every Run builds its index fresh from the current
// project state, so repeated runs against unchanged inputs yield identical
// results.
package checkers

import (
	"fmt"

	"github.com/dshills/plancheck/internal/registry"
)

// RegisterAll populates reg with every known checker in the canonical order.
// Registration order is load-bearing: it defines section ordering in
// combined reports and findings output. A duplicate id is a startup defect
// and surfaces as a *registry.DuplicateCheckerError.
func RegisterAll(reg *registry.Registry) error {
	all := []registry.Checker{
		&PathsChecker{},
		&EnvChecker{},
		&PrismaChecker{},
		&SQLChecker{},
		&ImportsChecker{},
		&RoutesChecker{},
		// Experimental checkers register last and are opt-in.
		&DrizzleChecker{},
		&PackageAPIChecker{},
	}
	for _, c := range all {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("checkers: register all: %w", err)
		}
	}
	return nil
}

// optValue returns opts[key] or "" when opts is nil or the key is absent.
func optValue(opts map[string]string, key string) string {
	if opts == nil {
		return ""
	}
	return opts[key]
}
