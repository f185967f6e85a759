// Package match proposes the closest valid identifier for a hallucinated
// reference. The policy is deliberately cheap and explainable rather than
// globally optimal: lowercase substring containment in either direction, and
// for paths a same-basename/different-directory preference. Candidates are
// consulted in the caller-pinned order and the first hit wins, keeping
// suggestions deterministic across ground-truth rebuilds.
package match

import (
	"path"
	"strings"
)

// Closest returns the first candidate whose lowercase form contains, or is
// contained by, the lowercase form of target. ok is false when no candidate
// qualifies. Exact matches are excluded; a valid reference never needs a
// suggestion.
func Closest(target string, candidates []string) (suggestion string, ok bool) {
	lower := strings.ToLower(target)
	if lower == "" {
		return "", false
	}
	for _, cand := range candidates {
		cl := strings.ToLower(cand)
		if cl == lower {
			continue
		}
		if strings.Contains(cl, lower) || strings.Contains(lower, cl) {
			return cand, true
		}
	}
	return "", false
}

// PathSuggestion is a path match with its directory-mismatch signal.
type PathSuggestion struct {
	Path string
	// DirMismatch is set when the suggestion shares the target's basename but
	// lives in a different directory.
	DirMismatch bool
}

// ClosestPath suggests a known path for a hallucinated one. Candidates
// sharing the target's basename but a different directory are preferred,
// surfacing the directory-mismatch signal; otherwise containment applies.
func ClosestPath(target string, candidates []string) (PathSuggestion, bool) {
	base := strings.ToLower(path.Base(target))
	lowerTarget := strings.ToLower(target)

	for _, cand := range candidates {
		if strings.ToLower(path.Base(cand)) == base && strings.ToLower(cand) != lowerTarget {
			return PathSuggestion{Path: cand, DirMismatch: true}, true
		}
	}
	if s, ok := Closest(target, candidates); ok {
		return PathSuggestion{Path: s}, true
	}
	return PathSuggestion{}, false
}
