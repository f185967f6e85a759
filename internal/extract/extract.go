// Package extract provides the shared candidate-extraction pipeline used by
// every checker: scan raw plan text with regex patterns, drop known
// false-positive shapes, and deduplicate preserving first-seen order.
// Extraction is deliberately textual, not semantic; it must tolerate partial
// and pseudocode plan text.
package extract

import (
	"regexp"
	"strings"
)

// RejectFn reports whether a candidate is a known false positive.
type RejectFn func(candidate string) bool

// Pipeline extracts candidate identifiers from free-form text.
//
// Each pattern must capture the identifier in group 1; patterns without a
// capture group contribute their full match.
type Pipeline struct {
	Patterns []*regexp.Regexp
	Reject   []RejectFn
}

// Extract runs the pipeline over text. Candidates are emitted in first-seen
// order with duplicates removed; rejected candidates never appear.
func (p Pipeline) Extract(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, re := range p.Patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			cand := m[0]
			if len(m) > 1 {
				cand = m[1]
			}
			if cand == "" || seen[cand] {
				continue
			}
			seen[cand] = true
			if p.rejected(cand) {
				continue
			}
			out = append(out, cand)
		}
	}
	return out
}

func (p Pipeline) rejected(cand string) bool {
	for _, fn := range p.Reject {
		if fn(cand) {
			return true
		}
	}
	return false
}

// semverRe matches semantic-version-like tokens (1.2.3, v2.0.0-rc.1).
var semverRe = regexp.MustCompile(`^v?\d+\.\d+(?:\.\d+)?(?:[-+][\w.]+)?$`)

// IsURL rejects tokens that are (part of) a URL.
func IsURL(cand string) bool {
	return strings.Contains(cand, "://")
}

// IsSemver rejects semantic-version-like tokens, which path patterns
// otherwise pick up as dotted file names.
func IsSemver(cand string) bool {
	return semverRe.MatchString(cand)
}

// vendoredPrefixes are third-party or generated path roots that plans may
// legitimately mention without the files being project ground truth.
var vendoredPrefixes = []string{
	"node_modules/",
	"vendor/",
	"dist/",
	"build/",
	".git/",
	"__pycache__/",
}

// IsVendored rejects paths under vendored or generated directories.
func IsVendored(cand string) bool {
	for _, p := range vendoredPrefixes {
		if strings.HasPrefix(cand, p) || strings.Contains(cand, "/"+p) {
			return true
		}
	}
	return false
}

// DefaultRejects is the reject-list shared by path-like extractions.
var DefaultRejects = []RejectFn{IsURL, IsSemver, IsVendored}

// ContextLine returns the full text line containing the first occurrence of
// ref in text, or "" when ref is absent. Checkers use it to classify a
// reference by its surrounding wording (e.g. creation verbs).
func ContextLine(text, ref string) string {
	idx := strings.Index(text, ref)
	if idx < 0 {
		return ""
	}
	start := strings.LastIndexByte(text[:idx], '\n') + 1
	end := strings.IndexByte(text[idx:], '\n')
	if end < 0 {
		return text[start:]
	}
	return text[start : idx+end]
}
