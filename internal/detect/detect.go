// Package detect decides whether a reviewer's free-text output caught a
// known-hallucinated path. Four heuristics run in strictly decreasing
// confidence order — direct, sentiment, section, directory — expressed as an
// ordered list of independent pure predicates; the first hit wins and later
// tiers never run.
//
// Used only for benchmarking. The directory-correction tier and the path
// suggestion matcher deliberately do not interact: a directory hit here
// never feeds back into a checker's suggestion field.
package detect

import (
	"path"
	"regexp"
	"strings"

	"github.com/dshills/plancheck/internal/schema"
)

// sentimentWindow is the number of lines inspected on each side of a line
// that mentions the filename.
const sentimentWindow = 2

// negativePhrases are the corrective phrases the sentiment tier looks for
// inside a lowercased window.
var negativePhrases = []string{
	"does not exist",
	"doesn't exist",
	"not found",
	"no such file",
	"cannot find",
	"can't find",
	"should be",
	"instead of",
	"incorrect",
	"wrong path",
	"invalid path",
	"missing",
	"hallucinat",
}

// sectionPatterns are the lowercase substrings that mark a heading or bolded
// label as a warning/corrective section.
var sectionPatterns = []string{
	"concern",
	"issue",
	"problem",
	"warning",
	"incorrect path",
	"invalid path",
	"correction",
	"security",
	"error",
	"missing file",
	"hallucination",
}

// input is the precomputed view of one evaluation shared by all tiers.
type input struct {
	path       string
	filename   string
	output     string
	lines      []string
	lowerLines []string
	existing   []string
}

// tier pairs a detection method with its pure predicate.
type tier struct {
	method schema.DetectionMethod
	match  func(in *input) bool
}

// tiers run in this fixed order; earlier entries are higher confidence.
var tiers = []tier{
	{schema.MethodDirect, matchDirect},
	{schema.MethodSentiment, matchSentiment},
	{schema.MethodSection, matchSection},
	{schema.MethodDirectory, matchDirectory},
}

// Evaluate scores one hallucinated path against the reviewer output.
// existingFiles is the set of actually-existing project files, consulted only
// by the directory-correction tier.
func Evaluate(hallucinated, output string, existingFiles []string) schema.PathDetection {
	lines := strings.Split(output, "\n")
	lower := make([]string, len(lines))
	for i, l := range lines {
		lower[i] = strings.ToLower(l)
	}
	in := &input{
		path:       hallucinated,
		filename:   path.Base(hallucinated),
		output:     output,
		lines:      lines,
		lowerLines: lower,
		existing:   existingFiles,
	}
	for _, t := range tiers {
		if t.match(in) {
			return schema.PathDetection{Path: hallucinated, Detected: true, Method: t.method}
		}
	}
	return schema.PathDetection{Path: hallucinated}
}

// EvaluateAll scores every hallucinated path independently.
func EvaluateAll(hallucinated []string, output string, existingFiles []string) []schema.PathDetection {
	out := make([]schema.PathDetection, len(hallucinated))
	for i, p := range hallucinated {
		out[i] = Evaluate(p, output, existingFiles)
	}
	return out
}

// matchDirect: the exact hallucinated path appears verbatim.
func matchDirect(in *input) bool {
	return strings.Contains(in.output, in.path)
}

// matchSentiment: the filename appears on some line and a corrective phrase
// appears within that line plus sentimentWindow lines on either side.
func matchSentiment(in *input) bool {
	lowerName := strings.ToLower(in.filename)
	for i, line := range in.lowerLines {
		if !strings.Contains(line, lowerName) {
			continue
		}
		start := max(0, i-sentimentWindow)
		end := min(len(in.lowerLines), i+sentimentWindow+1)
		window := strings.Join(in.lowerLines[start:end], "\n")
		for _, phrase := range negativePhrases {
			if strings.Contains(window, phrase) {
				return true
			}
		}
	}
	return false
}

// headingRe matches a markdown heading and captures its marker and title.
var headingRe = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)

// boldLabelRe matches a line that is only a bolded label ("**Concerns**" or
// "**Concerns:**").
var boldLabelRe = regexp.MustCompile(`^\*\*([^*]+?):?\*\*:?\s*$`)

// boldLabelLevel is the heading level assigned to bolded labels so that any
// following real heading closes their section.
const boldLabelLevel = 6

// marker is a recognized section boundary in the output.
type marker struct {
	line    int
	level   int
	title   string
	warning bool
}

// matchSection: a warning/corrective heading exists and the text spanning
// from it to the next heading of equal-or-higher level mentions the full
// path or its filename.
func matchSection(in *input) bool {
	markers := scanMarkers(in.lines)
	for i, m := range markers {
		if !m.warning {
			continue
		}
		end := len(in.lines)
		for _, next := range markers[i+1:] {
			if next.level <= m.level {
				end = next.line
				break
			}
		}
		section := strings.Join(in.lines[m.line:end], "\n")
		if strings.Contains(section, in.path) || strings.Contains(section, in.filename) {
			return true
		}
	}
	return false
}

func scanMarkers(lines []string) []marker {
	var out []marker
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if hm := headingRe.FindStringSubmatch(trimmed); hm != nil {
			out = append(out, marker{
				line:    i,
				level:   len(hm[1]),
				title:   hm[2],
				warning: isWarningTitle(hm[2]),
			})
			continue
		}
		if bm := boldLabelRe.FindStringSubmatch(trimmed); bm != nil {
			out = append(out, marker{
				line:    i,
				level:   boldLabelLevel,
				title:   bm[1],
				warning: isWarningTitle(bm[1]),
			})
		}
	}
	return out
}

func isWarningTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, p := range sectionPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// matchDirectory: the reviewer named an actually-existing file that shares
// the hallucinated path's filename but lives in a different directory —
// implicit detection by pointing at the right location.
func matchDirectory(in *input) bool {
	for _, existing := range in.existing {
		if existing == in.path {
			continue
		}
		if path.Base(existing) != in.filename {
			continue
		}
		if strings.Contains(in.output, existing) {
			return true
		}
	}
	return false
}
