// Package bench rolls up scored benchmark runs into aggregate detection and
// hallucination rates. All logic is local and deterministic; no LLM calls
// are made here.
package bench

import (
	"math"
	"sort"

	"github.com/dshills/plancheck/internal/schema"
)

// callsPerRun is the fixed API cost of one run: one plan-generation call and
// one verification call. Each applied secondary injection adds one more.
const callsPerRun = 2

// round4 rounds to 4 decimal places.
func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}

// safeRate returns detected/total, or 0 when total is 0.
func safeRate(detected, total int) float64 {
	if total == 0 {
		return 0
	}
	return round4(float64(detected) / float64(total))
}

// Summarize aggregates runs into a BenchmarkSummary. Zero runs yield zero
// rates, never a fault. The Tier2 breakdown is present only when at least
// one run carried secondary-injection cases.
func Summarize(runs []schema.BenchmarkRun) schema.BenchmarkSummary {
	s := schema.BenchmarkSummary{Runs: len(runs)}

	var hallucSum, detectSum float64
	var cases []schema.Tier2Case
	for _, r := range runs {
		hallucSum += r.HallucinationRate
		detectSum += r.DetectionRate
		s.TotalInputTokens += r.InputTokens
		s.TotalOutputTokens += r.OutputTokens
		cases = append(cases, r.Tier2...)
	}
	if len(runs) > 0 {
		s.AvgHallucinationRate = round4(hallucSum / float64(len(runs)))
		s.AvgDetectionRate = round4(detectSum / float64(len(runs)))
	}

	applied := 0
	for _, c := range cases {
		if c.Applied {
			applied++
		}
	}
	s.APICalls = callsPerRun*len(runs) + applied

	if len(cases) > 0 {
		s.Tier2 = summarizeTier2(cases)
	}
	return s
}

// summarizeTier2 computes the secondary-injection breakdown. Rates are
// restricted to cases where the injection was actually applied.
func summarizeTier2(cases []schema.Tier2Case) *schema.Tier2Summary {
	t := &schema.Tier2Summary{
		ByCategory: make(map[string]schema.Rate),
		ByMethod:   make(map[schema.DetectionMethod]schema.Rate),
		Cases:      cases,
	}

	catDetected := make(map[string]int)
	catTotal := make(map[string]int)
	methodDetected := make(map[schema.DetectionMethod]int)
	for _, c := range cases {
		if !c.Applied {
			continue
		}
		t.AppliedCases++
		catTotal[c.Category]++
		if c.Detected {
			t.DetectedCases++
			catDetected[c.Category]++
			if c.Method != "" {
				methodDetected[c.Method]++
			}
		}
	}
	t.DetectionRate = safeRate(t.DetectedCases, t.AppliedCases)

	cats := make([]string, 0, len(catTotal))
	for cat := range catTotal {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	for _, cat := range cats {
		t.ByCategory[cat] = schema.Rate{
			Detected: catDetected[cat],
			Total:    catTotal[cat],
			Rate:     safeRate(catDetected[cat], catTotal[cat]),
		}
	}

	// Per-method success rate: share of all detections attributed to the tier.
	for method, n := range methodDetected {
		t.ByMethod[method] = schema.Rate{
			Detected: n,
			Total:    t.DetectedCases,
			Rate:     safeRate(n, t.DetectedCases),
		}
	}
	return t
}
