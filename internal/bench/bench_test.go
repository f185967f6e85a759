package bench

import (
	"testing"

	"github.com/dshills/plancheck/internal/schema"
)

func TestSummarize_AveragesExactly(t *testing.T) {
	runs := []schema.BenchmarkRun{
		{HallucinationRate: 0.2, DetectionRate: 0.5, InputTokens: 1000, OutputTokens: 200},
		{HallucinationRate: 0.4, DetectionRate: 1.0, InputTokens: 1500, OutputTokens: 300},
	}

	s := Summarize(runs)
	if s.Runs != 2 {
		t.Errorf("Runs = %d, want 2", s.Runs)
	}
	if s.AvgHallucinationRate != 0.3 {
		t.Errorf("AvgHallucinationRate = %v, want exactly 0.3", s.AvgHallucinationRate)
	}
	if s.AvgDetectionRate != 0.75 {
		t.Errorf("AvgDetectionRate = %v, want 0.75", s.AvgDetectionRate)
	}
	if s.TotalInputTokens != 2500 || s.TotalOutputTokens != 500 {
		t.Errorf("token totals = %d/%d, want 2500/500", s.TotalInputTokens, s.TotalOutputTokens)
	}
	if s.APICalls != 4 {
		t.Errorf("APICalls = %d, want 2 per run", s.APICalls)
	}
	if s.Tier2 != nil {
		t.Error("Tier2 present with no secondary-injection cases")
	}
}

func TestSummarize_ZeroRuns(t *testing.T) {
	s := Summarize(nil)
	if s.Runs != 0 || s.AvgHallucinationRate != 0 || s.AvgDetectionRate != 0 {
		t.Errorf("Summarize(nil) = %+v, want all zeros", s)
	}
	if s.APICalls != 0 {
		t.Errorf("APICalls = %d, want 0", s.APICalls)
	}
}

func TestSummarize_RoundsToFourDecimals(t *testing.T) {
	runs := []schema.BenchmarkRun{
		{HallucinationRate: 1.0 / 3.0},
		{HallucinationRate: 1.0 / 3.0},
		{HallucinationRate: 1.0 / 3.0},
	}
	s := Summarize(runs)
	if s.AvgHallucinationRate != 0.3333 {
		t.Errorf("AvgHallucinationRate = %v, want 0.3333", s.AvgHallucinationRate)
	}
}

func TestSummarize_Tier2Breakdown(t *testing.T) {
	runs := []schema.BenchmarkRun{
		{
			Tier2: []schema.Tier2Case{
				{Path: "src/a.ts", Category: "wrong-dir", Applied: true, Detected: true, Method: schema.MethodDirect},
				{Path: "src/b.ts", Category: "wrong-dir", Applied: true, Detected: false},
				{Path: "src/c.ts", Category: "bad-ext", Applied: true, Detected: true, Method: schema.MethodSection},
				{Path: "src/d.ts", Category: "bad-ext", Applied: false, Detected: true},
			},
		},
	}

	s := Summarize(runs)
	if s.Tier2 == nil {
		t.Fatal("Tier2 summary missing")
	}
	tier := s.Tier2

	// Unapplied cases never count, even when marked detected.
	if tier.AppliedCases != 3 || tier.DetectedCases != 2 {
		t.Errorf("applied/detected = %d/%d, want 3/2", tier.AppliedCases, tier.DetectedCases)
	}
	if tier.DetectionRate != 0.6667 {
		t.Errorf("DetectionRate = %v, want 0.6667", tier.DetectionRate)
	}

	wrongDir := tier.ByCategory["wrong-dir"]
	if wrongDir.Detected != 1 || wrongDir.Total != 2 || wrongDir.Rate != 0.5 {
		t.Errorf("ByCategory[wrong-dir] = %+v", wrongDir)
	}
	badExt := tier.ByCategory["bad-ext"]
	if badExt.Detected != 1 || badExt.Total != 1 || badExt.Rate != 1 {
		t.Errorf("ByCategory[bad-ext] = %+v", badExt)
	}

	direct := tier.ByMethod[schema.MethodDirect]
	if direct.Detected != 1 || direct.Total != 2 || direct.Rate != 0.5 {
		t.Errorf("ByMethod[direct] = %+v", direct)
	}

	// One plan call + one verify call per run, plus one per applied case.
	if s.APICalls != 2+3 {
		t.Errorf("APICalls = %d, want 5", s.APICalls)
	}
}
