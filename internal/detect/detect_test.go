package detect

import (
	"testing"

	"github.com/dshills/plancheck/internal/schema"
)

func TestEvaluate_DirectMention(t *testing.T) {
	output := "The path src/foo/bar.ts referenced in step 2 does not exist in this repository."
	got := Evaluate("src/foo/bar.ts", output, nil)
	if !got.Detected || got.Method != schema.MethodDirect {
		t.Errorf("Evaluate = %+v, want direct detection", got)
	}
}

func TestEvaluate_SentimentWindow(t *testing.T) {
	// Filename appears without the full path; the corrective phrase sits two
	// lines away, just inside the window.
	output := "I reviewed the plan's file references.\n" +
		"The module bar.ts is imported in step 3.\n" +
		"Unfortunately that file\n" +
		"does not exist anywhere in the source tree.\n"
	got := Evaluate("src/foo/bar.ts", output, nil)
	if !got.Detected || got.Method != schema.MethodSentiment {
		t.Errorf("Evaluate = %+v, want sentiment detection", got)
	}
}

func TestEvaluate_SentimentOutsideWindowMisses(t *testing.T) {
	output := "The module bar.ts is imported in step 3.\n" +
		"line\n" +
		"line\n" +
		"line\n" +
		"A completely unrelated note: the config does not exist yet.\n"
	got := Evaluate("src/foo/bar.ts", output, nil)
	if got.Detected {
		t.Errorf("Evaluate = %+v, phrase beyond the window should not count", got)
	}
}

func TestEvaluate_SectionHeading(t *testing.T) {
	output := "## Summary\n" +
		"The plan is mostly sound.\n" +
		"\n" +
		"### Concerns\n" +
		"One reference to bar.ts looks suspicious.\n" +
		"\n" +
		"### Next Steps\n" +
		"Proceed with implementation.\n"
	got := Evaluate("src/foo/bar.ts", output, nil)
	if !got.Detected || got.Method != schema.MethodSection {
		t.Errorf("Evaluate = %+v, want section detection", got)
	}
}

func TestEvaluate_SectionSpanEndsAtPeerHeading(t *testing.T) {
	// The filename appears only after the Concerns section closed.
	output := "### Concerns\n" +
		"Nothing notable here.\n" +
		"### Details\n" +
		"The helper bar.ts handles parsing.\n"
	got := Evaluate("src/foo/bar.ts", output, nil)
	if got.Detected {
		t.Errorf("Evaluate = %+v, mention outside the warning section should not count", got)
	}
}

func TestEvaluate_BoldLabelSection(t *testing.T) {
	output := "**Issues:**\n" +
		"- bar.ts is referenced but may be misplaced.\n"
	got := Evaluate("src/foo/bar.ts", output, nil)
	if !got.Detected || got.Method != schema.MethodSection {
		t.Errorf("Evaluate = %+v, want section detection from bold label", got)
	}
}

func TestEvaluate_DirectoryCorrection(t *testing.T) {
	// Reviewer points at the real location without naming the bad path or
	// using corrective language.
	output := "Implement the parsing logic in src/actual/bar.ts as usual."
	existing := []string{"src/actual/bar.ts", "src/lib/util.ts"}
	got := Evaluate("src/foo/bar.ts", output, existing)
	if !got.Detected || got.Method != schema.MethodDirectory {
		t.Errorf("Evaluate = %+v, want directory detection", got)
	}
}

func TestEvaluate_DirectoryIgnoresSamePath(t *testing.T) {
	// The only candidate equals the hallucinated path itself.
	got := Evaluate("src/foo/bar.ts", "See src/foo/bar.go for details.",
		[]string{"src/foo/bar.ts"})
	if got.Detected {
		t.Errorf("Evaluate = %+v, want no detection", got)
	}
}

func TestEvaluate_TierOrder(t *testing.T) {
	// Output satisfies both direct and sentiment; direct wins.
	output := "src/foo/bar.ts does not exist."
	got := Evaluate("src/foo/bar.ts", output, nil)
	if got.Method != schema.MethodDirect {
		t.Errorf("Method = %q, want the higher-confidence direct tier", got.Method)
	}
}

func TestEvaluate_NoDetection(t *testing.T) {
	got := Evaluate("src/foo/bar.ts", "Looks good, ship it.", nil)
	if got.Detected || got.Method != "" {
		t.Errorf("Evaluate = %+v, want undetected with empty method", got)
	}
	if got.Path != "src/foo/bar.ts" {
		t.Errorf("Path = %q, want the evaluated path echoed", got.Path)
	}
}

func TestEvaluateAll(t *testing.T) {
	output := "src/a.ts does not exist. Everything else checks out."
	got := EvaluateAll([]string{"src/a.ts", "src/b.ts"}, output, nil)
	if len(got) != 2 {
		t.Fatalf("EvaluateAll returned %d results, want 2", len(got))
	}
	if !got[0].Detected || got[1].Detected {
		t.Errorf("EvaluateAll = %+v, want first detected only", got)
	}
}
