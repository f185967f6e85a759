package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/plancheck/internal/registry"
	"github.com/dshills/plancheck/internal/schema"
)

type fakeChecker struct {
	id, key string
}

func (f *fakeChecker) ID() string          { return f.id }
func (f *fakeChecker) DisplayName() string { return f.id }
func (f *fakeChecker) CatchKey() string    { return f.key }
func (f *fakeChecker) Experimental() bool  { return false }

func (f *fakeChecker) Run(planText, projectDir string, opts map[string]string) (*schema.CheckerResult, error) {
	return schema.NotApplicable(f.id), nil
}

func (f *fakeChecker) FormatReport(result *schema.CheckerResult, projectDir string) []string {
	return nil
}

func (f *fakeChecker) FormatFindings(result *schema.CheckerResult) (string, bool) {
	return "", false
}

func testCheckers() []registry.Checker {
	return []registry.Checker{
		&fakeChecker{id: "paths", key: "paths"},
		&fakeChecker{id: "env", key: "envVars"},
	}
}

func TestBuildEntry(t *testing.T) {
	results := map[string]*schema.CheckerResult{
		"paths": {
			CheckerID:    "paths",
			Applicable:   true,
			CheckedRefs:  3,
			Hallucinated: 1,
			Hallucinations: []schema.Hallucination{
				{Raw: "src/ghost.ts", Category: schema.CategoryPath},
			},
		},
		"env": schema.NotApplicable("env"),
	}

	entry := BuildEntry("/home/alex/projects/shop", testCheckers(), results)

	if entry.Project != "shop" {
		t.Errorf("Project = %q, want base name only", entry.Project)
	}
	if entry.Tool != "plancheck" {
		t.Errorf("Tool = %q", entry.Tool)
	}
	if entry.TotalChecked != 3 || entry.TotalHallucinated != 1 {
		t.Errorf("totals = %d/%d, want 3/1", entry.TotalChecked, entry.TotalHallucinated)
	}

	// Fixed shape: inapplicable checkers present as nil slots.
	tally, present := entry.Checkers["envVars"]
	if !present {
		t.Error("inapplicable checker missing from entry")
	}
	if tally != nil {
		t.Errorf("envVars tally = %+v, want nil", tally)
	}
	paths := entry.Checkers["paths"]
	if paths == nil || paths.Checked != 3 || paths.Hallucinated != 1 {
		t.Errorf("paths tally = %+v", paths)
	}
	if len(paths.Items) != 1 || paths.Items[0] != "src/ghost.ts" {
		t.Errorf("Items = %v", paths.Items)
	}
}

func TestLogCatch_SkipsCleanEntries(t *testing.T) {
	dir := t.TempDir()
	logger := New(dir, nil)

	entry := BuildEntry("proj", testCheckers(), map[string]*schema.CheckerResult{
		"paths": {CheckerID: "paths", Applicable: true, CheckedRefs: 5},
		"env":   schema.NotApplicable("env"),
	})
	logger.LogCatch(entry)

	if _, err := os.Stat(filepath.Join(dir, "catches.jsonl")); !os.IsNotExist(err) {
		t.Error("clean entry written to the catch log")
	}
}

func TestLogCatch_AppendsJSONL(t *testing.T) {
	dir := t.TempDir()
	logger := New(dir, nil)

	entry := BuildEntry("proj", testCheckers(), map[string]*schema.CheckerResult{
		"paths": {
			CheckerID:    "paths",
			Applicable:   true,
			CheckedRefs:  1,
			Hallucinated: 1,
			Hallucinations: []schema.Hallucination{
				{Raw: "src/ghost.ts", Category: schema.CategoryPath},
			},
		},
		"env": schema.NotApplicable("env"),
	})
	logger.LogCatch(entry)
	logger.LogCatch(entry)

	data, err := os.ReadFile(filepath.Join(dir, "catches.jsonl"))
	if err != nil {
		t.Fatalf("read catch log: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("log has %d lines, want 2", len(lines))
	}
	var decoded schema.CatchEntry
	if err := json.Unmarshal([]byte(lines[0]), &decoded); err != nil {
		t.Fatalf("line is not valid JSON: %v", err)
	}
	if decoded.TotalHallucinated != 1 {
		t.Errorf("decoded TotalHallucinated = %d", decoded.TotalHallucinated)
	}
}

func TestLogCatch_SwallowsWriteErrors(t *testing.T) {
	// Point the state dir at a path that cannot be a directory.
	blocked := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocked, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	logger := New(filepath.Join(blocked, "nested"), nil)

	entry := schema.CatchEntry{TotalHallucinated: 1}
	logger.LogCatch(entry) // must not panic or return an error
}
