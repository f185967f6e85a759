package extract

import (
	"reflect"
	"regexp"
	"testing"
)

var wordRe = regexp.MustCompile(`[\w./:-]+`)

func TestExtract_DedupePreservesFirstSeenOrder(t *testing.T) {
	p := Pipeline{Patterns: []*regexp.Regexp{wordRe}}
	got := p.Extract("beta alpha beta gamma alpha")
	want := []string{"beta", "alpha", "gamma"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %v, want %v", got, want)
	}
}

func TestExtract_RejectedCandidatesDropped(t *testing.T) {
	p := Pipeline{
		Patterns: []*regexp.Regexp{wordRe},
		Reject:   DefaultRejects,
	}
	got := p.Extract("src/app.ts https://x.dev/a.ts 1.2.3 node_modules/pkg/index.js")
	want := []string{"src/app.ts"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %v, want %v", got, want)
	}
}

func TestExtract_CaptureGroupWins(t *testing.T) {
	p := Pipeline{Patterns: []*regexp.Regexp{regexp.MustCompile(`env\.(\w+)`)}}
	got := p.Extract("reads env.FOO and env.BAR")
	want := []string{"FOO", "BAR"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %v, want %v", got, want)
	}
}

func TestRejectPredicates(t *testing.T) {
	tests := []struct {
		name string
		fn   RejectFn
		in   string
		want bool
	}{
		{"url", IsURL, "https://example.com/x", true},
		{"not url", IsURL, "src/example.ts", false},
		{"semver", IsSemver, "1.2.3", true},
		{"semver v-prefix", IsSemver, "v2.0.0-rc.1", true},
		{"not semver", IsSemver, "src/1.2.ts", false},
		{"vendored", IsVendored, "node_modules/lodash/get.js", true},
		{"nested vendored", IsVendored, "pkg/vendor/dep.go", true},
		{"not vendored", IsVendored, "src/vendorlist.ts", false},
	}
	for _, tt := range tests {
		if got := tt.fn(tt.in); got != tt.want {
			t.Errorf("%s: reject(%q) = %v, want %v", tt.name, tt.in, got, tt.want)
		}
	}
}

func TestContextLine(t *testing.T) {
	text := "first line\ncreate src/new.ts here\nlast line"
	if got := ContextLine(text, "src/new.ts"); got != "create src/new.ts here" {
		t.Errorf("ContextLine = %q", got)
	}
	if got := ContextLine(text, "absent.ts"); got != "" {
		t.Errorf("ContextLine for absent ref = %q, want empty", got)
	}
}
