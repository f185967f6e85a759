package checkers

import (
	"testing"

	"github.com/dshills/plancheck/internal/schema"
)

func routesProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "src/routes.ts", `
app.get('/api/users', list);
app.post('/api/users', create);
app.get('/api/users/:id', show);
`)
	return root
}

func TestRoutesChecker(t *testing.T) {
	root := routesProject(t)

	plan := `
Call GET /api/users to list, then DELETE /api/users/:id to remove.
The plan also mentions POST /api/sessions for login.
`
	result, err := (&RoutesChecker{}).Run(plan, root, nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if !result.Applicable {
		t.Fatal("checker not applicable with registrations present")
	}
	if result.CheckedRefs != 3 {
		t.Errorf("CheckedRefs = %d, want 3", result.CheckedRefs)
	}
	if result.Hallucinated != 2 {
		t.Fatalf("Hallucinated = %d: %+v", result.Hallucinated, result.Hallucinations)
	}

	byRaw := make(map[string]schema.Hallucination)
	for _, h := range result.Hallucinations {
		byRaw[h.Raw] = h
	}
	if h, ok := byRaw["DELETE /api/users/:id"]; !ok || h.Category != schema.CategoryMethod {
		t.Errorf("known path with bad method: %v", byRaw)
	}
	if h, ok := byRaw["POST /api/sessions"]; !ok || h.Category != schema.CategoryRoute {
		t.Errorf("unknown path: %v", byRaw)
	}
}

func TestRoutesChecker_QuotedLiteral(t *testing.T) {
	root := routesProject(t)

	result, err := (&RoutesChecker{}).Run(`fetch('/api/ghost') from the client.`, root, nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.Hallucinated != 1 {
		t.Fatalf("Hallucinated = %d: %+v", result.Hallucinated, result.Hallucinations)
	}
	if got := result.Hallucinations[0].Raw; got != "/api/ghost" {
		t.Errorf("Raw = %q", got)
	}
}

func TestRoutesChecker_LiteralNotDoubleCounted(t *testing.T) {
	root := routesProject(t)

	// The same path appears as a METHOD pair and a quoted literal.
	plan := "Call GET /api/users via fetch('/api/users')."
	result, err := (&RoutesChecker{}).Run(plan, root, nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.CheckedRefs != 1 {
		t.Errorf("CheckedRefs = %d, want 1", result.CheckedRefs)
	}
}

func TestRoutesChecker_RouteSuggestion(t *testing.T) {
	root := routesProject(t)

	result, err := (&RoutesChecker{}).Run("Call GET /api/users/:id/avatar next.", root, nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.Hallucinated != 1 {
		t.Fatalf("Hallucinated = %d: %+v", result.Hallucinated, result.Hallucinations)
	}
	if got := result.Hallucinations[0].Suggestion; got != "/api/users" {
		t.Errorf("Suggestion = %q, want /api/users", got)
	}
}

func TestRoutesChecker_NotApplicableWithoutRegistrations(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app.ts", "const x = 1;\n")
	result, err := (&RoutesChecker{}).Run("GET /api/users", root, nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.Applicable {
		t.Error("checker applicable with no route registrations")
	}
}
