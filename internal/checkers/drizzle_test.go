package checkers

import (
	"testing"
)

const drizzleSchemaFixture = `
import { pgTable, serial, text } from 'drizzle-orm/pg-core';

export const users = pgTable('users', {
  id: serial('id').primaryKey(),
  email: text('email'),
});
`

func TestDrizzleChecker(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/db/schema.ts", drizzleSchemaFixture)

	plan := "SELECT users.email FROM users; also read users.handle and FROM invoices."
	c := &DrizzleChecker{}
	if !c.Experimental() {
		t.Error("drizzle checker must be experimental")
	}
	result, err := c.Run(plan, root, nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if !result.Applicable {
		t.Fatal("checker not applicable with a TypeScript schema present")
	}
	if result.Hallucinated != 2 {
		t.Fatalf("Hallucinated = %d: %+v", result.Hallucinated, result.Hallucinations)
	}
	raws := make(map[string]bool)
	for _, h := range result.Hallucinations {
		raws[h.Raw] = true
	}
	if !raws["invoices"] || !raws["users.handle"] {
		t.Errorf("hallucinations = %+v", result.Hallucinations)
	}
}

func TestDrizzleChecker_NotApplicable(t *testing.T) {
	result, err := (&DrizzleChecker{}).Run("FROM users", t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.Applicable {
		t.Error("checker applicable without a schema file")
	}
}
