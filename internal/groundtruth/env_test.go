package groundtruth

import (
	"reflect"
	"testing"
)

func TestBuildEnvIndex_UnionAcrossFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".env", "# comment\nDATABASE_URL=postgres://localhost/app\nexport API_KEY=abc\n\nBADLINE\n")
	writeFile(t, root, ".env.example", "DATABASE_URL=\nSMTP_HOST=smtp.example.com\n")

	idx, ok := BuildEnvIndex(root)
	if !ok {
		t.Fatal("BuildEnvIndex reported no env files")
	}

	if !reflect.DeepEqual(idx.Files, []string{".env", ".env.example"}) {
		t.Errorf("Files = %v", idx.Files)
	}
	// Keys keep file-then-line order; DATABASE_URL counted once.
	want := []string{"DATABASE_URL", "API_KEY", "SMTP_HOST"}
	if !reflect.DeepEqual(idx.Keys, want) {
		t.Errorf("Keys = %v, want %v", idx.Keys, want)
	}
	if !idx.Defined("API_KEY") {
		t.Error("Defined(API_KEY) = false, export prefix not stripped")
	}
	if idx.Defined("BADLINE") {
		t.Error("line without = indexed as a key")
	}
}

func TestBuildEnvIndex_NoEnvFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app.ts", "")
	if _, ok := BuildEnvIndex(root); ok {
		t.Error("BuildEnvIndex reported ok with no env files present")
	}
}
