package root

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGrantAndBalance(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	if _, err := run(t, "--db", db, "grant", "kid", "12"); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if _, err := run(t, "--db", db, "grant", "kid", "-5"); err != nil {
		t.Fatalf("debit: %v", err)
	}
	out, err := run(t, "--db", db, "balance", "kid", "-n", "2")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !strings.Contains(out, "kid has 7 stars") || !strings.Contains(out, "-5 -> 7") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	if _, err := run(t, "--db", db, "grant", "kid", "-50"); err == nil {
		t.Fatal("expected overdraw to fail")
	}
	if _, err := run(t, "--db", db, "grant", "kid", "lots"); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestCatalogImportAndMood(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "cli.db")
	file := filepath.Join(dir, "catalog.yaml")
	doc := "activities:\n  - {id: a, title: Balloon Breathing, mood_tag: Angry, star_reward: 5, duration_seconds: 60}\n"
	if err := os.WriteFile(file, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "--db", db, "catalog", "import", file)
	if err != nil || !strings.Contains(out, "imported 1 activities") {
		t.Fatalf("import: %q, %v", out, err)
	}
	out, err = run(t, "--db", db, "catalog", "list")
	if err != nil || !strings.Contains(out, "Balloon Breathing") {
		t.Fatalf("list: %q, %v", out, err)
	}

	if out, _ := run(t, "--db", db, "mood", "kid"); !strings.Contains(out, "has not logged") {
		t.Fatalf("mood before logging: %q", out)
	}
	if _, err := run(t, "--db", db, "mood", "kid", "angry"); err != nil {
		t.Fatalf("log mood: %v", err)
	}
	if out, _ := run(t, "--db", db, "mood", "kid"); !strings.Contains(out, "feels Angry") {
		t.Fatalf("mood after logging: %q", out)
	}

	out, err = run(t, "--db", db, "report", "kid")
	if err != nil || !strings.Contains(out, `"days"`) {
		t.Fatalf("report: %q, %v", out, err)
	}
}
