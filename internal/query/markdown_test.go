package query

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPlainText_StripsMarkup(t *testing.T) {
	input := `# Travel Planner

Plan a **4-day** trip for a group of _10 college friends_.

- budget friendly
- nightlife
`
	got := PlainText([]byte(input))
	want := "Travel Planner Plan a 4-day trip for a group of 10 college friends. budget friendly nightlife"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPlainText_Empty(t *testing.T) {
	if got := PlainText(nil); got != "" {
		t.Errorf("expected empty text, got %q", got)
	}
}

func TestLoadText_PlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.txt")
	if err := os.WriteFile(path, []byte("  Prepare a\nvegetarian  buffet \n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := LoadText(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Prepare a vegetarian buffet" {
		t.Errorf("expected %q, got %q", "Prepare a vegetarian buffet", got)
	}
}

func TestLoadText_Markdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.md")
	if err := os.WriteFile(path, []byte("**HR professional**\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := LoadText(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "HR professional" {
		t.Errorf("expected %q, got %q", "HR professional", got)
	}
}

func TestLoadText_Missing(t *testing.T) {
	if _, err := LoadText(filepath.Join(t.TempDir(), "nope.md")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
