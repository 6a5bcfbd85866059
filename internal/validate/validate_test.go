package validate_test

import (
	"testing"

	"github.com/5w1tchy/library-api/internal/validate"
)

func TestClean(t *testing.T) {
	// decomposed "é" (e + combining acute) normalizes to the composed form
	got := validate.Clean("  Café  ")
	if got != "Café" {
		t.Fatalf("want NFC Café, got %q", got)
	}
}

func TestRequireBounded(t *testing.T) {
	if _, err := validate.RequireBounded("title", "   ", 1, 10); err == nil {
		t.Fatal("blank value must fail")
	}
	if _, err := validate.RequireBounded("title", "0123456789x", 1, 10); err == nil {
		t.Fatal("overlong value must fail")
	}
	got, err := validate.RequireBounded("title", "  Dune  ", 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Dune" {
		t.Fatalf("want trimmed Dune, got %q", got)
	}
}

func TestGenres(t *testing.T) {
	got := validate.Genres([]string{" fantasy ", "", "fantasy", "scifi"})
	if len(got) != 2 || got[0] != "fantasy" || got[1] != "scifi" {
		t.Fatalf("want [fantasy scifi], got %v", got)
	}
	if got := validate.Genres(nil); len(got) != 0 {
		t.Fatalf("want empty, got %v", got)
	}
}

func TestYear(t *testing.T) {
	if err := validate.Year("published", 1965); err != nil {
		t.Fatal(err)
	}
	if err := validate.Year("published", 99999); err == nil {
		t.Fatal("absurd year must fail")
	}
}
