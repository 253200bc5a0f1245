package utils

import (
	"testing"
)

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Player@Example.COM "); got != "player@example.com" {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeEmail(""); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeNameLower(t *testing.T) {
	cases := map[string]string{
		"José  García": "jose garcia",
		"  Müller ":    "muller",
		"PLAIN NAME":   "plain name",
		"":             "",
		"  \t ":        "",
		"Renée D'Arcy": "renee d'arcy",
	}
	for in, want := range cases {
		if got := NormalizeNameLower(in); got != want {
			t.Fatalf("NormalizeNameLower(%q) = %q, want %q", in, got, want)
		}
	}
}
