package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var wsRe = regexp.MustCompile(`\s+`)

// NormalizeEmail lowercases and trims an email address so that
// contact matching is stable across client inputs.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeNameLower folds accents and collapses whitespace so a client
// imported as "José  García" matches a later signup as "jose garcia".
func NormalizeNameLower(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t := norm.NFKD.String(s)
	b := make([]rune, 0, len(t))
	for _, r := range t {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b = append(b, unicode.ToLower(r))
	}
	out := string(b)
	out = wsRe.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}
