package validate

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Clean NFC-normalizes and trims a free-text input. Mongo treats "é" composed
// and decomposed as different keys, so names must be canonicalized before they
// reach a unique index.
func Clean(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// RequireBounded cleans s and ensures length bounds.
func RequireBounded(name, s string, min, max int) (string, error) {
	s = Clean(s)
	if utf8.RuneCountInString(s) < min || utf8.RuneCountInString(s) > max {
		return "", errors.New(name + " must be between " + strconv.Itoa(min) + " and " + strconv.Itoa(max) + " characters")
	}
	return s, nil
}

// Genres cleans and dedups a genre list, dropping empties. Order of first
// occurrence is kept.
func Genres(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, g := range in {
		g = Clean(g)
		if g == "" {
			continue
		}
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

// Year bounds a published year to something sane.
func Year(name string, y int) error {
	if y < -3000 || y > 3000 {
		return errors.New(name + " out of range")
	}
	return nil
}
