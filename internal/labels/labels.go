// Package labels parses and normalizes the semicolon-delimited label lists
// used for student interests, program field tags, core clusters and mentor
// expertise.
package labels

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Separator delimits labels inside a list cell.
const Separator = ";"

// Normalize returns the canonical form of a single label: NFC, trimmed and
// lower-cased.
func Normalize(s string) string {
	s = strings.TrimSpace(norm.NFC.String(s))
	if s == "" {
		return ""
	}
	return cases.Lower(language.Und).String(s)
}

// Parse splits a list cell on ';', normalizes every piece and drops empty
// tokens. Duplicates are kept in their original positions.
func Parse(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	parts := strings.Split(cell, Separator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = Normalize(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Join renders labels as a lowercase semicolon-joined cell.
func Join(ls []string) string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		if l = Normalize(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, Separator)
}

// Canonical reparses a raw cell and joins it back, e.g. " AI ; Data Science;"
// becomes "ai;data science".
func Canonical(cell string) string {
	return Join(Parse(cell))
}

// EqualFold reports whether a and b are the same token once trimmed and
// case-folded. Used for test types and degree levels.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// Fold returns the trimmed, case-folded form of s for equality keys.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Set returns the distinct labels of ls.
func Set(ls []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ls))
	for _, l := range ls {
		out[l] = struct{}{}
	}
	return out
}
