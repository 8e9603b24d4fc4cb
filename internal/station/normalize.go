// Package station turns raw table rows into normalized station records.
package station

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	footnoteRe = regexp.MustCompile(`\[\d+\]`)
	parenRe    = regexp.MustCompile(`\(([^)]+)\)`)
	allParenRe = regexp.MustCompile(`\s*\([^)]+\)`)
)

// StripFootnotes removes bracketed footnote markers like [1] from s.
func StripFootnotes(s string) string {
	return strings.TrimSpace(footnoteRe.ReplaceAllString(s, ""))
}

// SplitName splits a raw label into a primary name and an optional
// script-variant secondary name. Footnote markers are stripped first;
// then, if the first parenthesized segment contains a Han character, it
// becomes the secondary name and all parenthesized segments are removed
// from the primary. Applying SplitName to its own output is a no-op.
func SplitName(raw string) (primary, secondary string) {
	name := StripFootnotes(raw)

	m := parenRe.FindStringSubmatch(name)
	if m == nil {
		return name, ""
	}
	if !containsHan(m[1]) {
		return name, ""
	}
	return strings.TrimSpace(allParenRe.ReplaceAllString(name, "")), m[1]
}

func containsHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}
