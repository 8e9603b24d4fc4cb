package station

import (
	"regexp"
	"strings"
)

// lineKeywords is the fixed lowercase keyword set naming MTR lines. Cell
// matching is keyword-driven rather than column-position-driven because
// the source table layout is not schema-stable across rows.
var lineKeywords = []string{
	"island",
	"tseung kwan o",
	"tung chung",
	"airport express",
	"disneyland",
	"east rail",
	"west rail",
	"south island",
	"kwun tong",
	"tuen ma",
}

// TagLines returns the cell texts that mention a known line name, in cell
// order. Footnote markers are stripped before matching; identical texts
// are not deduplicated.
func TagLines(cells []string) []string {
	var lines []string
	for _, cell := range cells {
		text := StripFootnotes(cell)
		lower := strings.ToLower(text)
		for _, kw := range lineKeywords {
			if strings.Contains(lower, kw) {
				lines = append(lines, text)
				break
			}
		}
	}
	return lines
}

var stationCodeRe = regexp.MustCompile(`^[A-Z]{2,3}$`)

// FindStationCode returns the first cell that looks like a 2-3 letter
// station code, or "".
func FindStationCode(cells []string) string {
	for _, cell := range cells {
		text := strings.TrimSpace(cell)
		if stationCodeRe.MatchString(text) {
			return text
		}
	}
	return ""
}
