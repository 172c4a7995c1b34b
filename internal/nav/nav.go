// Package nav parses the free-text page/location indicators shown by reader
// applications ("Page 42 of 300", "Location 150 of 5000") into a normalized
// position record.
package nav

import (
	"regexp"
	"strconv"
	"strings"
)

// Position is a normalized navigation indicator. Exactly one of Page or
// Location is set; Total is the book-wide count reported alongside it.
type Position struct {
	Page     int
	Location int
	Total    int
}

var (
	pageRe     = regexp.MustCompile(`(?i)^page\s+(\d+)\s+of\s+(\d+)$`)
	locationRe = regexp.MustCompile(`(?i)^location\s+(\d+)\s+of\s+(\d+)$`)
	romanRe    = regexp.MustCompile(`(?i)^page\s+([ivxlcdm]+)\s+of\s+(\d+)$`)
)

// Parse normalizes a navigation indicator string. It returns nil for empty or
// unrecognized input; it never fails. Recognized forms, first match wins:
//
//	"Page <n> of <total>"      -> {Page: n, Total: total}
//	"Location <n> of <total>"  -> {Location: n, Total: total}
//	"Page <roman> of <total>"  -> {Location: romanValue, Total: total}
//
// Roman-numbered pages are front matter: they are not stably addressable the
// way arabic page numbers are, so they are reported as locations.
func Parse(s string) *Position {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if m := pageRe.FindStringSubmatch(s); m != nil {
		return &Position{Page: mustInt(m[1]), Total: mustInt(m[2])}
	}
	if m := locationRe.FindStringSubmatch(s); m != nil {
		return &Position{Location: mustInt(m[1]), Total: mustInt(m[2])}
	}
	if m := romanRe.FindStringSubmatch(s); m != nil {
		if v := RomanValue(m[1]); v > 0 {
			return &Position{Location: v, Total: mustInt(m[2])}
		}
	}
	return nil
}

func mustInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
