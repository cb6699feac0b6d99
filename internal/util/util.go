// Package util provides small string helpers shared by the overlay and the server.
package util

import (
	"net/url"
	"strconv"
	"strings"
)

// MarkerNumber extracts the LED slot number written in parentheses in a
// marker description, e.g. "Harbour (12)" -> 12. The first parenthesised
// run of digits wins.
func MarkerNumber(description string) (int, bool) {
	rest := description
	for {
		open := strings.IndexByte(rest, '(')
		if open < 0 {
			return 0, false
		}
		rest = rest[open+1:]
		end := 0
		for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
			end++
		}
		if end > 0 && end < len(rest) && rest[end] == ')' {
			n, err := strconv.Atoi(rest[:end])
			if err == nil {
				return n, true
			}
		}
	}
}

// IsLink reports whether a memory value should be opened as a link rather
// than shown as text.
func IsLink(s string) bool {
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.Host != ""
	default:
		return false
	}
}

// FirstSegment returns the text before the first comma, trimmed. Geocoder
// display names use it as a default marker description.
func FirstSegment(s string) string {
	head, _, _ := strings.Cut(s, ",")
	return strings.TrimSpace(head)
}
