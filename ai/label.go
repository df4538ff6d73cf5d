package ai

import (
	"regexp"
	"strings"
)

var labelFilter = regexp.MustCompile(`[^a-zA-Z0-9\s]`)

// SanitizeLabel strips every character that is not an ASCII letter, digit or
// whitespace, then trims the result. Session names pass through it before
// they are stored.
func SanitizeLabel(s string) string {
	return strings.TrimSpace(labelFilter.ReplaceAllString(s, ""))
}
