package searchutil

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

var (
	yearPattern       = regexp.MustCompile(`\b(\d{4})\b`)
	leadingIntPattern = regexp.MustCompile(`^[+-]?\d+`)
)

// Fold returns the Unicode case-folded form of value. A Caser is stateful, so
// a fresh one is built per call.
func Fold(value string) string {
	return cases.Fold().String(value)
}

func ContainsFold(haystack string, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}

func HasPrefixFold(value string, prefix string) bool {
	return strings.HasPrefix(Fold(value), Fold(prefix))
}

func NormalizeSpace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// ParseLeadingInt reads an optionally signed run of digits at the start of
// value, ignoring leading whitespace and anything after the digits ("12b" is 12).
func ParseLeadingInt(value string) (int, bool) {
	match := leadingIntPattern.FindString(strings.TrimLeft(value, " \t\r\n"))
	if match == "" {
		return 0, false
	}
	parsed, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// FirstYear returns the first standalone four-digit run in value.
func FirstYear(value string) (string, bool) {
	match := yearPattern.FindStringSubmatch(value)
	if len(match) < 2 {
		return "", false
	}
	return match[1], true
}

// AfterFirst drops everything up to and including the first sep. Values
// without sep are returned trimmed but otherwise unchanged.
func AfterFirst(value string, sep string) string {
	if _, rest, found := strings.Cut(value, sep); found {
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(value)
}

// FirstField and LastField split on single spaces, so an empty value yields "".
func FirstField(value string) string {
	first, _, _ := strings.Cut(value, " ")
	return first
}

func LastField(value string) string {
	if index := strings.LastIndex(value, " "); index >= 0 {
		return value[index+1:]
	}
	return value
}

// DotParts splits a numbering token such as "2.3" or "4." on dots and drops
// empty segments.
func DotParts(token string) []string {
	parts := make([]string, 0, 2)
	for _, part := range strings.Split(token, ".") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func NonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, raw := range values {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
