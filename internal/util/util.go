// Package util provides helpers for the quoted strings the host passes in.
package util

import (
	"fmt"
	"strings"
)

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// FixEscapeQuotes replaces escaped double quotes ("") with single double quotes (").
func FixEscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// CleanArg trims whitespace and surrounding quotes and unescapes inner quotes.
func CleanArg(s string) string {
	return FixEscapeQuotes(TrimQuotes(strings.TrimSpace(s)))
}

// ParseBool accepts the boolean spellings the host scripting layer produces.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(CleanArg(s)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid bool %q", s)
}

// ParseStringArray parses a stringified host array of quoted strings.
// Input format: ["str1","str2",...]
func ParseStringArray(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("not an array: %q", s)
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return []string{}, nil
	}
	parts := strings.Split(inner, `","`)
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = FixEscapeQuotes(strings.Trim(strings.TrimSpace(p), `"`))
	}
	return out, nil
}
