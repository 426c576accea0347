package common

import "strings"

// UnknownStr is the String() value of out-of-range enum values.
const UnknownStr = "unknown"

// SplitList splits s on any of the separator runes, trims each part and drops
// empty parts.
func SplitList(s string, seps string) []string {
	var out []string

	start := 0
	for i, r := range s {
		if strings.ContainsRune(seps, r) {
			if part := strings.TrimSpace(s[start:i]); part != "" {
				out = append(out, part)
			}

			start = i + len(string(r))
		}
	}

	if part := strings.TrimSpace(s[start:]); part != "" {
		out = append(out, part)
	}

	return out
}
