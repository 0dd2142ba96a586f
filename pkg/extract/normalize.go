package extract

import "strings"

// NormalizeMobile canonicalizes a phone string to bare digits: separators
// and a leading plus are stripped. If the stripped result falls outside 10
// to 15 digits the input is returned unchanged; normalization must fail open
// to the original text rather than produce a broken value.
func NormalizeMobile(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return raw
	}

	var digits strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	normalized := digits.String()
	if len(normalized) < 10 || len(normalized) > 15 {
		return raw
	}
	return normalized
}
