package tables

import (
	"strings"

	"github.com/JonMunkholm/leaddesk/internal/core"
)

// phoneNoise are separators people type inside phone numbers.
var phoneNoise = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

// NormalizePhone drops separators so the same number written two ways
// compares equal. A leading + is kept. Null spellings pass through unchanged.
func NormalizePhone(s string) string {
	if core.IsNull(s) {
		return s
	}
	return phoneNoise.Replace(strings.TrimSpace(s))
}

// NormalizeEmail lowercases an address. Null spellings pass through unchanged.
func NormalizeEmail(s string) string {
	if core.IsNull(s) {
		return s
	}
	return strings.ToLower(strings.TrimSpace(s))
}
