package utils

import "strings"

// SafeToken lower-cases s and replaces every rune outside [a-z0-9] with an
// underscore, giving a string usable in keys, URLs and file names.
func SafeToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
