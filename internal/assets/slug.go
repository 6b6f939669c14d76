package assets

import "strings"

// Slugify turns free text into a filesystem-safe token: lower-case, spaces
// become single hyphens, and every other character outside [a-z0-9-_] is
// dropped. The result is stable under repeated application.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range strings.ToLower(strings.ReplaceAll(s, " ", "-")) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}

	return b.String()
}
