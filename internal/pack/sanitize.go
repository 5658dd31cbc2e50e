package pack

import "strings"

// DefaultArchiveName is used when sanitizing leaves nothing of the
// user-supplied addon name.
const DefaultArchiveName = "my-addon"

// SanitizeName strips every character outside [A-Za-z0-9_ -] from a
// user-supplied addon name so it is safe to use as a download filename.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '_', r == ' ', r == '-':
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return DefaultArchiveName
	}
	return out
}
