package photo

import (
	"strings"
	"time"
)

// FileName derives a deterministic, cross-platform-safe file name of the
// form {Last}_{First}_{category}_{timestamp}.{ext}. Missing names fall back
// to Unknown/Lead, the name segment is filtered to [A-Za-z0-9_-], and the
// timestamp is ISO-8601 at minute precision with colons replaced by hyphens.
func FileName(lastName, firstName, category, ext string, ts time.Time) string {
	if lastName == "" {
		lastName = "Unknown"
	}
	if firstName == "" {
		firstName = "Lead"
	}

	safeName := sanitize(lastName + "_" + firstName)
	stamp := ts.UTC().Format("2006-01-02T15-04")

	return safeName + "_" + category + "_" + stamp + "." + ext
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return -1
	}, s)
}
