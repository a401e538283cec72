package article

import (
	"strings"

	"mvdan.cc/xurls/v2"
)

//nolint:gochecknoglobals // Compiled once, read-only.
var webURLRe = xurls.Strict()

// FindPageURL returns the first http(s) link in a message or "".
func FindPageURL(text string) string {
	for _, match := range webURLRe.FindAllString(strings.TrimSpace(text), -1) {
		lower := strings.ToLower(match)
		if strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://") {
			return strings.TrimSpace(match)
		}
	}

	return ""
}
