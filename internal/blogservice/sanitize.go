package blogservice

import (
	"regexp"
	"strings"
)

var scriptTagRX = regexp.MustCompile(`(?is)<\s*script[^>]*>.*?<\s*/\s*script\s*>`)

// sanitizeText drops script elements and surrounding whitespace.
func sanitizeText(s string) string {
	return strings.TrimSpace(scriptTagRX.ReplaceAllString(s, ""))
}
