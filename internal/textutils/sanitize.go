// Package textutils provides text sanitization for transaction descriptions.
// Statement descriptions come from uncontrolled bank exports and end up in
// the staging review UI, so markup and dangerous URI schemes are stripped.
package textutils

import (
	"regexp"
	"strings"
)

// MaxDescriptionLength is the fixed ceiling a sanitized description is
// truncated to.
const MaxDescriptionLength = 500

var (
	scriptBlockPattern = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	styleBlockPattern  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	tagPattern         = regexp.MustCompile(`<[^>]*>`)
	schemePattern      = regexp.MustCompile(`(?i)^(?:javascript|data|vbscript):\s*`)
)

// SanitizeDescription cleans a raw description for safe storage and display.
// It strips script and style blocks, any remaining tags, dangerous URI scheme
// prefixes, and control characters, then trims and truncates the result.
// An empty result means the row has no usable description.
func SanitizeDescription(raw string) string {
	s := scriptBlockPattern.ReplaceAllString(raw, "")
	s = styleBlockPattern.ReplaceAllString(s, "")
	s = tagPattern.ReplaceAllString(s, "")

	// Repeat so "javascript:javascript:..." does not survive one pass.
	for schemePattern.MatchString(s) {
		s = schemePattern.ReplaceAllString(s, "")
	}

	s = stripControlCharacters(s)
	s = strings.TrimSpace(s)

	if len(s) > MaxDescriptionLength {
		s = s[:MaxDescriptionLength]
	}
	return s
}

// stripControlCharacters removes ASCII control characters, keeping printable
// text intact. Tabs and newlines become spaces so adjacent words do not fuse;
// descriptions are single line by the time they reach the ledger.
func stripControlCharacters(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteRune(' ')
		case r < 0x20 || r == 0x7f:
			// drop
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
