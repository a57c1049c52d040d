package personalization

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLength = 50
	maxTextLength = 2000
)

// DefaultName is used when a caller-supplied name sanitizes to nothing.
const DefaultName = "my love"

var nameAllowed = regexp.MustCompile(`[^a-zA-Z0-9\s'-]`)

// SanitizeName strips everything outside the letters/digits/space/'/- set
// and caps the result at 50 characters. An empty result stays empty; callers
// that need a fallback use DefaultName.
func SanitizeName(name string) string {
	clean := nameAllowed.ReplaceAllString(name, "")
	clean = strings.TrimSpace(clean)
	if len(clean) > maxNameLength {
		clean = strings.TrimSpace(clean[:maxNameLength])
	}
	return clean
}

// NameOrDefault sanitizes a name and falls back to DefaultName when nothing
// survives.
func NameOrDefault(name string) string {
	if clean := SanitizeName(name); clean != "" {
		return clean
	}
	return DefaultName
}

// SanitizeText strips angle brackets and control characters from free text
// and caps the length. Applied to every free-text field before storage or
// interpolation.
func SanitizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '<' || r == '>' {
			continue
		}
		if r < 0x20 && r != '\n' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	clean := strings.TrimSpace(b.String())
	if len(clean) > maxTextLength {
		clean = truncateRunes(clean, maxTextLength)
	}
	return clean
}

// truncateRunes cuts s to at most max bytes without splitting a multi-byte
// rune at the boundary.
func truncateRunes(s string, max int) string {
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// SanitizePhone keeps only digits, the canonical stored phone form.
func SanitizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
