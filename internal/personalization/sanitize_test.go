package personalization

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Amy", "Amy"},
		{"Mary-Jane O'Brien", "Mary-Jane O'Brien"},
		{"Amy<script>alert(1)</script>", "Amyscriptalert1script"},
		{"  Amy  ", "Amy"},
		{"!!!@@@", ""},
		{strings.Repeat("a", 80), strings.Repeat("a", 50)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeName(tt.in), "input %q", tt.in)
	}
}

func TestNameOrDefault(t *testing.T) {
	assert.Equal(t, "Amy", NameOrDefault("Amy"))
	assert.Equal(t, DefaultName, NameOrDefault("<>"))
	assert.Equal(t, DefaultName, NameOrDefault(""))
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "scriptalert(1)/script", SanitizeText("<script>alert(1)</script>"))
	assert.Equal(t, "line one\nline two", SanitizeText("line one\nline two\x00\x07"))
	assert.Len(t, SanitizeText(strings.Repeat("x", 5000)), 2000)
}

func TestSanitizeTextTruncatesOnRuneBoundary(t *testing.T) {
	// 1999 ASCII bytes followed by multi-byte runes puts a rune astride the
	// cap; the cut must not leave a broken rune at the end.
	in := strings.Repeat("x", 1999) + strings.Repeat("é", 10)
	out := SanitizeText(in)

	assert.True(t, utf8.ValidString(out))
	assert.LessOrEqual(t, len(out), 2000)
	assert.Equal(t, 1999, len(out), "the straddling rune is dropped whole")
}

func TestSanitizePhone(t *testing.T) {
	assert.Equal(t, "5551234567", SanitizePhone("(555) 123-4567"))
	assert.Equal(t, "15551234567", SanitizePhone("+1 555 123 4567"))
	assert.Equal(t, "", SanitizePhone("no digits"))
}
