package textutils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeDescription(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain text unchanged", "TARGET STORE #1234", "TARGET STORE #1234"},
		{"Trims whitespace", "  Starbucks  ", "Starbucks"},
		{"Strips script block", "Coffee<script>alert('x')</script> Shop", "Coffee Shop"},
		{"Strips script block case insensitive", "A<SCRIPT src=x>bad</SCRIPT>B", "AB"},
		{"Strips style block", "Rent<style>body{}</style> Payment", "Rent Payment"},
		{"Strips remaining tags", "<b>Grocery</b> <i>Run</i>", "Grocery Run"},
		{"Strips javascript prefix", "javascript:alert(1)", "alert(1)"},
		{"Strips data prefix", "data:text/html,payload", "text/html,payload"},
		{"Strips vbscript prefix", "VBSCRIPT:MsgBox", "MsgBox"},
		{"Strips nested scheme prefixes", "javascript:javascript:alert(1)", "alert(1)"},
		{"Strips control characters", "AMZN\x00 Mktp\x1f US", "AMZN Mktp US"},
		{"Newlines become spaces", "Line1\nLine2", "Line1 Line2"},
		{"Empty input", "", ""},
		{"Only markup", "<script>only</script>", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SanitizeDescription(tc.input))
		})
	}
}

func TestSanitizeDescriptionTruncates(t *testing.T) {
	long := strings.Repeat("a", MaxDescriptionLength+100)
	result := SanitizeDescription(long)
	assert.Len(t, result, MaxDescriptionLength)
}
