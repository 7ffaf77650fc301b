package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "  Jane Doe  ", "Jane Doe"},
		{"tags", "<b>Jane</b> <i>Doe</i>", "Jane Doe"},
		{"script", "Jane<script>alert('x')</script>", "Jane"},
		{"style", "<style>p{color:red}</style>Pune", "Pune"},
		{"entities", "Tom &amp; Jerry&nbsp;", "Tom & Jerry"},
		{"only markup", "<p></p>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, String(tt.input))
		})
	}
}

func TestOptionalString(t *testing.T) {
	assert.Nil(t, OptionalString("   "))
	assert.Nil(t, OptionalString("<br>"))

	got := OptionalString(" MG Road ")
	if assert.NotNil(t, got) {
		assert.Equal(t, "MG Road", *got)
	}
}

func TestHTML(t *testing.T) {
	in := `<p class="x" onclick="evil()">Fasting <strong>required</strong></p><script>bad()</script><a href="http://x">link</a><img src=x>`
	assert.Equal(t, "<p>Fasting <strong>required</strong></p>link", HTML(in))
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com", Email("  Jane@Example.COM "))
	assert.Equal(t, "", Email("not-an-email"))
	assert.Equal(t, "", Email(""))
}

func TestPhone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"+91 98765-43210", "919876543210"},
		{"9876543210", "9876543210"},
		{"987654321", ""},
		{"1234567890123456", ""},
		{"123456789012345", "123456789012345"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Phone(tt.input))
		})
	}
}

func TestURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/rx.pdf", URL(" https://cdn.example.com/rx.pdf "))
	assert.Equal(t, "", URL("cdn.example.com/rx.pdf"))
	assert.Equal(t, "", URL("javascript:alert(1)"))
	assert.Equal(t, "", URL(""))
}

func TestColor(t *testing.T) {
	assert.Equal(t, "#10b981", Color("#10b981"))
	assert.Equal(t, "#fff", Color(" #fff "))
	assert.Equal(t, "", Color("red"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, 500, len([]rune(Truncate(strings.Repeat("é", 600), 500))))
}
