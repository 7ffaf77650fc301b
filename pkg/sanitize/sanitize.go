// Package sanitize normalizes untrusted user input before it is stored.
package sanitize

import (
	"html"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	scriptBlock = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	styleBlock  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`)
	anyTag      = regexp.MustCompile(`<[^>]+>`)
	namedTag    = regexp.MustCompile(`(?i)<(/?)([a-z][a-z0-9]*)\b[^>]*>`)
	nonDigit    = regexp.MustCompile(`\D`)
	hexColor    = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// AllowedHTMLTags are kept (without attributes) by HTML
var AllowedHTMLTags = map[string]bool{
	"p": true, "br": true, "strong": true, "em": true, "u": true,
	"ul": true, "ol": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

var validate = validator.New()

// String removes script/style blocks and every tag, decodes entities and
// trims the result
func String(input string) string {
	s := scriptBlock.ReplaceAllString(input, "")
	s = styleBlock.ReplaceAllString(s, "")
	s = anyTag.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}

// OptionalString sanitizes input and returns nil when nothing is left
func OptionalString(input string) *string {
	s := String(input)
	if s == "" {
		return nil
	}
	return &s
}

// HTML keeps the tags in AllowedHTMLTags, strips their attributes and drops
// everything else
func HTML(input string) string {
	s := scriptBlock.ReplaceAllString(input, "")
	s = styleBlock.ReplaceAllString(s, "")
	s = namedTag.ReplaceAllStringFunc(s, func(tag string) string {
		m := namedTag.FindStringSubmatch(tag)
		name := strings.ToLower(m[2])
		if !AllowedHTMLTags[name] {
			return ""
		}
		return "<" + m[1] + name + ">"
	})
	return strings.TrimSpace(s)
}

// Email lowercases and validates an address; invalid input yields ""
func Email(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" || validate.Var(s, "email") != nil {
		return ""
	}
	return s
}

// Phone keeps the digits of input when there are 10 to 15 of them
func Phone(input string) string {
	digits := nonDigit.ReplaceAllString(input, "")
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return ""
	}
	return digits
}

// URL returns the trimmed input when it is an absolute http(s) URL
func URL(input string) string {
	s := strings.TrimSpace(input)
	if s == "" || validate.Var(s, "http_url") != nil {
		return ""
	}
	return s
}

// Color accepts #rgb and #rrggbb hex colors
func Color(input string) string {
	s := strings.TrimSpace(input)
	if !hexColor.MatchString(s) {
		return ""
	}
	return s
}

// Truncate cuts s to at most n runes
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
