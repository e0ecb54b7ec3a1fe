// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy allows user-generated-content markup plus tables and inline
// style on table elements. Scripts, iframes, forms, and event handler
// attributes never survive.
var policy = buildPolicy()

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("u", "s", "sub", "sup", "mark", "table", "thead", "tbody", "tfoot", "tr", "th", "td")
	p.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("style").OnElements("table", "tr", "th", "td")
	return p
}

// Sanitize strips unsafe markup from untrusted HTML.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}

// IsPlainText reports whether s carries no HTML tags.
func IsPlainText(s string) bool {
	lt := strings.Index(s, "<")
	if lt == -1 {
		return true
	}
	return !strings.Contains(s[lt:], ">")
}

// PlainTextToHTML escapes plain text and wraps it in a paragraph,
// turning newlines into line breaks.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := html.EscapeString(s)
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
}
