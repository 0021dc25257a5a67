// Package markup turns chat text into display markup and reveals that markup
// with a typewriter effect that never splits a tag.
package markup

import (
	"html"
	"regexp"
	"strings"
)

// LineBreak is the marker Format inserts for every newline.
const LineBreak = "<br>"

// Applied in order; the ampersand must go first so later entities are not
// escaped twice.
var escapes = []struct{ from, to string }{
	{"&", "&amp;"},
	{"<", "&lt;"},
	{">", "&gt;"},
	{`"`, "&quot;"},
	{"'", "&#39;"},
}

var (
	breakPattern = regexp.MustCompile(`(?i)<br\s*/?>`)
	anyTag       = regexp.MustCompile(`<[^>]*>`)
)

// Format escapes raw text and converts newlines to line breaks. The result is
// safe to use as markup: every character that could open a tag has been
// neutralized before the breaks are inserted.
func Format(raw string) string {
	escaped := raw
	for _, e := range escapes {
		escaped = strings.ReplaceAll(escaped, e.from, e.to)
	}
	return strings.ReplaceAll(escaped, "\n", LineBreak)
}

// ToText renders markup for a plain-text surface such as a terminal: line
// breaks become newlines, any other tag is dropped and entities are decoded.
func ToText(markup string) string {
	text := breakPattern.ReplaceAllString(markup, "\n")
	text = anyTag.ReplaceAllString(text, "")
	return html.UnescapeString(text)
}
