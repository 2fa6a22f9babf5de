package textfmt

import (
	"regexp"
	"strings"
)

// Rule is a single ordered substitution applied to chat text.
type Rule struct {
	Pattern *regexp.Regexp
	Replace string
}

// rules are applied strictly in order. LLM output arrives with markdown
// artifacts the chat transport does not render; the rules reduce it to
// plain conversational text.
var rules = []Rule{
	// fenced code blocks, keep inner text
	{regexp.MustCompile("(?s)```[a-zA-Z]*\n?(.*?)```"), "$1"},
	// headings
	{regexp.MustCompile(`(?m)^#{1,6}\s+`), ""},
	// bold and italics
	{regexp.MustCompile(`\*\*([^*]+)\*\*`), "$1"},
	{regexp.MustCompile(`__([^_]+)__`), "$1"},
	{regexp.MustCompile(`\*([^*\n]+)\*`), "$1"},
	{regexp.MustCompile("`([^`]+)`"), "$1"},
	// markdown links: keep the label, drop the URL wrapper
	{regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`), "$1"},
	// bullet markers to a plain dash
	{regexp.MustCompile(`(?m)^\s*[*•]\s+`), "- "},
	// emoji shortcodes
	{regexp.MustCompile(`:[a-z_]+:`), ""},
	// collapse runs of blank lines
	{regexp.MustCompile(`\n{3,}`), "\n\n"},
}

// Normalize applies the substitution rules in order and trims the result.
func Normalize(s string) string {
	for _, r := range rules {
		s = r.Pattern.ReplaceAllString(s, r.Replace)
	}
	return strings.TrimSpace(s)
}
