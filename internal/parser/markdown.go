package parser

import (
	"regexp"
	"strings"
)

var (
	boldPair      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicPair    = regexp.MustCompile(`\*([^*]+)\*`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// StripMarkdown removes bold and italic markers, unescapes `\.`, and
// collapses whitespace. StripMarkdown(StripMarkdown(s)) == StripMarkdown(s).
func StripMarkdown(s string) string {
	for {
		next := stripMarkdownOnce(s)
		if next == s {
			return next
		}
		s = next
	}
}

func stripMarkdownOnce(s string) string {
	s = boldPair.ReplaceAllString(s, "$1")
	s = italicPair.ReplaceAllString(s, "$1")
	// Unpaired bold markers, e.g. "**Answer:** B" split by the answer matcher.
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, `\.`, ".")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
