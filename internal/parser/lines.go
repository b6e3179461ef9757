// Package parser turns loosely formatted quiz documents (word-processor text
// exports or Markdown) into sections of typed questions.
//
// Parsing never fails: lines that cannot be recognized are dropped and
// ambiguous decisions fall back to safe defaults, so messy input still yields
// a best-guess model.
package parser

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const byteOrderMark = "\uFEFF"

// invisible lists zero-width and bidi control characters that word processors
// scatter through exported text.
var invisible = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00AD, Hi: 0x00AD, Stride: 1},
		{Lo: 0x061C, Hi: 0x061C, Stride: 1},
		{Lo: 0x200B, Hi: 0x200F, Stride: 1},
		{Lo: 0x202A, Hi: 0x202E, Stride: 1},
		{Lo: 0x2060, Hi: 0x2064, Stride: 1},
		{Lo: 0x2066, Hi: 0x2069, Stride: 1},
		{Lo: 0xFEFF, Hi: 0xFEFF, Stride: 1},
	},
}

// Line is one input line. Raw keeps the original content for diagnostics;
// Text is what the matchers see.
type Line struct {
	Index int
	Raw   string
	Text  string
}

// Blank reports whether the line has no visible content.
func (l Line) Blank() bool {
	return l.Text == ""
}

// SplitLines removes a leading byte-order mark and splits text into lines.
// Empty lines are kept; empty input yields no lines.
func SplitLines(text string) []Line {
	text = strings.TrimPrefix(text, byteOrderMark)
	if text == "" {
		return nil
	}
	parts := strings.Split(text, "\n")
	lines := make([]Line, 0, len(parts))
	for i, raw := range parts {
		raw = strings.TrimSuffix(raw, "\r")
		lines = append(lines, Line{
			Index: i,
			Raw:   raw,
			Text:  strings.TrimSpace(StripInvisible(raw)),
		})
	}
	return lines
}

// StripInvisible removes zero-width and directionality marks.
func StripInvisible(s string) string {
	out, _, err := transform.String(runes.Remove(runes.In(invisible)), s)
	if err != nil {
		return s
	}
	return out
}
