package parser

import "testing"

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"**bold**", "bold"},
		{"*italic* text", "italic text"},
		{"***both***", "both"},
		{`1\. Escaped`, "1. Escaped"},
		{"  lots   of\tspace  ", "lots of space"},
		{"** B", "B"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := StripMarkdown(tt.in); got != tt.want {
				t.Errorf("StripMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripMarkdownIsIdempotent(t *testing.T) {
	inputs := []string{
		"**a** *b* ***c***",
		`\\.`,
		"a** *b*",
		"*x**y*",
		"5 * 3 * 2",
		"**",
		"*",
		"### **1\\. Question**",
	}
	for _, in := range inputs {
		once := StripMarkdown(in)
		if twice := StripMarkdown(once); twice != once {
			t.Errorf("StripMarkdown not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
