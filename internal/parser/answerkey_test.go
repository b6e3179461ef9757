package parser

import (
	"testing"
)

func TestExtractAnswerKey(t *testing.T) {
	text := `1. Body question
A. x

Answer Key
---
1. B – because it is
2. c - lowercase letter
3: true
4) FALSE.
5. A CTR starts at the surface
6. A
not an entry
7.
8. B –
2. D — overwritten`

	lines := SplitLines(text)
	key, start := ExtractAnswerKey(lines)

	if start != 3 {
		t.Errorf("expected key to start at line 3, got %d", start)
	}

	want := map[int]string{
		1: "B",
		2: "D",
		3: "True",
		4: "False",
		5: "A CTR starts at the surface",
		6: "A",
		8: "B",
	}
	if len(key) != len(want) {
		t.Errorf("expected %d entries, got %d: %v", len(want), len(key), key)
	}
	for n, w := range want {
		if got := key[n]; got != w {
			t.Errorf("key[%d] = %q, want %q", n, got, w)
		}
	}
}

func TestExtractAnswerKeyMissing(t *testing.T) {
	lines := SplitLines("1. Q\nA. x\nAnswer: A")
	key, start := ExtractAnswerKey(lines)
	if len(key) != 0 {
		t.Errorf("expected empty key, got %v", key)
	}
	if start != len(lines) {
		t.Errorf("expected body to span all %d lines, got %d", len(lines), start)
	}
}

func TestAnswerKeyHeaders(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Answer Key", true},
		{"ANSWER KEYS", true},
		{"answers", true},
		{"Answers:", true},
		{"Answer", false},
		{"*Answer*", false},
		{"**Answer**", false},
		{"## Answer Key", true},
		{"**Answer Key**", true},
		{"Answer: B", false},
		{"*Answer:*", false},
		{"Answer key for part 1", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := isAnswerKeyHeader(tt.text); got != tt.want {
				t.Errorf("isAnswerKeyHeader(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestAnswerKeyLookup(t *testing.T) {
	key := AnswerKey{3: "C"}
	if _, ok := key.Lookup(0); ok {
		t.Error("number 0 must never match")
	}
	if got, ok := key.Lookup(3); !ok || got != "C" {
		t.Errorf("Lookup(3) = %q, %v", got, ok)
	}
}
