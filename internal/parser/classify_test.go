package parser

import (
	"reflect"
	"testing"
)

func classifyText(text string) Event {
	return Classify(Line{Raw: text, Text: text})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		kind   EventKind
		title  string
		number int
	}{
		{"blank", "", EventIgnorable, "", 0},
		{"hyphen rule", "---", EventIgnorable, "", 0},
		{"underscore rule", "______", EventIgnorable, "", 0},
		{"h1 section", "# Quiz", EventSectionHeader, "Quiz", 0},
		{"h2 section", "## **Part 1 – Multiple choice**", EventSectionHeader, "Part 1 – Multiple choice", 0},
		{"h3 part section", "### Part 2 True/False", EventSectionHeader, "Part 2 True/False", 0},
		{"h3 question", "### **3\\. What is FIS?**", EventQuestionStart, "3. What is FIS?", 3},
		{"h4 non numeric", "#### Notes", EventQuestionStart, "Notes", 0},
		{"h3 bold unnumbered", "### **Which unit provides en-route control?**", EventQuestionStart, "Which unit provides en-route control?", 0},
		{"h3 empty after markup", "### **", EventUnrecognized, "", 0},
		{"plain part", "Part 2 – True / False", EventSectionHeader, "Part 2 – True / False", 0},
		{"plain section", "SECTION 3", EventSectionHeader, "SECTION 3", 0},
		{"bold section", "**Section 4: Review**", EventSectionHeader, "Section 4: Review", 0},
		{"bold non section", "**Important**", EventUnrecognized, "", 0},
		{"question dot", "12. What is GAT?", EventQuestionStart, "12. What is GAT?", 12},
		{"question paren", "7) Name it", EventQuestionStart, "7) Name it", 7},
		{"question colon", "8: Explain", EventQuestionStart, "8: Explain", 8},
		{"answer", "Answer: B", EventAnswer, "", 0},
		{"option", "C. Something", EventOptions, "", 0},
		{"continuation", "and then some more text", EventUnrecognized, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := classifyText(tt.text)
			if ev.Kind != tt.kind {
				t.Fatalf("Classify(%q) kind = %s, want %s", tt.text, ev.Kind, tt.kind)
			}
			if ev.Title != tt.title {
				t.Errorf("Classify(%q) title = %q, want %q", tt.text, ev.Title, tt.title)
			}
			if ev.Number != tt.number {
				t.Errorf("Classify(%q) number = %d, want %d", tt.text, ev.Number, tt.number)
			}
		})
	}
}

func TestClassifyAnswer(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Answer: B", "B"},
		{"answer : True", "True"},
		{"ANS: c", "c"},
		{"Correct Answer: Balance demand and capacity", "Balance demand and capacity"},
		{"**Answer:** A", "A"},
		{"**Answer: D**", "D"},
		{"Answer：B", "B"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			ev := classifyText(tt.text)
			if ev.Kind != EventAnswer {
				t.Fatalf("Classify(%q) kind = %s, want answer", tt.text, ev.Kind)
			}
			if ev.Answer != tt.want {
				t.Errorf("Classify(%q) answer = %q, want %q", tt.text, ev.Answer, tt.want)
			}
		})
	}
}

func TestClassifyOptions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"single", "A. Reduce flight prices", []string{"Reduce flight prices"}},
		{"paren", "B) IFR only", []string{"IFR only"}},
		{"bullet", "- C. ACC", []string{"ACC"}},
		{"bold marker", "**D.** AIS", []string{"AIS"}},
		{"jammed", "A. ICAO B. EUROCONTROL C. EASA D. IATA", []string{"ICAO", "EUROCONTROL", "EASA", "IATA"}},
		{"jammed parens", "A) TWR   B) APP", []string{"TWR", "APP"}},
		{"lowercase", "a) first b) second", []string{"first", "second"}},
		{"out of sequence marker stays in text", "A. Vitamin C. Then B. Iron", []string{"Vitamin C. Then", "Iron"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := classifyText(tt.text)
			if ev.Kind != EventOptions {
				t.Fatalf("Classify(%q) kind = %s, want options", tt.text, ev.Kind)
			}
			if !reflect.DeepEqual(ev.Options, tt.want) {
				t.Errorf("Classify(%q) options = %q, want %q", tt.text, ev.Options, tt.want)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	if got := SplitLines(""); len(got) != 0 {
		t.Errorf("expected no lines for empty input, got %d", len(got))
	}
	if got := SplitLines("\uFEFF"); len(got) != 0 {
		t.Errorf("expected no lines for a lone BOM, got %d", len(got))
	}

	lines := SplitLines("\uFEFFfirst\r\n\n  \u200Bthird  ")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0].Text != "first" || lines[0].Raw != "first" {
		t.Errorf("unexpected first line %+v", lines[0])
	}
	if !lines[1].Blank() {
		t.Errorf("expected blank second line, got %+v", lines[1])
	}
	if lines[2].Index != 2 || lines[2].Text != "third" {
		t.Errorf("unexpected third line %+v", lines[2])
	}
	if lines[2].Raw != "  \u200Bthird  " {
		t.Errorf("raw content should be preserved, got %q", lines[2].Raw)
	}
}
