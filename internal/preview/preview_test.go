package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/pavelanni/quizform/internal/i18n"
	"github.com/pavelanni/quizform/internal/llm"
	"github.com/pavelanni/quizform/internal/model"
	"github.com/pavelanni/quizform/internal/parser"
)

const sampleQuiz = `## Part 1 – Multiple choice
1. Which unit issues clearances?
A. ATC
B. AIS
2. Unresolved one
A. x
B. y
Answer: Q

## Part 2 – True/False
3. The sky is blue
stray continuation line

Answer Key
1. A
3. True
`

func testInput(t *testing.T) (context.Context, Input) {
	t.Helper()
	if err := i18n.Init("en"); err != nil {
		t.Fatalf("i18n.Init: %v", err)
	}
	doc := parser.New().Parse(sampleQuiz)
	return i18n.WithLanguage(context.Background(), "en"), Input{
		Title:    "Sample",
		Document: doc,
		Settings: model.DefaultFormSettings(),
		Suggestions: map[llm.Key]llm.Suggestion{
			{Section: 0, Question: 1}: {Answer: "B", Confidence: 0.75},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"", "text", "JSON", "yaml", "requests"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q): %v", s, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}

func TestText(t *testing.T) {
	ctx, in := testInput(t)
	out := Text(ctx, in)

	for _, want := range []string{
		"Sample\n",
		"2 sections, 3 questions",
		"Section 1: Part 1 – Multiple choice [multiple choice]",
		"A. ATC (correct)",
		"Answer: ATC",
		"Answer: Q (does not match any option)",
		"Suggested: B (confidence 0.75)",
		"Section 2: Part 2 – True/False [true/false]",
		"Answer: True",
		"1 line was not recognized and was ignored.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text preview missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "B. AIS (correct)") {
		t.Error("only the resolved option may be marked correct")
	}
}

func TestWriteJSON(t *testing.T) {
	ctx, in := testInput(t)
	var buf bytes.Buffer
	if err := Write(ctx, &buf, FormatJSON, in); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var r Report
	if err := json.Unmarshal(buf.Bytes(), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.QuestionCount != 3 || len(r.Sections) != 2 {
		t.Errorf("unexpected report %+v", r)
	}
	if len(r.Unrecognized) != 1 || r.Unrecognized[0].Content != "stray continuation line" {
		t.Errorf("unexpected unrecognized rows %+v", r.Unrecognized)
	}
	if len(r.Suggestions) != 1 || r.Suggestions[0].Question != 1 {
		t.Errorf("unexpected suggestions %+v", r.Suggestions)
	}
}

func TestWriteYAML(t *testing.T) {
	ctx, in := testInput(t)
	var buf bytes.Buffer
	if err := Write(ctx, &buf, FormatYAML, in); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var r Report
	if err := yaml.Unmarshal(buf.Bytes(), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.Title != "Sample" || r.Sections[1].Questions[0].Answer != "True" {
		t.Errorf("unexpected YAML report %+v", r)
	}
	if !strings.Contains(buf.String(), "question_count: 3") {
		t.Errorf("expected snake_case keys:\n%s", buf.String())
	}
}

func TestWriteRequests(t *testing.T) {
	ctx, in := testInput(t)
	var buf bytes.Buffer
	if err := Write(ctx, &buf, FormatRequests, in); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), `"isQuiz": true`) {
		t.Errorf("expected Forms API payload:\n%s", buf.String())
	}
}

func TestEmptyDocument(t *testing.T) {
	ctx, in := testInput(t)
	in.Document = parser.New().Parse("")
	var buf bytes.Buffer
	if err := Write(ctx, &buf, FormatJSON, in); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), `"sections": []`) {
		t.Errorf("empty document should render an empty section list:\n%s", buf.String())
	}
}
