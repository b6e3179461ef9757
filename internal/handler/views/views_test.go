package views

import (
	"context"
	"strings"
	"testing"

	"github.com/pavelanni/quizform/internal/i18n"
	"github.com/pavelanni/quizform/internal/model"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	if err := i18n.Init("en"); err != nil {
		t.Fatalf("i18n.Init: %v", err)
	}
	ctx := i18n.WithLanguage(context.Background(), "en")
	return model.ContextWithBasePath(ctx, "/quiz")
}

func sampleForm() *model.StoredForm {
	return &model.StoredForm{
		ID:          "f1",
		Title:       "Week <1>",
		Description: "Part 1",
		Items: []model.StoredItem{
			{Position: 0, Kind: model.ItemSingleSelect, Title: "1. Pick", Required: true, Points: 1,
				Choices: []model.StoredChoice{{Text: "A & B"}, {Text: "C", Correct: true}}},
			{Position: 1, Kind: model.ItemPageBreak, Title: "Part 2"},
			{Position: 2, Kind: model.ItemText, Title: "2. Explain", Required: true},
		},
	}
}

func TestFormPage(t *testing.T) {
	ctx := testContext(t)

	var edit strings.Builder
	if err := FormPage(sampleForm(), true).Render(ctx, &edit); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := edit.String()
	for _, want := range []string{
		"<h1>Week &lt;1&gt;</h1>",
		`<label class="correct"><input type="radio" name="item-0" value="1"> C</label>`,
		"A &amp; B",
		"<hr><h2>Part 2</h2>",
		`<input type="text" name="item-2">`,
		`href="/quiz/forms"`,
		"(required, 1 point)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("edit view missing %q:\n%s", want, out)
		}
	}

	var published strings.Builder
	if err := FormPage(sampleForm(), false).Render(ctx, &published); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(published.String(), `class="correct"`) || strings.Contains(published.String(), "1 point") {
		t.Errorf("published view must not reveal answers:\n%s", published.String())
	}
}

func TestIndexPage(t *testing.T) {
	ctx := model.ContextWithCSRFToken(testContext(t), `tok"en`)

	var sb strings.Builder
	if err := IndexPage("ErrorNoQuestions").Render(ctx, &sb); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := sb.String()
	for _, want := range []string{
		`action="/quiz/create"`,
		`name="csrf_token" value="tok&#34;en"`,
		`<p class="error">`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("index page missing %q:\n%s", want, out)
		}
	}
}

func TestFormsPageEmpty(t *testing.T) {
	ctx := testContext(t)
	var sb strings.Builder
	if err := FormsPage(nil).Render(ctx, &sb); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(sb.String(), "<table>") {
		t.Errorf("empty list should not render a table:\n%s", sb.String())
	}
}
