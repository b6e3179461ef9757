package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pavelanni/quizform/internal/form"
	"github.com/pavelanni/quizform/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(context.Background(), Config{
		Driver:  DriverSQLite,
		DSN:     ":memory:",
		BaseURL: "http://forms.test/",
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestForm(t *testing.T, s *Store, title string) form.Handle {
	t.Helper()
	h, err := s.Create(context.Background(), title)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return h
}

func TestParseDriver(t *testing.T) {
	tests := []struct {
		in      string
		want    Driver
		wantErr bool
	}{
		{"", DriverSQLite, false},
		{"sqlite", DriverSQLite, false},
		{"SQLite3", DriverSQLite, false},
		{"postgres", DriverPostgres, false},
		{"pgx", DriverPostgres, false},
		{"mysql", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDriver(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDriver(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseDriver(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewUnsupportedDriver(t *testing.T) {
	if _, err := New(context.Background(), Config{Driver: "oracle"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestFormLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	count, err := s.FormCount(ctx)
	if err != nil {
		t.Fatalf("FormCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 forms, got %d", count)
	}

	h := createTestForm(t, s, "Quiz")
	if err := h.SetDescription(ctx, "Part 1"); err != nil {
		t.Fatalf("SetDescription: %v", err)
	}
	choices := []form.Choice{{Text: "Paris", Correct: true}, {Text: "London"}}
	if err := h.AddSingleSelectItem(ctx, "1. Capital?", choices, true, 1); err != nil {
		t.Fatalf("AddSingleSelectItem: %v", err)
	}
	if err := h.AddPageBreak(ctx, "Part 2"); err != nil {
		t.Fatalf("AddPageBreak: %v", err)
	}
	if err := h.AddTextItem(ctx, "2. Explain", true); err != nil {
		t.Fatalf("AddTextItem: %v", err)
	}

	f, err := s.GetForm(ctx, h.ID())
	if err != nil {
		t.Fatalf("GetForm: %v", err)
	}
	if f.Title != "Quiz" || f.Description != "Part 1" {
		t.Errorf("unexpected form header %q / %q", f.Title, f.Description)
	}
	if f.EditURL != "http://forms.test/forms/"+h.ID()+"/edit" {
		t.Errorf("unexpected edit URL %q", f.EditURL)
	}
	if h.PublishedURL() != f.PublishedURL {
		t.Errorf("handle URL %q differs from stored %q", h.PublishedURL(), f.PublishedURL)
	}
	if time.Since(f.CreatedAt) > time.Minute {
		t.Errorf("unexpected created_at %v", f.CreatedAt)
	}

	if len(f.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(f.Items))
	}
	wantKinds := []model.ItemKind{model.ItemSingleSelect, model.ItemPageBreak, model.ItemText}
	for i, it := range f.Items {
		if it.Position != i {
			t.Errorf("item %d position = %d", i, it.Position)
		}
		if it.Kind != wantKinds[i] {
			t.Errorf("item %d kind = %s, want %s", i, it.Kind, wantKinds[i])
		}
	}
	sel := f.Items[0]
	if !sel.Required || sel.Points != 1 || len(sel.Choices) != 2 {
		t.Errorf("unexpected single-select item %+v", sel)
	}
	if !sel.Choices[0].Correct || sel.Choices[1].Correct || sel.Choices[0].Text != "Paris" {
		t.Errorf("unexpected choices %+v", sel.Choices)
	}
	if f.Items[1].Required {
		t.Error("page break must not be required")
	}

	count, _ = s.FormCount(ctx)
	if count != 1 {
		t.Errorf("expected 1 form, got %d", count)
	}
}

func TestGetFormNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetForm(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSingleSelectNeedsTwoChoices(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	h := createTestForm(t, s, "Quiz")

	err := h.AddSingleSelectItem(ctx, "lonely", []form.Choice{{Text: "only"}}, true, 0)
	if !errors.Is(err, ErrTooFewChoices) {
		t.Fatalf("expected ErrTooFewChoices, got %v", err)
	}

	// A rejected item does not consume a position.
	if err := h.AddTextItem(ctx, "next", true); err != nil {
		t.Fatalf("AddTextItem: %v", err)
	}
	f, err := s.GetForm(ctx, h.ID())
	if err != nil {
		t.Fatalf("GetForm: %v", err)
	}
	if len(f.Items) != 1 || f.Items[0].Position != 0 {
		t.Errorf("unexpected items %+v", f.Items)
	}
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	h := createTestForm(t, s, "Quiz")

	got, err := s.GetSettings(ctx, h.ID())
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if got != (model.FormSettings{ResponseReceipts: model.ReceiptsOff}) {
		t.Errorf("unexpected settings before apply: %+v", got)
	}

	settings := model.DefaultFormSettings()
	settings.AllowEdits = true
	if err := h.ApplySettings(ctx, settings); err != nil {
		t.Fatalf("ApplySettings: %v", err)
	}
	if err := h.SetResponseReceipts(ctx, settings.ResponseReceipts); err != nil {
		t.Fatalf("SetResponseReceipts: %v", err)
	}

	got, err = s.GetSettings(ctx, h.ID())
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if got != settings {
		t.Errorf("settings = %+v, want %+v", got, settings)
	}

	// Applying again overwrites.
	settings.AllowEdits = false
	if err := h.ApplySettings(ctx, settings); err != nil {
		t.Fatalf("ApplySettings: %v", err)
	}
	got, _ = s.GetSettings(ctx, h.ID())
	if got.AllowEdits {
		t.Error("expected allow edits to be overwritten")
	}
}

func TestReceiptsRequireRespondentID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	h := createTestForm(t, s, "Quiz")

	settings := model.DefaultFormSettings()
	settings.CollectRespondentID = false
	if err := h.ApplySettings(ctx, settings); err != nil {
		t.Fatalf("ApplySettings: %v", err)
	}
	err := h.SetResponseReceipts(ctx, model.ReceiptsWhenRequested)
	if !errors.Is(err, ErrReceiptsNeedRespondentID) {
		t.Fatalf("expected ErrReceiptsNeedRespondentID, got %v", err)
	}
	if err := h.SetResponseReceipts(ctx, model.ReceiptsOff); err != nil {
		t.Fatalf("receipts off should always apply: %v", err)
	}
}

func TestExecuteAgainstStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sections := []model.Section{
		{Title: "Part 1", Questions: []model.Question{
			{Title: "1. Q", Type: model.KindMultipleChoice, Options: []string{"a", "b", "c"}, Answer: "C"},
		}},
		{Title: "Part 2", Questions: []model.Question{
			{Title: "2. TF", Type: model.KindTrueFalse, Options: []string{model.True, model.False}, Answer: "False"},
			{Title: "3. SA", Type: model.KindShortAnswer},
		}},
	}
	settings := model.DefaultFormSettings()
	settings.CollectRespondentID = false // receipts will be rejected and ignored
	plan := form.BuildPlan("Stored", sections, settings)

	res, err := form.Execute(ctx, s, plan, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	f, err := s.GetForm(ctx, res.FormID)
	if err != nil {
		t.Fatalf("GetForm: %v", err)
	}
	if f.Description != "Part 1" || len(f.Items) != 4 {
		t.Fatalf("unexpected stored form %+v", f)
	}
	if !f.Items[0].Choices[2].Correct {
		t.Errorf("expected third choice correct, got %+v", f.Items[0].Choices)
	}
	if f.Items[1].Kind != model.ItemPageBreak || f.Items[1].Title != "Part 2" {
		t.Errorf("expected page break, got %+v", f.Items[1])
	}
	if !f.Items[2].Choices[1].Correct {
		t.Errorf("expected False correct, got %+v", f.Items[2].Choices)
	}
	if f.Settings.ResponseReceipts != model.ReceiptsOff {
		t.Errorf("rejected receipts should read as off, got %q", f.Settings.ResponseReceipts)
	}
}

func TestImports(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.FindImport(ctx, "abc")
	if err != nil {
		t.Fatalf("FindImport: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected no import, got %+v", rec)
	}

	h := createTestForm(t, s, "Quiz")
	older := time.Now().Add(-time.Hour)
	if err := s.RecordImport(ctx, model.ImportRecord{FormID: h.ID(), DocumentName: "quiz.md", SHA256: "abc", CreatedAt: older}); err != nil {
		t.Fatalf("RecordImport: %v", err)
	}
	h2 := createTestForm(t, s, "Quiz again")
	if err := s.RecordImport(ctx, model.ImportRecord{FormID: h2.ID(), DocumentName: "quiz.md", SHA256: "abc"}); err != nil {
		t.Fatalf("RecordImport: %v", err)
	}

	rec, err = s.FindImport(ctx, "abc")
	if err != nil {
		t.Fatalf("FindImport: %v", err)
	}
	if rec == nil || rec.FormID != h2.ID() {
		t.Errorf("expected newest import for %s, got %+v", h2.ID(), rec)
	}

	recs, err := s.ListImports(ctx)
	if err != nil {
		t.Fatalf("ListImports: %v", err)
	}
	if len(recs) != 2 || recs[1].FormID != h.ID() {
		t.Errorf("unexpected import history %+v", recs)
	}
}

func TestExportForms(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"A", "B"} {
		h := createTestForm(t, s, title)
		if err := h.AddTextItem(ctx, "q", true); err != nil {
			t.Fatalf("AddTextItem: %v", err)
		}
	}

	forms, err := s.ListForms(ctx)
	if err != nil {
		t.Fatalf("ListForms: %v", err)
	}
	if len(forms) != 2 {
		t.Fatalf("expected 2 forms, got %d", len(forms))
	}
	for _, f := range forms {
		if f.Items != nil {
			t.Errorf("ListForms should not load items, got %+v", f.Items)
		}
	}

	exported, err := s.ExportForms(ctx)
	if err != nil {
		t.Fatalf("ExportForms: %v", err)
	}
	if len(exported) != 2 {
		t.Fatalf("expected 2 exported forms, got %d", len(exported))
	}
	for _, f := range exported {
		if len(f.Items) != 1 {
			t.Errorf("form %s: expected 1 item, got %d", f.Title, len(f.Items))
		}
	}
}

func TestExecuteDiscardsIncompleteForm(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	plan := &form.Plan{
		Title:       "Broken",
		Description: "Part 1",
		Settings:    model.DefaultFormSettings(),
		Instructions: []form.Instruction{
			{Op: form.OpText, Title: "1. Fine", Required: true},
			{Op: form.OpSingleSelect, Title: "2. One choice", Choices: []form.Choice{{Text: "only", Correct: true}}, Required: true, Points: 1},
		},
	}
	_, err := form.Execute(ctx, s, plan, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if !errors.Is(err, form.ErrCreateItem) || !errors.Is(err, ErrTooFewChoices) {
		t.Fatalf("expected item failure, got %v", err)
	}

	forms, err := s.ListForms(ctx)
	if err != nil {
		t.Fatalf("ListForms: %v", err)
	}
	if len(forms) != 0 {
		t.Errorf("incomplete form left in store: %+v", forms)
	}
	var items int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM form_items`).Scan(&items); err != nil {
		t.Fatalf("count items: %v", err)
	}
	if items != 0 {
		t.Errorf("expected no items left, got %d", items)
	}
}

func TestDeleteForm(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	h := createTestForm(t, s, "Doomed")
	if err := h.AddSingleSelectItem(ctx, "1. Q", []form.Choice{{Text: "a", Correct: true}, {Text: "b"}}, true, 1); err != nil {
		t.Fatalf("AddSingleSelectItem: %v", err)
	}
	if err := h.ApplySettings(ctx, model.DefaultFormSettings()); err != nil {
		t.Fatalf("ApplySettings: %v", err)
	}
	if err := s.RecordImport(ctx, model.ImportRecord{FormID: h.ID(), DocumentName: "quiz.md", SHA256: "abc"}); err != nil {
		t.Fatalf("RecordImport: %v", err)
	}
	keep := createTestForm(t, s, "Kept")

	if err := h.Discard(ctx); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if _, err := s.GetForm(ctx, h.ID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteForm(ctx, h.ID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}

	for table, want := range map[string]int{"form_choices": 0, "form_items": 0, "form_settings": 0, "imports": 0, "forms": 1} {
		var n int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != want {
			t.Errorf("%s: %d rows left, want %d", table, n, want)
		}
	}
	if _, err := s.GetForm(ctx, keep.ID()); err != nil {
		t.Errorf("unrelated form removed: %v", err)
	}
}
