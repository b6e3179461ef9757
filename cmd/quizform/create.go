package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pavelanni/quizform/internal/form"
	"github.com/pavelanni/quizform/internal/model"
	"github.com/pavelanni/quizform/internal/parser"
)

func createCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <file>",
		Short: "Create a graded quiz form from a quiz document",
		Args:  cobra.ExactArgs(1),
		RunE:  runCreate,
	}
	f := cmd.Flags()
	f.StringP("title", "t", "", "Form title (default: derived from the file name)")
	addStoreFlags(f)
	addSettingsFlags(f)
	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()
	path := args[0]

	text, data, err := readDocument(path)
	if err != nil {
		return err
	}
	doc := parser.New(parser.WithLogger(slog.Default())).Parse(text)
	if doc.QuestionCount() == 0 {
		return errors.New("no questions found in " + path)
	}
	if n := len(doc.Unrecognized); n > 0 {
		slog.Warn("ignored unrecognized lines", "path", path, "count", n)
	}

	title := v.GetString("title")
	if title == "" {
		title = form.TitleFromFilename(path)
	}

	s, err := openStore(ctx, v)
	if err != nil {
		return err
	}
	defer s.Close()

	hash := sha256sum(data)
	prev, err := s.FindImport(ctx, hash)
	if err != nil {
		return fmt.Errorf("check import history: %w", err)
	}
	if prev != nil {
		slog.Info("document was imported before, creating another form",
			"path", path, "previous_form", prev.FormID)
	}

	plan := form.BuildPlan(title, doc.Sections, settingsFromViper(v))
	res, err := form.Execute(ctx, s, plan, slog.Default())
	if err != nil {
		return err
	}

	if err := s.RecordImport(ctx, model.ImportRecord{
		FormID:       res.FormID,
		DocumentName: filepath.Base(path),
		SHA256:       hash,
	}); err != nil {
		return fmt.Errorf("record import: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Form ID:   %s\n", res.FormID)
	fmt.Fprintf(out, "Edit:      %s\n", res.EditURL)
	fmt.Fprintf(out, "Published: %s\n", res.PublishedURL)
	return nil
}
