package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pavelanni/quizform/internal/model"
	"github.com/pavelanni/quizform/internal/store"
)

func formsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "Inspect forms in the local form store",
	}
	addStoreFlags(cmd.PersistentFlags())

	list := &cobra.Command{
		Use:   "list",
		Short: "List created forms",
		Args:  cobra.NoArgs,
		RunE:  runFormsList,
	}
	list.Flags().Bool("imports", false, "List imported documents instead of forms")

	show := &cobra.Command{
		Use:   "show <form-id>",
		Short: "Show one form as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runFormsShow,
	}

	export := &cobra.Command{
		Use:   "export",
		Short: "Export all forms as JSON",
		Args:  cobra.NoArgs,
		RunE:  runFormsExport,
	}
	export.Flags().StringP("output", "o", "-", "Output file path (- for stdout)")

	cmd.AddCommand(list, show, export)
	return cmd
}

func runFormsList(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	s, err := openStore(ctx, v)
	if err != nil {
		return err
	}
	defer s.Close()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	if v.GetBool("imports") {
		imports, err := s.ListImports(ctx)
		if err != nil {
			return fmt.Errorf("list imports: %w", err)
		}
		fmt.Fprintln(tw, "IMPORTED\tDOCUMENT\tFORM\tSHA256")
		for _, rec := range imports {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.12s\n",
				rec.CreatedAt.Format("2006-01-02 15:04"), rec.DocumentName, rec.FormID, rec.SHA256)
		}
		return tw.Flush()
	}

	forms, err := s.ListForms(ctx)
	if err != nil {
		return fmt.Errorf("list forms: %w", err)
	}
	fmt.Fprintln(tw, "ID\tCREATED\tTITLE\tEDIT")
	for _, f := range forms {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			f.ID, f.CreatedAt.Format("2006-01-02 15:04"), f.Title, s.EditURL(f.ID))
	}
	return tw.Flush()
}

func runFormsShow(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	s, err := openStore(ctx, v)
	if err != nil {
		return err
	}
	defer s.Close()

	f, err := s.GetForm(ctx, args[0])
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("form %s does not exist", args[0])
	}
	if err != nil {
		return fmt.Errorf("load form: %w", err)
	}
	return writeJSON(cmd.OutOrStdout(), f)
}

func runFormsExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	s, err := openStore(ctx, v)
	if err != nil {
		return err
	}
	defer s.Close()

	forms, err := s.ExportForms(ctx)
	if err != nil {
		return fmt.Errorf("export forms: %w", err)
	}
	if forms == nil {
		forms = []model.StoredForm{}
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = cmd.OutOrStdout()
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return writeJSON(w, forms)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)
	return nil
}
