package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/quizform/internal/form"
	appI18n "github.com/pavelanni/quizform/internal/i18n"
	"github.com/pavelanni/quizform/internal/llm"
	"github.com/pavelanni/quizform/internal/parser"
	"github.com/pavelanni/quizform/internal/preview"
)

func previewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Parse a quiz document and show what would be created",
		Args:  cobra.ExactArgs(1),
		RunE:  runPreview,
	}
	f := cmd.Flags()
	f.StringP("format", "f", string(preview.FormatText), "Output format (text, json, yaml, requests)")
	f.StringP("title", "t", "", "Form title (default: derived from the file name)")
	f.StringP("lang", "l", "en", "Output language (en, ru)")
	f.BoolP("watch", "w", false, "Re-render whenever the file changes")
	f.Bool("suggest", false, "Ask an LLM to suggest answers for unanswered questions")
	f.String("llm-url", "http://localhost:11434/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "ollama", "API key for LLM")
	f.String("llm-model", "llama3.2", "LLM model name")
	addSettingsFlags(f)
	return cmd
}

type previewRunner struct {
	path   string
	title  string
	format preview.Format
	lang   string
	v      *viper.Viper
	parser *parser.Parser
	llm    *llm.Client
	out    io.Writer
	logger *slog.Logger
}

func runPreview(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	format, err := preview.ParseFormat(v.GetString("format"))
	if err != nil {
		return err
	}
	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	title := v.GetString("title")
	if title == "" {
		title = form.TitleFromFilename(args[0])
	}

	r := &previewRunner{
		path:   args[0],
		title:  title,
		format: format,
		lang:   lang,
		v:      v,
		parser: parser.New(parser.WithLogger(slog.Default())),
		out:    cmd.OutOrStdout(),
		logger: slog.Default(),
	}
	if v.GetBool("suggest") {
		r.llm = llm.New(v.GetString("llm-url"), v.GetString("llm-key"), v.GetString("llm-model"))
		if err := r.llm.Ping(ctx); err != nil {
			return fmt.Errorf("LLM health check: %w", err)
		}
		slog.Info("LLM endpoint OK", "url", v.GetString("llm-url"), "model", v.GetString("llm-model"))
	}

	if err := r.render(ctx); err != nil {
		return err
	}
	if !v.GetBool("watch") {
		return nil
	}
	return r.watch(ctx)
}

func (r *previewRunner) render(ctx context.Context) error {
	text, _, err := readDocument(r.path)
	if err != nil {
		return err
	}
	doc := r.parser.Parse(text)
	in := preview.Input{
		Title:    r.title,
		Document: doc,
		Settings: settingsFromViper(r.v),
	}
	if r.llm != nil {
		in.Suggestions = r.llm.SuggestMissing(ctx, doc.Sections, r.logger)
	}
	return preview.Write(appI18n.WithLanguage(ctx, r.lang), r.out, r.format, in)
}

// watch re-renders the preview on every change to the file. The parent
// directory is watched because editors often replace files on save.
func (r *previewRunner) watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(r.path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	r.logger.Info("watching for changes", "path", abs)

	// Editors emit bursts of events per save; render once they settle.
	const settle = 100 * time.Millisecond
	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			timer = time.After(settle)
		case <-timer:
			timer = nil
			fmt.Fprintln(r.out)
			if err := r.render(ctx); err != nil {
				r.logger.Warn("preview failed", "path", abs, "error", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("watch error", "error", err)
		}
	}
}

