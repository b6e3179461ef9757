package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/pavelanni/quizform/internal/handler"
	appI18n "github.com/pavelanni/quizform/internal/i18n"
	"github.com/pavelanni/quizform/internal/model"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the upload web UI and preview API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.StringP("lang", "l", "en", "Default UI language (en, ru)")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /quiz)")
	f.Bool("secure-cookies", true, "Set Secure flag on cookies")
	f.StringSlice("cors-origins", nil, "Origins allowed to call the preview API (default: any)")
	addStoreFlags(f)
	addSettingsFlags(f)
	return cmd
}

func normalizeBasePath(p string) string {
	p = strings.TrimRight(p, "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	s, err := openStore(ctx, v)
	if err != nil {
		return err
	}
	defer s.Close()

	basePath := normalizeBasePath(v.GetString("base-path"))
	cfg := model.ServeConfig{
		BasePath:      basePath,
		SecureCookies: v.GetBool("secure-cookies"),
		Settings:      settingsFromViper(v),
		CORSOrigins:   v.GetStringSlice("cors-origins"),
	}

	h, err := handler.New(s, cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if basePath != "" {
		r.Route(basePath, h.Routes)
		r.Get(basePath, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
		})
	} else {
		h.Routes(r)
	}

	addr := v.GetString("addr")
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			"addr", addr,
			"lang", lang,
			"languages", appI18n.Supported(),
			"db_driver", s.Driver(),
			"base_path", basePath,
			"secure_cookies", cfg.SecureCookies,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
