package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pavelanni/quizform/internal/model"
	"github.com/pavelanni/quizform/internal/store"
)

func main() {
	// A missing .env is normal; only report files that fail to parse.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("error loading .env", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "quizform",
		Short:        "Turn plain-text quizzes into graded quiz forms",
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-format", "text", "Log format (text, json)")

	root.AddCommand(previewCmd(), createCmd(), serveCmd(), formsCmd())
	return root
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())
	_ = v.BindPFlags(cmd.InheritedFlags())

	v.SetEnvPrefix("QUIZFORM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("quizform")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/quizform")
	v.AddConfigPath("/etc/quizform")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// addSettingsFlags registers the per-form settings applied to every created form.
func addSettingsFlags(f *pflag.FlagSet) {
	def := model.DefaultFormSettings()
	f.Bool("collect-respondent-id", def.CollectRespondentID, "Collect respondent email addresses")
	f.Bool("allow-edits", def.AllowEdits, "Allow respondents to edit responses after submitting")
	f.Bool("one-response-per-respondent", def.OneResponsePerRespondent, "Limit each respondent to one response")
	f.String("response-receipts", string(def.ResponseReceipts), "Response receipts (off, when-requested)")
}

func settingsFromViper(v *viper.Viper) model.FormSettings {
	return model.FormSettings{
		CollectRespondentID:      v.GetBool("collect-respondent-id"),
		AllowEdits:               v.GetBool("allow-edits"),
		OneResponsePerRespondent: v.GetBool("one-response-per-respondent"),
		ResponseReceipts:         model.ParseReceiptMode(v.GetString("response-receipts")),
	}
}

func addStoreFlags(f *pflag.FlagSet) {
	f.String("db-driver", string(store.DriverSQLite), "Database driver (sqlite, postgres)")
	f.String("db", "quizform.db", "Database DSN (SQLite path or Postgres URL)")
	f.String("base-url", store.DefaultBaseURL, "Base URL used in form edit and view links")
}

func openStore(ctx context.Context, v *viper.Viper) (*store.Store, error) {
	driver, err := store.ParseDriver(v.GetString("db-driver"))
	if err != nil {
		return nil, err
	}
	s, err := store.New(ctx, store.Config{
		Driver:  driver,
		DSN:     v.GetString("db"),
		BaseURL: v.GetString("base-url"),
		Logger:  slog.Default(),
	})
	if err != nil {
		return nil, fmt.Errorf("open form store: %w", err)
	}
	return s, nil
}

// readDocument loads a quiz file as UTF-8 text without a byte order mark.
func readDocument(path string) (string, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", path, err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", nil, fmt.Errorf("read %s: not UTF-8 text", path)
	}
	return string(data), data, nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
