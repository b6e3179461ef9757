package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/quizform/internal/form"
	"github.com/pavelanni/quizform/internal/model"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

// Driver selects the SQL backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

const DefaultBaseURL = "http://localhost:8080"

// ErrNotFound is returned when a form does not exist.
var ErrNotFound = errors.New("form not found")

// ParseDriver validates a driver name.
func ParseDriver(s string) (Driver, error) {
	switch d := Driver(strings.ToLower(s)); d {
	case DriverSQLite, DriverPostgres:
		return d, nil
	case "", "sqlite3":
		return DriverSQLite, nil
	case "pgx", "postgresql":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("unsupported db driver %q", s)
	}
}

// Config describes how to open a Store.
type Config struct {
	Driver  Driver
	DSN     string
	BaseURL string
	Logger  *slog.Logger
}

// Store is the local form service. It keeps created forms in SQL and hands
// out form.Handle values for building them.
type Store struct {
	db      *sql.DB
	driver  Driver
	baseURL string
	logger  *slog.Logger
}

// New opens the database and ensures the schema exists.
func New(ctx context.Context, cfg Config) (*Store, error) {
	var drvName, dsn string
	switch cfg.Driver {
	case DriverSQLite, "":
		cfg.Driver = DriverSQLite
		drvName = "sqlite"
		dsn = cfg.DSN
		if dsn == "" {
			dsn = "quizform.db"
		}
		if !strings.Contains(dsn, "?") {
			dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx"
		dsn = cfg.DSN
		if dsn == "" {
			dsn = "postgres://localhost:5432/quizform?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.Driver == DriverSQLite {
		// One connection keeps :memory: databases shared and writes serialized.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{db: db, driver: cfg.Driver, baseURL: baseURL, logger: logger}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Driver reports the backend in use.
func (s *Store) Driver() Driver {
	return s.driver
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS forms (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS form_settings (
		form_id TEXT NOT NULL REFERENCES forms(id) ON DELETE CASCADE,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (form_id, key)
	);

	CREATE TABLE IF NOT EXISTS form_items (
		id TEXT PRIMARY KEY,
		form_id TEXT NOT NULL REFERENCES forms(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		kind TEXT NOT NULL,
		title TEXT NOT NULL,
		required BOOLEAN NOT NULL DEFAULT FALSE,
		points INTEGER NOT NULL DEFAULT 0,
		UNIQUE (form_id, position)
	);

	CREATE TABLE IF NOT EXISTS form_choices (
		item_id TEXT NOT NULL REFERENCES form_items(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		text TEXT NOT NULL,
		correct BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (item_id, position)
	);

	CREATE TABLE IF NOT EXISTS imports (
		form_id TEXT NOT NULL REFERENCES forms(id) ON DELETE CASCADE,
		document_name TEXT NOT NULL,
		sha256 TEXT NOT NULL,
		created_at BIGINT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS imports_sha256 ON imports (sha256);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Create starts a new, empty form.
func (s *Store) Create(ctx context.Context, title string) (form.Handle, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO forms (id, title, created_at) VALUES ($1, $2, $3)`,
		id, title, time.Now().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert form: %w", err)
	}
	s.logger.Debug("form created", "form_id", id, "title", title)
	return &formHandle{s: s, id: id}, nil
}

// DeleteForm removes a form with its settings, items, choices and import
// records. Dependent rows are deleted explicitly so the result does not rely
// on foreign key enforcement being enabled.
func (s *Store) DeleteForm(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`DELETE FROM form_choices WHERE item_id IN (SELECT id FROM form_items WHERE form_id = $1)`,
		`DELETE FROM form_items WHERE form_id = $1`,
		`DELETE FROM form_settings WHERE form_id = $1`,
		`DELETE FROM imports WHERE form_id = $1`,
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("delete form %s: %w", id, err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM forms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete form %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug("form deleted", "form_id", id)
	return nil
}

// EditURL returns the edit address of a form.
func (s *Store) EditURL(id string) string {
	return s.baseURL + "/forms/" + id + "/edit"
}

// PublishedURL returns the responder address of a form.
func (s *Store) PublishedURL(id string) string {
	return s.baseURL + "/forms/" + id + "/viewform"
}

// ListForms returns all forms, newest first, without their items.
func (s *Store) ListForms(ctx context.Context) ([]model.StoredForm, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, created_at FROM forms ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var forms []model.StoredForm
	for rows.Next() {
		f, err := s.scanForm(rows)
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range forms {
		if forms[i].Settings, err = s.GetSettings(ctx, forms[i].ID); err != nil {
			return nil, err
		}
	}
	return forms, nil
}

// GetForm returns a form with its settings and ordered items.
func (s *Store) GetForm(ctx context.Context, id string) (*model.StoredForm, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, created_at FROM forms WHERE id = $1`, id)
	f, err := s.scanForm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if f.Settings, err = s.GetSettings(ctx, id); err != nil {
		return nil, err
	}
	if f.Items, err = s.listItems(ctx, id); err != nil {
		return nil, err
	}
	return &f, nil
}

// FormCount returns the number of stored forms.
func (s *Store) FormCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM forms`).Scan(&count)
	return count, err
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanForm(sc scanner) (model.StoredForm, error) {
	var f model.StoredForm
	var created int64
	if err := sc.Scan(&f.ID, &f.Title, &f.Description, &created); err != nil {
		return f, err
	}
	f.CreatedAt = time.Unix(created, 0).UTC()
	f.EditURL = s.EditURL(f.ID)
	f.PublishedURL = s.PublishedURL(f.ID)
	return f, nil
}

func (s *Store) listItems(ctx context.Context, formID string) ([]model.StoredItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, position, kind, title, required, points
		 FROM form_items WHERE form_id = $1 ORDER BY position`, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.StoredItem
	for rows.Next() {
		var it model.StoredItem
		if err := rows.Scan(&it.ID, &it.Position, &it.Kind, &it.Title, &it.Required, &it.Points); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range items {
		if items[i].Kind != model.ItemSingleSelect {
			continue
		}
		if items[i].Choices, err = s.listChoices(ctx, items[i].ID); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (s *Store) listChoices(ctx context.Context, itemID string) ([]model.StoredChoice, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT text, correct FROM form_choices WHERE item_id = $1 ORDER BY position`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var choices []model.StoredChoice
	for rows.Next() {
		var c model.StoredChoice
		if err := rows.Scan(&c.Text, &c.Correct); err != nil {
			return nil, err
		}
		choices = append(choices, c)
	}
	return choices, rows.Err()
}

// RecordImport remembers the document a form was built from.
func (s *Store) RecordImport(ctx context.Context, rec model.ImportRecord) error {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO imports (form_id, document_name, sha256, created_at) VALUES ($1, $2, $3, $4)`,
		rec.FormID, rec.DocumentName, rec.SHA256, created.Unix(),
	)
	return err
}

// FindImport returns the most recent import of a document hash, or nil when
// the document was never imported.
func (s *Store) FindImport(ctx context.Context, sha string) (*model.ImportRecord, error) {
	var rec model.ImportRecord
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT form_id, document_name, sha256, created_at
		 FROM imports WHERE sha256 = $1 ORDER BY created_at DESC LIMIT 1`, sha,
	).Scan(&rec.FormID, &rec.DocumentName, &rec.SHA256, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = time.Unix(created, 0).UTC()
	return &rec, nil
}

// ListImports returns the import history, newest first.
func (s *Store) ListImports(ctx context.Context) ([]model.ImportRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT form_id, document_name, sha256, created_at FROM imports ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var recs []model.ImportRecord
	for rows.Next() {
		var rec model.ImportRecord
		var created int64
		if err := rows.Scan(&rec.FormID, &rec.DocumentName, &rec.SHA256, &created); err != nil {
			return nil, err
		}
		rec.CreatedAt = time.Unix(created, 0).UTC()
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
