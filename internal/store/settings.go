package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/pavelanni/quizform/internal/model"
)

const (
	keyCollectRespondentID      = "collect_respondent_id"
	keyAllowEdits               = "allow_edits"
	keyOneResponsePerRespondent = "one_response_per_respondent"
	keyResponseReceipts         = "response_receipts"
)

// ErrReceiptsNeedRespondentID mirrors the remote service, which refuses
// response receipts unless respondent identification is collected.
var ErrReceiptsNeedRespondentID = errors.New("response receipts require collecting respondent id")

// setSetting upserts a key-value pair for a form.
func (s *Store) setSetting(ctx context.Context, formID, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO form_settings (form_id, key, value) VALUES ($1, $2, $3)
		 ON CONFLICT (form_id, key) DO UPDATE SET value = EXCLUDED.value`,
		formID, key, value,
	)
	return err
}

// getSetting returns the value for a key.
// Returns empty string and nil error if the key is missing.
func (s *Store) getSetting(ctx context.Context, formID, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM form_settings WHERE form_id = $1 AND key = $2`, formID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// setSettings stores every setting except response receipts.
func (s *Store) setSettings(ctx context.Context, formID string, settings model.FormSettings) error {
	pairs := []struct{ k, v string }{
		{keyCollectRespondentID, strconv.FormatBool(settings.CollectRespondentID)},
		{keyAllowEdits, strconv.FormatBool(settings.AllowEdits)},
		{keyOneResponsePerRespondent, strconv.FormatBool(settings.OneResponsePerRespondent)},
	}
	for _, p := range pairs {
		if err := s.setSetting(ctx, formID, p.k, p.v); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) setResponseReceipts(ctx context.Context, formID string, mode model.ReceiptMode) error {
	if mode == model.ReceiptsWhenRequested {
		collect, err := s.getSetting(ctx, formID, keyCollectRespondentID)
		if err != nil {
			return err
		}
		if ok, _ := strconv.ParseBool(collect); !ok {
			return ErrReceiptsNeedRespondentID
		}
	}
	return s.setSetting(ctx, formID, keyResponseReceipts, string(mode))
}

// GetSettings reads a form's settings. Receipts that were never applied
// read as off.
func (s *Store) GetSettings(ctx context.Context, formID string) (model.FormSettings, error) {
	settings := model.FormSettings{ResponseReceipts: model.ReceiptsOff}
	bools := []struct {
		key string
		dst *bool
	}{
		{keyCollectRespondentID, &settings.CollectRespondentID},
		{keyAllowEdits, &settings.AllowEdits},
		{keyOneResponsePerRespondent, &settings.OneResponsePerRespondent},
	}
	for _, b := range bools {
		v, err := s.getSetting(ctx, formID, b.key)
		if err != nil {
			return settings, err
		}
		if v != "" {
			if *b.dst, err = strconv.ParseBool(v); err != nil {
				return settings, err
			}
		}
	}

	receipts, err := s.getSetting(ctx, formID, keyResponseReceipts)
	if err != nil {
		return settings, err
	}
	if receipts != "" {
		settings.ResponseReceipts = model.ParseReceiptMode(receipts)
	}
	return settings, nil
}
