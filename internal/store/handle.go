package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pavelanni/quizform/internal/form"
	"github.com/pavelanni/quizform/internal/model"
)

// ErrTooFewChoices is returned for single-select items with under two choices.
var ErrTooFewChoices = errors.New("single-select item needs at least two choices")

// formHandle appends items to one form. Positions follow call order.
type formHandle struct {
	s    *Store
	id   string
	next int
}

func (h *formHandle) ID() string { return h.id }

func (h *formHandle) EditURL() string { return h.s.EditURL(h.id) }

func (h *formHandle) PublishedURL() string { return h.s.PublishedURL(h.id) }

func (h *formHandle) SetDescription(ctx context.Context, description string) error {
	_, err := h.s.db.ExecContext(ctx,
		`UPDATE forms SET description = $1 WHERE id = $2`, description, h.id)
	return err
}

func (h *formHandle) AddSingleSelectItem(ctx context.Context, title string, choices []form.Choice, required bool, points int) error {
	if len(choices) < 2 {
		return ErrTooFewChoices
	}

	tx, err := h.s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	itemID := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO form_items (id, form_id, position, kind, title, required, points)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		itemID, h.id, h.next, model.ItemSingleSelect, title, required, points,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	for i, c := range choices {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO form_choices (item_id, position, text, correct) VALUES ($1, $2, $3, $4)`,
			itemID, i, c.Text, c.Correct,
		)
		if err != nil {
			return fmt.Errorf("insert choice %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	h.next++
	return nil
}

func (h *formHandle) AddTextItem(ctx context.Context, title string, required bool) error {
	return h.addPlain(ctx, model.ItemText, title, required)
}

func (h *formHandle) AddPageBreak(ctx context.Context, title string) error {
	return h.addPlain(ctx, model.ItemPageBreak, title, false)
}

func (h *formHandle) addPlain(ctx context.Context, kind model.ItemKind, title string, required bool) error {
	_, err := h.s.db.ExecContext(ctx,
		`INSERT INTO form_items (id, form_id, position, kind, title, required, points)
		 VALUES ($1, $2, $3, $4, $5, $6, 0)`,
		uuid.NewString(), h.id, h.next, kind, title, required,
	)
	if err != nil {
		return fmt.Errorf("insert %s: %w", kind, err)
	}
	h.next++
	return nil
}

func (h *formHandle) ApplySettings(ctx context.Context, settings model.FormSettings) error {
	return h.s.setSettings(ctx, h.id, settings)
}

func (h *formHandle) SetResponseReceipts(ctx context.Context, mode model.ReceiptMode) error {
	return h.s.setResponseReceipts(ctx, h.id, mode)
}

func (h *formHandle) Discard(ctx context.Context) error {
	return h.s.DeleteForm(ctx, h.id)
}
