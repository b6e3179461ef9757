package form

import (
	"context"
	"fmt"
	"log/slog"
)

// Result describes a form that was built from a plan.
type Result struct {
	FormID       string `json:"form_id"`
	EditURL      string `json:"edit_url"`
	PublishedURL string `json:"published_url"`
	Items        int    `json:"items"`
}

// Execute plays a plan against svc in order. A failure to create the form or
// any item aborts the run and discards the partly built form; the
// response-receipt setting is applied last and only logged when the service
// rejects it.
func Execute(ctx context.Context, svc Service, p *Plan, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	h, err := svc.Create(ctx, p.Title)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrCreateForm, p.Title, err)
	}
	abort := func(err error) (*Result, error) {
		// The run's context may already be canceled.
		if derr := h.Discard(context.WithoutCancel(ctx)); derr != nil {
			logger.Error("failed to discard incomplete form", "form_id", h.ID(), "error", derr)
		} else {
			logger.Warn("discarded incomplete form", "form_id", h.ID(), "error", err)
		}
		return nil, err
	}

	if p.Description != "" {
		if err := h.SetDescription(ctx, p.Description); err != nil {
			return abort(fmt.Errorf("%w: set description: %w", ErrCreateForm, err))
		}
	}
	if err := h.ApplySettings(ctx, p.Settings); err != nil {
		return abort(fmt.Errorf("%w: apply settings: %w", ErrCreateForm, err))
	}

	for i, in := range p.Instructions {
		if err := ctx.Err(); err != nil {
			return abort(err)
		}
		var err error
		switch in.Op {
		case OpPageBreak:
			err = h.AddPageBreak(ctx, in.Title)
		case OpSingleSelect:
			err = h.AddSingleSelectItem(ctx, in.Title, in.Choices, in.Required, in.Points)
		case OpText:
			err = h.AddTextItem(ctx, in.Title, in.Required)
		default:
			err = fmt.Errorf("unknown instruction %q", in.Op)
		}
		if err != nil {
			return abort(fmt.Errorf("%w %d (%s %q): %w", ErrCreateItem, i, in.Op, in.Title, err))
		}
		logger.Debug("form item added", "form_id", h.ID(), "index", i, "op", in.Op)
	}

	if err := h.SetResponseReceipts(ctx, p.Settings.ResponseReceipts); err != nil {
		logger.Warn("response receipts not applied",
			"form_id", h.ID(), "mode", p.Settings.ResponseReceipts, "error", err)
	}

	logger.Info("form created", "form_id", h.ID(), "items", len(p.Instructions))
	return &Result{
		FormID:       h.ID(),
		EditURL:      h.EditURL(),
		PublishedURL: h.PublishedURL(),
		Items:        len(p.Instructions),
	}, nil
}
