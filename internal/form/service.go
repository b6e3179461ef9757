package form

import (
	"context"
	"errors"

	"github.com/pavelanni/quizform/internal/model"
)

var (
	// ErrCreateForm is returned when the form itself cannot be created.
	ErrCreateForm = errors.New("create form")
	// ErrCreateItem is returned when adding an item to a created form fails.
	ErrCreateItem = errors.New("create form item")
)

// Service creates quiz forms.
type Service interface {
	Create(ctx context.Context, title string) (Handle, error)
}

// Handle is a single form under construction.
type Handle interface {
	ID() string
	SetDescription(ctx context.Context, description string) error
	AddSingleSelectItem(ctx context.Context, title string, choices []Choice, required bool, points int) error
	AddTextItem(ctx context.Context, title string, required bool) error
	AddPageBreak(ctx context.Context, title string) error
	// ApplySettings stores every setting except response receipts.
	ApplySettings(ctx context.Context, settings model.FormSettings) error
	SetResponseReceipts(ctx context.Context, mode model.ReceiptMode) error
	// Discard removes a form that could not be completed.
	Discard(ctx context.Context) error
	EditURL() string
	PublishedURL() string
}
