package store

import (
	"context"
	"fmt"

	"github.com/pavelanni/quizform/internal/model"
)

// ExportForms returns every stored form with its items, newest first.
func (s *Store) ExportForms(ctx context.Context) ([]model.StoredForm, error) {
	forms, err := s.ListForms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}

	results := make([]model.StoredForm, 0, len(forms))
	for _, f := range forms {
		full, err := s.GetForm(ctx, f.ID)
		if err != nil {
			return nil, fmt.Errorf("get form %s: %w", f.ID, err)
		}
		results = append(results, *full)
	}
	return results, nil
}
