// Package views renders the web UI pages.
package views

//go:generate templ generate

import (
	"context"
	"strconv"
	"strings"

	"github.com/pavelanni/quizform/internal/i18n"
	"github.com/pavelanni/quizform/internal/model"
)

// pageURL prefixes an application path with the deployment base path.
func pageURL(ctx context.Context, path string) string {
	return model.BasePathFromContext(ctx) + path
}

func fieldName(it model.StoredItem) string {
	return "item-" + strconv.Itoa(it.Position)
}

func choiceValue(i int) string {
	return strconv.Itoa(i)
}

// itemNote lists the required flag and, in the edit view, the point value.
func itemNote(ctx context.Context, it model.StoredItem, edit bool) string {
	var parts []string
	if it.Required {
		parts = append(parts, i18n.T(ctx, "Required"))
	}
	if edit && it.Points > 0 {
		parts = append(parts, i18n.Tp(ctx, "Points", it.Points))
	}
	return strings.Join(parts, ", ")
}
