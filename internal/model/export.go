package model

import "time"

// StoredForm is a form kept by the local form service, as listed or exported.
type StoredForm struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Settings     FormSettings `json:"settings"`
	EditURL      string       `json:"edit_url"`
	PublishedURL string       `json:"published_url"`
	CreatedAt    time.Time    `json:"created_at"`
	Items        []StoredItem `json:"items,omitempty"`
}

// ItemKind distinguishes stored form items.
type ItemKind string

const (
	ItemSingleSelect ItemKind = "single_select"
	ItemText         ItemKind = "text"
	ItemPageBreak    ItemKind = "page_break"
)

// StoredItem is one positioned item of a stored form.
type StoredItem struct {
	ID       string         `json:"id"`
	Position int            `json:"position"`
	Kind     ItemKind       `json:"kind"`
	Title    string         `json:"title"`
	Required bool           `json:"required"`
	Points   int            `json:"points"`
	Choices  []StoredChoice `json:"choices,omitempty"`
}

// StoredChoice is one choice of a single-select item.
type StoredChoice struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// ImportRecord remembers which document a form was built from.
type ImportRecord struct {
	FormID       string    `json:"form_id"`
	DocumentName string    `json:"document_name"`
	SHA256       string    `json:"sha256"`
	CreatedAt    time.Time `json:"created_at"`
}
