package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"

	"github.com/pavelanni/quizform/internal/model"
)

//go:embed templates/*.txt
var templateFS embed.FS

const maxTitleRunes = 4000

var questionTagRegex = regexp.MustCompile(`(?i)</?\s*question\b[^>]*>`)

var (
	loadOnce        sync.Once
	loadErr         error
	suggestTemplate *template.Template
)

// Option is one lettered option shown to the model.
type Option struct {
	Letter string
	Text   string
}

// SuggestData holds template data for answer suggestion prompts.
type SuggestData struct {
	Title   string
	Kind    model.Kind
	Options []Option
}

// Load parses the embedded templates once.
func Load() error {
	loadOnce.Do(func() {
		content, err := templateFS.ReadFile("templates/suggest.txt")
		if err != nil {
			loadErr = errors.New("failed to read prompt file suggest.txt: " + err.Error())
			return
		}
		suggestTemplate, err = template.New("suggest").Parse(string(content))
		if err != nil {
			loadErr = errors.New("failed to parse prompt template suggest.txt: " + err.Error())
		}
	})
	return loadErr
}

// BuildSuggestPrompt renders the suggestion prompt for one question.
func BuildSuggestPrompt(q model.Question) (string, error) {
	if err := Load(); err != nil {
		return "", fmt.Errorf("templates load failed: %w", err)
	}

	data := SuggestData{Title: sanitizeTitle(q.Title), Kind: q.Type}
	if q.Type == model.KindMultipleChoice {
		for i, opt := range q.Options {
			data.Options = append(data.Options, Option{
				Letter: string(rune('A' + i)),
				Text:   sanitizeTitle(opt),
			})
		}
	}

	var buf bytes.Buffer
	if err := suggestTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func sanitizeTitle(s string) string {
	s = questionTagRegex.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if s == "" {
		return "[No question text]"
	}
	if utf8.RuneCountInString(s) > maxTitleRunes {
		runes := []rune(s)
		s = string(runes[:maxTitleRunes]) + " [truncated]"
	}
	return s
}
