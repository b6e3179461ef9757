// Package preview renders a parsed quiz document for people and tools.
package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pavelanni/quizform/internal/form"
	"github.com/pavelanni/quizform/internal/i18n"
	"github.com/pavelanni/quizform/internal/llm"
	"github.com/pavelanni/quizform/internal/model"
	"github.com/pavelanni/quizform/internal/parser"
)

// Format selects a preview rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatRequests Format = "requests"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML, FormatRequests:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown preview format %q (want text, json, yaml or requests)", s)
	}
}

// Input is everything a preview may show.
type Input struct {
	Title       string
	Document    *parser.Document
	Settings    model.FormSettings
	Suggestions map[llm.Key]llm.Suggestion
}

// Report is the machine-readable preview.
type Report struct {
	Title         string            `json:"title" yaml:"title"`
	QuestionCount int               `json:"question_count" yaml:"question_count"`
	Sections      []model.Section   `json:"sections" yaml:"sections"`
	Unrecognized  []UnrecognizedRow `json:"unrecognized,omitempty" yaml:"unrecognized,omitempty"`
	Suggestions   []SuggestionRow   `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

type UnrecognizedRow struct {
	Line    int    `json:"line" yaml:"line"`
	Content string `json:"content" yaml:"content"`
}

type SuggestionRow struct {
	Section    int     `json:"section" yaml:"section"`
	Question   int     `json:"question" yaml:"question"`
	Answer     string  `json:"answer" yaml:"answer"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Reason     string  `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// NewReport builds the machine-readable preview of in.
func NewReport(in Input) Report {
	r := Report{
		Title:         in.Title,
		QuestionCount: in.Document.QuestionCount(),
		Sections:      in.Document.Sections,
	}
	if r.Sections == nil {
		r.Sections = []model.Section{}
	}
	for _, l := range in.Document.Unrecognized {
		r.Unrecognized = append(r.Unrecognized, UnrecognizedRow{Line: l.Index + 1, Content: l.Raw})
	}
	for si, sec := range in.Document.Sections {
		for qi := range sec.Questions {
			s, ok := in.Suggestions[llm.Key{Section: si, Question: qi}]
			if !ok {
				continue
			}
			r.Suggestions = append(r.Suggestions, SuggestionRow{
				Section: si, Question: qi,
				Answer: s.Answer, Confidence: s.Confidence, Reason: s.Reason,
			})
		}
	}
	return r
}

// Write renders in to w in the given format.
func Write(ctx context.Context, w io.Writer, f Format, in Input) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewReport(in))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewReport(in)); err != nil {
			return err
		}
		return enc.Close()
	case FormatRequests:
		plan := form.BuildPlan(in.Title, in.Document.Sections, in.Settings)
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(form.RenderRequests(plan))
	default:
		_, err := io.WriteString(w, Text(ctx, in))
		return err
	}
}

// Text renders the localized human-readable listing.
func Text(ctx context.Context, in Input) string {
	var sb strings.Builder
	doc := in.Document

	if in.Title != "" {
		sb.WriteString(in.Title + "\n")
	}
	sb.WriteString(i18n.Tp(ctx, "SectionCount", len(doc.Sections)))
	sb.WriteString(", ")
	sb.WriteString(i18n.Tp(ctx, "QuestionCount", doc.QuestionCount()))
	sb.WriteString("\n")

	for si, sec := range doc.Sections {
		sb.WriteString("\n")
		sb.WriteString(i18n.Td(ctx, "SectionTitle", map[string]any{"N": si + 1, "Title": sec.Title}))
		sb.WriteString(" [" + KindLabel(ctx, sec.Kind) + "]\n")

		for qi, q := range sec.Questions {
			sb.WriteString("  " + q.Title + "  [" + KindLabel(ctx, q.Type) + "]\n")
			correct, resolved := ResolveAnswer(q)
			if q.Type == model.KindMultipleChoice {
				for oi, opt := range q.Options {
					line := fmt.Sprintf("    %c. %s", 'A'+oi, opt)
					if resolved && opt == correct {
						line += " " + i18n.T(ctx, "ChoiceCorrect")
					}
					sb.WriteString(line + "\n")
				}
			}
			sb.WriteString("    " + answerLine(ctx, q, correct, resolved) + "\n")
			if s, ok := in.Suggestions[llm.Key{Section: si, Question: qi}]; ok {
				sb.WriteString("    " + i18n.Td(ctx, "SuggestedAnswer", map[string]any{
					"Answer":     s.Answer,
					"Confidence": fmt.Sprintf("%.2f", s.Confidence),
				}) + "\n")
			}
		}
	}

	if n := len(doc.Unrecognized); n > 0 {
		sb.WriteString("\n" + i18n.Tp(ctx, "IgnoredLines", n) + "\n")
	}
	return sb.String()
}

// ResolveAnswer returns the normalized answer of a gradable question.
func ResolveAnswer(q model.Question) (string, bool) {
	switch q.Type {
	case model.KindMultipleChoice:
		return form.NormalizeAnswer(q.Answer, q.Options)
	case model.KindTrueFalse:
		return form.NormalizeTrueFalse(q.Answer)
	default:
		return q.Answer, q.HasAnswer()
	}
}

func answerLine(ctx context.Context, q model.Question, correct string, resolved bool) string {
	switch {
	case !q.HasAnswer():
		return i18n.T(ctx, "NoAnswer")
	case resolved:
		return i18n.Td(ctx, "AnswerLine", map[string]any{"Answer": correct})
	default:
		return i18n.Td(ctx, "UnresolvedAnswer", map[string]any{"Answer": q.Answer})
	}
}

// KindLabel returns the localized name of a question or section kind.
func KindLabel(ctx context.Context, k model.Kind) string {
	switch k {
	case model.KindMultipleChoice:
		return i18n.T(ctx, "KindMultipleChoice")
	case model.KindTrueFalse:
		return i18n.T(ctx, "KindTrueFalse")
	case model.KindShortAnswer:
		return i18n.T(ctx, "KindShortAnswer")
	default:
		return i18n.T(ctx, "KindUnknown")
	}
}
