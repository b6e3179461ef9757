package parser

import (
	"log/slog"
	"strings"

	"github.com/pavelanni/quizform/internal/model"
)

// Document is the full result of a parse.
type Document struct {
	Sections     []model.Section
	AnswerKey    AnswerKey
	Unrecognized []Line // non-blank body lines that were dropped
}

// QuestionCount returns the number of questions across all sections.
func (d *Document) QuestionCount() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Questions)
	}
	return n
}

// Parser converts quiz text into sections. A Parser holds no parse state and
// may be shared; each Parse call works on its own assembler.
type Parser struct {
	logger *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for debug diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) { p.logger = l }
}

// New creates a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{logger: slog.Default()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Parse is shorthand for New().Parse(text).Sections.
func Parse(text string) []model.Section {
	return New().Parse(text).Sections
}

// Parse never fails. Sections without questions are left out of the result.
func (p *Parser) Parse(text string) *Document {
	lines := SplitLines(text)
	key, bodyEnd := ExtractAnswerKey(lines)
	if bodyEnd < len(lines) {
		p.logger.Debug("answer key found", "line", bodyEnd, "entries", len(key))
	}

	a := &assembler{key: key, logger: p.logger}
	for _, l := range lines[:bodyEnd] {
		a.consume(Classify(l))
	}
	a.flushQuestion()

	return &Document{
		Sections:     a.result(),
		AnswerKey:    key,
		Unrecognized: a.unrecognized,
	}
}

type pendingQuestion struct {
	number int
	title  string
}

// assembler owns all in-progress state of one parse.
type assembler struct {
	key    AnswerKey
	logger *slog.Logger

	sections []*model.Section
	section  *model.Section
	question *pendingQuestion
	options  []string
	answer   string

	unrecognized []Line
}

func (a *assembler) consume(ev Event) {
	switch ev.Kind {
	case EventIgnorable:
	case EventSectionHeader:
		a.flushQuestion()
		a.openSection(ev.Title, SectionKind(ev.Title))
	case EventQuestionStart:
		a.flushQuestion()
		a.question = &pendingQuestion{number: ev.Number, title: ev.Title}
	case EventAnswer:
		if a.question == nil {
			a.drop(ev)
			return
		}
		a.answer = ev.Answer
	case EventOptions:
		if a.question == nil {
			a.drop(ev)
			return
		}
		a.options = append(a.options, ev.Options...)
	default:
		a.drop(ev)
	}
}

func (a *assembler) drop(ev Event) {
	a.unrecognized = append(a.unrecognized, ev.Line)
	a.logger.Debug("dropped line", "line", ev.Line.Index, "kind", ev.Kind.String(), "content", ev.Line.Raw)
}

func (a *assembler) openSection(title string, kind model.Kind) {
	s := &model.Section{Title: title, Kind: kind}
	a.sections = append(a.sections, s)
	a.section = s
}

// flushQuestion is the only path that finalizes a question.
func (a *assembler) flushQuestion() {
	if a.question == nil {
		return
	}
	if a.section == nil {
		a.openSection(model.DefaultSectionTitle, model.KindUnknown)
	}

	q := model.Question{
		Number: a.question.number,
		Title:  a.question.title,
		Type:   questionType(a.section.Kind, len(a.options)),
	}
	switch q.Type {
	case model.KindMultipleChoice:
		q.Options = append([]string(nil), a.options...)
	case model.KindTrueFalse:
		q.Options = []string{model.True, model.False}
	}
	if a.answer != "" {
		q.Answer = a.answer
	} else if ans, ok := a.key.Lookup(q.Number); ok {
		q.Answer = ans
	}

	a.section.Questions = append(a.section.Questions, q)
	a.question = nil
	a.options = nil
	a.answer = ""
}

func (a *assembler) result() []model.Section {
	out := make([]model.Section, 0, len(a.sections))
	for _, s := range a.sections {
		if len(s.Questions) == 0 {
			continue
		}
		out = append(out, *s)
	}
	return out
}

func questionType(sectionKind model.Kind, optionCount int) model.Kind {
	switch sectionKind {
	case model.KindShortAnswer, model.KindTrueFalse:
		return sectionKind
	}
	if optionCount > 0 {
		return model.KindMultipleChoice
	}
	return model.KindShortAnswer
}

// SectionKind infers a section's kind from keywords in its title.
func SectionKind(title string) model.Kind {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "true") && strings.Contains(t, "false"):
		return model.KindTrueFalse
	case strings.Contains(t, "short") && strings.Contains(t, "answer"):
		return model.KindShortAnswer
	case strings.Contains(t, "multiple") && strings.Contains(t, "choice"):
		return model.KindMultipleChoice
	default:
		return model.KindUnknown
	}
}
