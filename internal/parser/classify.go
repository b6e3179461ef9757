package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// EventKind is the classification of a single body line.
type EventKind int

const (
	EventIgnorable EventKind = iota
	EventSectionHeader
	EventQuestionStart
	EventAnswer
	EventOptions
	EventUnrecognized
)

func (k EventKind) String() string {
	switch k {
	case EventIgnorable:
		return "ignorable"
	case EventSectionHeader:
		return "section"
	case EventQuestionStart:
		return "question"
	case EventAnswer:
		return "answer"
	case EventOptions:
		return "options"
	default:
		return "unrecognized"
	}
}

// Event is a classified line. Only the fields relevant to Kind are set.
type Event struct {
	Kind    EventKind
	Line    Line
	Title   string   // section or question title
	Number  int      // leading question numeral, 0 if none
	Answer  string   // raw inline answer
	Options []string // option texts in line order
}

var (
	rulePattern      = regexp.MustCompile(`^(?:-{3,}|_{3,})$`)
	headingPattern   = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	sectionPattern   = regexp.MustCompile(`(?i)^(?:part|section)\s+\d+`)
	plainSectionLine = regexp.MustCompile(`(?i)^\*{0,2}(?:part|section)\s+\d+`)
	boldLinePattern  = regexp.MustCompile(`^\*\*(.+)\*\*$`)
	questionPattern  = regexp.MustCompile(`^(\d+)\s*[.:)]\s*(.*)$`)
	leadingNumber    = regexp.MustCompile(`^(\d+)`)
	answerPattern    = regexp.MustCompile(`(?i)^(?:\*\*)?(?:answer|correct\s*answer|ans)\s*[:：]\s*(.+?)\s*(?:\*\*)?$`)
	optionLead       = regexp.MustCompile(`^(?:[-+*]\s+)?([A-Ha-h])[.)]\s+`)
	optionInline     = regexp.MustCompile(`\s([A-Ha-h])[.)]\s+`)
)

// Classify assigns a line its event. Checks run in priority order; the first
// match wins and anything left over is EventUnrecognized.
func Classify(l Line) Event {
	text := l.Text
	ev := Event{Kind: EventUnrecognized, Line: l}

	if text == "" || isRule(text) {
		ev.Kind = EventIgnorable
		return ev
	}

	if m := headingPattern.FindStringSubmatch(text); m != nil {
		level := len(m[1])
		title := StripMarkdown(m[2])
		switch {
		case level <= 2 || (level == 3 && sectionPattern.MatchString(title)):
			ev.Kind = EventSectionHeader
			ev.Title = title
		case title != "":
			// Deeper headings are questions, numbered or not.
			ev.Kind = EventQuestionStart
			ev.Title = title
			ev.Number = leadingNumeral(title)
		}
		return ev
	}

	if plainSectionLine.MatchString(text) {
		ev.Kind = EventSectionHeader
		ev.Title = StripMarkdown(text)
		return ev
	}

	if m := boldLinePattern.FindStringSubmatch(text); m != nil {
		if inner := StripMarkdown(m[1]); sectionPattern.MatchString(inner) {
			ev.Kind = EventSectionHeader
			ev.Title = inner
			return ev
		}
	}

	stripped := StripMarkdown(text)

	if questionPattern.MatchString(stripped) {
		ev.Kind = EventQuestionStart
		ev.Title = stripped
		ev.Number = leadingNumeral(stripped)
		return ev
	}

	if m := answerPattern.FindStringSubmatch(text); m != nil {
		if answer := StripMarkdown(m[1]); answer != "" {
			ev.Kind = EventAnswer
			ev.Answer = answer
			return ev
		}
	}

	if opts := splitOptions(stripped); len(opts) > 0 {
		ev.Kind = EventOptions
		ev.Options = opts
		return ev
	}

	return ev
}

func isRule(text string) bool {
	return rulePattern.MatchString(text)
}

func leadingNumeral(s string) int {
	m := leadingNumber.FindString(s)
	n, err := strconv.Atoi(m)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

type span struct{ start, end int }

// splitOptions extracts one or more "A. text" options from a line. Options
// jammed onto one line are split at each following marker, which must carry
// the next letter in sequence ("A. x B. y C. z").
func splitOptions(s string) []string {
	m := optionLead.FindStringSubmatchIndex(s)
	if m == nil {
		return nil
	}
	spans := []span{{m[0], m[1]}}
	next := s[m[2]] + 1

	rest := s[m[1]:]
	for _, mm := range optionInline.FindAllStringSubmatchIndex(rest, -1) {
		if rest[mm[2]] != next {
			continue
		}
		spans = append(spans, span{m[1] + mm[0], m[1] + mm[1]})
		next++
	}

	var opts []string
	for i, sp := range spans {
		end := len(s)
		if i+1 < len(spans) {
			end = spans[i+1].start
		}
		if text := StripMarkdown(strings.TrimSpace(s[sp.end:end])); text != "" {
			opts = append(opts, text)
		}
	}
	return opts
}
