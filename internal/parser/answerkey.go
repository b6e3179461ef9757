package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pavelanni/quizform/internal/model"
)

var (
	headingMarks    = regexp.MustCompile(`^#{1,6}\s+`)
	answerKeyHeader = regexp.MustCompile(`(?i)^(?:answer\s+keys?|answers)\s*:?$`)
	keyEntry        = regexp.MustCompile(`^(\d+)\s*[.:)]\s*(.*)$`)
	keyLetter       = regexp.MustCompile(`^([A-Ha-h])(?:\s*[-\x{2013}\x{2014}].*)?$`)
	keyBool         = regexp.MustCompile(`(?i)^(true|false)\b`)
)

// AnswerKey maps a question number to its normalized answer: an uppercase
// letter, True/False, or free reference text.
type AnswerKey map[int]string

// Lookup returns the key entry for a question number. Number 0 never matches.
func (k AnswerKey) Lookup(number int) (string, bool) {
	if number <= 0 {
		return "", false
	}
	a, ok := k[number]
	return a, ok
}

// FindAnswerKey returns the index of the answer-key header line, or -1.
func FindAnswerKey(lines []Line) int {
	for _, l := range lines {
		if isAnswerKeyHeader(l.Text) {
			return l.Index
		}
	}
	return -1
}

func isAnswerKeyHeader(text string) bool {
	if text == "" {
		return false
	}
	t := StripMarkdown(headingMarks.ReplaceAllString(text, ""))
	return answerKeyHeader.MatchString(t)
}

// ExtractAnswerKey parses the block following the answer-key header. It
// returns the key and the index where body parsing must stop (len(lines) when
// there is no key block). Later entries for the same number overwrite earlier
// ones; unparseable lines are skipped.
func ExtractAnswerKey(lines []Line) (AnswerKey, int) {
	key := AnswerKey{}
	start := FindAnswerKey(lines)
	if start < 0 {
		return key, len(lines)
	}
	for _, l := range lines[start+1:] {
		if l.Blank() || isRule(l.Text) {
			continue
		}
		number, answer, ok := parseKeyEntry(l.Text)
		if !ok {
			continue
		}
		key[number] = answer
	}
	return key, start
}

func parseKeyEntry(text string) (int, string, bool) {
	m := keyEntry.FindStringSubmatch(StripMarkdown(text))
	if m == nil {
		return 0, "", false
	}
	number, err := strconv.Atoi(m[1])
	if err != nil || number <= 0 {
		return 0, "", false
	}
	rest := strings.TrimSpace(m[2])
	if rest == "" {
		return 0, "", false
	}
	if lm := keyLetter.FindStringSubmatch(rest); lm != nil {
		return number, strings.ToUpper(lm[1]), true
	}
	if bm := keyBool.FindStringSubmatch(rest); bm != nil {
		if strings.EqualFold(bm[1], "true") {
			return number, model.True, true
		}
		return number, model.False, true
	}
	return number, rest, true
}
