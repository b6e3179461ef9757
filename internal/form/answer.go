package form

import (
	"strings"

	"github.com/pavelanni/quizform/internal/model"
)

// NormalizeAnswer resolves a raw answer against a question's options. A
// single letter A-H selects by position; otherwise the answer must equal an
// option's text, ignoring case. The second result is false when nothing matches.
func NormalizeAnswer(answer string, options []string) (string, bool) {
	a := strings.TrimSpace(answer)
	if a == "" {
		return "", false
	}
	if len(a) == 1 {
		c := strings.ToUpper(a)[0]
		if c >= 'A' && c <= 'H' {
			if idx := int(c - 'A'); idx < len(options) {
				return options[idx], true
			}
		}
	}
	for _, opt := range options {
		if strings.EqualFold(strings.TrimSpace(opt), a) {
			return opt, true
		}
	}
	return "", false
}

// NormalizeTrueFalse maps t/true/f/false (any case) to True or False.
func NormalizeTrueFalse(answer string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "t", "true":
		return model.True, true
	case "f", "false":
		return model.False, true
	default:
		return "", false
	}
}
