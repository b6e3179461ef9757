// Package form turns parsed quiz sections into form-construction instructions
// and plays them against a form service.
package form

import (
	"github.com/pavelanni/quizform/internal/model"
)

// Op is the kind of a form-construction instruction.
type Op string

const (
	OpPageBreak    Op = "page_break"
	OpSingleSelect Op = "single_select"
	OpText         Op = "text"
)

const (
	defaultSectionTitle  = "Section"
	defaultQuestionTitle = "Question"
)

// Choice is one option of a single-select item.
type Choice struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Instruction creates one form item. Order is significant: the form's item
// order is the only place question order is recorded.
type Instruction struct {
	Op       Op       `json:"op"`
	Title    string   `json:"title"`
	Choices  []Choice `json:"choices,omitempty"`
	Required bool     `json:"required"`
	Points   int      `json:"points"`
}

// Graded reports whether the instruction carries an answer key.
func (in Instruction) Graded() bool {
	return in.Points > 0
}

// CorrectChoice returns the text of the choice marked correct, if any.
func (in Instruction) CorrectChoice() (string, bool) {
	for _, c := range in.Choices {
		if c.Correct {
			return c.Text, true
		}
	}
	return "", false
}

// Plan is everything needed to build one quiz form.
type Plan struct {
	Title        string             `json:"title"`
	Description  string             `json:"description,omitempty"`
	Instructions []Instruction      `json:"instructions"`
	Settings     model.FormSettings `json:"settings"`
}

// QuestionCount returns the number of question items in the plan.
func (p *Plan) QuestionCount() int {
	n := 0
	for _, in := range p.Instructions {
		if in.Op != OpPageBreak {
			n++
		}
	}
	return n
}

// BuildPlan maps sections onto form instructions without touching any
// service. The first section's title becomes the form description; every
// later section starts with a titled page break.
func BuildPlan(title string, sections []model.Section, settings model.FormSettings) *Plan {
	p := &Plan{Title: title, Settings: settings}
	for i, s := range sections {
		sectionTitle := s.Title
		if sectionTitle == "" {
			sectionTitle = defaultSectionTitle
		}
		if i == 0 {
			p.Description = sectionTitle
		} else {
			p.Instructions = append(p.Instructions, Instruction{Op: OpPageBreak, Title: sectionTitle})
		}
		for _, q := range s.Questions {
			p.Instructions = append(p.Instructions, questionInstruction(q))
		}
	}
	return p
}

func questionInstruction(q model.Question) Instruction {
	title := q.Title
	if title == "" {
		title = defaultQuestionTitle
	}

	switch q.Type {
	case model.KindTrueFalse:
		correct, ok := NormalizeTrueFalse(q.Answer)
		return singleSelect(title, []string{model.True, model.False}, correct, ok)
	case model.KindMultipleChoice:
		// A single-select item needs at least two choices.
		if len(q.Options) >= 2 {
			correct, ok := NormalizeAnswer(q.Answer, q.Options)
			return singleSelect(title, q.Options, correct, ok)
		}
	}
	return Instruction{Op: OpText, Title: title, Required: true}
}

func singleSelect(title string, options []string, correct string, graded bool) Instruction {
	in := Instruction{Op: OpSingleSelect, Title: title, Required: true}
	marked := false
	for _, opt := range options {
		isCorrect := graded && !marked && opt == correct
		if isCorrect {
			marked = true
		}
		in.Choices = append(in.Choices, Choice{Text: opt, Correct: isCorrect})
	}
	if marked {
		in.Points = 1
	}
	return in
}
