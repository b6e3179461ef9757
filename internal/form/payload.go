package form

// Payload is the pair of Google Forms API request bodies that would build a
// plan remotely: forms.create followed by forms.batchUpdate.
type Payload struct {
	Create      CreateRequest      `json:"create"`
	BatchUpdate BatchUpdateRequest `json:"batchUpdate"`
}

type CreateRequest struct {
	Info Info `json:"info"`
}

type Info struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

type BatchUpdateRequest struct {
	Requests []Request `json:"requests"`
}

// Request holds exactly one of its fields.
type Request struct {
	UpdateFormInfo *UpdateFormInfo `json:"updateFormInfo,omitempty"`
	UpdateSettings *UpdateSettings `json:"updateSettings,omitempty"`
	CreateItem     *CreateItem     `json:"createItem,omitempty"`
}

type UpdateFormInfo struct {
	Info       Info   `json:"info"`
	UpdateMask string `json:"updateMask"`
}

type UpdateSettings struct {
	Settings   Settings `json:"settings"`
	UpdateMask string   `json:"updateMask"`
}

type Settings struct {
	QuizSettings QuizSettings `json:"quizSettings"`
}

type QuizSettings struct {
	IsQuiz bool `json:"isQuiz"`
}

type CreateItem struct {
	Item     Item     `json:"item"`
	Location Location `json:"location"`
}

type Location struct {
	Index int `json:"index"`
}

type Item struct {
	Title         string         `json:"title"`
	QuestionItem  *QuestionItem  `json:"questionItem,omitempty"`
	PageBreakItem *PageBreakItem `json:"pageBreakItem,omitempty"`
}

type PageBreakItem struct{}

type QuestionItem struct {
	Question Question `json:"question"`
}

type Question struct {
	Required       bool            `json:"required"`
	Grading        *Grading        `json:"grading,omitempty"`
	ChoiceQuestion *ChoiceQuestion `json:"choiceQuestion,omitempty"`
	TextQuestion   *TextQuestion   `json:"textQuestion,omitempty"`
}

type ChoiceQuestion struct {
	Type    string        `json:"type"`
	Options []ChoiceValue `json:"options"`
	Shuffle bool          `json:"shuffle"`
}

type ChoiceValue struct {
	Value string `json:"value"`
}

type TextQuestion struct {
	Paragraph bool `json:"paragraph"`
}

type Grading struct {
	PointValue     int            `json:"pointValue"`
	CorrectAnswers CorrectAnswers `json:"correctAnswers"`
}

type CorrectAnswers struct {
	Answers []ChoiceValue `json:"answers"`
}

// RenderRequests renders p as Forms API request bodies without calling any
// service. Item locations follow instruction order starting at zero.
func RenderRequests(p *Plan) Payload {
	reqs := []Request{{UpdateSettings: &UpdateSettings{
		Settings:   Settings{QuizSettings: QuizSettings{IsQuiz: true}},
		UpdateMask: "quizSettings.isQuiz",
	}}}
	if p.Description != "" {
		reqs = append(reqs, Request{UpdateFormInfo: &UpdateFormInfo{
			Info:       Info{Description: p.Description},
			UpdateMask: "description",
		}})
	}

	for i, in := range p.Instructions {
		reqs = append(reqs, Request{CreateItem: &CreateItem{
			Item:     renderItem(in),
			Location: Location{Index: i},
		}})
	}

	return Payload{
		Create:      CreateRequest{Info: Info{Title: p.Title}},
		BatchUpdate: BatchUpdateRequest{Requests: reqs},
	}
}

func renderItem(in Instruction) Item {
	switch in.Op {
	case OpPageBreak:
		return Item{Title: in.Title, PageBreakItem: &PageBreakItem{}}
	case OpSingleSelect:
		q := Question{
			Required: in.Required,
			ChoiceQuestion: &ChoiceQuestion{
				Type:    "RADIO",
				Options: make([]ChoiceValue, 0, len(in.Choices)),
			},
		}
		for _, c := range in.Choices {
			q.ChoiceQuestion.Options = append(q.ChoiceQuestion.Options, ChoiceValue{Value: c.Text})
		}
		if correct, ok := in.CorrectChoice(); ok && in.Graded() {
			q.Grading = &Grading{
				PointValue:     in.Points,
				CorrectAnswers: CorrectAnswers{Answers: []ChoiceValue{{Value: correct}}},
			}
		}
		return Item{Title: in.Title, QuestionItem: &QuestionItem{Question: q}}
	default:
		return Item{Title: in.Title, QuestionItem: &QuestionItem{Question: Question{
			Required:     in.Required,
			TextQuestion: &TextQuestion{Paragraph: false},
		}}}
	}
}
