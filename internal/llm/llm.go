package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pavelanni/quizform/internal/form"
	"github.com/pavelanni/quizform/internal/llm/prompts"
	"github.com/pavelanni/quizform/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

// Suggestion is the model's guess at a missing answer.
type Suggestion struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Key locates a question inside parsed sections.
type Key struct {
	Section  int
	Question int
}

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api   *openai.Client
	model string
}

// New creates a new LLM client.
func New(baseURL, apiKey, modelName string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

// Ping checks that the endpoint answers and knows the configured model.
func (c *Client) Ping(ctx context.Context) error {
	list, err := c.api.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	for _, m := range list.Models {
		if m.ID == c.model {
			return nil
		}
	}
	return fmt.Errorf("model %q not available", c.model)
}

// NeedsSuggestion reports whether a question is gradable but its answer did
// not resolve against its options.
func NeedsSuggestion(q model.Question) bool {
	switch q.Type {
	case model.KindMultipleChoice:
		if len(q.Options) < 2 {
			return false
		}
		_, ok := form.NormalizeAnswer(q.Answer, q.Options)
		return !ok
	case model.KindTrueFalse:
		_, ok := form.NormalizeTrueFalse(q.Answer)
		return !ok
	default:
		return false
	}
}

// Suggest asks the model for the answer to one question.
func (c *Client) Suggest(ctx context.Context, q model.Question) (*Suggestion, error) {
	prompt, err := prompts.BuildSuggestPrompt(q)
	if err != nil {
		return nil, err
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM response", "raw", raw)

	var s Suggestion
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("parse LLM response: %w (raw: %s)", err, raw)
	}
	if err := validate(q, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func validate(q model.Question, s *Suggestion) error {
	s.Answer = strings.TrimSpace(s.Answer)
	switch q.Type {
	case model.KindTrueFalse:
		v, ok := form.NormalizeTrueFalse(s.Answer)
		if !ok {
			return fmt.Errorf("suggestion %q is not True or False", s.Answer)
		}
		s.Answer = v
	default:
		if len(s.Answer) != 1 {
			return fmt.Errorf("suggestion %q is not an option letter", s.Answer)
		}
		if _, ok := form.NormalizeAnswer(s.Answer, q.Options); !ok {
			return fmt.Errorf("suggestion %q is out of range", s.Answer)
		}
		s.Answer = strings.ToUpper(s.Answer)
	}
	if s.Confidence < 0 {
		s.Confidence = 0
	}
	if s.Confidence > 1 {
		s.Confidence = 1
	}
	return nil
}

// SuggestMissing requests suggestions for every question that needs one.
// Failures are logged and skipped; sections are never modified.
func (c *Client) SuggestMissing(ctx context.Context, sections []model.Section, logger *slog.Logger) map[Key]Suggestion {
	if logger == nil {
		logger = slog.Default()
	}
	out := make(map[Key]Suggestion)
	for si, sec := range sections {
		for qi, q := range sec.Questions {
			if !NeedsSuggestion(q) {
				continue
			}
			s, err := c.Suggest(ctx, q)
			if err != nil {
				logger.Warn("answer suggestion failed", "section", si, "question", qi, "error", err)
				continue
			}
			out[Key{Section: si, Question: qi}] = *s
		}
	}
	return out
}
