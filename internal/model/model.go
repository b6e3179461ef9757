package model

import "context"

// Kind is the type of a question, or the inferred kind of a section.
type Kind string

const (
	KindMultipleChoice Kind = "multiple_choice"
	KindTrueFalse      Kind = "true_false"
	KindShortAnswer    Kind = "short_answer"
	// KindUnknown is only ever a section kind; questions always resolve to one of the others.
	KindUnknown Kind = "unknown"
)

// Boolean option labels used for true/false questions.
const (
	True  = "True"
	False = "False"
)

// DefaultSectionTitle names the section synthesized for questions that appear before any header.
const DefaultSectionTitle = "Questions"

// Section is a titled group of questions.
type Section struct {
	Title     string     `json:"title" yaml:"title"`
	Kind      Kind       `json:"kind" yaml:"kind"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Question is a single parsed quiz question.
type Question struct {
	Number  int      `json:"number,omitempty" yaml:"number,omitempty"` // 0 when the title has no leading numeral
	Title   string   `json:"title" yaml:"title"`
	Type    Kind     `json:"type" yaml:"type"`
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
	Answer  string   `json:"answer,omitempty" yaml:"answer,omitempty"` // empty means no answer
}

// HasAnswer reports whether an inline or answer-key answer was attached.
func (q Question) HasAnswer() bool {
	return q.Answer != ""
}

// ReceiptMode controls whether respondents may request a copy of their response.
type ReceiptMode string

const (
	ReceiptsOff           ReceiptMode = "off"
	ReceiptsWhenRequested ReceiptMode = "when-requested"
)

// ParseReceiptMode maps a config value to a ReceiptMode. Unrecognized values are off.
func ParseReceiptMode(s string) ReceiptMode {
	switch ReceiptMode(s) {
	case ReceiptsWhenRequested, "when_requested", "whenRequested":
		return ReceiptsWhenRequested
	default:
		return ReceiptsOff
	}
}

// FormSettings are applied once per created form.
type FormSettings struct {
	CollectRespondentID      bool        `json:"collect_respondent_id"`
	AllowEdits               bool        `json:"allow_edits"`
	OneResponsePerRespondent bool        `json:"one_response_per_respondent"`
	ResponseReceipts         ReceiptMode `json:"response_receipts"`
}

// DefaultFormSettings mirrors the settings the CLI applies when nothing is configured.
func DefaultFormSettings() FormSettings {
	return FormSettings{
		CollectRespondentID:      true,
		AllowEdits:               false,
		OneResponsePerRespondent: false,
		ResponseReceipts:         ReceiptsWhenRequested,
	}
}

// ServeConfig holds runtime parameters for the web UI set via CLI flags.
type ServeConfig struct {
	BasePath      string // URL prefix for sub-path deployments
	SecureCookies bool   // Set Secure flag on cookies (disable for local dev)
	Settings      FormSettings
	CORSOrigins   []string
}

type basePathCtxKey struct{}

// ContextWithBasePath stores the base path prefix in context.
func ContextWithBasePath(ctx context.Context, basePath string) context.Context {
	return context.WithValue(ctx, basePathCtxKey{}, basePath)
}

// BasePathFromContext retrieves the base path from context (empty string if not set).
func BasePathFromContext(ctx context.Context) string {
	bp, _ := ctx.Value(basePathCtxKey{}).(string)
	return bp
}

type csrfCtxKey struct{}

// ContextWithCSRFToken stores the CSRF token in context.
func ContextWithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfCtxKey{}, token)
}

// CSRFTokenFromContext retrieves the CSRF token from context.
func CSRFTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(csrfCtxKey{}).(string)
	return t
}
