package handler

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/pavelanni/quizform/internal/form"
	"github.com/pavelanni/quizform/internal/handler/views"
	"github.com/pavelanni/quizform/internal/i18n"
	"github.com/pavelanni/quizform/internal/model"
	"github.com/pavelanni/quizform/internal/parser"
	"github.com/pavelanni/quizform/internal/preview"
	"github.com/pavelanni/quizform/internal/store"
)

const maxUploadBytes = 10 << 20

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store  *store.Store
	parser *parser.Parser
	config model.ServeConfig
	logger *slog.Logger
}

// New creates a new Handler.
func New(s *store.Store, cfg model.ServeConfig, logger *slog.Logger) (*Handler, error) {
	if s == nil {
		return nil, errors.New("handler needs a form store")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:  s,
		parser: parser.New(parser.WithLogger(logger)),
		config: cfg,
		logger: logger,
	}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Use(h.basePathMiddleware)
	r.Use(i18n.Middleware())

	r.Group(func(r chi.Router) {
		r.Use(h.csrfMiddleware)
		r.Get("/", h.handleIndex)
		r.Post("/create", h.handleCreate)
		r.Get("/forms", h.handleFormsList)
		r.Get("/forms/{formID}/edit", h.handleFormPage(true))
		r.Get("/forms/{formID}/viewform", h.handleFormPage(false))
	})

	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: h.corsOrigins(),
			AllowedMethods: []string{http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
		r.Post("/api/preview", h.handleAPIPreview)
		r.Options("/api/preview", func(w http.ResponseWriter, r *http.Request) {})
	})
}

func (h *Handler) corsOrigins() []string {
	if len(h.config.CORSOrigins) == 0 {
		return []string{"*"}
	}
	return h.config.CORSOrigins
}

func (h *Handler) basePathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := model.ContextWithBasePath(r.Context(), h.config.BasePath)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		h.logger.Error("render error", "error", err)
	}
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.IndexPage(""))
}

// decodeDocument checks that data is UTF-8 text and strips a leading BOM.
func decodeDocument(data []byte) (string, bool) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("document")
	if err != nil {
		h.render(w, r, http.StatusBadRequest, views.IndexPage("ErrorUpload"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("failed to read upload", "error", err)
		h.render(w, r, http.StatusBadRequest, views.IndexPage("ErrorUpload"))
		return
	}
	text, ok := decodeDocument(data)
	if !ok {
		h.render(w, r, http.StatusBadRequest, views.IndexPage("ErrorUpload"))
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = form.TitleFromFilename(header.Filename)
	}

	doc := h.parser.Parse(text)
	if doc.QuestionCount() == 0 {
		h.render(w, r, http.StatusUnprocessableEntity, views.IndexPage("ErrorNoQuestions"))
		return
	}
	in := preview.Input{Title: title, Document: doc, Settings: h.config.Settings}
	plan := form.BuildPlan(title, doc.Sections, h.config.Settings)

	if r.FormValue("dry_run") != "" {
		payload, err := json.MarshalIndent(form.RenderRequests(plan), "", "  ")
		if err != nil {
			h.logger.Error("failed to render requests", "error", err)
			h.renderError(w, r, http.StatusInternalServerError, "ErrorCreate")
			return
		}
		h.render(w, r, http.StatusOK, views.DryRunPage(in, string(payload)))
		return
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	if prev, err := h.store.FindImport(r.Context(), hash); err != nil {
		h.logger.Error("failed to check import history", "error", err)
	} else if prev != nil {
		h.logger.Info("document was imported before", "sha256", hash, "previous_form", prev.FormID)
	}

	res, err := form.Execute(r.Context(), h.store, plan, h.logger)
	if err != nil {
		h.logger.Error("form creation failed", "title", title, "error", err)
		h.renderError(w, r, http.StatusBadGateway, "ErrorCreate")
		return
	}

	if err := h.store.RecordImport(r.Context(), model.ImportRecord{
		FormID:       res.FormID,
		DocumentName: header.Filename,
		SHA256:       hash,
	}); err != nil {
		h.logger.Error("failed to record import", "form_id", res.FormID, "error", err)
	}

	h.logger.Info("created form via web", "filename", header.Filename, "form_id", res.FormID,
		"questions", plan.QuestionCount())
	h.render(w, r, http.StatusOK, views.CreatedPage(in, res))
}

func (h *Handler) handleFormsList(w http.ResponseWriter, r *http.Request) {
	forms, err := h.store.ListForms(r.Context())
	if err != nil {
		h.logger.Error("failed to list forms", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, http.StatusOK, views.FormsPage(forms))
}

func (h *Handler) handleFormPage(edit bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := h.store.GetForm(r.Context(), chi.URLParam(r, "formID"))
		if errors.Is(err, store.ErrNotFound) {
			h.renderError(w, r, http.StatusNotFound, "ErrorNotFound")
			return
		}
		if err != nil {
			h.logger.Error("failed to load form", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		h.render(w, r, http.StatusOK, views.FormPage(f, edit))
	}
}

type previewRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type previewResponse struct {
	preview.Report
	Requests *form.Payload `json:"requests,omitempty"`
}

// handleAPIPreview parses a document sent as JSON ({"title", "text"}) or as
// a plain-text body and returns the parsed model.
func (h *Handler) handleAPIPreview(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		writeJSONError(w, http.StatusRequestEntityTooLarge, "document too large")
		return
	}

	var req previewRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
	} else {
		text, ok := decodeDocument(body)
		if !ok {
			writeJSONError(w, http.StatusBadRequest, "document is not UTF-8 text")
			return
		}
		req.Text = text
		req.Title = r.URL.Query().Get("title")
	}
	if req.Title == "" {
		req.Title = form.DefaultTitle
	}

	doc := h.parser.Parse(req.Text)
	resp := previewResponse{Report: preview.NewReport(preview.Input{Title: req.Title, Document: doc})}
	if r.URL.Query().Get("requests") != "" {
		payload := form.RenderRequests(form.BuildPlan(req.Title, doc.Sections, h.config.Settings))
		resp.Requests = &payload
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("encode preview", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
