package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/quizform/internal/i18n"
	"github.com/pavelanni/quizform/internal/model"
	"github.com/pavelanni/quizform/internal/store"
)

const quizDoc = `## Part 1 – Multiple choice
1. Which unit issues clearances?
A. ATC
B. AIS
Answer: A

## Part 2 – Short answer
2. Explain separation minima.
`

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	if err := i18n.Init("en"); err != nil {
		t.Fatalf("i18n.Init: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := store.New(context.Background(), store.Config{
		Driver: store.DriverSQLite, DSN: ":memory:", BaseURL: "http://forms.test", Logger: logger,
	})
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	h, err := New(s, model.ServeConfig{Settings: model.DefaultFormSettings()}, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := chi.NewRouter()
	h.Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, s
}

// csrfToken fetches the index page and returns the issued token.
func csrfToken(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET / status %d", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == csrfCookieName {
			return c.Value
		}
	}
	t.Fatal("no CSRF cookie issued")
	return ""
}

func uploadRequest(t *testing.T, url, token, cookie string, fields map[string]string, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if token != "" {
		mw.WriteField("csrf_token", token)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("document", filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		io.WriteString(fw, content)
	}
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, url, &body)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: cookie})
	}
	return req
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func TestIndexPage(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, `name="csrf_token"`) || !strings.Contains(body, "Build a quiz form") {
		t.Errorf("unexpected index page:\n%s", body)
	}
}

func TestCreateRequiresCSRF(t *testing.T) {
	srv, _ := newTestServer(t)

	req := uploadRequest(t, srv.URL+"/create", "", "", nil, "quiz.md", quizDoc)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 without token, got %d", resp.StatusCode)
	}

	token := csrfToken(t, srv)
	req = uploadRequest(t, srv.URL+"/create", "wrong"+token[5:], token, nil, "quiz.md", quizDoc)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for mismatched token, got %d", resp.StatusCode)
	}
}

func TestCreateDryRun(t *testing.T) {
	srv, s := newTestServer(t)
	token := csrfToken(t, srv)

	req := uploadRequest(t, srv.URL+"/create", token, token, map[string]string{"dry_run": "1"}, "ATC_basics.md", quizDoc)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	for _, want := range []string{"ATC basics", "isQuiz", "RADIO", "A. ATC (correct)"} {
		if !strings.Contains(body, want) {
			t.Errorf("dry run page missing %q", want)
		}
	}

	if n, _ := s.FormCount(context.Background()); n != 0 {
		t.Errorf("dry run must not create forms, got %d", n)
	}
}

func TestCreateForm(t *testing.T) {
	srv, s := newTestServer(t)
	token := csrfToken(t, srv)

	req := uploadRequest(t, srv.URL+"/create", token, token, map[string]string{"title": "Week 1"}, "quiz.md", "\uFEFF"+quizDoc)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, "Form created") || !strings.Contains(body, "http://forms.test/forms/") {
		t.Errorf("unexpected created page:\n%s", body)
	}

	forms, err := s.ListForms(context.Background())
	if err != nil {
		t.Fatalf("ListForms: %v", err)
	}
	if len(forms) != 1 || forms[0].Title != "Week 1" {
		t.Fatalf("unexpected forms %+v", forms)
	}
	f, err := s.GetForm(context.Background(), forms[0].ID)
	if err != nil {
		t.Fatalf("GetForm: %v", err)
	}
	if len(f.Items) != 3 {
		t.Errorf("expected 3 items, got %d", len(f.Items))
	}

	imports, err := s.ListImports(context.Background())
	if err != nil {
		t.Fatalf("ListImports: %v", err)
	}
	if len(imports) != 1 || imports[0].DocumentName != "quiz.md" || len(imports[0].SHA256) != 64 {
		t.Errorf("unexpected import history %+v", imports)
	}

	// The stored form is viewable.
	resp, err = http.Get(srv.URL + "/forms/" + f.ID + "/edit")
	if err != nil {
		t.Fatalf("GET edit: %v", err)
	}
	body = readBody(t, resp)
	if !strings.Contains(body, `class="correct"`) || !strings.Contains(body, "Part 2 – Short answer") {
		t.Errorf("unexpected edit page:\n%s", body)
	}

	resp, err = http.Get(srv.URL + "/forms/" + f.ID + "/viewform")
	if err != nil {
		t.Fatalf("GET viewform: %v", err)
	}
	if body = readBody(t, resp); strings.Contains(body, `class="correct"`) {
		t.Error("published view must not reveal answers")
	}

	resp, err = http.Get(srv.URL + "/forms")
	if err != nil {
		t.Fatalf("GET forms: %v", err)
	}
	if body = readBody(t, resp); !strings.Contains(body, "Week 1") {
		t.Errorf("forms list missing form:\n%s", body)
	}
}

func TestCreateRejectsBadDocuments(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name     string
		filename string
		content  string
		status   int
	}{
		{"no file", "", "", http.StatusBadRequest},
		{"not utf8", "bad.txt", "\xff\xfe\x00q", http.StatusBadRequest},
		{"no questions", "empty.md", "just some notes\n", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := csrfToken(t, srv)
			req := uploadRequest(t, srv.URL+"/create", token, token, nil, tt.filename, tt.content)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("POST: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}

func TestFormNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/forms/missing/viewform")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestAPIPreview(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("json body", func(t *testing.T) {
		payload, _ := json.Marshal(map[string]string{"title": "API", "text": quizDoc})
		req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/preview?requests=1", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Origin", "http://example.com")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("expected CORS header, got %q", got)
		}
		var out struct {
			Title         string          `json:"title"`
			QuestionCount int             `json:"question_count"`
			Sections      []model.Section `json:"sections"`
			Requests      json.RawMessage `json:"requests"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		resp.Body.Close()
		if out.Title != "API" || out.QuestionCount != 2 || len(out.Sections) != 2 {
			t.Errorf("unexpected preview %+v", out)
		}
		if out.Sections[0].Questions[0].Answer != "A" {
			t.Errorf("unexpected answer %q", out.Sections[0].Questions[0].Answer)
		}
		if len(out.Requests) == 0 {
			t.Error("expected requests payload")
		}
	})

	t.Run("plain text body", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/preview", "text/plain", strings.NewReader(quizDoc))
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		body := readBody(t, resp)
		if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"title":"Quiz"`) {
			t.Errorf("unexpected response %d: %s", resp.StatusCode, body)
		}
		if strings.Contains(body, `"requests"`) {
			t.Error("requests payload should be opt-in")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/preview", "application/json", strings.NewReader("{"))
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/preview", nil)
		req.Header.Set("Origin", "http://example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("OPTIONS: %v", err)
		}
		resp.Body.Close()
		if resp.Header.Get("Access-Control-Allow-Methods") == "" {
			t.Error("expected preflight response headers")
		}
	})
}

func TestDecodeDocument(t *testing.T) {
	if got, ok := decodeDocument([]byte("\xef\xbb\xbfhello")); !ok || got != "hello" {
		t.Errorf("decodeDocument with BOM = %q, %v", got, ok)
	}
	if _, ok := decodeDocument([]byte{0xff, 0xfe}); ok {
		t.Error("invalid UTF-8 should be rejected")
	}
}
