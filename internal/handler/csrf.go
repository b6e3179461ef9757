package handler

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pavelanni/quizform/internal/handler/views"
	"github.com/pavelanni/quizform/internal/model"
)

const csrfCookieName = "csrf_token"

func generateCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// parseRequestForm parses urlencoded or multipart bodies up to maxUploadBytes.
func parseRequestForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxUploadBytes)
	}
	return r.ParseForm()
}

func (h *Handler) setCSRFCookie(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	token, err := generateCSRFToken()
	if err != nil {
		slog.Error("failed to generate CSRF token", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return r, false
	}
	cookiePath := "/"
	if h.config.BasePath != "" {
		cookiePath = h.config.BasePath + "/"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     cookiePath,
		HttpOnly: false,
		Secure:   h.config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	ctx := model.ContextWithCSRFToken(r.Context(), token)
	return r.WithContext(ctx), true
}

// csrfMiddleware issues a fresh token on safe requests and checks the
// double-submitted token on everything else.
func (h *Handler) csrfMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			r, ok := h.setCSRFCookie(w, r)
			if ok {
				next.ServeHTTP(w, r)
			}
			return
		}

		if err := parseRequestForm(w, r); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				slog.Warn("upload too large", "limit", tooLarge.Limit)
				http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		cookie, err := r.Cookie(csrfCookieName)
		if err != nil || cookie.Value == "" {
			slog.Warn("CSRF cookie missing")
			h.renderError(w, r, http.StatusForbidden, "ErrorCSRF")
			return
		}

		formToken := r.FormValue("csrf_token")
		if formToken == "" {
			slog.Warn("CSRF form token missing")
			h.renderError(w, r, http.StatusForbidden, "ErrorCSRF")
			return
		}

		if len(formToken) != len(cookie.Value) || subtle.ConstantTimeCompare([]byte(formToken), []byte(cookie.Value)) != 1 {
			slog.Warn("CSRF token mismatch")
			h.renderError(w, r, http.StatusForbidden, "ErrorCSRF")
			return
		}

		r, ok := h.setCSRFCookie(w, r)
		if ok {
			next.ServeHTTP(w, r)
		}
	})
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, msgID string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := views.ErrorPage(msgID).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}
