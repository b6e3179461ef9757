package i18n

import "net/http"

const langCookie = "lang"

// Middleware picks a language for every request and stores its localizer in
// the request context. An explicit ?lang= choice is remembered in a cookie;
// otherwise the cookie and then Accept-Language decide.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var prefs []string
			if q := r.URL.Query().Get("lang"); q != "" {
				prefs = append(prefs, q)
			}
			if c, err := r.Cookie(langCookie); err == nil {
				prefs = append(prefs, c.Value)
			}
			prefs = append(prefs, r.Header.Get("Accept-Language"))

			lang := Match(prefs...)
			if r.URL.Query().Get("lang") != "" {
				http.SetCookie(w, &http.Cookie{
					Name:     langCookie,
					Value:    lang,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := WithLanguage(r.Context(), lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
