package auth

import (
	"net/http"
	"net/url"

	"github.com/odyssey-erp/odyssey-cms/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-cms/internal/shared"
)

// RequireUser lets only signed-in admins through. Page requests are sent to
// the login form, htmx requests get an HX-Redirect so the whole page moves.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess != nil && sess.User() != "" {
			next.ServeHTTP(w, r)
			return
		}
		target := "/auth/login"
		if r.Method == http.MethodGet {
			target += "?next=" + url.QueryEscape(r.URL.RequestURI())
		}
		if r.Header.Get("HX-Request") == "true" {
			w.Header().Set("HX-Redirect", target)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	})
}

// RequireAPIUser answers 401 problem details to callers without a session.
func RequireAPIUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.User() == "" {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
