package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// VisitorCookie names the cookie that carries the anonymous visitor id
	VisitorCookie = "sugrae_visitor"

	// VisitorHeader lets API clients without a cookie jar pick their visitor
	VisitorHeader = "X-Visitor-ID"

	visitorCookieMaxAge = 365 * 24 * time.Hour
)

type contextKey string

const (
	VisitorContextKey contextKey = "visitor"
)

// ExtractVisitorID returns a well-formed visitor id from the cookie or header
func ExtractVisitorID(r *http.Request) string {
	// Try cookie first (for browser)
	if cookie, err := r.Cookie(VisitorCookie); err == nil && valid(cookie.Value) {
		return cookie.Value
	}
	// Fall back to the header (for API clients)
	if id := r.Header.Get(VisitorHeader); valid(id) {
		return id
	}
	return ""
}

func valid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Visitor makes sure every request carries a visitor id. A request without a
// usable id is given a fresh one, which is returned as a cookie.
func Visitor(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ExtractVisitorID(r)
			if id == "" {
				id = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     VisitorCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(visitorCookieMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), VisitorContextKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetVisitorID retrieves the visitor id from the request context
func GetVisitorID(ctx context.Context) string {
	id, _ := ctx.Value(VisitorContextKey).(string)
	return id
}
