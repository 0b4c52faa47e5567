// Package middleware provides shared HTTP middleware utilities.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type sessionKey string

const ctxSessionIDKey sessionKey = "session_id"

// Session resolves the browsing session for the request. The ID is taken
// from the session cookie or the X-Session-ID header; when neither is
// present a new one is minted and set on the response, so the very first
// request already carries a usable session.
func Session(cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
				sessionID = c.Value
			}
			if sessionID == "" {
				sessionID = r.Header.Get("X-Session-ID")
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    sessionID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			w.Header().Set("X-Session-ID", sessionID)
			ctx := context.WithValue(r.Context(), ctxSessionIDKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionIDFromContext returns the request's session ID.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(ctxSessionIDKey)
	s, ok := v.(string)
	return s, ok
}
