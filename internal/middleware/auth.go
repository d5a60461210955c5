package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/icsiak/studyshare/internal/services/session"
	"github.com/icsiak/studyshare/pkg/httpext"
)

type contextKey string

const sessionKey contextKey = "session"

// ExtractBearer returns the bearer token from the Authorization header, or
// the empty string when absent.
func ExtractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return header[7:]
	}
	return ""
}

// RequireBearer rejects requests carrying no bearer credential. The
// credential itself is validated by the hosting platform; only presence is
// checked here. Preflight requests pass through.
func RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if ExtractBearer(r) == "" {
			httpext.JsonError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSession validates the bearer token against the session service and
// stores the session in the request context.
func RequireSession(sessions *session.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sessions == nil {
				httpext.JsonError(w, "Auth is not configured", http.StatusServiceUnavailable)
				return
			}

			token := ExtractBearer(r)
			if token == "" {
				httpext.JsonError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			sess, err := sessions.Session(r.Context(), token)
			if err != nil {
				httpext.JsonError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, &sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession retrieves the validated session from the request context.
func GetSession(r *http.Request) *session.Session {
	if sess, ok := r.Context().Value(sessionKey).(*session.Session); ok {
		return sess
	}
	return nil
}
