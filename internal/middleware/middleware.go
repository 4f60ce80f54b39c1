package middleware

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"pasta-logger/internal/auth"
	"pasta-logger/internal/model"

	"github.com/rs/zerolog"
)

// Authenticator resolves a session token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// publicPaths are served without a session.
var publicPaths = map[string]bool{
	"/login":         true,
	"/auth/callback": true,
	"/health":        true,
	"/theme":         true,
}

// isPublic reports whether path can be served without a session. Files
// under /files/ carry their own signed token.
func isPublic(path string) bool {
	return publicPaths[path] || strings.HasPrefix(path, "/files/")
}

// isAPI reports whether path is answered with JSON rather than a page.
func isAPI(path string) bool {
	return strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/cooking/")
}

// RequireSession rejects requests without a valid session cookie before any
// handler runs. Pages are redirected to /login; JSON endpoints get a 401.
// The signed-in user is stored in the request context.
func RequireSession(authn Authenticator, secureCookies bool, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			var user *model.User
			cookie, err := r.Cookie(auth.CookieName)
			if err == nil && cookie.Value != "" {
				user, err = authn.Authenticate(r.Context(), cookie.Value)
				switch {
				case errors.Is(err, model.ErrUnauthenticated):
					logger.Warn().Str("path", r.URL.Path).Msg("invalid session cookie")
					http.SetCookie(w, auth.ClearCookie(secureCookies))
				case err != nil:
					// The session may be fine; the user lookup failed.
					logger.Error().Err(err).Str("path", r.URL.Path).Msg("failed to authenticate session")
					if isAPI(r.URL.Path) {
						w.Header().Set("Content-Type", "application/json")
						w.WriteHeader(http.StatusServiceUnavailable)
						w.Write([]byte(`{"error": "BACKEND_UNAVAILABLE", "message": "The backend is paused or unreachable"}`))
						return
					}
					http.Error(w, "The backend is paused or unreachable. Please try again shortly.", http.StatusServiceUnavailable)
					return
				}
			}

			if user == nil {
				if isAPI(r.URL.Path) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusUnauthorized)
					w.Write([]byte(`{"error": "UNAUTHORIZED", "message": "Please sign in"}`))
					return
				}
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

// Logging logs HTTP requests with timing information.
func Logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Create a response writer wrapper to capture status code
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.statusCode).
				Dur("duration", duration).
				Str("remote_addr", r.RemoteAddr).
				Msg("http request")
		})
	}
}

// Recovery recovers from panics and returns a 500 error.
func Recovery(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error().
						Interface("panic", err).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"error": "internal server error"}`))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code.
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the wrapper.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	rw.statusCode = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
