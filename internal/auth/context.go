package auth

import (
	"context"
	"net/http"
	"time"

	"pasta-logger/internal/model"
)

// CookieName is the session cookie.
const CookieName = "pasta_session"

type contextKey struct{}

// WithUser returns a copy of ctx carrying the signed-in user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFrom returns the signed-in user stored by WithUser.
func UserFrom(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(contextKey{}).(*model.User)
	return user, ok && user != nil
}

// SessionCookie builds the cookie that carries a session token.
func SessionCookie(session *model.Session, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie builds a cookie that removes the session.
func ClearCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
