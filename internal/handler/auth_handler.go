package handler

import (
	"errors"
	"net/http"
	"strings"

	"pasta-logger/internal/auth"
	"pasta-logger/internal/model"
	"pasta-logger/internal/view"

	"github.com/rs/zerolog"
)

// AuthHandler handles sign-in, sign-out and the theme toggle.
type AuthHandler struct {
	pages
	service       auth.Service
	secureCookies bool
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service auth.Service, views *view.Renderer, dashboardURL string, secureCookies bool, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		pages: pages{
			views:        views,
			dashboardURL: dashboardURL,
			logger:       logger.With().Str("handler", "auth").Logger(),
		},
		service:       service,
		secureCookies: secureCookies,
	}
}

// LoginPage handles GET /login.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	pg := h.page(r, "")
	pg.Title = "Sign in"
	pg.Data = view.LoginData{}
	h.render(w, http.StatusOK, "login", pg)
}

// Login handles POST /login by mailing a magic link.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	pg := h.page(r, "")
	pg.Title = "Sign in"

	if err := r.ParseForm(); err != nil {
		pg.Error = model.ErrInvalidForm.Message
		pg.Data = view.LoginData{}
		h.render(w, http.StatusBadRequest, "login", pg)
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))

	err := h.service.RequestMagicLink(r.Context(), email)
	var de *model.DomainError
	if errors.As(err, &de) {
		pg.Error = de.Message
		pg.Data = view.LoginData{Email: email}
		h.render(w, domainStatus(de), "login", pg)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	pg.Data = view.LoginData{Email: email, Sent: true}
	h.render(w, http.StatusOK, "login", pg)
}

// Callback handles GET /auth/callback?token=... and starts the session.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.VerifyMagicLink(r.Context(), r.URL.Query().Get("token"))
	if errors.Is(err, model.ErrInvalidMagicLink) {
		pg := h.page(r, "")
		pg.Title = "Sign in"
		pg.Error = model.ErrInvalidMagicLink.Message
		pg.Data = view.LoginData{}
		h.render(w, http.StatusUnauthorized, "login", pg)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	http.SetCookie(w, auth.SessionCookie(session, h.secureCookies))
	http.Redirect(w, r, "/logs/new", http.StatusSeeOther)
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearCookie(h.secureCookies))
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Theme handles POST /theme. The choice is kept in a cookie and the user is
// sent back to the page they came from.
func (h *AuthHandler) Theme(w http.ResponseWriter, r *http.Request) {
	theme := view.ThemeLight
	if r.FormValue("theme") == view.ThemeDark {
		theme = view.ThemeDark
	}

	http.SetCookie(w, &http.Cookie{
		Name:     view.ThemeCookie,
		Value:    theme,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, localRedirect(r.Referer(), "/logs"), http.StatusSeeOther)
}
