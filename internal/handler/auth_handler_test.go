package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"pasta-logger/internal/auth"
	"pasta-logger/internal/model"
	"pasta-logger/internal/view"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newAuthHandler(t *testing.T, svc *MockAuthService) *AuthHandler {
	return NewAuthHandler(svc, newRenderer(t), "https://dashboard.example.com", true, zerolog.Nop())
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestAuthHandler_LoginPage(t *testing.T) {
	h := newAuthHandler(t, new(MockAuthService))

	w := serve(h.LoginPage, httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `action="/login"`)
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		email          string
		mockError      error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Link sent",
			email:          "cook@example.com",
			expectedStatus: http.StatusOK,
			expectedBody:   "We sent a sign-in link to <strong>cook@example.com</strong>",
		},
		{
			name:           "Invalid email",
			email:          "not-an-email",
			mockError:      model.ErrInvalidEmail,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Please enter a valid email address",
		},
		{
			name:           "Backend paused",
			email:          "cook@example.com",
			mockError:      errors.New("failed to store magic link: connection refused"),
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "https://dashboard.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAuthService)
			svc.On("RequestMagicLink", mock.Anything, tt.email).Return(tt.mockError)
			h := newAuthHandler(t, svc)

			w := serve(h.Login, postForm("/login", url.Values{"email": {" " + tt.email + " "}}))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_Callback(t *testing.T) {
	t.Run("Valid link starts session", func(t *testing.T) {
		svc := new(MockAuthService)
		session := &model.Session{User: *testUser, Token: "signed.jwt.token", ExpiresAt: time.Now().Add(time.Hour)}
		svc.On("VerifyMagicLink", mock.Anything, "link-token").Return(session, nil)
		h := newAuthHandler(t, svc)

		w := serve(h.Callback, httptest.NewRequest(http.MethodGet, "/auth/callback?token=link-token", nil))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/logs/new", w.Header().Get("Location"))
		cookies := w.Result().Cookies()
		if assert.Len(t, cookies, 1) {
			assert.Equal(t, auth.CookieName, cookies[0].Name)
			assert.Equal(t, "signed.jwt.token", cookies[0].Value)
			assert.True(t, cookies[0].HttpOnly)
			assert.True(t, cookies[0].Secure)
		}
	})

	t.Run("Used or expired link", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("VerifyMagicLink", mock.Anything, "stale").Return(nil, model.ErrInvalidMagicLink)
		h := newAuthHandler(t, svc)

		w := serve(h.Callback, httptest.NewRequest(http.MethodGet, "/auth/callback?token=stale", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid or has expired")
		assert.Empty(t, w.Result().Cookies())
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	h := newAuthHandler(t, new(MockAuthService))

	w := serve(h.Logout, signedIn(httptest.NewRequest(http.MethodPost, "/logout", nil)))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	cookies := w.Result().Cookies()
	if assert.Len(t, cookies, 1) {
		assert.Equal(t, auth.CookieName, cookies[0].Name)
		assert.Equal(t, -1, cookies[0].MaxAge)
	}
}

func TestAuthHandler_Theme(t *testing.T) {
	tests := []struct {
		name             string
		theme            string
		referer          string
		expectedTheme    string
		expectedLocation string
	}{
		{
			name:             "Dark from manage screen",
			theme:            "dark",
			referer:          "http://localhost:8080/manage/pastas",
			expectedTheme:    view.ThemeDark,
			expectedLocation: "/manage/pastas",
		},
		{
			name:             "Unknown theme falls back to light",
			theme:            "sepia",
			expectedTheme:    view.ThemeLight,
			expectedLocation: "/logs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newAuthHandler(t, new(MockAuthService))
			req := postForm("/theme", url.Values{"theme": {tt.theme}})
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}

			w := serve(h.Theme, req)

			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, tt.expectedLocation, w.Header().Get("Location"))
			cookies := w.Result().Cookies()
			if assert.Len(t, cookies, 1) {
				assert.Equal(t, view.ThemeCookie, cookies[0].Name)
				assert.Equal(t, tt.expectedTheme, cookies[0].Value)
			}
		})
	}
}
