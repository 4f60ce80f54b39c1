// Package handler implements the HTTP handlers: server-rendered pages for
// the browser and small JSON endpoints used by the cooking timer.
package handler

import (
	"encoding/json"
	"errors"
	"math"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"pasta-logger/internal/auth"
	"pasta-logger/internal/database"
	"pasta-logger/internal/model"
	"pasta-logger/internal/service"
	"pasta-logger/internal/view"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxUploadBytes bounds multipart form bodies.
const maxUploadBytes = 10 << 20

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("error", code).Int("status", status).Msg("handler error")
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeServiceError maps an error returned by a service to a JSON response.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var de *model.DomainError
	switch {
	case errors.As(err, &de):
		writeError(w, domainStatus(de), de.Code, de.Message, logger)
	case database.IsUnavailable(err):
		writeError(w, http.StatusServiceUnavailable, model.ErrCodeBackendUnavailable, "The backend is paused or unreachable", logger)
	default:
		logger.Error().Err(err).Msg("unexpected error")
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
	}
}

// domainStatus picks the HTTP status for a domain error.
func domainStatus(de *model.DomainError) int {
	switch de.Code {
	case model.ErrCodeLogNotFound, model.ErrCodeMasterNotFound:
		return http.StatusNotFound
	case model.ErrCodeMasterInUse, model.ErrCodeStageRecorded:
		return http.StatusConflict
	case model.ErrCodeUnauthorised, model.ErrCodeInvalidMagicLink:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}

// pages renders HTML pages and the error screens shared by every page handler.
type pages struct {
	views        *view.Renderer
	dashboardURL string
	logger       zerolog.Logger
}

// page starts a view.Page for the request with the user and theme filled in.
func (p pages) page(r *http.Request, nav string) view.Page {
	pg := view.Page{Nav: nav, Theme: view.ThemeLight}
	if user, ok := auth.UserFrom(r.Context()); ok {
		pg.User = user
	}
	if c, err := r.Cookie(view.ThemeCookie); err == nil && c.Value == view.ThemeDark {
		pg.Theme = view.ThemeDark
	}
	return pg
}

func (p pages) render(w http.ResponseWriter, status int, name string, pg view.Page) {
	p.views.Render(w, status, name, pg)
}

// fail renders the page for an error that stops the request. A paused or
// unreachable backend gets the resume notice instead of a generic error.
func (p pages) fail(w http.ResponseWriter, r *http.Request, err error) {
	pg := p.page(r, "")

	var de *model.DomainError
	if errors.As(err, &de) {
		pg.Title = de.Message
		p.render(w, domainStatus(de), "error", pg)
		return
	}

	if database.IsUnavailable(err) {
		p.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("backend unavailable")
		pg.Title = "Backend paused"
		pg.Data = view.PausedData{DashboardURL: p.dashboardURL}
		p.render(w, http.StatusServiceUnavailable, "paused", pg)
		return
	}

	p.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	pg.Title = "Something went wrong"
	p.render(w, http.StatusInternalServerError, "error", pg)
}

// currentUser returns the signed-in user. RequireSession guarantees one on
// every non-public route.
func currentUser(r *http.Request) *model.User {
	user, _ := auth.UserFrom(r.Context())
	return user
}

// parseForm reads url-encoded and multipart bodies alike.
func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return model.ErrInvalidForm
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return model.ErrInvalidForm
	}
	return nil
}

// formUpload returns the file submitted in field, or nil when none was.
// The caller closes the returned file.
func formUpload(r *http.Request, field string) (*service.Upload, multipart.File, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, model.ErrInvalidForm
	}
	if header.Size == 0 {
		file.Close()
		return nil, nil, nil
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		buf := make([]byte, 512)
		n, _ := file.Read(buf)
		contentType = http.DetectContentType(buf[:n])
		if _, err := file.Seek(0, 0); err != nil {
			file.Close()
			return nil, nil, model.ErrInvalidForm
		}
	}

	return &service.Upload{Body: file, ContentType: contentType}, file, nil
}

// optionalUUID parses a possibly blank id.
func optionalUUID(s string) (*uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, model.ErrInvalidForm
	}
	return &id, nil
}

// optionalFloat parses a possibly blank number.
func optionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, model.ErrInvalidForm
	}
	return &f, nil
}

// optionalInt parses a possibly blank integer.
func optionalInt(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return nil, model.ErrInvalidForm
	}
	return &i, nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, model.ErrInvalidForm
	}
	return id, nil
}

// localRedirect returns target when it is a path on this site, fallback otherwise.
func localRedirect(target, fallback string) string {
	u, err := url.Parse(target)
	if err != nil || u.Path == "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return fallback
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
