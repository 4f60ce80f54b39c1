// Package view renders the server-side HTML pages.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"pasta-logger/internal/cooking"
	"pasta-logger/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

// Navigation sections highlighted in the header.
const (
	NavNew    = "new"
	NavList   = "list"
	NavManage = "manage"
)

// Themes persisted in the theme cookie.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeCookie = "theme"
)

// Page is the data every template receives.
type Page struct {
	Title string
	Nav   string
	User  *model.User
	Theme string
	// Notice is a one-line success message shown above the content.
	Notice string
	// Error is an inline failure message.
	Error string
	Data  any
}

// Renderer executes the embedded page templates inside the shared layout.
type Renderer struct {
	pages  map[string]*template.Template
	logger zerolog.Logger
}

// New parses every page template.
func New(logger zerolog.Logger) (*Renderer, error) {
	base, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".html")
		if name == "layout" {
			continue
		}
		t, err := template.Must(base.Clone()).ParseFS(templateFS, file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = t
	}

	return &Renderer{
		pages:  pages,
		logger: logger.With().Str("component", "view").Logger(),
	}, nil
}

// Render writes the named page with the given status. The page is rendered
// into a buffer first so a template error never leaves a half-written body.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, p Page) {
	t, ok := r.pages[name]
	if !ok {
		r.logger.Error().Str("template", name).Msg("unknown template")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if p.Theme != ThemeDark {
		p.Theme = ThemeLight
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", p); err != nil {
		r.logger.Error().Err(err).Str("template", name).Msg("failed to render template")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Debug().Err(err).Str("template", name).Msg("failed to write page")
	}
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

var funcs = template.FuncMap{
	"datetime":  formatTime,
	"str":       deref,
	"num":       formatFloat,
	"int":       formatInt,
	"pct":       formatPct,
	"pasta":     model.PastaDisplayName,
	"clock":     cooking.FormatClock,
	"stages":    func() []cooking.Stage { return cooking.Stages },
	"presets":   func() []cooking.BoilDuration { return cooking.BoilPresets },
	"hasID":     hasID,
	"stars":     stars,
	"join":      strings.Join,
	"themeNext": nextTheme,
	"stageTime": stageTime,
}

func formatTime(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return "-"
		}
		return t.Local().Format("2006-01-02 15:04")
	case *time.Time:
		if t == nil {
			return "-"
		}
		return formatTime(*t)
	default:
		return "-"
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func formatInt(i *int) string {
	if i == nil {
		return "-"
	}
	return strconv.Itoa(*i)
}

func formatPct(f *float64) string {
	if f == nil {
		return "-"
	}
	return strconv.FormatFloat(*f, 'f', 1, 64) + "%"
}

func hasID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func stars(score *int) string {
	if score == nil || *score <= 0 {
		return "-"
	}
	return strings.Repeat("★", min(*score, 5))
}

// stageTime returns when a stage was recorded, or nil.
func stageTime(times map[cooking.Stage]time.Time, stage cooking.Stage) *time.Time {
	at, ok := times[stage]
	if !ok {
		return nil
	}
	return &at
}

func nextTheme(theme string) string {
	if theme == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}
