package handler

import (
	"errors"
	"net/http"
	"net/url"

	"pasta-logger/internal/cooking"
	"pasta-logger/internal/model"
	"pasta-logger/internal/service"
	"pasta-logger/internal/view"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LogHandler handles the cooking log pages.
type LogHandler struct {
	pages
	logs    service.LogService
	masters service.MasterService
	tracker *cooking.Tracker
}

// NewLogHandler creates a new log handler.
func NewLogHandler(
	logs service.LogService,
	masters service.MasterService,
	tracker *cooking.Tracker,
	views *view.Renderer,
	dashboardURL string,
	logger zerolog.Logger,
) *LogHandler {
	return &LogHandler{
		pages: pages{
			views:        views,
			dashboardURL: dashboardURL,
			logger:       logger.With().Str("handler", "log").Logger(),
		},
		logs:    logs,
		masters: masters,
		tracker: tracker,
	}
}

// List handles GET /logs. Malformed filter values are ignored.
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	q := r.URL.Query()

	var filter model.LogFilter
	filter.RecipeID, _ = optionalUUID(q.Get("recipe"))
	filter.PastaKindID, _ = optionalUUID(q.Get("pasta"))
	filter.ThicknessMin, _ = optionalFloat(q.Get("thickness_min"))
	filter.ThicknessMax, _ = optionalFloat(q.Get("thickness_max"))

	logs, err := h.logs.List(r.Context(), user.ID, filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	pickers, err := h.masters.Pickers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	pg := h.page(r, view.NavList)
	pg.Title = "Logs"
	pg.Data = view.LogListData{Logs: logs, Pickers: pickers, Query: q}
	h.render(w, http.StatusOK, "logs_list", pg)
}

// New handles GET /logs/new: the form with the live cooking timer.
func (h *LogHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderNew(w, r, http.StatusOK, url.Values{}, nil, "")
}

func (h *LogHandler) renderNew(w http.ResponseWriter, r *http.Request, status int, form url.Values, cheeseIDs []uuid.UUID, message string) {
	pickers, err := h.masters.Pickers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	pg := h.page(r, view.NavNew)
	pg.Title = "New log"
	pg.Error = message
	pg.Data = view.LogNewData{
		Pickers:   pickers,
		Snapshot:  h.tracker.Get(currentUser(r).ID).Snapshot(),
		Form:      form,
		CheeseIDs: cheeseIDs,
		Scores:    view.Scores,
	}
	h.render(w, status, "logs_new", pg)
}

// Create handles POST /logs. The cooking process recorded so far is saved
// with the form and then reset.
func (h *LogHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	if err := parseForm(r); err != nil {
		h.renderNew(w, r, http.StatusBadRequest, url.Values{}, nil, model.ErrInvalidForm.Message)
		return
	}

	in, err := logInput(r.Form)
	if err != nil {
		h.renderNew(w, r, http.StatusBadRequest, r.Form, in.CheeseIDs, model.ErrInvalidForm.Message)
		return
	}

	photo, file, err := formUpload(r, "photo")
	if err != nil {
		h.renderNew(w, r, http.StatusBadRequest, r.Form, in.CheeseIDs, err.Error())
		return
	}
	if file != nil {
		defer file.Close()
	}

	var snap cooking.Snapshot
	if p, ok := h.tracker.Peek(user.ID); ok {
		snap = p.Snapshot()
	}

	entry, err := h.logs.Create(r.Context(), user.ID, in, photo, snap)
	var de *model.DomainError
	if errors.As(err, &de) {
		h.renderNew(w, r, domainStatus(de), r.Form, in.CheeseIDs, de.Message)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.tracker.Reset(user.ID)
	http.Redirect(w, r, "/logs/"+entry.ID.String(), http.StatusSeeOther)
}

// logInput reads the new-log form. Unreadable cheese ids are skipped so the
// form can be shown again with the rest intact.
func logInput(form url.Values) (model.LogInput, error) {
	var in model.LogInput
	var errs []error

	for _, raw := range form["cheese_ids"] {
		id, err := uuid.Parse(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		in.CheeseIDs = append(in.CheeseIDs, id)
	}

	var err error
	if in.RecipeID, err = optionalUUID(form.Get("recipe_id")); err != nil {
		errs = append(errs, err)
	}
	if in.PastaKindID, err = optionalUUID(form.Get("pasta_kind_id")); err != nil {
		errs = append(errs, err)
	}
	if in.WaterLitres, err = optionalFloat(form.Get("water_l")); err != nil {
		errs = append(errs, err)
	}
	if in.SaltGrams, err = optionalFloat(form.Get("salt_g")); err != nil {
		errs = append(errs, err)
	}
	if in.LadleHalfUnits, err = optionalFloat(form.Get("ladle_half_units")); err != nil {
		errs = append(errs, err)
	}
	if in.Overall, err = optionalScore(form.Get("overall")); err != nil {
		errs = append(errs, err)
	}
	if in.Firmness, err = optionalScore(form.Get("firmness")); err != nil {
		errs = append(errs, err)
	}

	in.Title = form.Get("title")
	in.Feedback = form.Get("feedback")
	in.RecipeReference = form.Get("recipe_reference")

	return in, errors.Join(errs...)
}

// optionalScore parses a possibly blank rating from the score selects.
func optionalScore(s string) (*int, error) {
	score, err := optionalInt(s)
	if err != nil {
		return nil, err
	}
	if score != nil && (*score < model.MinScore || *score > model.MaxScore) {
		return nil, model.ErrInvalidForm
	}
	return score, nil
}

// Detail handles GET /logs/{id}.
func (h *LogHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, model.ErrLogNotFound)
		return
	}

	detail, err := h.logs.Get(r.Context(), currentUser(r).ID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data := view.LogDetailData{Log: detail}
	if a := cooking.AnalyzeStored(detail.ProcessTimes); !a.Empty() {
		report := a.Report()
		data.Analysis = &report
	}

	pg := h.page(r, view.NavList)
	pg.Title = detail.DisplayTitle
	pg.Data = data
	h.render(w, http.StatusOK, "logs_detail", pg)
}

// Delete handles POST /logs/{id}/delete.
func (h *LogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, model.ErrLogNotFound)
		return
	}

	if err := h.logs.Delete(r.Context(), currentUser(r).ID, id); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/logs", http.StatusSeeOther)
}
