package handler

import (
	"errors"
	"net/http"
	"net/url"

	"pasta-logger/internal/model"
	"pasta-logger/internal/service"
	"pasta-logger/internal/view"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// notices are the one-line confirmations shown after a redirect.
var notices = map[string]string{
	"saved":   "Saved",
	"deleted": "Deleted",
}

// MasterHandler handles the manage screens for recipes, pasta kinds and cheeses.
type MasterHandler struct {
	pages
	service service.MasterService
}

// NewMasterHandler creates a new master data handler.
func NewMasterHandler(service service.MasterService, views *view.Renderer, dashboardURL string, logger zerolog.Logger) *MasterHandler {
	return &MasterHandler{
		pages: pages{
			views:        views,
			dashboardURL: dashboardURL,
			logger:       logger.With().Str("handler", "master").Logger(),
		},
		service: service,
	}
}

// Dashboard handles GET /manage.
func (h *MasterHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	pg := h.page(r, view.NavManage)
	pg.Title = "Manage"
	pg.Data = view.ManageData{Stats: stats}
	h.render(w, http.StatusOK, "manage", pg)
}

// masterFilter reads the filter fields of a manage screen. Malformed
// thickness bounds are ignored.
func masterFilter(q url.Values) model.MasterFilter {
	f := model.MasterFilter{
		Name:         q.Get("name"),
		Brand:        q.Get("brand"),
		Manufacturer: q.Get("manufacturer"),
		Location:     q.Get("location"),
	}
	f.ThicknessMin, _ = optionalFloat(q.Get("thickness_min"))
	f.ThicknessMax, _ = optionalFloat(q.Get("thickness_max"))
	return f
}

// editID returns the {id} of an edit or update route, or nil on create routes.
func editID(r *http.Request) (*uuid.UUID, error) {
	if r.PathValue("id") == "" {
		return nil, nil
	}
	id, err := pathID(r)
	if err != nil {
		return nil, model.ErrMasterNotFound
	}
	return &id, nil
}

func (h *MasterHandler) listPage(r *http.Request, message string) view.Page {
	pg := h.page(r, view.NavManage)
	pg.Error = message
	pg.Notice = notices[r.URL.Query().Get("notice")]
	return pg
}

// inlineError returns the message of a domain error, or "" with ok false
// for anything else.
func inlineError(err error) (string, int, bool) {
	var de *model.DomainError
	if errors.As(err, &de) {
		return de.Message, domainStatus(de), true
	}
	return "", 0, false
}

// Recipes handles GET /manage/recipes and GET /manage/recipes/{id}/edit.
func (h *MasterHandler) Recipes(w http.ResponseWriter, r *http.Request) {
	h.renderRecipes(w, r, http.StatusOK, "")
}

func (h *MasterHandler) renderRecipes(w http.ResponseWriter, r *http.Request, status int, message string) {
	id, err := editID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data := view.MasterListData[model.Recipe]{Query: r.URL.Query()}
	if id != nil {
		if data.Editing, err = h.service.GetRecipe(r.Context(), *id); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	if data.Items, err = h.service.ListRecipes(r.Context(), masterFilter(data.Query)); err != nil {
		h.fail(w, r, err)
		return
	}

	pg := h.listPage(r, message)
	pg.Title = "Categories"
	pg.Data = data
	h.render(w, status, "manage_recipes", pg)
}

// SaveRecipe handles POST /manage/recipes and POST /manage/recipes/{id}.
func (h *MasterHandler) SaveRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := editID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := parseForm(r); err != nil {
		h.renderRecipes(w, r, http.StatusBadRequest, model.ErrInvalidForm.Message)
		return
	}

	_, err = h.service.SaveRecipe(r.Context(), id, model.RecipeInput{Name: r.PostForm.Get("name")})
	if msg, status, ok := inlineError(err); ok {
		h.renderRecipes(w, r, status, msg)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/manage/recipes?notice=saved", http.StatusSeeOther)
}

// DeleteRecipe handles POST /manage/recipes/{id}/delete.
func (h *MasterHandler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, model.ErrMasterNotFound)
		return
	}

	err = h.service.DeleteRecipe(r.Context(), id)
	if msg, status, ok := inlineError(err); ok {
		r.SetPathValue("id", "")
		h.renderRecipes(w, r, status, msg)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/manage/recipes?notice=deleted", http.StatusSeeOther)
}

// PastaKinds handles GET /manage/pastas and GET /manage/pastas/{id}/edit.
func (h *MasterHandler) PastaKinds(w http.ResponseWriter, r *http.Request) {
	h.renderPastaKinds(w, r, http.StatusOK, "")
}

func (h *MasterHandler) renderPastaKinds(w http.ResponseWriter, r *http.Request, status int, message string) {
	id, err := editID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data := view.MasterListData[model.PastaKind]{Query: r.URL.Query()}
	if id != nil {
		if data.Editing, err = h.service.GetPastaKind(r.Context(), *id); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	if data.Items, err = h.service.ListPastaKinds(r.Context(), masterFilter(data.Query)); err != nil {
		h.fail(w, r, err)
		return
	}

	pg := h.listPage(r, message)
	pg.Title = "Pasta"
	pg.Data = data
	h.render(w, status, "manage_pastas", pg)
}

// SavePastaKind handles POST /manage/pastas and POST /manage/pastas/{id}.
func (h *MasterHandler) SavePastaKind(w http.ResponseWriter, r *http.Request) {
	id, err := editID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := parseForm(r); err != nil {
		h.renderPastaKinds(w, r, http.StatusBadRequest, model.ErrInvalidForm.Message)
		return
	}

	thickness, err := optionalFloat(r.PostForm.Get("thickness_mm"))
	if err != nil {
		h.renderPastaKinds(w, r, http.StatusBadRequest, err.Error())
		return
	}
	image, file, err := formUpload(r, "image")
	if err != nil {
		h.renderPastaKinds(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if file != nil {
		defer file.Close()
	}

	in := model.PastaKindInput{
		Brand:            r.PostForm.Get("brand"),
		ThicknessMM:      thickness,
		PurchaseLocation: r.PostForm.Get("purchase_location"),
	}
	_, err = h.service.SavePastaKind(r.Context(), currentUser(r).ID, id, in, image)
	if msg, status, ok := inlineError(err); ok {
		h.renderPastaKinds(w, r, status, msg)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/manage/pastas?notice=saved", http.StatusSeeOther)
}

// DeletePastaKind handles POST /manage/pastas/{id}/delete. A kind that saved
// logs still reference is kept and the screen explains why.
func (h *MasterHandler) DeletePastaKind(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, model.ErrMasterNotFound)
		return
	}

	err = h.service.DeletePastaKind(r.Context(), id)
	if msg, status, ok := inlineError(err); ok {
		r.SetPathValue("id", "")
		h.renderPastaKinds(w, r, status, msg)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/manage/pastas?notice=deleted", http.StatusSeeOther)
}

// Cheeses handles GET /manage/cheeses and GET /manage/cheeses/{id}/edit.
func (h *MasterHandler) Cheeses(w http.ResponseWriter, r *http.Request) {
	h.renderCheeses(w, r, http.StatusOK, "")
}

func (h *MasterHandler) renderCheeses(w http.ResponseWriter, r *http.Request, status int, message string) {
	id, err := editID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data := view.MasterListData[model.Cheese]{Query: r.URL.Query()}
	if id != nil {
		if data.Editing, err = h.service.GetCheese(r.Context(), *id); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	if data.Items, err = h.service.ListCheeses(r.Context(), masterFilter(data.Query)); err != nil {
		h.fail(w, r, err)
		return
	}

	pg := h.listPage(r, message)
	pg.Title = "Cheese"
	pg.Data = data
	h.render(w, status, "manage_cheeses", pg)
}

// SaveCheese handles POST /manage/cheeses and POST /manage/cheeses/{id}.
func (h *MasterHandler) SaveCheese(w http.ResponseWriter, r *http.Request) {
	id, err := editID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := parseForm(r); err != nil {
		h.renderCheeses(w, r, http.StatusBadRequest, model.ErrInvalidForm.Message)
		return
	}

	image, file, err := formUpload(r, "image")
	if err != nil {
		h.renderCheeses(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if file != nil {
		defer file.Close()
	}

	in := model.CheeseInput{
		Name:             r.PostForm.Get("name"),
		Manufacturer:     r.PostForm.Get("manufacturer"),
		PurchaseLocation: r.PostForm.Get("purchase_location"),
	}
	_, err = h.service.SaveCheese(r.Context(), currentUser(r).ID, id, in, image)
	if msg, status, ok := inlineError(err); ok {
		h.renderCheeses(w, r, status, msg)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/manage/cheeses?notice=saved", http.StatusSeeOther)
}

// DeleteCheese handles POST /manage/cheeses/{id}/delete.
func (h *MasterHandler) DeleteCheese(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, model.ErrMasterNotFound)
		return
	}

	err = h.service.DeleteCheese(r.Context(), id)
	if msg, status, ok := inlineError(err); ok {
		r.SetPathValue("id", "")
		h.renderCheeses(w, r, status, msg)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/manage/cheeses?notice=deleted", http.StatusSeeOther)
}
