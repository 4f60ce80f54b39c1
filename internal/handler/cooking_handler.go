package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"pasta-logger/internal/cooking"
	"pasta-logger/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Streamer upgrades a request to the user's live event stream.
type Streamer interface {
	Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error
}

// BoilRequest changes the boil countdown length, either by one stepper
// operation or to an absolute value.
type BoilRequest struct {
	Op      string `json:"op,omitempty"`
	Minutes *int   `json:"minutes,omitempty"`
	Seconds *int   `json:"seconds,omitempty"`
}

// SaltResponse is the result of the salt calculator.
type SaltResponse struct {
	Percentage float64 `json:"percentage"`
}

// CookingHandler drives the signed-in user's cooking timer.
type CookingHandler struct {
	tracker *cooking.Tracker
	stream  Streamer
	now     func() time.Time
	logger  zerolog.Logger
}

// NewCookingHandler creates a new cooking handler.
func NewCookingHandler(tracker *cooking.Tracker, stream Streamer, logger zerolog.Logger) *CookingHandler {
	return &CookingHandler{
		tracker: tracker,
		stream:  stream,
		now:     time.Now,
		logger:  logger.With().Str("handler", "cooking").Logger(),
	}
}

func (h *CookingHandler) process(r *http.Request) *cooking.Process {
	return h.tracker.Get(currentUser(r).ID)
}

// State handles GET /cooking/state.
func (h *CookingHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.process(r).Snapshot())
}

// RecordStage handles POST /cooking/stages/{stage}.
func (h *CookingHandler) RecordStage(w http.ResponseWriter, r *http.Request) {
	stage, err := cooking.ParseStage(r.PathValue("stage"))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	p := h.process(r)
	if err := p.Record(stage, h.now()); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, p.Snapshot())
}

// StampMark handles POST /cooking/marks/{mark} for the B/U/C buttons.
func (h *CookingHandler) StampMark(w http.ResponseWriter, r *http.Request) {
	mark, err := cooking.ParseMark(r.PathValue("mark"))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	p := h.process(r)
	if err := p.Stamp(mark, h.now()); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, p.Snapshot())
}

// SetBoil handles POST /cooking/boil.
func (h *CookingHandler) SetBoil(w http.ResponseWriter, r *http.Request) {
	var req BoilRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidForm, "invalid request body", h.logger)
		return
	}

	p := h.process(r)
	switch {
	case req.Op != "":
		if _, err := p.StepBoil(req.Op); err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidForm, err.Error(), h.logger)
			return
		}
	case req.Minutes != nil || req.Seconds != nil:
		var m, s int
		if req.Minutes != nil {
			m = *req.Minutes
		}
		if req.Seconds != nil {
			s = *req.Seconds
		}
		p.SetBoil(cooking.ParseBoilDuration(m, s))
	default:
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidForm, "op or minutes/seconds is required", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, p.Snapshot())
}

// StartCountdown handles POST /cooking/countdown.
func (h *CookingHandler) StartCountdown(w http.ResponseWriter, r *http.Request) {
	p := h.process(r)
	p.StartCountdown()
	writeJSON(w, http.StatusOK, p.Snapshot())
}

// StopCountdown handles DELETE /cooking/countdown.
func (h *CookingHandler) StopCountdown(w http.ResponseWriter, r *http.Request) {
	p := h.process(r)
	p.StopCountdown()
	writeJSON(w, http.StatusOK, p.Snapshot())
}

// Reset handles POST /cooking/reset and discards the session in progress.
func (h *CookingHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.tracker.Reset(currentUser(r).ID)
	writeJSON(w, http.StatusOK, h.process(r).Snapshot())
}

// Stream handles GET /cooking/ws.
func (h *CookingHandler) Stream(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if err := h.stream.Serve(w, r, user.ID); err != nil {
		// the upgrader has already written the error response
		h.logger.Warn().Err(err).Str("user_id", user.ID.String()).Msg("websocket upgrade failed")
	}
}

// Salt handles GET /api/salt?water=<litres>&salt=<grams>.
func (h *CookingHandler) Salt(w http.ResponseWriter, r *http.Request) {
	water, err := strconv.ParseFloat(r.URL.Query().Get("water"), 64)
	if err != nil {
		writeServiceError(w, model.ErrInvalidSaltInput, h.logger)
		return
	}
	salt, err := strconv.ParseFloat(r.URL.Query().Get("salt"), 64)
	if err != nil {
		writeServiceError(w, model.ErrInvalidSaltInput, h.logger)
		return
	}

	pct, err := cooking.SaltPercentage(water, salt)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, SaltResponse{Percentage: pct})
}
