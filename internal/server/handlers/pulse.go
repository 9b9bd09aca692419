// internal/server/handlers/pulse.go

package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"mixee/internal/domain/activity"
)

// PulseHandler handles live-activity HTTP requests
type PulseHandler struct {
	pulse  activity.Pulse
	shell  *activity.Shell
	logger *zap.Logger
	now    func() time.Time
}

// NewPulseHandler creates a new pulse handler
func NewPulseHandler(pulse activity.Pulse, shell *activity.Shell, logger *zap.Logger) *PulseHandler {
	return &PulseHandler{
		pulse:  pulse,
		shell:  shell,
		logger: logger,
		now:    time.Now,
	}
}

// EventView is an event with its rendered age
type EventView struct {
	activity.Event
	Age string `json:"age"`
}

// PulseView is the full widget state
type PulseView struct {
	Active bool               `json:"active"`
	View   activity.ViewState `json:"view"`
	Stats  activity.Stats     `json:"stats"`
	Events []EventView        `json:"events"`
}

// GetPulse returns counters, recent events and the view state
func (h *PulseHandler) GetPulse(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.view())
}

// SetActive turns the simulation on or off
func (h *PulseHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Active *bool `json:"active"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Active == nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "Missing active flag", nil)
		return
	}

	h.pulse.SetActive(*req.Active)

	respondWithJSON(w, http.StatusOK, h.view())
}

// ToggleView flips the collapsed/expanded state
func (h *PulseHandler) ToggleView(w http.ResponseWriter, r *http.Request) {
	state := h.shell.Toggle()

	respondWithJSON(w, http.StatusOK, map[string]activity.ViewState{"view": state})
}

func (h *PulseHandler) view() PulseView {
	now := h.now()

	events := h.pulse.RecentEvents()
	views := make([]EventView, 0, len(events))
	for _, e := range events {
		views = append(views, EventView{Event: e, Age: activity.RelativeAge(e.CreatedAt, now)})
	}

	return PulseView{
		Active: h.pulse.Active(),
		View:   h.shell.State(),
		Stats:  h.pulse.Stats(),
		Events: views,
	}
}
