// internal/server/handlers/badges.go

package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"mixee/internal/domain/activity"
)

// BadgeHandler handles navigation badge and section requests
type BadgeHandler struct {
	badges   activity.Badges
	sections []activity.Section
	logger   *zap.Logger
}

// NewBadgeHandler creates a new badge handler
func NewBadgeHandler(badges activity.Badges, sections []activity.Section, logger *zap.Logger) *BadgeHandler {
	return &BadgeHandler{
		badges:   badges,
		sections: sections,
		logger:   logger,
	}
}

// GetBadges returns every badge in navigation order
func (h *BadgeHandler) GetBadges(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"active": h.badges.Active(),
		"badges": h.badges.Badges(),
	})
}

// SetActive turns badge drift on or off
func (h *BadgeHandler) SetActive(w http.ResponseWriter, r *http.Request) {
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

	h.badges.SetActive(*req.Active)

	h.GetBadges(w, r)
}

// GetSections returns the deck's navigation sections
func (h *BadgeHandler) GetSections(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.sections)
}
