// internal/server/handlers/setup.go

package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"mixee/internal/service/setup"
)

// SetupHandler handles backend-configuration form checks
type SetupHandler struct {
	service *setup.Service
	logger  *zap.Logger
}

// NewSetupHandler creates a new setup handler
func NewSetupHandler(service *setup.Service, logger *zap.Logger) *SetupHandler {
	return &SetupHandler{
		service: service,
		logger:  logger,
	}
}

type setupResponse struct {
	Valid  bool               `json:"valid"`
	Errors []setup.FieldError `json:"errors,omitempty"`
}

// Validate runs the pattern checks only
func (h *SetupHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var creds setup.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := setup.Validate(creds); err != nil {
		respondWithJSON(w, http.StatusUnprocessableEntity, setupResponse{Errors: setup.FieldErrors(err)})
		return
	}

	respondWithJSON(w, http.StatusOK, setupResponse{Valid: true})
}

// Probe runs the pattern checks and then a database connectivity check
func (h *SetupHandler) Probe(w http.ResponseWriter, r *http.Request) {
	if !h.service.ProbeEnabled() {
		respondWithError(w, h.logger, http.StatusForbidden, "Database probe disabled", nil)
		return
	}

	var creds setup.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if creds.DatabaseURL == "" {
		respondWithError(w, h.logger, http.StatusBadRequest, "Missing database URL", nil)
		return
	}

	if err := h.service.Check(r.Context(), creds); err != nil {
		if fieldErrs := setup.FieldErrors(err); len(fieldErrs) > 0 {
			respondWithJSON(w, http.StatusUnprocessableEntity, setupResponse{Errors: fieldErrs})
			return
		}
		h.logger.Warn("database probe failed", zap.Error(err))
		respondWithError(w, h.logger, http.StatusBadGateway, "Database unreachable", nil)
		return
	}

	respondWithJSON(w, http.StatusOK, setupResponse{Valid: true})
}
