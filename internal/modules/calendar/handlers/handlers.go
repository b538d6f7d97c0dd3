// Package handlers provides the HTTP handler for the economic calendar.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/contestboard/arena/internal/modules/calendar"
)

// Handler handles calendar HTTP requests
type Handler struct {
	service *calendar.Service
	log     zerolog.Logger
}

// NewHandler creates a new calendar handler
func NewHandler(service *calendar.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "calendar").Logger(),
	}
}

// HandleGetCalendar handles GET /api/calendar
func (h *Handler) HandleGetCalendar(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.Events(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get economic calendar")
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch economic calendar",
		})
		return
	}

	if events == nil {
		events = []calendar.EconomicEvent{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// RegisterRoutes registers calendar routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/calendar", h.HandleGetCalendar)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
