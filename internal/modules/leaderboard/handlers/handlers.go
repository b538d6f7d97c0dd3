// Package handlers provides HTTP handlers for the contest leaderboard.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/contestboard/arena/internal/modules/leaderboard"
)

// Handler handles leaderboard HTTP requests
type Handler struct {
	service *leaderboard.Service
	log     zerolog.Logger
}

// NewHandler creates a new leaderboard handler
func NewHandler(service *leaderboard.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "leaderboard").Logger(),
	}
}

// HandleGetLeaderboard handles GET /api/leaderboard
func (h *Handler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, source := h.service.Leaderboard(r.Context())

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": entries,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"source":    source,
			"count":     len(entries),
		},
	})
}

// HandleGetTrader handles GET /api/leaderboard/{id}
func (h *Handler) HandleGetTrader(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "Trader ID is required", http.StatusBadRequest)
		return
	}

	detail, err := h.service.TraderDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, leaderboard.ErrNotFound) {
			http.Error(w, "Trader not found", http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Str("trader", id).Msg("Failed to get trader detail")
		http.Error(w, "Failed to get trader detail", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": detail,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"source":    detail.Source,
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
