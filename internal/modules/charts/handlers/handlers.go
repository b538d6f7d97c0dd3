// Package handlers provides HTTP handlers for candles and indicator overlays.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/contestboard/arena/internal/database"
	"github.com/contestboard/arena/internal/modules/charts"
)

// Handler handles chart data HTTP requests
type Handler struct {
	service *charts.Service
	log     zerolog.Logger
}

// NewHandler creates a new charts handler
func NewHandler(service *charts.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "charts").Logger(),
	}
}

// HandleGetCandles handles GET /api/candles?symbol=&from=&to=&timeframe=
func (h *Handler) HandleGetCandles(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	result, err := h.service.Candles(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, err, q)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result.Candles,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"symbol":    charts.CleanSymbol(q.Symbol),
			"timeframe": q.Timeframe,
			"source":    result.Source,
			"count":     len(result.Candles),
		},
	})
}

// HandleGetIndicator handles GET /api/candles/indicators?...&indicator=&period=
func (h *Handler) HandleGetIndicator(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	name := r.URL.Query().Get("indicator")
	if name == "" {
		h.writeError(w, http.StatusBadRequest, "Missing required parameter: indicator")
		return
	}

	period := 0
	if raw := r.URL.Query().Get("period"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid period")
			return
		}
		period = p
	}

	series, err := h.service.Indicator(r.Context(), q, name, period)
	if err != nil {
		h.writeServiceError(w, err, q)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": series,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) parseQuery(w http.ResponseWriter, r *http.Request) (charts.Query, bool) {
	params := r.URL.Query()
	symbol, from, to := params.Get("symbol"), params.Get("from"), params.Get("to")
	if symbol == "" || from == "" || to == "" {
		h.writeError(w, http.StatusBadRequest, "Missing required parameters: symbol, from, to")
		return charts.Query{}, false
	}

	fromTime, err := database.ParseTime(from)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid from: "+err.Error())
		return charts.Query{}, false
	}
	toTime, err := database.ParseTime(to)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid to: "+err.Error())
		return charts.Query{}, false
	}

	tf := charts.Timeframe(params.Get("timeframe"))
	if tf == "" {
		tf = charts.DefaultTimeframe
	}

	return charts.Query{Symbol: symbol, From: fromTime, To: toTime, Timeframe: tf}, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, q charts.Query) {
	if errors.Is(err, charts.ErrInvalidQuery) {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.log.Error().Err(err).Str("symbol", q.Symbol).Msg("Failed to fetch candles")
	h.writeError(w, http.StatusInternalServerError, "Internal server error")
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
