package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/contestboard/arena/internal/database"
	"github.com/contestboard/arena/internal/modules/charts"
	"github.com/contestboard/arena/internal/modules/drawing"
)

// CandleLoader provides the series a session draws on. *charts.Service
// satisfies it.
type CandleLoader interface {
	Candles(ctx context.Context, q charts.Query) (*charts.Result, error)
}

// HandlerOption configures a Handler
type HandlerOption func(*Handler)

// WithOriginPatterns allows cross-origin upgrades from hosts matching patterns
func WithOriginPatterns(patterns ...string) HandlerOption {
	return func(h *Handler) {
		h.originPatterns = append(h.originPatterns, patterns...)
	}
}

// WithDrawingIDs overrides the drawing ID source of new sessions
func WithDrawingIDs(gen func() drawing.IDGenerator) HandlerOption {
	return func(h *Handler) {
		h.newIDs = gen
	}
}

// Handler upgrades chart requests to drawing sessions
type Handler struct {
	candles        CandleLoader
	originPatterns []string
	newIDs         func() drawing.IDGenerator
	log            zerolog.Logger
}

// NewHandler creates a new drawing session handler
func NewHandler(candles CandleLoader, log zerolog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		candles: candles,
		newIDs:  drawing.UUIDs,
		log:     log.With().Str("handler", "drawing_session").Logger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers the session endpoint
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/drawing", func(r chi.Router) {
		r.Get("/ws", h.HandleWebSocket)
	})
}

// HandleWebSocket handles GET /api/drawing/ws?symbol=&from=&to=&timeframe=&width=&height=
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	q, width, height, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	result, err := h.candles.Candles(r.Context(), q)
	if err != nil {
		if errors.Is(err, charts.ErrInvalidQuery) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Str("symbol", q.Symbol).Msg("Failed to load candles for session")
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	candles := ToDrawingCandles(result.Candles)
	setup := Setup{
		ID:        uuid.NewString(),
		Symbol:    charts.CleanSymbol(q.Symbol),
		Timeframe: string(q.Timeframe),
		Viewport:  ViewportFor(candles, q, width, height),
		Candles:   candles,
		NewID:     h.newIDs(),
	}
	if err := setup.Viewport.Validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{MsgpackSubprotocol},
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		// Accept has already written the HTTP error
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	s, err := New(conn, setup, h.log)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to start drawing session")
		conn.Close(websocket.StatusInternalError, "session setup failed")
		return
	}

	if err := s.Run(r.Context()); err != nil {
		h.log.Warn().Err(err).Str("session", setup.ID).Msg("Drawing session failed")
		conn.Close(websocket.StatusInternalError, "session error")
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func (h *Handler) parseRequest(w http.ResponseWriter, r *http.Request) (charts.Query, float64, float64, bool) {
	params := r.URL.Query()
	symbol, from, to := params.Get("symbol"), params.Get("from"), params.Get("to")
	if symbol == "" || from == "" || to == "" {
		h.writeError(w, http.StatusBadRequest, "Missing required parameters: symbol, from, to")
		return charts.Query{}, 0, 0, false
	}

	fromTime, err := database.ParseTime(from)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid from: "+err.Error())
		return charts.Query{}, 0, 0, false
	}
	toTime, err := database.ParseTime(to)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid to: "+err.Error())
		return charts.Query{}, 0, 0, false
	}

	tf := charts.Timeframe(params.Get("timeframe"))
	if tf == "" {
		tf = charts.DefaultTimeframe
	}

	width, err := dimension(params.Get("width"), DefaultWidth)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid width")
		return charts.Query{}, 0, 0, false
	}
	height, err := dimension(params.Get("height"), DefaultHeight)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid height")
		return charts.Query{}, 0, 0, false
	}

	return charts.Query{Symbol: symbol, From: fromTime, To: toTime, Timeframe: tf}, width, height, true
}

func dimension(raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, strconv.ErrRange
	}
	return v, nil
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
