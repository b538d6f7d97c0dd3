package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers candle routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/candles", func(r chi.Router) {
		r.Get("/", h.HandleGetCandles)
		r.Get("/indicators", h.HandleGetIndicator)
	})
}
