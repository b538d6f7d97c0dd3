package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers leaderboard routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leaderboard", func(r chi.Router) {
		r.Get("/", h.HandleGetLeaderboard)
		r.Get("/{id}", h.HandleGetTrader)
	})
}
