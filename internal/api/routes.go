package api

import "github.com/go-chi/chi/v5"

func RegisterRoutes(mux *chi.Mux, h *Handlers) {
	mux.Get("/healthz", h.Health)
	mux.Get("/version", h.Version)

	mux.Post("/api/analyze", h.Analyze)
	mux.Post("/api/chat", h.Chat)
	mux.Get("/api/stream/snapshot", h.StreamSnapshot)
	mux.Post("/api/session/new", h.NewSession)
	mux.Post("/api/session/load", h.LoadHistory)

	mux.Get("/api/history", h.ListHistory)
	mux.Post("/api/history", h.SaveHistory)
	mux.Delete("/api/history/{id}", h.DeleteHistory)

	mux.Get("/api/stock/quote", h.StockQuote)
}
