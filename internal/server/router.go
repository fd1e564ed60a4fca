package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter wires the webhook server's routes
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.HealthCheck)
	r.Post("/webhook", s.HandleWebhook)

	return r
}
