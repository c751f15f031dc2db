package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// buildRouter wires the route tree onto chi, with the global
// middleware stack (Recoverer, RequestID, RealIP) followed by this
// project's own Logger/CORS/RequestSize/Authenticate/RateLimit.
// Authenticate runs before RateLimit so RateLimit can see the
// resolved principal and key authenticated callers by user ID rather
// than shared IP.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogging(s.log))
	r.Use(CORS(s.cfg.Server.AllowedOrigins))
	r.Use(RequestSize(s.cfg.Server.MaxBodyBytes))
	r.Use(Authenticate(s.idp))
	r.Use(RateLimit(s.cfg.RateLimit.GeneralPerMinute, s.cfg.RateLimit.AuthPerMinute))

	r.Get("/health", s.handleHealth)

	r.Route("/api/events", func(r chi.Router) {
		r.Post("/", s.RequireAuth(s.handleCreateEvent))
		r.Get("/upcoming", s.handleListUpcoming)
		r.Get("/{id}", s.handleGetEvent)
		r.Get("/{id}/stats", s.handleEventStats)
		r.Put("/{id}", s.RequireAuth(s.handleUpdateEvent))
		r.Delete("/{id}", s.RequireAuth(s.handleDeleteEvent))
		r.Post("/{id}/register", s.RequireAuth(s.handleRegister))
		r.Delete("/{id}/register/{userId}", s.RequireAuth(s.handleCancel))
	})

	r.Get("/api/owned-events", s.RequireAuth(s.handleListOwned))

	return r
}
