package httpapi

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/config"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/event"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/identity"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/registration"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/store"
)

// Server holds every dependency the HTTP surface needs to route and
// handle requests. It is a thin dispatch layer and owns no business
// logic of its own.
type Server struct {
	events *event.Service
	regs   *registration.Engine
	idp    *identity.Adapter
	store  *store.Store
	log    zerolog.Logger
	env    string
	cfg    config.Config

	idempotency *idempotencyCache
	router      http.Handler
}

// New wires a Server and builds its route tree.
func New(cfg config.Config, st *store.Store, events *event.Service, regs *registration.Engine, idp *identity.Adapter, log zerolog.Logger) *Server {
	s := &Server{
		events:      events,
		regs:        regs,
		idp:         idp,
		store:       st,
		log:         log,
		env:         cfg.Environment,
		cfg:         cfg,
		idempotency: newIdempotencyCache(),
	}
	s.router = s.buildRouter()
	return s
}

// ServeHTTP lets Server satisfy http.Handler directly, for
// http.ListenAndServe and httptest callers alike.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
