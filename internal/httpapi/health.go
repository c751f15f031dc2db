package httpapi

import (
	"net/http"
	"time"
)

// healthResponse is the bare body returned by handleHealth, exempt
// from the success/error envelope.
type healthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
	Database    string    `json:"database,omitempty"`
}

// handleHealth reports liveness plus a best-effort database
// reachability check, outside the success/error envelope.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	db := "ok"
	if err := s.store.Ping(r.Context()); err != nil {
		db = "degraded"
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "success",
		Timestamp:   time.Now().UTC(),
		Environment: s.env,
		Database:    db,
	})
}
