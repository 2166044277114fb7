package server

import (
	"context"
	"net/http"
	"time"
)

const healthTimeout = 2 * time.Second

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthHandler pings every store backend. Any failure answers 503.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		failed := s.repos.Ping(ctx)
		if len(failed) == 0 {
			writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
			return
		}

		checks := make(map[string]string, len(failed))
		for name, err := range failed {
			checks[name] = err.Error()
		}
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Checks: checks})
	}
}
