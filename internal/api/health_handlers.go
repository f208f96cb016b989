package api

import (
	"errors"
	"net/http"

	"github.com/reelmates/reelmates-core/internal/blob"
	"github.com/reelmates/reelmates-core/internal/http/response"
)

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status  string `json:"status"`
	Syncing bool   `json:"syncing"`
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	// A read against a known-absent key exercises the store without
	// touching real data.
	if _, err := s.store.Get("health-probe"); err != nil && !errors.Is(err, blob.ErrNotFound) {
		status = "unhealthy"
	}

	response.Success(w, HealthResponse{
		Status:  status,
		Syncing: s.syncSvc.Syncing(),
	}, s.logger)
}
