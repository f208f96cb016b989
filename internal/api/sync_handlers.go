package api

import (
	"net/http"

	"github.com/reelmates/reelmates-core/internal/http/response"
)

// SyncStatusResponse reports the engine's pull state and collection
// sizes.
type SyncStatusResponse struct {
	Syncing bool `json:"syncing"`
	Watched int  `json:"watched"`
	Backlog int  `json:"backlog"`
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, SyncStatusResponse{
		Syncing: s.syncSvc.Syncing(),
		Watched: len(s.library.Watched()),
		Backlog: len(s.library.Backlog()),
	}, s.logger)
}

// handleSyncRefresh runs a full pull plus a goal refresh and waits for
// the result, so the UI's pull-to-refresh gesture reflects real
// completion.
func (s *Server) handleSyncRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.syncSvc.FullPull(ctx); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	if err := s.goalSvc.Refresh(ctx); err != nil {
		s.logger.Warn("Goal refresh failed during manual sync", "error", err)
	}

	s.handleSyncStatus(w, r)
}
