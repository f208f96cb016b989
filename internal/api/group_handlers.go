package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reelmates/reelmates-core/internal/domain"
	"github.com/reelmates/reelmates-core/internal/http/response"
)

// GroupListResponse lists the active group and every remembered one.
type GroupListResponse struct {
	Active domain.GroupInfo   `json:"active"`
	Known  domain.KnownGroups `json:"known"`
}

// CreateGroupRequest names a new group.
type CreateGroupRequest struct {
	Name string `json:"name" validate:"required,max=128"`
}

// JoinGroupRequest carries an invite code.
type JoinGroupRequest struct {
	Code string `json:"code" validate:"required,max=256"`
}

func (s *Server) handleListGroups(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, GroupListResponse{
		Active: s.groupSvc.Active(),
		Known:  s.groupSvc.Known(),
	}, s.logger)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	info := s.groupSvc.Create(req.Name)
	response.Created(w, info, s.logger)
}

func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	var req JoinGroupRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	info := s.groupSvc.Join(r.Context(), req.Code)
	response.Success(w, info, s.logger)
}

func (s *Server) handleLeaveGroup(w http.ResponseWriter, r *http.Request) {
	s.groupSvc.Leave(r.Context())
	response.NoContent(w)
}

func (s *Server) handleForgetGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	if groupID == "" {
		response.BadRequest(w, "Group ID is required", s.logger)
		return
	}

	s.groupSvc.Forget(r.Context(), groupID)
	response.NoContent(w)
}
