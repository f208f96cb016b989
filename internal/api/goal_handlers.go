package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/reelmates/reelmates-core/internal/domain"
	"github.com/reelmates/reelmates-core/internal/http/response"
)

// SetYearlyGoalRequest sets the watch target for one year.
type SetYearlyGoalRequest struct {
	Target int `json:"target" validate:"gte=0,lte=10000"`
}

// YearlyGoalResponse reports the stored goals and the remote outcome.
type YearlyGoalResponse struct {
	Goals  domain.YearlyGoals `json:"goals"`
	Synced bool               `json:"synced"`
}

// UpsertCustomGoalRequest carries one custom goal definition.
type UpsertCustomGoalRequest struct {
	Type        domain.GoalType `json:"type" validate:"required,oneof=decade person director genre keyword"`
	Target      int             `json:"target" validate:"gte=1,lte=10000"`
	DecadeStart int             `json:"decade_start"`
	DecadeEnd   int             `json:"decade_end"`
	PersonID    int64           `json:"person_id"`
	PersonName  string          `json:"person_name"`
	GenreID     int64           `json:"genre_id"`
	GenreName   string          `json:"genre_name"`
	Keyword     string          `json:"keyword"`
}

// CustomGoalResponse reports one stored goal and the remote outcome.
type CustomGoalResponse struct {
	Goal   domain.CustomGoal `json:"goal"`
	Synced bool              `json:"synced"`
}

func (s *Server) handleGetYearlyGoals(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, s.goalSvc.YearlyGoals(), s.logger)
}

func (s *Server) handleSetYearlyGoal(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1900 || year > 2200 {
		response.BadRequest(w, "Invalid year", s.logger)
		return
	}

	var req SetYearlyGoalRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	synced := s.goalSvc.SetYearlyGoal(r.Context(), year, req.Target)
	response.Success(w, YearlyGoalResponse{Goals: s.goalSvc.YearlyGoals(), Synced: synced}, s.logger)
}

func (s *Server) handleListCustomGoals(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, s.goalSvc.CustomGoals(), s.logger)
}

func (s *Server) handleUpsertCustomGoal(w http.ResponseWriter, r *http.Request) {
	var req UpsertCustomGoalRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	goal, synced := s.goalSvc.UpsertCustomGoal(r.Context(), domain.CustomGoal{
		Type:        req.Type,
		Target:      req.Target,
		DecadeStart: req.DecadeStart,
		DecadeEnd:   req.DecadeEnd,
		PersonID:    req.PersonID,
		PersonName:  req.PersonName,
		GenreID:     req.GenreID,
		GenreName:   req.GenreName,
		Keyword:     req.Keyword,
	})
	response.Created(w, CustomGoalResponse{Goal: goal, Synced: synced}, s.logger)
}

func (s *Server) handleDeleteCustomGoal(w http.ResponseWriter, r *http.Request) {
	goalID := chi.URLParam(r, "id")
	if goalID == "" {
		response.BadRequest(w, "Goal ID is required", s.logger)
		return
	}

	s.goalSvc.DeleteCustomGoal(r.Context(), goalID)
	response.NoContent(w)
}
