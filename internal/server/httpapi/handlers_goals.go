package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/goalkeeper/internal/server/models"
	"github.com/dmitrijs2005/goalkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	var period *models.Period
	if t := r.URL.Query().Get("type"); t != "" {
		p, err := services.ParsePeriod(t)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		period = &p
	}

	owner, ok := s.resolveOwner(w, r)
	if !ok {
		return
	}

	goals, err := s.goals.List(r.Context(), owner, period)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newGoalList(goals))
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	owner, ok := s.resolveOwner(w, r)
	if !ok {
		return
	}

	g, err := s.goals.Create(r.Context(), owner, services.CreateGoalRequest{Text: req.Text, Period: req.GoalType})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newGoalResponse(g))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req updateGoalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	owner, ok := s.resolveOwner(w, r)
	if !ok {
		return
	}

	g, err := s.goals.Update(r.Context(), owner, chi.URLParam(r, "id"), services.UpdateGoalRequest{Text: req.Text, Done: req.Done})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newGoalResponse(g))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.resolveOwner(w, r)
	if !ok {
		return
	}

	if err := s.goals.Delete(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.resolveOwner(w, r)
	if !ok {
		return
	}

	n, err := s.goals.Cleanup(r.Context(), owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cleanupResponse{Deleted: n})
}
