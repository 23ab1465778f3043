package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/interview-tracker/internal/db"
)

// handleListQuestions lists interview questions, optionally scoped to a
// round and stage. Questions with no round apply to every round and are
// always included.
func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filters db.QuestionFilters
	if raw := q.Get("round"); raw != "" {
		round, err := strconv.Atoi(raw)
		if err != nil || round < 1 {
			s.errorResponse(w, http.StatusBadRequest, "Invalid round")
			return
		}
		filters.Round = &round
	}
	if raw := q.Get("stage"); raw != "" {
		stage, err := strconv.Atoi(raw)
		if err != nil || stage < 1 {
			s.errorResponse(w, http.StatusBadRequest, "Invalid stage")
			return
		}
		filters.Stage = stage
	}

	questions, err := s.store.ListQuestions(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"questions": questions,
		"count":     len(questions),
	})
}
