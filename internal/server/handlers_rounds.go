package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-tracker/internal/rounds"
	"github.com/jonathan/interview-tracker/internal/server/middleware"
	"github.com/jonathan/interview-tracker/internal/types"
)

// ---------------------------------------------------------------------
// Round Handlers
// ---------------------------------------------------------------------

func (s *Server) handleListRounds(w http.ResponseWriter, r *http.Request) {
	contactID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid contact ID")
		return
	}

	all, err := s.rounds.EnsureRounds(r.Context(), contactID)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	contact, err := s.store.GetContact(r.Context(), contactID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if contact == nil {
		s.errorResponse(w, http.StatusNotFound, "Contact not found")
		return
	}

	now := time.Now()
	summaries := make([]types.RoundSummary, 0, len(all))
	for i := range all {
		summaries = append(summaries, roundSummary(&all[i], now))
	}

	s.jsonResponse(w, http.StatusOK, types.ContactRoundsResponse{
		ContactID: contactID,
		Status:    string(contact.Status),
		Rounds:    summaries,
	})
}

func (s *Server) handleCurrentRound(w http.ResponseWriter, r *http.Request) {
	contactID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid contact ID")
		return
	}

	current, err := s.rounds.CurrentRound(r.Context(), contactID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if current == nil {
		// All rounds completed: there is no current round.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	s.jsonResponse(w, http.StatusOK, roundSummary(current, time.Now()))
}

func (s *Server) handleStartRound(w http.ResponseWriter, r *http.Request) {
	contactID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid contact ID")
		return
	}
	roundNumber, err := strconv.Atoi(r.PathValue("number"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid round number")
		return
	}

	interviewerID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	interview, err := s.interviews.StartRound(r.Context(), contactID, roundNumber, interviewerID)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	// A resumed live session comes back unchanged, so this is not strictly
	// a create.
	s.jsonResponse(w, http.StatusOK, interview)
}

func roundSummary(r *rounds.Round, now time.Time) types.RoundSummary {
	return types.RoundSummary{
		ID:          r.ID,
		ContactID:   r.ContactID,
		RoundNumber: r.Number,
		Status:      string(r.Status),
		ScheduledAt: r.ScheduledAt,
		CanStart:    r.CanStartInterview(now),
	}
}
