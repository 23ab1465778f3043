package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jonathan/interview-tracker/internal/db"
	"github.com/jonathan/interview-tracker/internal/rounds"
	"github.com/jonathan/interview-tracker/internal/server/middleware"
	"github.com/jonathan/interview-tracker/internal/types"
)

// ---------------------------------------------------------------------
// Interview Handlers
// ---------------------------------------------------------------------

func (s *Server) handleListInterviews(w http.ResponseWriter, r *http.Request) {
	interviewerID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	q := r.URL.Query()
	stage, _ := strconv.Atoi(q.Get("stage"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	interviews, err := s.interviews.ListInterviews(r.Context(), db.InterviewFilters{
		InterviewerID: interviewerID,
		Status:        q.Get("status"),
		Stage:         stage,
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"interviews": interviews,
		"count":      len(interviews),
	})
}

func (s *Server) handleGetInterview(w http.ResponseWriter, r *http.Request) {
	interviewID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid interview ID")
		return
	}

	interview, err := s.interviews.GetInterview(r.Context(), interviewID)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	answered, err := s.interviews.CountAnswers(r.Context(), interviewID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"interview":      interview,
		"response_count": answered,
	})
}

func (s *Server) handleUpdateInterview(w http.ResponseWriter, r *http.Request) {
	interviewID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid interview ID")
		return
	}

	var req types.UpdateInterviewStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	interview, err := s.interviews.UpdateStatus(r.Context(), interviewID,
		rounds.InterviewStatus(req.Status), req.Stage, req.CurrentQuestionIndex)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, interview)
}

func (s *Server) handleSubmitFormData(w http.ResponseWriter, r *http.Request) {
	interviewID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid interview ID")
		return
	}

	var req types.SubmitFormDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	interview, err := s.interviews.SubmitFormData(r.Context(), interviewID, req.FormData)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, interview)
}

func (s *Server) handleDeleteInterview(w http.ResponseWriter, r *http.Request) {
	interviewID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid interview ID")
		return
	}

	if err := s.interviews.DeleteInterview(r.Context(), interviewID); err != nil {
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleRecordAnswer(w http.ResponseWriter, r *http.Request) {
	interviewID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid interview ID")
		return
	}

	var req types.RecordAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	response, err := s.interviews.RecordAnswer(r.Context(), interviewID, req.QuestionID, req.Answer)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, response)
}
