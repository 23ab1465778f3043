package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jonathan/interview-tracker/internal/db"
	"github.com/jonathan/interview-tracker/internal/server/middleware"
	"github.com/jonathan/interview-tracker/internal/types"
)

// ---------------------------------------------------------------------
// Contact Handlers
// ---------------------------------------------------------------------

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var req types.CreateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	contact, err := s.store.CreateContact(r.Context(), &db.Contact{
		Name:         req.Name,
		Phone:        req.Phone,
		SerialNumber: req.SerialNumber,
		CUID:         req.CUID,
		TicketNumber: req.TicketNumber,
		Location:     req.Location,
		Notes:        req.Notes,
		CreatedBy:    userID,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	// The contact's four rounds come into existence with the contact.
	if _, err := s.rounds.EnsureRounds(r.Context(), contact.ID); err != nil {
		s.serviceError(w, err)
		return
	}

	// Re-read so the response carries the projected status.
	created, err := s.store.GetContact(r.Context(), contact.ID)
	if err != nil || created == nil {
		s.jsonResponse(w, http.StatusCreated, contact)
		return
	}
	s.jsonResponse(w, http.StatusCreated, created)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	contactID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid contact ID")
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

	s.jsonResponse(w, http.StatusOK, contact)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	contactID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid contact ID")
		return
	}

	var req types.UpdateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	existing, err := s.store.GetContact(r.Context(), contactID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if existing == nil {
		s.errorResponse(w, http.StatusNotFound, "Contact not found")
		return
	}

	existing.Name = req.Name
	existing.Phone = req.Phone
	existing.SerialNumber = req.SerialNumber
	existing.CUID = req.CUID
	existing.TicketNumber = req.TicketNumber
	existing.Location = req.Location
	existing.Notes = req.Notes
	existing.LastContact = req.LastContact

	if err := s.store.UpdateContact(r.Context(), existing); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	contactID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid contact ID")
		return
	}

	if err := s.store.DeleteContact(r.Context(), contactID); err != nil {
		if err == db.ErrContactMissing {
			s.errorResponse(w, http.StatusNotFound, "Contact not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	contacts, err := s.store.ListContacts(r.Context(), limit, offset)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"contacts": contacts,
		"count":    len(contacts),
	})
}
