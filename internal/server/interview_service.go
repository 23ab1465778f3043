package server

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/interview-tracker/internal/answers"
	"github.com/jonathan/interview-tracker/internal/db"
	"github.com/jonathan/interview-tracker/internal/rounds"
)

// InterviewService validates interview creation and resumption against round
// eligibility, and cascades interview completion into round and contact
// status changes.
type InterviewService struct {
	store     db.Store
	roundsSvc *RoundService
	now       func() time.Time
}

// NewInterviewService creates an InterviewService sharing the RoundService's
// transition logic.
func NewInterviewService(store db.Store, roundsSvc *RoundService) *InterviewService {
	return &InterviewService{
		store:     store,
		roundsSvc: roundsSvc,
		now:       time.Now,
	}
}

// StartRound starts (or resumes) the interview for a contact's round N.
// The round set is created lazily if missing. If a live interview already
// exists for the round it is returned unchanged; two concurrent starts
// therefore yield exactly one interview. Ineligible rounds fail with
// ErrRoundNotEligible carrying the round's status and scheduled time.
func (s *InterviewService) StartRound(ctx context.Context, contactID uuid.UUID, roundNumber int, interviewerID uuid.UUID) (*db.Interview, error) {
	if roundNumber < 1 || roundNumber > rounds.NumRounds {
		return nil, &ErrNotFound{Kind: "round", ID: strconv.Itoa(roundNumber)}
	}

	var result *db.Interview
	err := s.store.InContactTx(ctx, contactID, func(tx db.Store) error {
		all, err := s.roundsSvc.ensureRoundsTx(ctx, tx, contactID)
		if err != nil {
			return err
		}
		target := rounds.ByNumber(all, roundNumber)
		if target == nil {
			return &ErrInconsistentState{ContactID: contactID, Detail: "round set is missing a round"}
		}

		// A live interview is always resumable, even when the round's
		// scheduling window has technically lapsed.
		live, err := tx.FindLiveInterview(ctx, contactID, target.ID)
		if err != nil {
			return err
		}
		if live != nil {
			result = live
			return nil
		}

		if !target.CanStartInterview(s.now()) {
			return &ErrRoundNotEligible{
				RoundNumber: target.Number,
				Status:      target.Status,
				ScheduledAt: target.ScheduledAt,
			}
		}

		created, err := tx.CreateInterview(ctx, &db.Interview{
			ContactID:            contactID,
			InterviewerID:        interviewerID,
			InterviewRoundID:     &target.ID,
			Stage:                1,
			Status:               rounds.InterviewInProgress,
			CurrentQuestionIndex: 0,
		})
		if err == db.ErrDuplicateLiveInterview {
			// Lost a race outside the contact lock (legacy rows); resume
			// the winner instead of failing.
			result, err = tx.FindLiveInterview(ctx, contactID, target.ID)
			return err
		}
		if err != nil {
			return err
		}
		result = created

		// Round 1 may still be pending on legacy data; starting its
		// interview forces it active.
		if target.Status == rounds.RoundPending {
			if _, err := tx.UpdateRoundStatus(ctx, target.ID, rounds.RoundPending, rounds.RoundActive); err != nil {
				return err
			}
			target.Status = rounds.RoundActive
		}
		return s.roundsSvc.projectStatusTx(ctx, tx, contactID, all)
	})
	if err != nil {
		if err == db.ErrContactMissing {
			return nil, &ErrNotFound{Kind: "contact", ID: contactID.String()}
		}
		return nil, err
	}
	return result, nil
}

// UpdateStatus moves an interview between in_progress, paused, and
// completed, optionally moving stage and progress. Nil stage or
// questionIndex means "leave unchanged"; an explicit zero index rewinds to
// the first question. The transition to completed triggers the completion
// cascade: mark the round completed, activate the next round if ready, and
// reproject the contact status, all in the same unit of work.
func (s *InterviewService) UpdateStatus(ctx context.Context, interviewID uuid.UUID, newStatus rounds.InterviewStatus, stage, questionIndex *int) (*db.Interview, error) {
	if !newStatus.IsValid() {
		return nil, &ErrValidation{Field: "status", Message: "unknown interview status"}
	}

	peek, err := s.store.GetInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if peek == nil {
		return nil, &ErrNotFound{Kind: "interview", ID: interviewID.String()}
	}

	var result *db.Interview
	err = s.store.InContactTx(ctx, peek.ContactID, func(tx db.Store) error {
		iv, err := tx.GetInterview(ctx, interviewID)
		if err != nil {
			return err
		}
		if iv == nil {
			return &ErrNotFound{Kind: "interview", ID: interviewID.String()}
		}

		all, err := tx.ListRounds(ctx, iv.ContactID)
		if err != nil {
			return err
		}
		if err := validateInterviewMutation(iv, all); err != nil {
			return err
		}

		iv.Status = newStatus
		if stage != nil {
			iv.Stage = *stage
		}
		if questionIndex != nil {
			iv.CurrentQuestionIndex = *questionIndex
		}
		if newStatus == rounds.InterviewCompleted {
			completedAt := s.now()
			iv.CompletedAt = &completedAt
		}
		if err := tx.SaveInterviewStatus(ctx, iv); err != nil {
			return err
		}

		if newStatus == rounds.InterviewCompleted {
			if err := s.completeCascadeTx(ctx, tx, iv, all); err != nil {
				return err
			}
		}
		result = iv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// validateInterviewMutation re-checks eligibility on every interview save. A
// live interview is exempt so a paused session on a lapsed round can still
// resume; anything else that no longer passes the round's eligibility gate
// is a conflict.
func validateInterviewMutation(iv *db.Interview, all []rounds.Round) error {
	if !iv.Status.IsLive() {
		return &ErrValidationConflict{Reason: "interview is already completed"}
	}
	if iv.InterviewRoundID == nil {
		return nil
	}
	r := roundByID(all, *iv.InterviewRoundID)
	if r == nil {
		return &ErrValidationConflict{Reason: "interview references an unknown round"}
	}
	if r.Status == rounds.RoundCancelled {
		return &ErrValidationConflict{Reason: "round has been cancelled"}
	}
	return nil
}

// completeCascadeTx applies the interview-completion cascade inside the
// current unit of work: active round → completed, then the next round's
// activation check, then the contact status projection.
func (s *InterviewService) completeCascadeTx(ctx context.Context, tx db.Store, iv *db.Interview, all []rounds.Round) error {
	if iv.InterviewRoundID == nil {
		return nil
	}
	r := roundByID(all, *iv.InterviewRoundID)
	if r == nil {
		return nil
	}

	if r.Status == rounds.RoundActive {
		moved, err := tx.UpdateRoundStatus(ctx, r.ID, rounds.RoundActive, rounds.RoundCompleted)
		if err != nil {
			return err
		}
		if moved {
			r.Status = rounds.RoundCompleted
		}
	}

	if next := rounds.ByNumber(all, r.Number+1); next != nil {
		if _, err := s.roundsSvc.activateIfReadyTx(ctx, tx, all, next); err != nil {
			return err
		}
	}

	return s.roundsSvc.projectStatusTx(ctx, tx, iv.ContactID, all)
}

// RecordAnswer upserts the answer for (interview, question). The payload is
// validated against the question's answer schema, then stored opaquely.
func (s *InterviewService) RecordAnswer(ctx context.Context, interviewID, questionID uuid.UUID, payload json.RawMessage) (*db.Response, error) {
	iv, err := s.store.GetInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if iv == nil {
		return nil, &ErrNotFound{Kind: "interview", ID: interviewID.String()}
	}

	q, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, &ErrNotFound{Kind: "question", ID: questionID.String()}
	}

	if err := answers.ValidateAnswer(q.Type, q.Options, payload); err != nil {
		return nil, &ErrValidation{Field: "answer", Message: err.Error()}
	}

	return s.store.UpsertResponse(ctx, &db.Response{
		InterviewID: interviewID,
		QuestionID:  questionID,
		Answer:      payload,
	})
}

// SubmitFormData attaches an XForm submission to an interview. The payload
// is stored opaquely, like answers; nothing in it is interpreted here.
func (s *InterviewService) SubmitFormData(ctx context.Context, interviewID uuid.UUID, formData json.RawMessage) (*db.Interview, error) {
	iv, err := s.store.GetInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if iv == nil {
		return nil, &ErrNotFound{Kind: "interview", ID: interviewID.String()}
	}

	if err := s.store.SaveInterviewFormData(ctx, interviewID, formData); err != nil {
		if err == db.ErrInterviewMissing {
			return nil, &ErrNotFound{Kind: "interview", ID: interviewID.String()}
		}
		return nil, err
	}
	iv.FormData = formData
	return iv, nil
}

// DeleteInterview removes an interview and its recorded answers.
func (s *InterviewService) DeleteInterview(ctx context.Context, interviewID uuid.UUID) error {
	if err := s.store.DeleteInterview(ctx, interviewID); err != nil {
		if err == db.ErrInterviewMissing {
			return &ErrNotFound{Kind: "interview", ID: interviewID.String()}
		}
		return err
	}
	return nil
}

// GetInterview returns an interview by ID.
func (s *InterviewService) GetInterview(ctx context.Context, id uuid.UUID) (*db.Interview, error) {
	iv, err := s.store.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	if iv == nil {
		return nil, &ErrNotFound{Kind: "interview", ID: id.String()}
	}
	return iv, nil
}

// CountAnswers returns how many answers have been recorded for an interview.
func (s *InterviewService) CountAnswers(ctx context.Context, interviewID uuid.UUID) (int, error) {
	return s.store.CountResponses(ctx, interviewID)
}

// ListInterviews returns the interviewer's interviews.
func (s *InterviewService) ListInterviews(ctx context.Context, f db.InterviewFilters) ([]db.Interview, error) {
	return s.store.ListInterviews(ctx, f)
}

func roundByID(all []rounds.Round, id uuid.UUID) *rounds.Round {
	for i := range all {
		if all[i].ID == id {
			return &all[i]
		}
	}
	return nil
}
