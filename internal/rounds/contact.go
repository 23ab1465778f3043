package rounds

import "fmt"

// ContactStatus is the contact-level summary derived from round states.
// It is a projection, never an independent source of truth.
type ContactStatus string

const (
	StatusNotStarted ContactStatus = "not_started"
	StatusRound1     ContactStatus = "round_1"
	StatusRound2     ContactStatus = "round_2"
	StatusRound3     ContactStatus = "round_3"
	StatusRound4     ContactStatus = "round_4"
	StatusCompleted  ContactStatus = "completed"
)

// IsValid reports whether s is a known contact status.
func (s ContactStatus) IsValid() bool {
	switch s {
	case StatusNotStarted, StatusRound1, StatusRound2, StatusRound3, StatusRound4, StatusCompleted:
		return true
	default:
		return false
	}
}

// StatusForRound returns the contact status corresponding to round n.
func StatusForRound(n int) ContactStatus {
	return ContactStatus(fmt.Sprintf("round_%d", n))
}

// DeriveStatus projects a contact status from its rounds. The second return
// value is false when the rounds are in an inconsistent partial state (some
// rounds exist, all completed, but fewer than four); in that case the caller
// must leave the stored status unchanged and surface the inconsistency.
func DeriveStatus(all []Round) (ContactStatus, bool) {
	if len(all) == 0 {
		return StatusNotStarted, true
	}
	if cur := Current(all); cur != nil {
		return StatusForRound(cur.Number), true
	}
	// No non-completed round left.
	completed := 0
	for i := range all {
		if all[i].Status == RoundCompleted {
			completed++
		}
	}
	if completed == NumRounds {
		return StatusCompleted, true
	}
	return "", false
}

// InterviewStatus is the lifecycle state of a single interview session.
type InterviewStatus string

const (
	InterviewInProgress InterviewStatus = "in_progress"
	InterviewPaused     InterviewStatus = "paused"
	InterviewCompleted  InterviewStatus = "completed"
)

// IsValid reports whether s is a known interview status.
func (s InterviewStatus) IsValid() bool {
	switch s {
	case InterviewInProgress, InterviewPaused, InterviewCompleted:
		return true
	default:
		return false
	}
}

// IsLive reports whether the interview can still be resumed.
func (s InterviewStatus) IsLive() bool {
	return s == InterviewInProgress || s == InterviewPaused
}
