package domain

import (
	"context"
	"time"
)

// Assignment books a speaker into a session. The session's date and time
// interval are denormalized onto the assignment so conflict checks never need
// a join at validation time.
// swagger:model Assignment
type Assignment struct {
	ID        string    `json:"id"`
	SpeakerID string    `json:"speaker_id"`
	SessionID string    `json:"session_id"`
	Date      string    `json:"date"` // DateLayout, derived from the session start
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAssignment returns a committed-shape Assignment for the given speaker and
// session. ID is typically set by the repository on create.
func NewAssignment(speakerID string, session *Session, createdAt, updatedAt time.Time) *Assignment {
	return &Assignment{
		SpeakerID: speakerID,
		SessionID: session.ID,
		Date:      session.Date(),
		StartTime: session.StartTime,
		EndTime:   session.EndTime,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// Key returns the grouping key under which this assignment can conflict.
func (a *Assignment) Key() BookingKey {
	return BookingKey{SpeakerID: a.SpeakerID, Date: a.Date}
}

// BookingKey identifies the only scope within which assignments can conflict:
// one speaker on one date. Different speakers or dates never interact.
type BookingKey struct {
	SpeakerID string
	Date      string
}

// AssignmentRepository defines the interface for assignment storage.
//
// ListCommittedByKeys is the bulk-read primitive the validator depends on: it
// must resolve any number of keys in a single query so validation stays O(1)
// in round trips regardless of batch size.
type AssignmentRepository interface {
	ListCommittedByKeys(ctx context.Context, keys []BookingKey) (map[BookingKey][]*Assignment, error)
	GetByID(ctx context.Context, id string) (*Assignment, error)
	// ListBookedDates returns the distinct dates in [from, to] (inclusive on
	// both ends) on which the speaker has at least one committed assignment.
	ListBookedDates(ctx context.Context, speakerID, from, to string) ([]string, error)

	// CreateChecked inserts the assignment inside one transaction. Before the
	// insert, the speaker's committed rows for the assignment's date are
	// re-read with a row lock and passed to check; a non-nil check error
	// aborts the transaction and is returned unchanged.
	CreateChecked(ctx context.Context, a *Assignment, check func(existing []*Assignment) error) error
	// UpdateSessionChecked rewrites the assignment's session reference and
	// denormalized interval under the same lock-recheck-write discipline as
	// CreateChecked. The existing rows passed to check include the
	// assignment's own prior row; check is expected to exclude it by id.
	UpdateSessionChecked(ctx context.Context, a *Assignment, check func(existing []*Assignment) error) error
}

// AvailabilityResult answers a single availability probe.
// swagger:model AvailabilityResult
type AvailabilityResult struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

// AvailabilityService answers read-only scheduling questions for the calendar
// and search surfaces.
type AvailabilityService interface {
	// CheckAvailability reports whether the speaker is free on date for the
	// half-open interval [start, end).
	CheckAvailability(ctx context.Context, speakerID, date string, start, end time.Time) (*AvailabilityResult, error)
	// ListBookedDates returns every date in [from, to] on which the speaker
	// already has a committed assignment, regardless of time of day.
	ListBookedDates(ctx context.Context, speakerID, from, to string) ([]string, error)
}

// BookingProposal is the external shape of a not-yet-validated assignment:
// references only, with the session's interval still unresolved. ID is set
// only when the proposal updates an existing assignment.
type BookingProposal struct {
	ID        string `json:"id"`
	SpeakerID string `json:"speaker_id"`
	SessionID string `json:"session_id"`
}

// BookingService is the only write path into assignments.
type BookingService interface {
	// ValidateProposed judges a batch of proposals against committed state and
	// against each other, without writing anything. The returned decisions are
	// positional: decisions[i] answers proposals[i]. A failed committed-state
	// read fails the whole batch; no candidate is admitted.
	ValidateProposed(ctx context.Context, proposals []*BookingProposal) ([]Decision, error)
	// CommitAssignment validates then persists a single new assignment,
	// re-running validation against latest committed state inside the write
	// transaction. Returns ErrSchedulingConflict on overlap.
	CommitAssignment(ctx context.Context, speakerID, sessionID string) (*Assignment, error)
	// ReassignSession moves an existing assignment to a different session,
	// re-entering the same validation path with the assignment's own prior
	// row excluded from comparison.
	ReassignSession(ctx context.Context, assignmentID, sessionID string) (*Assignment, error)
}

// Mailer sends notification email. Implementations must not block bookings on
// delivery failure; callers treat Send as best effort.
type Mailer interface {
	Send(to, subject, html, text string) error
}
