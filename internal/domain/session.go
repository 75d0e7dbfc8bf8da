package domain

import (
	"context"
	"time"
)

// DateLayout is the wire and storage format for assignment dates.
const DateLayout = "2006-01-02"

// Session represents a conference session or talk occupying a half-open
// [StartTime, EndTime) slot on a single day.
// swagger:model Session
type Session struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Track       string    `json:"track"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewSession returns a new Session with the given fields. ID is typically set by the repository on create.
func NewSession(title, track, description string, startTime, endTime, createdAt, updatedAt time.Time) *Session {
	return &Session{
		Title:       title,
		Track:       track,
		Description: description,
		StartTime:   startTime,
		EndTime:     endTime,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// Date returns the session's calendar date in DateLayout form, derived from
// its start time. Times are compared as stored; no timezone normalization.
func (s *Session) Date() string {
	return s.StartTime.Format(DateLayout)
}

// SessionRepository defines the interface for session storage
type SessionRepository interface {
	GetByID(ctx context.Context, id string) (*Session, error)
	// ListByIDs returns sessions for the given ids in one query. Missing ids
	// are simply absent from the result.
	ListByIDs(ctx context.Context, ids []string) (map[string]*Session, error)
	List(ctx context.Context) ([]*Session, error)
}
