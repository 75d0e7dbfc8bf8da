package domain

import (
	"context"
	"time"
)

// Speaker represents a conference speaker available for session assignments.
// swagger:model Speaker
type Speaker struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Specialty string    `json:"specialty"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSpeaker returns a new Speaker with the given fields. ID is typically set by the repository on create.
func NewSpeaker(firstName, lastName, fullName, email, specialty, bio string, createdAt, updatedAt time.Time) *Speaker {
	return &Speaker{
		FirstName: firstName,
		LastName:  lastName,
		FullName:  fullName,
		Email:     email,
		Specialty: specialty,
		Bio:       bio,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// SpeakerRepository defines the interface for speaker storage
type SpeakerRepository interface {
	// Search returns speakers whose name matches query and/or whose specialty
	// matches specialty, paginated, plus the total match count. Empty filters
	// match everything.
	Search(ctx context.Context, query, specialty string, p PaginationParams) ([]*Speaker, int, error)
	GetByID(ctx context.Context, id string) (*Speaker, error)
}

// SpeakerService defines the read-side business logic behind the speaker
// search and detail surfaces.
type SpeakerService interface {
	Search(ctx context.Context, query, specialty string, p PaginationParams) ([]*Speaker, int, error)
	GetByID(ctx context.Context, id string) (*Speaker, error)
	ListSessions(ctx context.Context) ([]*Session, error)
}
