package domain

import "errors"

// Sentinel errors shared across services and repositories.
var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCandidate is returned when a proposed assignment is missing a
	// required speaker or session reference.
	ErrInvalidCandidate = errors.New("assignment is missing a required speaker or session reference")

	// ErrSchedulingConflict is returned when a proposed assignment overlaps an
	// existing booking for the same speaker on the same date.
	ErrSchedulingConflict = errors.New(ConflictMessage)
)
