package services

import (
	"context"
	"fmt"
	"time"

	"speakerbooking/internal/domain"
)

type availabilityService struct {
	assignmentRepo domain.AssignmentRepository
	contextTimeout time.Duration
}

// NewAvailabilityService creates an AvailabilityService backed by the given
// assignment repository.
func NewAvailabilityService(assignmentRepo domain.AssignmentRepository, timeout time.Duration) domain.AvailabilityService {
	return &availabilityService{
		assignmentRepo: assignmentRepo,
		contextTimeout: timeout,
	}
}

func (s *availabilityService) CheckAvailability(ctx context.Context, speakerID, date string, start, end time.Time) (*domain.AvailabilityResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if speakerID == "" || date == "" {
		return nil, domain.ErrInvalidCandidate
	}

	// One-element batch through the same validator the write path uses, so an
	// availability answer can never disagree with a commit decision.
	cand := &domain.AssignmentCandidate{
		SpeakerID: speakerID,
		SessionID: "availability-probe",
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}
	committed, err := s.assignmentRepo.ListCommittedByKeys(ctx, []domain.BookingKey{cand.Key()})
	if err != nil {
		return nil, fmt.Errorf("load committed assignments: %w", err)
	}

	decisions := domain.ValidateAssignments([]*domain.AssignmentCandidate{cand}, committed)
	if decisions[0].Code == domain.DecisionConflict {
		return &domain.AvailabilityResult{Available: false, Message: decisions[0].Message}, nil
	}
	return &domain.AvailabilityResult{Available: true}, nil
}

func (s *availabilityService) ListBookedDates(ctx context.Context, speakerID, from, to string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if speakerID == "" {
		return nil, domain.ErrInvalidCandidate
	}
	if _, err := time.Parse(domain.DateLayout, from); err != nil {
		return nil, fmt.Errorf("%w: from date %q", domain.ErrInvalidCandidate, from)
	}
	if _, err := time.Parse(domain.DateLayout, to); err != nil {
		return nil, fmt.Errorf("%w: to date %q", domain.ErrInvalidCandidate, to)
	}

	dates, err := s.assignmentRepo.ListBookedDates(ctx, speakerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list booked dates: %w", err)
	}
	if dates == nil {
		dates = []string{}
	}
	return dates, nil
}
