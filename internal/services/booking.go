package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"speakerbooking/internal/domain"
)

type bookingService struct {
	speakerRepo    domain.SpeakerRepository
	sessionRepo    domain.SessionRepository
	assignmentRepo domain.AssignmentRepository
	mailer         domain.Mailer
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewBookingService creates a BookingService with the given repositories.
// mailer may be a noop implementation; confirmation email is best effort.
func NewBookingService(
	speakerRepo domain.SpeakerRepository,
	sessionRepo domain.SessionRepository,
	assignmentRepo domain.AssignmentRepository,
	mailer domain.Mailer,
	logger *slog.Logger,
	timeout time.Duration,
) domain.BookingService {
	return &bookingService{
		speakerRepo:    speakerRepo,
		sessionRepo:    sessionRepo,
		assignmentRepo: assignmentRepo,
		mailer:         mailer,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *bookingService) ValidateProposed(ctx context.Context, proposals []*domain.BookingProposal) ([]domain.Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	candidates, err := s.resolveCandidates(ctx, proposals)
	if err != nil {
		return nil, err
	}

	// Single bulk read for every (speaker, date) key the batch touches. The
	// whole batch is judged against this one snapshot; a failed read admits
	// nothing.
	committed, err := s.assignmentRepo.ListCommittedByKeys(ctx, distinctKeys(candidates))
	if err != nil {
		return nil, fmt.Errorf("load committed assignments: %w", err)
	}

	return domain.ValidateAssignments(candidates, committed), nil
}

// resolveCandidates turns proposals into interval-resolved candidates using
// one session lookup for the whole batch. Proposals referencing a missing
// session keep an empty SessionID so the validator marks them invalid instead
// of aborting their siblings.
func (s *bookingService) resolveCandidates(ctx context.Context, proposals []*domain.BookingProposal) ([]*domain.AssignmentCandidate, error) {
	var sessionIDs []string
	seen := make(map[string]struct{})
	for _, p := range proposals {
		if p.SessionID == "" {
			continue
		}
		if _, ok := seen[p.SessionID]; ok {
			continue
		}
		seen[p.SessionID] = struct{}{}
		sessionIDs = append(sessionIDs, p.SessionID)
	}

	sessions := map[string]*domain.Session{}
	if len(sessionIDs) > 0 {
		var err error
		sessions, err = s.sessionRepo.ListByIDs(ctx, sessionIDs)
		if err != nil {
			return nil, fmt.Errorf("load sessions: %w", err)
		}
	}

	candidates := make([]*domain.AssignmentCandidate, len(proposals))
	for i, p := range proposals {
		cand := &domain.AssignmentCandidate{
			ID:        p.ID,
			SpeakerID: p.SpeakerID,
		}
		if sess, ok := sessions[p.SessionID]; ok {
			cand.SessionID = sess.ID
			cand.Date = sess.Date()
			cand.StartTime = sess.StartTime
			cand.EndTime = sess.EndTime
		}
		candidates[i] = cand
	}
	return candidates, nil
}

func distinctKeys(candidates []*domain.AssignmentCandidate) []domain.BookingKey {
	seen := make(map[domain.BookingKey]struct{})
	var keys []domain.BookingKey
	for _, c := range candidates {
		if c.SpeakerID == "" || c.Date == "" {
			continue
		}
		k := c.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

func (s *bookingService) CommitAssignment(ctx context.Context, speakerID, sessionID string) (*domain.Assignment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if speakerID == "" || sessionID == "" {
		return nil, domain.ErrInvalidCandidate
	}

	speaker, err := s.speakerRepo.GetByID(ctx, speakerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get speaker: %w", err)
	}
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	now := time.Now()
	assignment := domain.NewAssignment(speakerID, session, now, now)

	// The repository re-reads the speaker's committed rows for this date under
	// a row lock inside the insert transaction; validation runs against that
	// freshest state, not a cached snapshot. The cross-transaction race is
	// narrowed, not eliminated; the lock is the backstop.
	err = s.assignmentRepo.CreateChecked(ctx, assignment, s.conflictCheck(assignment))
	if err != nil {
		if errors.Is(err, domain.ErrSchedulingConflict) {
			return nil, domain.ErrSchedulingConflict
		}
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	s.sendConfirmation(speaker, session)
	return assignment, nil
}

func (s *bookingService) ReassignSession(ctx context.Context, assignmentID, sessionID string) (*domain.Assignment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if assignmentID == "" || sessionID == "" {
		return nil, domain.ErrInvalidCandidate
	}

	existing, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	updated := domain.NewAssignment(existing.SpeakerID, session, existing.CreatedAt, time.Now())
	updated.ID = existing.ID

	err = s.assignmentRepo.UpdateSessionChecked(ctx, updated, s.conflictCheck(updated))
	if err != nil {
		if errors.Is(err, domain.ErrSchedulingConflict) {
			return nil, domain.ErrSchedulingConflict
		}
		return nil, fmt.Errorf("update assignment: %w", err)
	}
	return updated, nil
}

// conflictCheck adapts the pure validator into the repository's
// lock-recheck-write hook for a single assignment. The candidate carries the
// assignment's id so an update never conflicts with its own prior row.
func (s *bookingService) conflictCheck(a *domain.Assignment) func(existing []*domain.Assignment) error {
	cand := &domain.AssignmentCandidate{
		ID:        a.ID,
		SpeakerID: a.SpeakerID,
		SessionID: a.SessionID,
		Date:      a.Date,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
	}
	return func(existing []*domain.Assignment) error {
		committed := map[domain.BookingKey][]*domain.Assignment{cand.Key(): existing}
		decisions := domain.ValidateAssignments([]*domain.AssignmentCandidate{cand}, committed)
		switch decisions[0].Code {
		case domain.DecisionConflict:
			return domain.ErrSchedulingConflict
		case domain.DecisionInvalid:
			return domain.ErrInvalidCandidate
		}
		return nil
	}
}

func (s *bookingService) sendConfirmation(speaker *domain.Speaker, session *domain.Session) {
	if speaker.Email == "" {
		return
	}
	subject := fmt.Sprintf("You're booked: %s", session.Title)
	text := fmt.Sprintf("Hi %s,\n\nYou have been booked for %q on %s from %s to %s.\n",
		speaker.FirstName, session.Title, session.Date(),
		session.StartTime.Format("15:04"), session.EndTime.Format("15:04"))
	if err := s.mailer.Send(speaker.Email, subject, "", text); err != nil {
		s.logger.Warn("confirmation email failed", "speaker_id", speaker.ID, "session_id", session.ID, "err", err)
	}
}
