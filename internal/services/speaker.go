package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"speakerbooking/internal/domain"
)

type speakerService struct {
	speakerRepo    domain.SpeakerRepository
	sessionRepo    domain.SessionRepository
	contextTimeout time.Duration
}

// NewSpeakerService creates a SpeakerService with the given repositories.
func NewSpeakerService(speakerRepo domain.SpeakerRepository, sessionRepo domain.SessionRepository, timeout time.Duration) domain.SpeakerService {
	return &speakerService{
		speakerRepo:    speakerRepo,
		sessionRepo:    sessionRepo,
		contextTimeout: timeout,
	}
}

func (s *speakerService) Search(ctx context.Context, query, specialty string, p domain.PaginationParams) ([]*domain.Speaker, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	speakers, total, err := s.speakerRepo.Search(ctx, strings.TrimSpace(query), strings.TrimSpace(specialty), p)
	if err != nil {
		return nil, 0, fmt.Errorf("search speakers: %w", err)
	}
	if speakers == nil {
		speakers = []*domain.Speaker{}
	}
	return speakers, total, nil
}

func (s *speakerService) GetByID(ctx context.Context, id string) (*domain.Speaker, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	speaker, err := s.speakerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get speaker: %w", err)
	}
	return speaker, nil
}

func (s *speakerService) ListSessions(ctx context.Context) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	sessions, err := s.sessionRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if sessions == nil {
		sessions = []*domain.Session{}
	}
	return sessions, nil
}
