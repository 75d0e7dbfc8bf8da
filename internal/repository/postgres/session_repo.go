package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"speakerbooking/internal/domain"
)

type SessionRepository struct {
	DB *sql.DB
}

func NewSessionRepository(db *sql.DB) domain.SessionRepository {
	return &SessionRepository{
		DB: db,
	}
}

const sessionColumns = `id, title, track, start_time, end_time, description, created_at, updated_at`

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE id = $1
	`
	s := &domain.Session{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&s.ID, &s.Title, &s.Track, &s.StartTime, &s.EndTime, &s.Description, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *SessionRepository) ListByIDs(ctx context.Context, ids []string) (map[string]*domain.Session, error) {
	result := make(map[string]*domain.Session, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE id = ANY($1)
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		s := &domain.Session{}
		if err := rows.Scan(&s.ID, &s.Title, &s.Track, &s.StartTime, &s.EndTime, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		result[s.ID] = s
	}
	return result, rows.Err()
}

func (r *SessionRepository) List(ctx context.Context) ([]*domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		ORDER BY start_time, track
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		s := &domain.Session{}
		if err := rows.Scan(&s.ID, &s.Title, &s.Track, &s.StartTime, &s.EndTime, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
