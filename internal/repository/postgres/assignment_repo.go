package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"speakerbooking/internal/domain"
)

type AssignmentRepository struct {
	DB *sql.DB
}

func NewAssignmentRepository(db *sql.DB) domain.AssignmentRepository {
	return &AssignmentRepository{
		DB: db,
	}
}

const assignmentColumns = `id, speaker_id, session_id, assignment_date, start_time, end_time, created_at, updated_at`

func scanAssignment(s interface {
	Scan(dest ...any) error
}) (*domain.Assignment, error) {
	a := &domain.Assignment{}
	var date time.Time
	if err := s.Scan(&a.ID, &a.SpeakerID, &a.SessionID, &date, &a.StartTime, &a.EndTime, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Date = date.Format(domain.DateLayout)
	return a, nil
}

// ListCommittedByKeys loads every committed assignment matching any of the
// given (speaker, date) keys in a single round trip: the keys are passed as
// two parallel arrays and joined via unnest, so the query count stays 1 no
// matter how large the validation batch is.
func (r *AssignmentRepository) ListCommittedByKeys(ctx context.Context, keys []domain.BookingKey) (map[domain.BookingKey][]*domain.Assignment, error) {
	result := make(map[domain.BookingKey][]*domain.Assignment, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	speakerIDs := make([]string, len(keys))
	dates := make([]string, len(keys))
	for i, k := range keys {
		speakerIDs[i] = k.SpeakerID
		dates[i] = k.Date
	}

	query := `
		SELECT a.id, a.speaker_id, a.session_id, a.assignment_date, a.start_time, a.end_time, a.created_at, a.updated_at
		FROM assignments a
		INNER JOIN unnest($1::uuid[], $2::date[]) AS k(speaker_id, assignment_date)
			ON a.speaker_id = k.speaker_id AND a.assignment_date = k.assignment_date
		ORDER BY a.start_time
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(speakerIDs), pq.Array(dates))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		result[a.Key()] = append(result[a.Key()], a)
	}
	return result, rows.Err()
}

func (r *AssignmentRepository) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM assignments
		WHERE id = $1
	`
	a, err := scanAssignment(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *AssignmentRepository) ListBookedDates(ctx context.Context, speakerID, from, to string) ([]string, error) {
	query := `
		SELECT DISTINCT assignment_date
		FROM assignments
		WHERE speaker_id = $1 AND assignment_date BETWEEN $2 AND $3
		ORDER BY assignment_date
	`
	rows, err := r.DB.QueryContext(ctx, query, speakerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d.Format(domain.DateLayout))
	}
	return dates, rows.Err()
}

// lockCommitted reads the speaker's committed rows for one date inside tx
// with FOR UPDATE, serializing concurrent writers on the same (speaker, date)
// set. This is the freshest-state read the commit path validates against.
func lockCommitted(ctx context.Context, tx *sql.Tx, speakerID, date string) ([]*domain.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM assignments
		WHERE speaker_id = $1 AND assignment_date = $2
		FOR UPDATE
	`
	rows, err := tx.QueryContext(ctx, query, speakerID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var existing []*domain.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		existing = append(existing, a)
	}
	return existing, rows.Err()
}

func (r *AssignmentRepository) CreateChecked(ctx context.Context, a *domain.Assignment, check func(existing []*domain.Assignment) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	existing, err := lockCommitted(ctx, tx, a.SpeakerID, a.Date)
	if err != nil {
		return err
	}
	if err := check(existing); err != nil {
		return err
	}

	query := `
		INSERT INTO assignments (speaker_id, session_id, assignment_date, start_time, end_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	if err := tx.QueryRowContext(ctx, query, a.SpeakerID, a.SessionID, a.Date, a.StartTime, a.EndTime, a.CreatedAt, a.UpdatedAt).Scan(&a.ID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *AssignmentRepository) UpdateSessionChecked(ctx context.Context, a *domain.Assignment, check func(existing []*domain.Assignment) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	existing, err := lockCommitted(ctx, tx, a.SpeakerID, a.Date)
	if err != nil {
		return err
	}
	if err := check(existing); err != nil {
		return err
	}

	query := `
		UPDATE assignments
		SET session_id = $2, assignment_date = $3, start_time = $4, end_time = $5, updated_at = $6
		WHERE id = $1
	`
	res, err := tx.ExecContext(ctx, query, a.ID, a.SessionID, a.Date, a.StartTime, a.EndTime, a.UpdatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}
