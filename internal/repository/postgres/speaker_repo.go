package postgres

import (
	"context"
	"database/sql"
	"errors"

	"speakerbooking/internal/domain"
)

type SpeakerRepository struct {
	DB *sql.DB
}

func NewSpeakerRepository(db *sql.DB) domain.SpeakerRepository {
	return &SpeakerRepository{
		DB: db,
	}
}

func (r *SpeakerRepository) Search(ctx context.Context, query, specialty string, p domain.PaginationParams) ([]*domain.Speaker, int, error) {
	// Empty filters match everything: $1/$2 empty strings disable their clause.
	where := `
		WHERE ($1 = '' OR full_name ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR specialty ILIKE $2)
	`

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM speakers`+where, query, specialty).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := `
		SELECT id, first_name, last_name, full_name, email, specialty, bio, created_at, updated_at
		FROM speakers
	` + where + `
		ORDER BY full_name
		LIMIT $3 OFFSET $4
	`
	rows, err := r.DB.QueryContext(ctx, listQuery, query, specialty, p.Limit(), p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var speakers []*domain.Speaker
	for rows.Next() {
		sp := &domain.Speaker{}
		if err := rows.Scan(&sp.ID, &sp.FirstName, &sp.LastName, &sp.FullName, &sp.Email, &sp.Specialty, &sp.Bio, &sp.CreatedAt, &sp.UpdatedAt); err != nil {
			return nil, 0, err
		}
		speakers = append(speakers, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return speakers, total, nil
}

func (r *SpeakerRepository) GetByID(ctx context.Context, id string) (*domain.Speaker, error) {
	query := `
		SELECT id, first_name, last_name, full_name, email, specialty, bio, created_at, updated_at
		FROM speakers
		WHERE id = $1
	`
	sp := &domain.Speaker{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&sp.ID, &sp.FirstName, &sp.LastName, &sp.FullName, &sp.Email, &sp.Specialty, &sp.Bio, &sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return sp, nil
}
