package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sejinpark/cinetick/internal/domain"
)

type PostgresScreeningRepository struct {
	db *pgxpool.Pool
}

func NewPostgresScreeningRepository(db *pgxpool.Pool) *PostgresScreeningRepository {
	return &PostgresScreeningRepository{
		db: db,
	}
}

func (p *PostgresScreeningRepository) GetByID(ctx context.Context, id int) (*domain.Screening, error) {
	query := `
		SELECT s.id, s.movie_id, m.title, s.theater_id, s.start_time, s.end_time, s.base_price
		FROM screenings s
		JOIN movies m ON s.movie_id = m.id
		WHERE s.id = $1
	`

	var screening domain.Screening

	err := p.db.QueryRow(ctx, query, id).Scan(
		&screening.ID,
		&screening.MovieID,
		&screening.MovieTitle,
		&screening.TheaterID,
		&screening.StartTime,
		&screening.EndTime,
		&screening.BasePrice,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &screening, nil
}

func (p *PostgresScreeningRepository) GetByTheaterID(
	ctx context.Context,
	theaterID int) ([]domain.Screening, error) {

	query := `
		SELECT s.id, s.movie_id, m.title, s.theater_id, s.start_time, s.end_time, s.base_price
		FROM screenings s
		JOIN movies m ON s.movie_id = m.id
		WHERE s.theater_id = $1
		ORDER BY s.start_time
	`

	rows, err := p.db.Query(ctx, query, theaterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	screenings := make([]domain.Screening, 0)

	for rows.Next() {
		var screening domain.Screening

		err = rows.Scan(
			&screening.ID,
			&screening.MovieID,
			&screening.MovieTitle,
			&screening.TheaterID,
			&screening.StartTime,
			&screening.EndTime,
			&screening.BasePrice,
		)
		if err != nil {
			return nil, err
		}

		screenings = append(screenings, screening)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return screenings, nil
}
