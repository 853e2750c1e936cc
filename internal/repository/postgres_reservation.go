package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sejinpark/cinetick/internal/domain"
)

type PostgresReservationRepository struct {
	db *pgxpool.Pool
}

func NewPostgresReservationRepository(db *pgxpool.Pool) *PostgresReservationRepository {
	return &PostgresReservationRepository{
		db: db,
	}
}

func (p *PostgresReservationRepository) Create(
	ctx context.Context,
	reservation *domain.Reservation,
	ownerToken string) error {

	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO reservations (user_id, screening_id, merchant_uid, status, total_amount)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`

		err := tx.QueryRow(
			ctx,
			query,
			reservation.UserID,
			reservation.ScreeningID,
			reservation.MerchantUID,
			reservation.Status,
			reservation.TotalAmount).Scan(&reservation.ID, &reservation.CreatedAt)

		if err != nil {
			return err
		}

		// Claiming the seats in the same transaction means a lapsed hold
		// rolls the reservation row back too: no orphaned PENDING
		// reservation without seats.
		return reserveSeats(ctx, tx, reservation.ScreeningID, reservation.SeatIDs, ownerToken, reservation.ID)
	})
}

func (p *PostgresReservationRepository) GetByID(ctx context.Context, id int) (*domain.Reservation, error) {
	return p.get(ctx, `WHERE r.id = $1`, id)
}

func (p *PostgresReservationRepository) GetByMerchantUID(
	ctx context.Context,
	merchantUID string) (*domain.Reservation, error) {

	return p.get(ctx, `WHERE r.merchant_uid = $1`, merchantUID)
}

func (p *PostgresReservationRepository) get(ctx context.Context, where string, arg any) (*domain.Reservation, error) {
	query := `
		SELECT r.id, r.user_id, r.screening_id, r.merchant_uid, r.status,
			r.total_amount, r.created_at, r.confirmed_at
		FROM reservations r ` + where

	var reservation domain.Reservation

	err := p.db.QueryRow(ctx, query, arg).Scan(
		&reservation.ID,
		&reservation.UserID,
		&reservation.ScreeningID,
		&reservation.MerchantUID,
		&reservation.Status,
		&reservation.TotalAmount,
		&reservation.CreatedAt,
		&reservation.ConfirmedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	seatQuery := `SELECT seat_id FROM screening_seats WHERE reservation_id = $1 ORDER BY seat_id`

	rows, err := p.db.Query(ctx, seatQuery, reservation.ID)
	if err != nil {
		return nil, err
	}

	reservation.SeatIDs, err = pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, err
	}

	return &reservation, nil
}

func (p *PostgresReservationRepository) UpdateStatusFrom(
	ctx context.Context,
	id int,
	to, from domain.ReservationStatus) (bool, error) {

	query := `
		UPDATE reservations
		SET status = $2,
			confirmed_at = CASE WHEN $2 = 'CONFIRMED' THEN now() ELSE confirmed_at END,
			updated_at = now()
		WHERE id = $1 AND status = $3
	`

	tag, err := p.db.Exec(ctx, query, id, to, from)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

func (p *PostgresReservationRepository) ExpireStale(ctx context.Context, now time.Time) ([]int, error) {
	var expired []int

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE reservations r
			SET status = 'EXPIRED', updated_at = now()
			FROM screenings s
			WHERE r.screening_id = s.id
				AND r.status = 'PENDING'
				AND s.start_time < $1
			RETURNING r.id
		`

		rows, err := tx.Query(ctx, query, now)
		if err != nil {
			return err
		}

		expired, err = pgx.CollectRows(rows, pgx.RowTo[int])
		if err != nil {
			return err
		}

		for _, id := range expired {
			_, err = tx.Exec(ctx, releaseByReservationQuery, id)
			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return expired, nil
}

func (p *PostgresReservationRepository) GetSummariesByUserID(
	ctx context.Context,
	userID int,
	pagination domain.Pagination) ([]domain.ReservationSummary, *domain.Metadata, error) {

	query := `
		SELECT
			COUNT(*) OVER(),
			r.id,
			m.title,
			t.name,
			s.start_time,
			r.status,
			r.total_amount,
			r.created_at
		FROM reservations r
		JOIN screenings s ON r.screening_id = s.id
		JOIN movies m ON s.movie_id = m.id
		JOIN theaters t ON s.theater_id = t.id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.db.Query(ctx, query, userID, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	reservations := make([]domain.ReservationSummary, 0)
	totalRecords := 0

	for rows.Next() {
		var reservation domain.ReservationSummary

		err := rows.Scan(
			&totalRecords,
			&reservation.ReservationID,
			&reservation.MovieTitle,
			&reservation.TheaterName,
			&reservation.ScreeningDate,
			&reservation.Status,
			&reservation.TotalAmount,
			&reservation.CreatedAt,
		)
		if err != nil {
			return nil, nil, err
		}

		reservations = append(reservations, reservation)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return reservations, metadata, nil
}
