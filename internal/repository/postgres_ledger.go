package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sejinpark/cinetick/internal/domain"
)

// errLockConflict forces runInTx to roll back a partially applied lock so
// that a conflicting request leaves no seat LOCKED by its token.
var errLockConflict = errors.New("seat lock conflict")

// PostgresSeatLedger owns every ScreeningSeat status transition. Each
// transition is expressed as a conditional UPDATE keyed on the expected
// prior status, so the transaction's isolation, not application code, is
// what prevents two customers from claiming the same seat.
type PostgresSeatLedger struct {
	db *pgxpool.Pool
}

func NewPostgresSeatLedger(db *pgxpool.Pool) *PostgresSeatLedger {
	return &PostgresSeatLedger{
		db: db,
	}
}

func (p *PostgresSeatLedger) Lock(
	ctx context.Context,
	screeningID int,
	seatIDs []int,
	ownerToken string,
	ttl time.Duration) (*domain.LockResult, error) {

	result := &domain.LockResult{}

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE screening_seats
			SET status = 'LOCKED',
				lock_owner = $3,
				lock_expires_at = now() + make_interval(secs => $4),
				updated_at = now()
			WHERE screening_id = $1
				AND seat_id = ANY($2)
				AND (status = 'AVAILABLE'
					OR (status = 'LOCKED' AND lock_expires_at < now()))
			RETURNING seat_id
		`

		rows, err := tx.Query(ctx, query, screeningID, seatIDs, ttl.Seconds())
		if err != nil {
			return err
		}

		locked, err := pgx.CollectRows(rows, pgx.RowTo[int])
		if err != nil {
			return err
		}

		if len(locked) == len(seatIDs) {
			result.AllLocked = true
			result.LockedSeatIDs = locked
			return nil
		}

		// Partial conflict: report the contested seats and roll the whole
		// attempt back, so no seat stays LOCKED by this token.
		lockedSet := make(map[int]bool, len(locked))
		for _, id := range locked {
			lockedSet[id] = true
		}

		for _, id := range seatIDs {
			if !lockedSet[id] {
				result.ConflictingSeatIDs = append(result.ConflictingSeatIDs, id)
			}
		}

		return errLockConflict
	})

	if err != nil && !errors.Is(err, errLockConflict) {
		return nil, fmt.Errorf("failed to lock seats: %w", err)
	}

	return result, nil
}

func (p *PostgresSeatLedger) Release(
	ctx context.Context,
	screeningID int,
	seatIDs []int,
	ownerToken string) (int, error) {

	query := `
		UPDATE screening_seats
		SET status = 'AVAILABLE', lock_owner = NULL, lock_expires_at = NULL, updated_at = now()
		WHERE screening_id = $1
			AND seat_id = ANY($2)
			AND status = 'LOCKED'
			AND lock_owner = $3
	`

	tag, err := p.db.Exec(ctx, query, screeningID, seatIDs, ownerToken)
	if err != nil {
		return 0, fmt.Errorf("failed to release seats: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

func (p *PostgresSeatLedger) ReleaseByReservation(ctx context.Context, reservationID int) (int, error) {
	tag, err := p.db.Exec(ctx, releaseByReservationQuery, reservationID)
	if err != nil {
		return 0, fmt.Errorf("failed to release seats of reservation %d: %w", reservationID, err)
	}

	return int(tag.RowsAffected()), nil
}

func (p *PostgresSeatLedger) SweepExpired(ctx context.Context, now time.Time) ([]domain.SweptSeat, error) {
	// A single conditional statement: a seat that a concurrent
	// reservation-create transaction already flipped to RESERVED no longer
	// matches the predicate and cannot be swept mid-reservation.
	query := `
		UPDATE screening_seats
		SET status = 'AVAILABLE', lock_owner = NULL, lock_expires_at = NULL, updated_at = now()
		WHERE status = 'LOCKED' AND lock_expires_at < $1
		RETURNING screening_id, seat_id
	`

	rows, err := p.db.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to sweep expired seat locks: %w", err)
	}
	defer rows.Close()

	swept := make([]domain.SweptSeat, 0)

	for rows.Next() {
		var s domain.SweptSeat

		err = rows.Scan(&s.ScreeningID, &s.SeatID)
		if err != nil {
			return nil, err
		}

		swept = append(swept, s)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return swept, nil
}

func (p *PostgresSeatLedger) GetHeldSeats(
	ctx context.Context,
	screeningID int,
	seatIDs []int,
	ownerToken string) ([]domain.ScreeningSeat, error) {

	query := `
		SELECT ss.seat_id, s.theater_id, s.seat_row, s.seat_col, s.seat_type, s.extra_price,
			ss.lock_owner, ss.lock_expires_at
		FROM screening_seats ss
		JOIN seats s ON ss.seat_id = s.id
		WHERE ss.screening_id = $1
			AND ss.seat_id = ANY($2)
			AND ss.status = 'LOCKED'
			AND ss.lock_owner = $3
			AND ss.lock_expires_at >= now()
	`

	rows, err := p.db.Query(ctx, query, screeningID, seatIDs, ownerToken)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.ScreeningSeat, 0, len(seatIDs))

	for rows.Next() {
		seat := domain.ScreeningSeat{ScreeningID: screeningID, Status: domain.SeatLocked}

		err = rows.Scan(
			&seat.Seat.ID,
			&seat.Seat.TheaterID,
			&seat.Seat.Row,
			&seat.Seat.Col,
			&seat.Seat.Type,
			&seat.Seat.ExtraPrice,
			&seat.LockOwner,
			&seat.LockExpiresAt,
		)
		if err != nil {
			return nil, err
		}

		seats = append(seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}

func (p *PostgresSeatLedger) GetSeatMap(ctx context.Context, screeningID int) (*domain.ScreeningSeatMap, error) {
	query := `
		SELECT t.id, t.name, m.title, sc.start_time, sc.base_price,
			s.id, s.theater_id, s.seat_row, s.seat_col, s.seat_type, s.extra_price,
			ss.status, ss.lock_expires_at
		FROM screenings sc
		JOIN theaters t ON sc.theater_id = t.id
		JOIN movies m ON sc.movie_id = m.id
		JOIN screening_seats ss ON ss.screening_id = sc.id
		JOIN seats s ON ss.seat_id = s.id
		WHERE sc.id = $1
		ORDER BY s.seat_row, s.seat_col
	`

	rows, err := p.db.Query(ctx, query, screeningID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seatMap := domain.ScreeningSeatMap{ScreeningID: screeningID}

	for rows.Next() {
		seat := domain.ScreeningSeat{ScreeningID: screeningID}

		err = rows.Scan(
			&seatMap.TheaterID,
			&seatMap.TheaterName,
			&seatMap.MovieTitle,
			&seatMap.StartTime,
			&seatMap.BasePrice,
			&seat.Seat.ID,
			&seat.Seat.TheaterID,
			&seat.Seat.Row,
			&seat.Seat.Col,
			&seat.Seat.Type,
			&seat.Seat.ExtraPrice,
			&seat.Status,
			&seat.LockExpiresAt,
		)
		if err != nil {
			return nil, err
		}

		// An expired hold that the sweeper hasn't reclaimed yet reads as
		// available; the conditional lock transition is still the authority.
		if seat.Status == domain.SeatLocked && seat.LockExpiresAt != nil && seat.LockExpiresAt.Before(time.Now()) {
			seat.Status = domain.SeatAvailable
			seat.LockExpiresAt = nil
		}

		seatMap.Seats = append(seatMap.Seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(seatMap.Seats) == 0 {
		return nil, domain.ErrRecordNotFound
	}

	return &seatMap, nil
}

const releaseByReservationQuery = `
	UPDATE screening_seats
	SET status = 'AVAILABLE', lock_owner = NULL, lock_expires_at = NULL,
		reservation_id = NULL, updated_at = now()
	WHERE reservation_id = $1 AND status = 'RESERVED'
`

// reserveSeats flips LOCKED(ownerToken, unexpired) seats to RESERVED inside
// the caller's transaction. The hold re-check covers the race where a lock
// expired and was swept between checkout and payment: a short row count
// rolls the whole reservation back via ErrSeatsNoLongerHeld.
func reserveSeats(
	ctx context.Context,
	tx pgx.Tx,
	screeningID int,
	seatIDs []int,
	ownerToken string,
	reservationID int) error {

	query := `
		UPDATE screening_seats
		SET status = 'RESERVED', reservation_id = $4,
			lock_owner = NULL, lock_expires_at = NULL, updated_at = now()
		WHERE screening_id = $1
			AND seat_id = ANY($2)
			AND status = 'LOCKED'
			AND lock_owner = $3
			AND lock_expires_at >= now()
	`

	tag, err := tx.Exec(ctx, query, screeningID, seatIDs, ownerToken, reservationID)
	if err != nil {
		return err
	}

	if int(tag.RowsAffected()) != len(seatIDs) {
		return domain.ErrSeatsNoLongerHeld
	}

	return nil
}
