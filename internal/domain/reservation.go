package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationExpired   ReservationStatus = "EXPIRED"
)

// Reservation is one checkout attempt spanning one or more screening seats.
// MerchantUID is generated at creation time and handed to the payment
// gateway, so a later webhook can be routed back to this reservation even
// when its payload carries no reservation ID.
type Reservation struct {
	ID          int
	UserID      int
	ScreeningID int
	MerchantUID string
	Status      ReservationStatus
	TotalAmount decimal.Decimal
	SeatIDs     []int
	CreatedAt   time.Time
	ConfirmedAt *time.Time
}

type ReservationSummary struct {
	ReservationID int
	MovieTitle    string
	TheaterName   string
	ScreeningDate time.Time
	Status        ReservationStatus
	TotalAmount   decimal.Decimal
	CreatedAt     time.Time
}

type ReservationRepository interface {
	// Create persists the reservation and claims its seats in one
	// transaction: every seat must still be LOCKED by ownerToken with an
	// unexpired hold, or the whole transaction rolls back with
	// ErrSeatsNoLongerHeld.
	Create(ctx context.Context, reservation *Reservation, ownerToken string) error

	GetByID(ctx context.Context, id int) (*Reservation, error)
	GetByMerchantUID(ctx context.Context, merchantUID string) (*Reservation, error)

	// UpdateStatusFrom applies the transition only when the row still holds
	// the expected prior status. Returns false when another caller won the
	// race, which the caller treats as a no-op, not an error.
	UpdateStatusFrom(ctx context.Context, id int, to, from ReservationStatus) (bool, error)

	// ExpireStale marks PENDING reservations whose screening has already
	// started as EXPIRED and frees their seats, all in one transaction.
	ExpireStale(ctx context.Context, now time.Time) ([]int, error)

	GetSummariesByUserID(ctx context.Context, userID int, pagination Pagination) ([]ReservationSummary, *Metadata, error)
}
