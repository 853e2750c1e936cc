package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatLocked    SeatStatus = "LOCKED"
	SeatReserved  SeatStatus = "RESERVED"
)

// Seat is static reference data: a physical seat in a theater.
type Seat struct {
	ID         int
	TheaterID  int
	Row        int
	Col        int
	Type       string
	ExtraPrice decimal.Decimal
}

// ScreeningSeat is the bookable unit: one physical seat in one screening.
// Its status is mutated exclusively through the SeatLedger.
type ScreeningSeat struct {
	ScreeningID   int
	Seat          Seat
	Status        SeatStatus
	LockOwner     *string
	LockExpiresAt *time.Time
	ReservationID *int
}

type ScreeningSeatMap struct {
	ScreeningID int
	TheaterID   int
	TheaterName string
	MovieTitle  string
	StartTime   time.Time
	BasePrice   decimal.Decimal
	Seats       []ScreeningSeat
}

// LockResult reports the outcome of an all-or-nothing lock attempt.
// Contention is data, not an error: callers branch on AllLocked and show
// the customer which seats were contested.
type LockResult struct {
	AllLocked          bool
	LockedSeatIDs      []int
	ConflictingSeatIDs []int
}

type SweptSeat struct {
	ScreeningID int
	SeatID      int
}

// SeatLedger is the sole writer of ScreeningSeat status. Every transition is
// a conditional update on the expected prior state inside a single database
// transaction, so overlapping callers and sweeper ticks cannot clobber each
// other. The database row is the lock; the ledger keeps no in-process state.
//
// The LOCKED -> RESERVED transition is not exposed here: it runs inside the
// reservation-create transaction so that a reservation row and its seat
// claims commit or roll back together.
type SeatLedger interface {
	// Lock transitions every requested seat AVAILABLE -> LOCKED(ownerToken)
	// or none of them. A LOCKED seat whose hold has expired counts as
	// available even before the sweeper reclaims it. Contested seats are
	// reported in the result, never as an error.
	Lock(ctx context.Context, screeningID int, seatIDs []int, ownerToken string, ttl time.Duration) (*LockResult, error)

	// Release returns seats LOCKED by ownerToken to AVAILABLE. Seats already
	// released or held by someone else are skipped, so double-release is safe.
	Release(ctx context.Context, screeningID int, seatIDs []int, ownerToken string) (int, error)

	// ReleaseByReservation frees every RESERVED seat claimed by the given
	// reservation. Used on cancellation and expiry.
	ReleaseByReservation(ctx context.Context, reservationID int) (int, error)

	// SweepExpired returns every LOCKED seat whose hold outlived its TTL to
	// AVAILABLE and reports which seats were reclaimed.
	SweepExpired(ctx context.Context, now time.Time) ([]SweptSeat, error)

	// GetHeldSeats returns the subset of the requested seats that are
	// currently LOCKED by ownerToken with an unexpired hold.
	GetHeldSeats(ctx context.Context, screeningID int, seatIDs []int, ownerToken string) ([]ScreeningSeat, error)

	GetSeatMap(ctx context.Context, screeningID int) (*ScreeningSeatMap, error)
}
