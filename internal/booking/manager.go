// Package booking owns the Reservation lifecycle: turning a held seat set
// into a durable PENDING reservation and driving it to CONFIRMED, CANCELLED
// or EXPIRED. Seat custody itself stays with the seat ledger.
package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sejinpark/cinetick/internal/domain"
	"github.com/shopspring/decimal"
)

type Manager struct {
	logger       *slog.Logger
	ledger       domain.SeatLedger
	reservations domain.ReservationRepository
	screenings   domain.ScreeningRepository
}

func NewManager(
	logger *slog.Logger,
	ledger domain.SeatLedger,
	reservations domain.ReservationRepository,
	screenings domain.ScreeningRepository) *Manager {

	return &Manager{
		logger:       logger,
		ledger:       ledger,
		reservations: reservations,
		screenings:   screenings,
	}
}

// CreateReservation re-validates the caller's holds, computes the total from
// the screening base price plus per-seat extras, and persists the
// reservation together with its seat claims in one transaction. A hold that
// lapsed between seat selection and checkout surfaces as
// domain.ErrSeatsNoLongerHeld with nothing persisted.
func (m *Manager) CreateReservation(
	ctx context.Context,
	userID, screeningID int,
	seatIDs []int,
	ownerToken string,
	statedTotal decimal.Decimal) (*domain.Reservation, error) {

	screening, err := m.screenings.GetByID(ctx, screeningID)
	if err != nil {
		return nil, err
	}

	if !screening.StartTime.After(time.Now()) {
		return nil, domain.ErrScreeningStarted
	}

	held, err := m.ledger.GetHeldSeats(ctx, screeningID, seatIDs, ownerToken)
	if err != nil {
		return nil, fmt.Errorf("failed to re-validate seat holds: %w", err)
	}

	if len(held) != len(seatIDs) {
		return nil, domain.ErrSeatsNoLongerHeld
	}

	total := screening.BasePrice.Mul(decimal.NewFromInt(int64(len(held))))
	for _, seat := range held {
		total = total.Add(seat.Seat.ExtraPrice)
	}

	if !total.Equal(statedTotal) {
		m.logger.Warn(
			"booking rejected: stated total differs from computed total",
			"screening_id", screeningID,
			"stated", statedTotal,
			"computed", total,
		)
		return nil, domain.ErrTotalMismatch
	}

	reservation := &domain.Reservation{
		UserID:      userID,
		ScreeningID: screeningID,
		MerchantUID: uuid.NewString(),
		Status:      domain.ReservationPending,
		TotalAmount: total,
		SeatIDs:     seatIDs,
	}

	err = m.reservations.Create(ctx, reservation, ownerToken)
	if err != nil {
		return nil, err
	}

	m.logger.Info(
		"reservation created",
		"reservation_id", reservation.ID,
		"screening_id", screeningID,
		"seats", len(seatIDs),
		"total", total,
	)

	return reservation, nil
}

// Confirm transitions a PENDING reservation to CONFIRMED. Confirming an
// already-CONFIRMED reservation returns it unchanged: the webhook and the
// client completion call may both land here for the same reservation.
// Terminal states (CANCELLED, EXPIRED) are likewise returned as-is.
func (m *Manager) Confirm(ctx context.Context, reservationID int) (*domain.Reservation, error) {
	reservation, err := m.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if reservation.Status != domain.ReservationPending {
		return reservation, nil
	}

	applied, err := m.reservations.UpdateStatusFrom(
		ctx, reservationID, domain.ReservationConfirmed, domain.ReservationPending)
	if err != nil {
		return nil, err
	}

	if applied {
		m.logger.Info("reservation confirmed", "reservation_id", reservationID)
	}

	// Lost races refetch: some other caller already moved the state.
	return m.reservations.GetByID(ctx, reservationID)
}

// Cancel moves a PENDING or CONFIRMED reservation to CANCELLED and returns
// its seats to AVAILABLE. Cancelling a reservation that is already terminal
// leaves its status alone but still releases any seats an interrupted
// earlier cancel left behind.
func (m *Manager) Cancel(ctx context.Context, reservationID int, reason string) (*domain.Reservation, error) {
	reservation, err := m.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	switch reservation.Status {
	case domain.ReservationCancelled, domain.ReservationExpired:
		// A previous cancel may have moved the status and then crashed
		// before freeing the seats. The release is conditional on
		// RESERVED rows pointing at this reservation, so repeating it
		// is safe and heals that half-applied cancel.
		_, err := m.ledger.ReleaseByReservation(ctx, reservationID)
		if err != nil {
			return nil, fmt.Errorf("failed to release seats of cancelled reservation %d: %w", reservationID, err)
		}

		return reservation, nil
	}

	applied, err := m.reservations.UpdateStatusFrom(
		ctx, reservationID, domain.ReservationCancelled, reservation.Status)
	if err != nil {
		return nil, err
	}

	if applied {
		released, err := m.ledger.ReleaseByReservation(ctx, reservationID)
		if err != nil {
			return nil, fmt.Errorf("failed to release seats of cancelled reservation %d: %w", reservationID, err)
		}

		m.logger.Info(
			"reservation cancelled",
			"reservation_id", reservationID,
			"reason", reason,
			"seats_released", released,
		)
	}

	return m.reservations.GetByID(ctx, reservationID)
}

// ExpireStaleReservations marks PENDING reservations whose screening has
// started as EXPIRED and frees their seats. It is the reservation-level
// counterpart of the seat-lock sweep.
func (m *Manager) ExpireStaleReservations(ctx context.Context, now time.Time) (int, error) {
	expired, err := m.reservations.ExpireStale(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire stale reservations: %w", err)
	}

	if len(expired) > 0 {
		m.logger.Info("expired stale reservations", "count", len(expired), "reservation_ids", expired)
	}

	return len(expired), nil
}
