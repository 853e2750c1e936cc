package mocks

import (
	"context"
	"time"

	"github.com/sejinpark/cinetick/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockSeatLedger struct {
	mock.Mock
	domain.SeatLedger
}

func (m *MockSeatLedger) Lock(
	ctx context.Context,
	screeningID int,
	seatIDs []int,
	ownerToken string,
	ttl time.Duration) (*domain.LockResult, error) {

	args := m.Called(ctx, screeningID, seatIDs, ownerToken, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LockResult), args.Error(1)
}

func (m *MockSeatLedger) Release(
	ctx context.Context,
	screeningID int,
	seatIDs []int,
	ownerToken string) (int, error) {

	args := m.Called(ctx, screeningID, seatIDs, ownerToken)
	return args.Int(0), args.Error(1)
}

func (m *MockSeatLedger) ReleaseByReservation(ctx context.Context, reservationID int) (int, error) {
	args := m.Called(ctx, reservationID)
	return args.Int(0), args.Error(1)
}

func (m *MockSeatLedger) SweepExpired(ctx context.Context, now time.Time) ([]domain.SweptSeat, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SweptSeat), args.Error(1)
}

func (m *MockSeatLedger) GetHeldSeats(
	ctx context.Context,
	screeningID int,
	seatIDs []int,
	ownerToken string) ([]domain.ScreeningSeat, error) {

	args := m.Called(ctx, screeningID, seatIDs, ownerToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScreeningSeat), args.Error(1)
}

func (m *MockSeatLedger) GetSeatMap(ctx context.Context, screeningID int) (*domain.ScreeningSeatMap, error) {
	args := m.Called(ctx, screeningID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScreeningSeatMap), args.Error(1)
}
