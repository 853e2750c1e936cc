package mocks

import (
	"context"
	"time"

	"github.com/sejinpark/cinetick/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockReservationRepo struct {
	mock.Mock
	domain.ReservationRepository
}

func (m *MockReservationRepo) Create(ctx context.Context, reservation *domain.Reservation, ownerToken string) error {
	args := m.Called(ctx, reservation, ownerToken)
	return args.Error(0)
}

func (m *MockReservationRepo) GetByID(ctx context.Context, id int) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepo) GetByMerchantUID(ctx context.Context, merchantUID string) (*domain.Reservation, error) {
	args := m.Called(ctx, merchantUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepo) UpdateStatusFrom(
	ctx context.Context,
	id int,
	to, from domain.ReservationStatus) (bool, error) {

	args := m.Called(ctx, id, to, from)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationRepo) ExpireStale(ctx context.Context, now time.Time) ([]int, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockReservationRepo) GetSummariesByUserID(
	ctx context.Context,
	userID int,
	pagination domain.Pagination) ([]domain.ReservationSummary, *domain.Metadata, error) {

	args := m.Called(ctx, userID, pagination)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.ReservationSummary), args.Get(1).(*domain.Metadata), args.Error(2)
}
