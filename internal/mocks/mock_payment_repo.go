package mocks

import (
	"context"
	"time"

	"github.com/sejinpark/cinetick/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockPaymentRepo struct {
	mock.Mock
	domain.PaymentRepository
}

func (m *MockPaymentRepo) Create(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepo) GetByImpUID(ctx context.Context, impUID string) (*domain.Payment, error) {
	args := m.Called(ctx, impUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepo) MarkCancelled(
	ctx context.Context,
	impUID, reason string,
	receiptURL *string) (bool, error) {

	args := m.Called(ctx, impUID, reason, receiptURL)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepo) MarkPaid(
	ctx context.Context,
	impUID string,
	amount decimal.Decimal,
	paidAt *time.Time,
	receiptURL *string) (bool, error) {

	args := m.Called(ctx, impUID, amount, paidAt, receiptURL)
	return args.Bool(0), args.Error(1)
}
