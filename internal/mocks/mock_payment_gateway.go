package mocks

import (
	"context"

	"github.com/sejinpark/cinetick/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockPaymentGateway struct {
	mock.Mock
	domain.PaymentGateway
}

func (m *MockPaymentGateway) Verify(ctx context.Context, impUID string) (*domain.GatewayTransaction, error) {
	args := m.Called(ctx, impUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GatewayTransaction), args.Error(1)
}

func (m *MockPaymentGateway) Refund(ctx context.Context, impUID, reason string) (*domain.GatewayTransaction, error) {
	args := m.Called(ctx, impUID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GatewayTransaction), args.Error(1)
}
