package mocks

import (
	"context"

	"github.com/sejinpark/cinetick/internal/domain"
)

type MockScreeningRepo struct {
	GetByIDFunc        func(ctx context.Context, id int) (*domain.Screening, error)
	GetByTheaterIDFunc func(ctx context.Context, theaterID int) ([]domain.Screening, error)
}

func (m *MockScreeningRepo) GetByID(ctx context.Context, id int) (*domain.Screening, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *MockScreeningRepo) GetByTheaterID(ctx context.Context, theaterID int) ([]domain.Screening, error) {
	return m.GetByTheaterIDFunc(ctx, theaterID)
}
