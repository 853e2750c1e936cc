package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Screening is a scheduled showing. Read-only to this subsystem; seat custody
// lives in the SeatLedger.
type Screening struct {
	ID         int
	MovieID    int
	MovieTitle string
	TheaterID  int
	StartTime  time.Time
	EndTime    time.Time
	BasePrice  decimal.Decimal
}

type ScreeningRepository interface {
	GetByID(ctx context.Context, id int) (*Screening, error)
	GetByTheaterID(ctx context.Context, theaterID int) ([]Screening, error)
}
