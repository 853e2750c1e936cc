package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentInitiated PaymentStatus = "INITIATED"
	PaymentPaid      PaymentStatus = "PAID"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

// Payment records one gateway transaction. ImpUID is the gateway-assigned
// identifier and doubles as the idempotency key: the client completion call
// and the gateway webhook may both report the same transaction, in any
// order, and only the first write for an ImpUID sticks.
type Payment struct {
	ID            int
	ImpUID        string
	MerchantUID   string
	UserID        *int
	ReservationID *int
	Amount        decimal.Decimal
	Method        string
	Status        PaymentStatus
	PaidAt        *time.Time
	CancelReason  *string
	CancelledAt   *time.Time
	ReceiptURL    *string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

type PaymentRepository interface {
	// Create inserts the payment row. A unique index on imp_uid turns a
	// concurrent duplicate into ErrDuplicatePayment.
	Create(ctx context.Context, payment *Payment) error

	GetByImpUID(ctx context.Context, impUID string) (*Payment, error)

	// MarkCancelled transitions the payment to CANCELLED unless it already
	// is; returns false in that case.
	MarkCancelled(ctx context.Context, impUID, reason string, receiptURL *string) (bool, error)

	// MarkPaid promotes a non-final payment (INITIATED, FAILED) to PAID
	// once a later verification succeeds. CANCELLED and PAID rows are left
	// untouched; returns false when no row was promoted.
	MarkPaid(ctx context.Context, impUID string, amount decimal.Decimal, paidAt *time.Time, receiptURL *string) (bool, error)
}
