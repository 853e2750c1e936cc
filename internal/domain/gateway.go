package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	GatewayStatusPaid      = "paid"
	GatewayStatusCancelled = "cancelled"
	GatewayStatusFailed    = "failed"
)

// GatewayTransaction is the gateway's own view of one payment attempt,
// fetched out-of-band during verification. The recorded amount is compared
// against the reservation total before anything is confirmed.
type GatewayTransaction struct {
	ImpUID      string
	MerchantUID string
	Amount      decimal.Decimal
	Status      string
	Method      string
	PaidAt      *time.Time
	ReceiptURL  *string
}

// PaymentGateway abstracts the external payment provider as a
// verification/refund capability. Implementations must honor the context
// deadline; a timeout means "unknown outcome", never success.
type PaymentGateway interface {
	Verify(ctx context.Context, impUID string) (*GatewayTransaction, error)
	Refund(ctx context.Context, impUID, reason string) (*GatewayTransaction, error)
}
