package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sejinpark/cinetick/internal/domain"
	"github.com/sejinpark/cinetick/internal/mailer"
)

const gatewayTimeout = 15 * time.Second

// ReservationLifecycle is the slice of the reservation manager the
// coordinator drives. Reservation status never changes except through these
// calls.
type ReservationLifecycle interface {
	Confirm(ctx context.Context, reservationID int) (*domain.Reservation, error)
	Cancel(ctx context.Context, reservationID int, reason string) (*domain.Reservation, error)
}

// Coordinator is the only writer of Payment rows. Completion is idempotent
// on imp_uid: the client call and the gateway webhook can race or replay and
// exactly one Payment(PAID) row and one CONFIRMED transition result.
type Coordinator struct {
	logger       *slog.Logger
	gateway      domain.PaymentGateway
	payments     domain.PaymentRepository
	reservations domain.ReservationRepository
	lifecycle    ReservationLifecycle
	users        domain.UserRepository
	mailer       mailer.Mailer
}

func NewCoordinator(
	logger *slog.Logger,
	gateway domain.PaymentGateway,
	payments domain.PaymentRepository,
	reservations domain.ReservationRepository,
	lifecycle ReservationLifecycle,
	users domain.UserRepository,
	mailer mailer.Mailer) *Coordinator {

	return &Coordinator{
		logger:       logger,
		gateway:      gateway,
		payments:     payments,
		reservations: reservations,
		lifecycle:    lifecycle,
		users:        users,
		mailer:       mailer,
	}
}

// CompletePayment verifies the gateway transaction and applies it to the
// reservation. reservationID may be zero (webhook path); the reservation is
// then resolved through the merchant_uid written at booking time. A
// verification mismatch records Payment(FAILED) and leaves the reservation
// untouched, so the customer keeps a bounded retry window until the TTL
// sweep frees the seats.
func (c *Coordinator) CompletePayment(
	ctx context.Context,
	impUID, merchantUID string,
	reservationID int) (*domain.Payment, error) {

	existing, err := c.payments.GetByImpUID(ctx, impUID)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, err
	}

	if existing != nil && existing.Status == domain.PaymentPaid {
		// Duplicate client+webhook delivery. Re-run the idempotent confirm
		// in case the first attempt crashed between payment and confirm.
		if existing.ReservationID != nil {
			if _, err := c.lifecycle.Confirm(ctx, *existing.ReservationID); err != nil {
				return nil, err
			}
		}

		return existing, nil
	}

	reservation, err := c.resolveReservation(ctx, merchantUID, reservationID)
	if err != nil {
		return nil, err
	}

	gctx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	// A timeout here is an unknown outcome: surface the error and let the
	// caller retry. The imp_uid key makes the retry safe.
	txn, err := c.gateway.Verify(gctx, impUID)
	if err != nil {
		return nil, fmt.Errorf("%w: verification of %s: %v", domain.ErrGateway, impUID, err)
	}

	payment := &domain.Payment{
		ImpUID:        impUID,
		MerchantUID:   reservation.MerchantUID,
		UserID:        &reservation.UserID,
		ReservationID: &reservation.ID,
		Amount:        txn.Amount,
		Method:        txn.Method,
		PaidAt:        txn.PaidAt,
		ReceiptURL:    txn.ReceiptURL,
	}

	if txn.Status != domain.GatewayStatusPaid || !txn.Amount.Equal(reservation.TotalAmount) {
		payment.Status = domain.PaymentFailed

		c.logger.Error(
			"payment verification mismatch",
			"imp_uid", impUID,
			"reservation_id", reservation.ID,
			"gateway_status", txn.Status,
			"gateway_amount", txn.Amount,
			"expected_amount", reservation.TotalAmount,
		)

		err = c.payments.Create(ctx, payment)
		if err != nil && !errors.Is(err, domain.ErrDuplicatePayment) {
			return nil, err
		}

		return payment, domain.ErrPaymentVerification
	}

	payment.Status = domain.PaymentPaid

	err = c.payments.Create(ctx, payment)
	if err != nil {
		if !errors.Is(err, domain.ErrDuplicatePayment) {
			return nil, err
		}

		existing, err := c.payments.GetByImpUID(ctx, impUID)
		if err != nil {
			return nil, err
		}

		switch existing.Status {
		case domain.PaymentPaid, domain.PaymentCancelled:
			// A concurrent completion won the insert, or the payment was
			// cancelled in the meantime; that row is the final word.
			return existing, nil
		}

		// The existing row recorded a non-final outcome for this imp_uid,
		// e.g. a webhook that fired while a virtual-account payment was
		// still pending. The verified PAID result supersedes it.
		promoted, err := c.payments.MarkPaid(ctx, impUID, txn.Amount, txn.PaidAt, txn.ReceiptURL)
		if err != nil {
			return nil, err
		}

		if !promoted {
			return c.payments.GetByImpUID(ctx, impUID)
		}

		payment, err = c.payments.GetByImpUID(ctx, impUID)
		if err != nil {
			return nil, err
		}
	}

	confirmed, err := c.lifecycle.Confirm(ctx, reservation.ID)
	if err != nil {
		return nil, err
	}

	c.logger.Info(
		"payment completed",
		"imp_uid", impUID,
		"reservation_id", reservation.ID,
		"amount", payment.Amount,
	)

	c.sendReceipt(confirmed, payment)

	return payment, nil
}

// CancelPayment refunds through the gateway and then cancels the linked
// reservation. Nothing is mutated unless the gateway acknowledged the
// refund; a failed refund leaves state unchanged for the caller to retry.
func (c *Coordinator) CancelPayment(ctx context.Context, impUID, reason string) (*domain.Payment, error) {
	payment, err := c.payments.GetByImpUID(ctx, impUID)
	if err != nil {
		return nil, err
	}

	if payment.Status == domain.PaymentCancelled {
		// The payment row may have been cancelled by an attempt that then
		// crashed before cancelling the reservation. Re-run the idempotent
		// cancel so a retry finishes the job instead of stranding the
		// reservation in CONFIRMED.
		if payment.ReservationID != nil {
			if _, err := c.lifecycle.Cancel(ctx, *payment.ReservationID, reason); err != nil {
				return nil, err
			}
		}

		return payment, nil
	}

	gctx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	txn, err := c.gateway.Refund(gctx, impUID, reason)
	if err != nil {
		return nil, fmt.Errorf("%w: refund of %s: %v", domain.ErrGateway, impUID, err)
	}

	_, err = c.payments.MarkCancelled(ctx, impUID, reason, txn.ReceiptURL)
	if err != nil {
		return nil, err
	}

	if payment.ReservationID != nil {
		_, err = c.lifecycle.Cancel(ctx, *payment.ReservationID, reason)
		if err != nil {
			return nil, err
		}
	}

	c.logger.Info("payment cancelled", "imp_uid", impUID, "reason", reason)

	return c.payments.GetByImpUID(ctx, impUID)
}

func (c *Coordinator) resolveReservation(
	ctx context.Context,
	merchantUID string,
	reservationID int) (*domain.Reservation, error) {

	if reservationID > 0 {
		return c.reservations.GetByID(ctx, reservationID)
	}

	// Webhook payloads carry no reservation ID; merchant_uid is the route
	// back to the reservation.
	return c.reservations.GetByMerchantUID(ctx, merchantUID)
}

func (c *Coordinator) sendReceipt(reservation *domain.Reservation, payment *domain.Payment) {
	if c.mailer == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		user, err := c.users.GetByID(ctx, reservation.UserID)
		if err != nil {
			c.logger.Error("failed to look up user for receipt email", "user_id", reservation.UserID, "error", err)
			return
		}

		data := map[string]any{
			"firstName":     user.FirstName,
			"reservationID": reservation.ID,
			"seatCount":     len(reservation.SeatIDs),
			"totalAmount":   payment.Amount.StringFixed(0),
		}

		err = c.mailer.Send(user.Email, "receipt.tmpl", data)
		if err != nil {
			c.logger.Error("failed to send receipt email", "user_id", user.ID, "error", err)
		}
	}()
}
