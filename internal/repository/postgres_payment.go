package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sejinpark/cinetick/internal/domain"
	"github.com/shopspring/decimal"
)

type PostgresPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPostgresPaymentRepository(db *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{
		db: db,
	}
}

func (p *PostgresPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (
			imp_uid,
			merchant_uid,
			user_id,
			reservation_id,
			amount,
			method,
			status,
			paid_at,
			receipt_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := p.db.QueryRow(
		ctx,
		query,
		payment.ImpUID,
		payment.MerchantUID,
		payment.UserID,
		payment.ReservationID,
		payment.Amount,
		payment.Method,
		payment.Status,
		payment.PaidAt,
		payment.ReceiptURL,
	).Scan(&payment.ID, &payment.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrDuplicatePayment
		}

		return err
	}

	return nil
}

func (p *PostgresPaymentRepository) GetByImpUID(ctx context.Context, impUID string) (*domain.Payment, error) {
	query := `
		SELECT id, imp_uid, merchant_uid, user_id, reservation_id, amount, method,
			status, paid_at, cancel_reason, cancelled_at, receipt_url, created_at, updated_at
		FROM payments
		WHERE imp_uid = $1
	`

	var payment domain.Payment

	err := p.db.QueryRow(ctx, query, impUID).Scan(
		&payment.ID,
		&payment.ImpUID,
		&payment.MerchantUID,
		&payment.UserID,
		&payment.ReservationID,
		&payment.Amount,
		&payment.Method,
		&payment.Status,
		&payment.PaidAt,
		&payment.CancelReason,
		&payment.CancelledAt,
		&payment.ReceiptURL,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &payment, nil
}

func (p *PostgresPaymentRepository) MarkCancelled(
	ctx context.Context,
	impUID, reason string,
	receiptURL *string) (bool, error) {

	query := `
		UPDATE payments
		SET status = 'CANCELLED',
			cancel_reason = $2,
			cancelled_at = now(),
			receipt_url = COALESCE($3, receipt_url),
			updated_at = now()
		WHERE imp_uid = $1 AND status <> 'CANCELLED'
	`

	tag, err := p.db.Exec(ctx, query, impUID, reason, receiptURL)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

func (p *PostgresPaymentRepository) MarkPaid(
	ctx context.Context,
	impUID string,
	amount decimal.Decimal,
	paidAt *time.Time,
	receiptURL *string) (bool, error) {

	query := `
		UPDATE payments
		SET status = 'PAID',
			amount = $2,
			paid_at = $3,
			receipt_url = COALESCE($4, receipt_url),
			updated_at = now()
		WHERE imp_uid = $1 AND status IN ('INITIATED', 'FAILED')
	`

	tag, err := p.db.Exec(ctx, query, impUID, amount, paidAt, receiptURL)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}
