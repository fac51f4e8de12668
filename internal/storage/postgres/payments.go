package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/ravenlane/compo/internal/domain/errors"
	"github.com/ravenlane/compo/internal/domain/model"
)

const paymentColumns = `id, order_id, user_id, provider, provider_payment_id,
        amount_pence, currency, status, refund_id, refund_amount_pence, created_at, updated_at`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.OrderID, &p.UserID, &p.Provider, &p.ProviderPaymentID,
		&p.AmountPence, &p.Currency, &p.Status, &p.RefundID, &p.RefundAmountPence, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) (*model.Payment, error) {
	const query = `INSERT INTO payments (order_id, user_id, provider, provider_payment_id, amount_pence, currency, status)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)
                   RETURNING id, created_at, updated_at`
	err := r.storage.db(ctx).QueryRow(ctx, query,
		payment.OrderID, payment.UserID, payment.Provider, payment.ProviderPaymentID,
		payment.AmountPence, payment.Currency, model.PaymentStatePending,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	payment.Status = model.PaymentStatePending
	return payment, nil
}

func (r *paymentRepository) GetByOrder(ctx context.Context, orderID int64) (*model.Payment, error) {
	const query = `SELECT ` + paymentColumns + ` FROM payments WHERE order_id=$1`
	return scanPayment(r.storage.db(ctx).QueryRow(ctx, query, orderID))
}

func (r *paymentRepository) GetByProviderPaymentID(ctx context.Context, providerPaymentID string) (*model.Payment, error) {
	const query = `SELECT ` + paymentColumns + ` FROM payments WHERE provider_payment_id=$1`
	return scanPayment(r.storage.db(ctx).QueryRow(ctx, query, providerPaymentID))
}

// MarkSucceeded upserts so that settlement converges even when the
// payment row was never created locally (provider-initiated capture
// before checkout finished writing).
func (r *paymentRepository) MarkSucceeded(ctx context.Context, orderID int64, providerPaymentID string) error {
	const query = `INSERT INTO payments (order_id, user_id, provider, provider_payment_id, amount_pence, currency, status)
                   SELECT o.id, o.user_id, o.provider, $2, o.amount_pence, o.currency, $3
                   FROM orders o WHERE o.id=$1
                   ON CONFLICT (order_id) DO UPDATE
                   SET status=EXCLUDED.status,
                       provider_payment_id=EXCLUDED.provider_payment_id,
                       updated_at=NOW()`
	_, err := r.storage.db(ctx).Exec(ctx, query, orderID, providerPaymentID, model.PaymentStateSucceeded)
	return err
}

func (r *paymentRepository) MarkFailed(ctx context.Context, orderID int64) error {
	const query = `UPDATE payments SET status=$2, updated_at=NOW() WHERE order_id=$1`
	_, err := r.storage.db(ctx).Exec(ctx, query, orderID, model.PaymentStateFailed)
	return err
}

// MarkRefunded only transitions out of succeeded, so a redelivered
// refund webhook cannot double-apply.
func (r *paymentRepository) MarkRefunded(ctx context.Context, paymentID int64, refundID string, refundAmountPence int64) (bool, error) {
	const query = `UPDATE payments
                   SET status=$2, refund_id=$3, refund_amount_pence=$4, updated_at=NOW()
                   WHERE id=$1 AND status=$5`
	tag, err := r.storage.db(ctx).Exec(ctx, query, paymentID,
		model.PaymentStateRefunded, refundID, refundAmountPence, model.PaymentStateSucceeded)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
