package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/ravenlane/compo/internal/domain/errors"
	"github.com/ravenlane/compo/internal/domain/model"
)

const orderColumns = `id, public_ref, user_id, competition_id, quantity, ticket_numbers,
        amount_pence, currency, provider, provider_order_id, capture_id,
        status, payment_status, billing_name, billing_email, billing_phone,
        created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	var numbers []int32
	err := row.Scan(&o.ID, &o.PublicRef, &o.UserID, &o.CompetitionID, &o.Quantity, &numbers,
		&o.AmountPence, &o.Currency, &o.Provider, &o.ProviderOrderID, &o.CaptureID,
		&o.Status, &o.PaymentStatus, &o.Billing.Name, &o.Billing.Email, &o.Billing.Phone,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	o.TicketNumbers = fromInt32Slice(numbers)
	return &o, nil
}

// CreateWithTickets inserts the order and reserves its ticket numbers in
// one transaction; a rollback leaves neither behind. The reservation can
// lose a race for specific numbers, surfaced as ErrAlreadyExists for the
// caller to retry with a fresh transaction.
func (r *orderRepository) CreateWithTickets(ctx context.Context, order *model.Order, ttl time.Duration) (*model.Order, error) {
	const insertOrder = `INSERT INTO orders (public_ref, user_id, competition_id, quantity, ticket_numbers,
                             amount_pence, currency, provider, provider_order_id,
                             status, payment_status, billing_name, billing_email, billing_phone)
                         VALUES ($1, $2, $3, $4, '{}', $5, $6, $7, $8, $9, $10, $11, $12, $13)
                         RETURNING id, created_at, updated_at`
	const setNumbers = `UPDATE orders SET ticket_numbers=$2 WHERE id=$1`

	reservedUntil := time.Now().Add(ttl)

	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insertOrder,
			order.PublicRef, order.UserID, order.CompetitionID, order.Quantity,
			order.AmountPence, order.Currency, order.Provider, order.ProviderOrderID,
			model.OrderStatusPending, model.PaymentStatusPending,
			order.Billing.Name, order.Billing.Email, order.Billing.Phone,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return err
		}

		numbers, err := reserveTicketsTx(ctx, tx, order.CompetitionID, order.ID, order.UserID, order.Quantity, reservedUntil)
		if err != nil {
			return err
		}
		order.TicketNumbers = numbers

		_, err = tx.Exec(ctx, setNumbers, order.ID, toInt32Slice(numbers))
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	order.Status = model.OrderStatusPending
	order.PaymentStatus = model.PaymentStatusPending
	return order, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return scanOrder(r.storage.db(ctx).QueryRow(ctx, query, id))
}

func (r *orderRepository) GetByPublicRef(ctx context.Context, ref string) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE public_ref=$1`
	return scanOrder(r.storage.db(ctx).QueryRow(ctx, query, ref))
}

func (r *orderRepository) GetByProviderRef(ctx context.Context, providerRef string) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE provider_order_id=$1`
	return scanOrder(r.storage.db(ctx).QueryRow(ctx, query, providerRef))
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.db(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkPaid is the settlement idempotency guard: the row transitions only
// while payment_status is still pending, so concurrent settlements for
// one order apply exactly once.
func (r *orderRepository) MarkPaid(ctx context.Context, orderID int64, captureID string) (bool, error) {
	const query = `UPDATE orders
                   SET status=$2, payment_status=$3, capture_id=$4, updated_at=NOW()
                   WHERE id=$1 AND payment_status=$5`
	tag, err := r.storage.db(ctx).Exec(ctx, query, orderID,
		model.OrderStatusCompleted, model.PaymentStatusPaid, captureID, model.PaymentStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *orderRepository) MarkFailed(ctx context.Context, orderID int64) (bool, error) {
	const query = `UPDATE orders
                   SET status=$2, payment_status=$3, updated_at=NOW()
                   WHERE id=$1 AND payment_status=$4`
	tag, err := r.storage.db(ctx).Exec(ctx, query, orderID,
		model.OrderStatusFailed, model.PaymentStatusFailed, model.PaymentStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *orderRepository) MarkRefunded(ctx context.Context, orderID int64) (bool, error) {
	const query = `UPDATE orders
                   SET status=$2, payment_status=$3, updated_at=NOW()
                   WHERE id=$1 AND payment_status=$4`
	tag, err := r.storage.db(ctx).Exec(ctx, query, orderID,
		model.OrderStatusRefunded, model.PaymentStatusRefunded, model.PaymentStatusPaid)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
