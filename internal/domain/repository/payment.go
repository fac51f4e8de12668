package repository

import (
	"context"

	"github.com/ravenlane/compo/internal/domain/model"
)

// PaymentRepository manages the local mirror of provider payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) (*model.Payment, error)
	GetByOrder(ctx context.Context, orderID int64) (*model.Payment, error)
	GetByProviderPaymentID(ctx context.Context, providerPaymentID string) (*model.Payment, error)

	// MarkSucceeded upserts the order's payment row to succeeded with the
	// provider capture/payment id.
	MarkSucceeded(ctx context.Context, orderID int64, providerPaymentID string) error
	MarkFailed(ctx context.Context, orderID int64) error
	// MarkRefunded transitions succeeded→refunded, storing refund details.
	// Reports whether the transition was applied.
	MarkRefunded(ctx context.Context, paymentID int64, refundID string, refundAmountPence int64) (bool, error)
}
