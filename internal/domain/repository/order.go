package repository

import (
	"context"
	"time"

	"github.com/ravenlane/compo/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
// Mark* methods are conditional updates and report whether the
// transition was applied; they are the idempotency guard and must
// stay single-statement so the guard survives concurrent callers.
type OrderRepository interface {
	// CreateWithTickets persists the order and reserves its ticket
	// numbers in one transaction, so an order row never exists without
	// its reservation. The assigned numbers are filled into the order.
	CreateWithTickets(ctx context.Context, order *model.Order, ttl time.Duration) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByPublicRef(ctx context.Context, ref string) (*model.Order, error)
	GetByProviderRef(ctx context.Context, providerRef string) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)

	// MarkPaid transitions pending→paid/completed and stores the capture id.
	MarkPaid(ctx context.Context, orderID int64, captureID string) (bool, error)
	// MarkFailed transitions pending→failed.
	MarkFailed(ctx context.Context, orderID int64) (bool, error)
	// MarkRefunded transitions paid→refunded.
	MarkRefunded(ctx context.Context, orderID int64) (bool, error)
}
