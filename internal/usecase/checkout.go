package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ravenlane/compo/internal/adapter/payments"
	domainErrors "github.com/ravenlane/compo/internal/domain/errors"
	"github.com/ravenlane/compo/internal/domain/model"
	"github.com/ravenlane/compo/internal/domain/repository"
)

// createRetries bounds retries when a reservation loses the race for
// specific ticket numbers.
const createRetries = 3

// CheckoutInput describes a purchase attempt. UserID is nil for guest
// checkout; Billing.Email is required either way.
type CheckoutInput struct {
	UserID        *int64
	CompetitionID int64
	Quantity      int
	Provider      string
	CardToken     string
	Billing       model.BillingDetails
}

// CheckoutResult is the created pending order plus, for redirect-based
// providers, the URL the buyer approves the payment at.
type CheckoutResult struct {
	Order      *model.Order
	ApproveURL string
}

// CheckoutUseCase creates pending orders with reserved ticket numbers and
// a matching payment intent at the chosen provider.
type CheckoutUseCase struct {
	orders       repository.OrderRepository
	tickets      repository.TicketRepository
	competitions repository.CompetitionRepository
	payments     repository.PaymentRepository
	gateways     *payments.Registry
	ttl          time.Duration
	returnURL    string
	cancelURL    string
	logger       *slog.Logger
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(
	orders repository.OrderRepository,
	tickets repository.TicketRepository,
	competitions repository.CompetitionRepository,
	paymentRepo repository.PaymentRepository,
	gateways *payments.Registry,
	ttl time.Duration,
	returnURL, cancelURL string,
	logger *slog.Logger,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		orders:       orders,
		tickets:      tickets,
		competitions: competitions,
		payments:     paymentRepo,
		gateways:     gateways,
		ttl:          ttl,
		returnURL:    returnURL,
		cancelURL:    cancelURL,
		logger:       logger,
	}
}

// Checkout validates the purchase, opens the payment at the provider and
// persists the pending order with its reserved numbers. The provider
// intent is created first: an intent that never gets an order is
// harmless, an order without an intent could never be paid.
func (u *CheckoutUseCase) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	input.Billing.Email = strings.TrimSpace(input.Billing.Email)
	if input.Billing.Email == "" {
		return nil, domainErrors.ErrEmailRequired
	}
	if input.Quantity < 1 {
		return nil, domainErrors.ErrInvalidQuantity
	}

	competition, err := u.competitions.GetByID(ctx, input.CompetitionID)
	if err != nil {
		return nil, err
	}
	if competition.Status != model.CompetitionStatusLive {
		return nil, domainErrors.ErrCompetitionClosed
	}
	if competition.MaxPerOrder > 0 && input.Quantity > competition.MaxPerOrder {
		return nil, domainErrors.ErrInvalidQuantity
	}

	gateway, err := u.gateways.Get(input.Provider)
	if err != nil {
		return nil, err
	}

	publicRef := uuid.New()
	amount := competition.TicketPricePence * int64(input.Quantity)

	intent, err := gateway.CreatePayment(ctx, payments.CreateRequest{
		AmountPence: amount,
		Currency:    competition.Currency,
		OrderRef:    publicRef.String(),
		ReturnURL:   u.returnURL,
		CancelURL:   u.cancelURL,
		CardToken:   input.CardToken,
	})
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		PublicRef:       publicRef,
		UserID:          input.UserID,
		CompetitionID:   competition.ID,
		Quantity:        input.Quantity,
		AmountPence:     amount,
		Currency:        competition.Currency,
		Provider:        gateway.Name(),
		ProviderOrderID: intent.ProviderRef,
		Billing:         input.Billing,
	}

	created, err := u.createWithRetry(ctx, order)
	if err != nil {
		return nil, err
	}

	payment := &model.Payment{
		OrderID:     created.ID,
		Provider:    gateway.Name(),
		AmountPence: amount,
		Currency:    competition.Currency,
		Status:      model.PaymentStatePending,
	}
	if _, err := u.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	u.logger.Info("checkout created",
		slog.String("order_ref", publicRef.String()),
		slog.Int64("competition_id", competition.ID),
		slog.Int("quantity", input.Quantity),
		slog.String("provider", gateway.Name()),
	)

	return &CheckoutResult{Order: created, ApproveURL: intent.ApproveURL}, nil
}

// createWithRetry absorbs ticket-number races: two checkouts can pick the
// same free numbers, the loser hits the unique constraint and retries
// against the refreshed pool.
func (u *CheckoutUseCase) createWithRetry(ctx context.Context, order *model.Order) (*model.Order, error) {
	var lastErr error
	for attempt := 0; attempt < createRetries; attempt++ {
		created, err := u.orders.CreateWithTickets(ctx, order, u.ttl)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// ListOrders returns the user's orders, newest first.
func (u *CheckoutUseCase) ListOrders(ctx context.Context, userID int64) ([]model.Order, error) {
	return u.orders.ListByUser(ctx, userID)
}

// ListTickets returns the user's tickets across competitions.
func (u *CheckoutUseCase) ListTickets(ctx context.Context, userID int64) ([]model.Ticket, error) {
	return u.tickets.ListByUser(ctx, userID)
}
