package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/ravenlane/compo/internal/adapter/payments"
	domainErrors "github.com/ravenlane/compo/internal/domain/errors"
	"github.com/ravenlane/compo/internal/domain/model"
	"github.com/ravenlane/compo/internal/usecase"
)

var (
	// ErrCapturePending means the provider has not finished the capture;
	// the buyer should retry confirmation shortly.
	ErrCapturePending = errors.New("capture pending")
	// ErrInvalidSignature rejects a webhook that fails verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// CompoFacade aggregates the use cases behind one surface for the HTTP
// layer and the reaper worker. It also owns the provider-facing
// orchestration: capturing on confirm and translating webhook deliveries
// into settlements.
type CompoFacade struct {
	auth         *usecase.AuthUseCase
	competitions *usecase.CompetitionUseCase
	checkout     *usecase.CheckoutUseCase
	fulfillment  *usecase.FulfillmentUseCase
	gateways     *payments.Registry
	logger       *slog.Logger
}

// NewCompoFacade constructs CompoFacade.
func NewCompoFacade(
	auth *usecase.AuthUseCase,
	competitions *usecase.CompetitionUseCase,
	checkout *usecase.CheckoutUseCase,
	fulfillment *usecase.FulfillmentUseCase,
	gateways *payments.Registry,
	logger *slog.Logger,
) *CompoFacade {
	return &CompoFacade{
		auth:         auth,
		competitions: competitions,
		checkout:     checkout,
		fulfillment:  fulfillment,
		gateways:     gateways,
		logger:       logger,
	}
}

func (f *CompoFacade) Register(ctx context.Context, email, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, email, password)
	return token, err
}

func (f *CompoFacade) Authenticate(ctx context.Context, email, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, email, password)
	return token, err
}

func (f *CompoFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *CompoFacade) HomeFeed(ctx context.Context) ([]model.Competition, error) {
	return f.competitions.HomeFeed(ctx)
}

func (f *CompoFacade) Competition(ctx context.Context, id int64) (*model.Competition, error) {
	return f.competitions.GetByID(ctx, id)
}

func (f *CompoFacade) CreateCompetition(ctx context.Context, competition *model.Competition) (*model.Competition, error) {
	return f.competitions.Create(ctx, competition)
}

func (f *CompoFacade) BustHomeFeed(ctx context.Context) error {
	return f.competitions.BustHomeFeed(ctx)
}

func (f *CompoFacade) Checkout(ctx context.Context, input usecase.CheckoutInput) (*usecase.CheckoutResult, error) {
	return f.checkout.Checkout(ctx, input)
}

func (f *CompoFacade) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	return f.checkout.ListOrders(ctx, userID)
}

func (f *CompoFacade) Tickets(ctx context.Context, userID int64) ([]model.Ticket, error) {
	return f.checkout.ListTickets(ctx, userID)
}

// Order resolves an order by its public checkout reference.
func (f *CompoFacade) Order(ctx context.Context, publicRef string) (*model.Order, error) {
	if _, err := uuid.Parse(publicRef); err != nil {
		return nil, domainErrors.ErrNotFound
	}
	return f.fulfillment.OrderByPublicRef(ctx, publicRef)
}

// ConfirmPayment captures the order's payment at its provider and settles
// the outcome. Repeated confirmations of a settled order are harmless:
// the settlement guard reports AlreadySettled and nothing moves twice.
func (f *CompoFacade) ConfirmPayment(ctx context.Context, publicRef string) (*model.Order, *usecase.SettleResult, error) {
	order, err := f.Order(ctx, publicRef)
	if err != nil {
		return nil, nil, err
	}

	gateway, err := f.gateways.Get(order.Provider)
	if err != nil {
		return nil, nil, err
	}

	capture, err := gateway.CapturePayment(ctx, order.ProviderOrderID)
	if err != nil {
		return nil, nil, err
	}

	switch capture.Status {
	case payments.CaptureCompleted:
		result, err := f.fulfillment.SettleSuccess(ctx, order.ID, usecase.CaptureDetails{
			CaptureID:         capture.CaptureID,
			ProviderPaymentID: capture.CaptureID,
			AmountPence:       capture.AmountPence,
		})
		return order, result, err
	case payments.CapturePending:
		return order, nil, ErrCapturePending
	default:
		result, err := f.fulfillment.SettleFailure(ctx, order.ID, usecase.FailureCaptureDenied)
		if err != nil {
			return order, nil, err
		}
		return order, result, domainErrors.ErrProviderRejected
	}
}

// HandleWebhook verifies, parses and settles one provider webhook
// delivery. Deliveries for unknown orders are acknowledged and dropped:
// returning an error would only make the provider retry forever.
func (f *CompoFacade) HandleWebhook(ctx context.Context, provider string, header http.Header, body []byte) error {
	gateway, err := f.gateways.Get(provider)
	if err != nil {
		return err
	}

	if !gateway.VerifyWebhookSignature(header, body) {
		return ErrInvalidSignature
	}

	event, err := gateway.ParseWebhook(body)
	if err != nil {
		return err
	}

	switch event.Kind {
	case payments.WebhookCaptureCompleted:
		return f.settleFromWebhook(ctx, event, func(orderID int64) error {
			result, err := f.fulfillment.SettleSuccess(ctx, orderID, usecase.CaptureDetails{
				CaptureID:         event.PaymentRef,
				ProviderPaymentID: event.PaymentRef,
				AmountPence:       event.AmountPence,
			})
			if errors.Is(err, domainErrors.ErrSoldOut) {
				f.logger.Warn("settlement rejected over capacity", slog.Int64("order_id", orderID))
				return nil
			}
			if err == nil && result.AlreadySettled {
				f.logger.Info("webhook replay ignored", slog.Int64("order_id", orderID))
			}
			return err
		})
	case payments.WebhookCaptureDenied:
		return f.settleFromWebhook(ctx, event, func(orderID int64) error {
			_, err := f.fulfillment.SettleFailure(ctx, orderID, usecase.FailureCaptureDenied)
			return err
		})
	case payments.WebhookCaptureRefunded:
		return f.settleRefundFromWebhook(ctx, event)
	default:
		return nil
	}
}

func (f *CompoFacade) settleFromWebhook(ctx context.Context, event *payments.WebhookEvent, settle func(orderID int64) error) error {
	order, err := f.fulfillment.OrderByProviderRef(ctx, event.ProviderRef)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			f.logger.Warn("webhook for unknown order dropped",
				slog.String("provider_ref", event.ProviderRef))
			return nil
		}
		return err
	}
	return settle(order.ID)
}

func (f *CompoFacade) settleRefundFromWebhook(ctx context.Context, event *payments.WebhookEvent) error {
	var err error
	if event.ProviderRef != "" {
		err = f.settleFromWebhook(ctx, event, func(orderID int64) error {
			_, err := f.fulfillment.SettleRefund(ctx, orderID, event.RefundRef, event.RefundAmountPence)
			return err
		})
	} else {
		_, err = f.fulfillment.SettleRefundByPaymentRef(ctx, event.PaymentRef, event.RefundRef, event.RefundAmountPence)
	}
	if errors.Is(err, domainErrors.ErrNotFound) {
		f.logger.Warn("refund webhook for unknown payment dropped",
			slog.String("payment_ref", event.PaymentRef))
		return nil
	}
	return err
}

// ExpiredReservationOrders lists orders whose reservations lapsed.
func (f *CompoFacade) ExpiredReservationOrders(ctx context.Context, limit int) ([]int64, error) {
	return f.fulfillment.ExpiredReservationOrders(ctx, limit)
}

// ReleaseExpired fails one expired order and frees its numbers.
func (f *CompoFacade) ReleaseExpired(ctx context.Context, orderID int64) error {
	return f.fulfillment.ReleaseExpired(ctx, orderID)
}
