package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ravenlane/compo/internal/adapter/notify"
	"github.com/ravenlane/compo/internal/config"
	domainErrors "github.com/ravenlane/compo/internal/domain/errors"
	"github.com/ravenlane/compo/internal/domain/model"
	"github.com/ravenlane/compo/internal/domain/repository"
)

// Failure reasons recorded on the order-failed event.
const (
	FailureCaptureDenied      = "capture-denied"
	FailureReservationExpired = "reservation-expired"
	FailureOverCapacity       = "over-capacity"
)

// CaptureDetails carries the provider-side identifiers of a confirmed
// capture into settlement.
type CaptureDetails struct {
	CaptureID         string
	ProviderPaymentID string
	AmountPence       int64
}

// SettleResult reports what a settlement call did. AlreadySettled means
// another caller won the idempotency guard and this call changed nothing.
type SettleResult struct {
	AlreadySettled    bool
	TicketsIssued     int
	CompetitionClosed bool
}

// errLostPaidRace rolls the settlement transaction back when another
// caller won the paid transition while this one held claimed capacity.
var errLostPaidRace = errors.New("lost paid race")

// FulfillmentUseCase turns confirmed payment outcomes into order, ticket
// and counter state. Each settlement runs its state transitions inside
// one transaction, so a mid-settlement fault rolls everything back and
// the redelivery starts from a clean slate. The conditional updates in
// the repository layer remain the concurrency guard: concurrent
// settlements for one order apply exactly once. Event appends and
// notifications happen after commit and are best-effort: they are
// logged and never fail a settlement.
type FulfillmentUseCase struct {
	orders       repository.OrderRepository
	tickets      repository.TicketRepository
	competitions repository.CompetitionRepository
	payments     repository.PaymentRepository
	events       repository.EventRepository
	tx           repository.Transactor
	notifier     notify.Notifier
	policy       config.CounterPolicy
	logger       *slog.Logger
}

// NewFulfillmentUseCase constructs FulfillmentUseCase.
func NewFulfillmentUseCase(
	orders repository.OrderRepository,
	tickets repository.TicketRepository,
	competitions repository.CompetitionRepository,
	payments repository.PaymentRepository,
	events repository.EventRepository,
	tx repository.Transactor,
	notifier notify.Notifier,
	policy config.CounterPolicy,
	logger *slog.Logger,
) *FulfillmentUseCase {
	return &FulfillmentUseCase{
		orders:       orders,
		tickets:      tickets,
		competitions: competitions,
		payments:     payments,
		events:       events,
		tx:           tx,
		notifier:     notifier,
		policy:       policy,
		logger:       logger,
	}
}

// OrderByProviderRef resolves the order a provider webhook refers to.
func (u *FulfillmentUseCase) OrderByProviderRef(ctx context.Context, providerRef string) (*model.Order, error) {
	return u.orders.GetByProviderRef(ctx, providerRef)
}

// OrderByPublicRef resolves the order behind a public checkout reference.
func (u *FulfillmentUseCase) OrderByPublicRef(ctx context.Context, ref string) (*model.Order, error) {
	return u.orders.GetByPublicRef(ctx, ref)
}

// SettleSuccess finalizes a captured payment: the order becomes paid, its
// reserved tickets become active, the sold counter moves and the buyer is
// notified. Under the reject counter policy an order that would push the
// competition past its limit is failed instead and ErrSoldOut returned.
func (u *FulfillmentUseCase) SettleSuccess(ctx context.Context, orderID int64, capture CaptureDetails) (*SettleResult, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if u.policy == config.CounterPolicyReject {
		return u.settleSuccessRejecting(ctx, order, capture)
	}
	return u.settleSuccessAdmitting(ctx, order, capture)
}

// settleSuccessAdmitting marks the order paid, increments the counter
// unconditionally and issues the tickets in one transaction; the
// competition closes in the same increment statement once the limit is
// reached, permitting a one-order overshoot.
func (u *FulfillmentUseCase) settleSuccessAdmitting(ctx context.Context, order *model.Order, capture CaptureDetails) (*SettleResult, error) {
	var (
		applied bool
		counter *repository.CounterUpdate
		issued  int
	)
	err := u.tx.Transactional(ctx, func(ctx context.Context) error {
		var err error
		applied, err = u.orders.MarkPaid(ctx, order.ID, capture.CaptureID)
		if err != nil || !applied {
			return err
		}
		counter, err = u.competitions.IncrementSold(ctx, order.CompetitionID, order.Quantity)
		if err != nil {
			return err
		}
		issued, err = u.issueTickets(ctx, order, capture)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		return &SettleResult{AlreadySettled: true}, nil
	}

	return u.finishSuccess(ctx, order, capture, counter, issued), nil
}

// settleSuccessRejecting claims counter capacity before marking paid, so
// an over-limit order never consumes it. Losing the paid race afterwards
// rolls the transaction back, which hands the claimed capacity back.
func (u *FulfillmentUseCase) settleSuccessRejecting(ctx context.Context, order *model.Order, capture CaptureDetails) (*SettleResult, error) {
	var (
		counter *repository.CounterUpdate
		issued  int
	)
	err := u.tx.Transactional(ctx, func(ctx context.Context) error {
		var err error
		counter, err = u.competitions.IncrementSoldCapped(ctx, order.CompetitionID, order.Quantity)
		if err != nil || !counter.Applied {
			return err
		}
		applied, err := u.orders.MarkPaid(ctx, order.ID, capture.CaptureID)
		if err != nil {
			return err
		}
		if !applied {
			return errLostPaidRace
		}
		issued, err = u.issueTickets(ctx, order, capture)
		return err
	})
	if errors.Is(err, errLostPaidRace) {
		return &SettleResult{AlreadySettled: true}, nil
	}
	if err != nil {
		return nil, err
	}
	if !counter.Applied {
		result, err := u.SettleFailure(ctx, order.ID, FailureOverCapacity)
		if err != nil {
			return nil, err
		}
		if result.AlreadySettled {
			return result, nil
		}
		return result, domainErrors.ErrSoldOut
	}

	return u.finishSuccess(ctx, order, capture, counter, issued), nil
}

// issueTickets activates the order's reserved numbers and settles the
// payment mirror; it runs inside the settlement transaction.
func (u *FulfillmentUseCase) issueTickets(ctx context.Context, order *model.Order, capture CaptureDetails) (int, error) {
	issued, err := u.tickets.Activate(ctx, order.CompetitionID, order.ID, order.UserID, order.TicketNumbers)
	if err != nil {
		return 0, err
	}
	if issued < len(order.TicketNumbers) {
		u.logger.Warn("some reserved tickets were no longer held at settlement",
			slog.Int64("order_id", order.ID),
			slog.Int("expected", len(order.TicketNumbers)),
			slog.Int("issued", issued),
		)
	}

	if err := u.payments.MarkSucceeded(ctx, order.ID, capture.ProviderPaymentID); err != nil {
		return 0, err
	}
	return issued, nil
}

// finishSuccess records the settlement's events and notifies the buyer
// once the transaction has committed.
func (u *FulfillmentUseCase) finishSuccess(ctx context.Context, order *model.Order, capture CaptureDetails, counter *repository.CounterUpdate, issued int) *SettleResult {
	u.appendEvent(ctx, model.EventOrderPaid, order, map[string]any{
		"capture_id":   capture.CaptureID,
		"amount_pence": capture.AmountPence,
	})
	u.appendEvent(ctx, model.EventTicketIssued, order, map[string]any{
		"ticket_numbers": order.TicketNumbers,
		"issued":         issued,
	})

	u.notifyPurchase(ctx, order)

	return &SettleResult{
		TicketsIssued:     issued,
		CompetitionClosed: counter.Status != model.CompetitionStatusLive,
	}
}

// SettleFailure fails a pending order and returns its reserved numbers to
// the pool. Safe to call for any order: a settled one reports
// AlreadySettled and keeps its tickets.
func (u *FulfillmentUseCase) SettleFailure(ctx context.Context, orderID int64, reason string) (*SettleResult, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var applied bool
	err = u.tx.Transactional(ctx, func(ctx context.Context) error {
		var err error
		applied, err = u.orders.MarkFailed(ctx, orderID)
		if err != nil || !applied {
			return err
		}
		if _, err := u.tickets.ReleaseReserved(ctx, order.CompetitionID, order.ID, order.TicketNumbers); err != nil {
			return err
		}
		return u.payments.MarkFailed(ctx, orderID)
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		return &SettleResult{AlreadySettled: true}, nil
	}

	eventType := model.EventOrderFailed
	if reason == FailureOverCapacity {
		eventType = model.EventOrderRejected
	}
	u.appendEvent(ctx, eventType, order, map[string]any{"reason": reason})

	return &SettleResult{}, nil
}

// SettleRefund reverses a settled order after a provider refund: the
// payment row is the idempotency guard, then the order flips to refunded,
// its tickets to refunded and the sold counter steps back down.
func (u *FulfillmentUseCase) SettleRefund(ctx context.Context, orderID int64, refundID string, refundAmountPence int64) (*SettleResult, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	payment, err := u.payments.GetByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var (
		applied  bool
		refunded int
		counter  *repository.CounterUpdate
	)
	err = u.tx.Transactional(ctx, func(ctx context.Context) error {
		var err error
		applied, err = u.payments.MarkRefunded(ctx, payment.ID, refundID, refundAmountPence)
		if err != nil || !applied {
			return err
		}
		if _, err := u.orders.MarkRefunded(ctx, orderID); err != nil {
			return err
		}
		refunded, err = u.tickets.RefundActive(ctx, order.CompetitionID, order.ID)
		if err != nil {
			return err
		}
		counter, err = u.competitions.DecrementSold(ctx, order.CompetitionID, order.Quantity)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		return &SettleResult{AlreadySettled: true}, nil
	}
	if !counter.Applied {
		u.logger.Warn("sold counter clamped at zero during refund",
			slog.Int64("competition_id", order.CompetitionID),
			slog.Int64("order_id", order.ID),
			slog.Int("quantity", order.Quantity),
		)
	}

	u.appendEvent(ctx, model.EventOrderRefunded, order, map[string]any{
		"refund_id":           refundID,
		"refund_amount_pence": refundAmountPence,
		"tickets_refunded":    refunded,
	})

	return &SettleResult{TicketsIssued: refunded}, nil
}

// SettleRefundByPaymentRef resolves the refunded capture to its order
// when the webhook carries only the provider payment id.
func (u *FulfillmentUseCase) SettleRefundByPaymentRef(ctx context.Context, paymentRef, refundID string, refundAmountPence int64) (*SettleResult, error) {
	payment, err := u.payments.GetByProviderPaymentID(ctx, paymentRef)
	if err != nil {
		return nil, err
	}
	return u.SettleRefund(ctx, payment.OrderID, refundID, refundAmountPence)
}

// ReleaseExpired is the reaper entry point: it fails an order whose
// reservation expired without payment. An order settled in the meantime
// is left alone.
func (u *FulfillmentUseCase) ReleaseExpired(ctx context.Context, orderID int64) error {
	_, err := u.SettleFailure(ctx, orderID, FailureReservationExpired)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return nil
	}
	return err
}

// ExpiredReservationOrders lists orders the reaper should release.
func (u *FulfillmentUseCase) ExpiredReservationOrders(ctx context.Context, limit int) ([]int64, error) {
	return u.tickets.ExpiredReservationOrders(ctx, limit)
}

func (u *FulfillmentUseCase) appendEvent(ctx context.Context, eventType model.EventType, order *model.Order, payload map[string]any) {
	event := &model.Event{
		ID:            uuid.New(),
		Type:          eventType,
		EntityKind:    "order",
		EntityID:      order.ID,
		UserID:        order.UserID,
		CompetitionID: &order.CompetitionID,
		Payload:       payload,
	}
	if err := u.events.Append(ctx, event); err != nil {
		u.logger.Error("failed to append event",
			slog.String("type", string(eventType)),
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (u *FulfillmentUseCase) notifyPurchase(ctx context.Context, order *model.Order) {
	if order.Billing.Email == "" {
		return
	}

	title := ""
	if competition, err := u.competitions.GetByID(ctx, order.CompetitionID); err == nil {
		title = competition.Title
	}

	notice := notify.PurchaseNotice{
		Email:            order.Billing.Email,
		OrderRef:         order.PublicRef.String(),
		CompetitionTitle: title,
		TicketNumbers:    order.TicketNumbers,
		AmountPence:      order.AmountPence,
		Currency:         order.Currency,
	}
	if err := u.notifier.PurchaseCompleted(ctx, notice); err != nil {
		u.logger.Warn("purchase notification failed",
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}
}
