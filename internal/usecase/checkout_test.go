package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ravenlane/compo/internal/adapter/payments"
	domainErrors "github.com/ravenlane/compo/internal/domain/errors"
	"github.com/ravenlane/compo/internal/domain/model"
	"github.com/ravenlane/compo/internal/test"
	"github.com/ravenlane/compo/internal/usecase"
)

func liveCompetition() *model.Competition {
	limit := 100
	return &model.Competition{
		ID:               3,
		Title:            "Win a thing",
		TicketPricePence: 250,
		Currency:         "GBP",
		TicketLimit:      &limit,
		MaxPerOrder:      10,
		Status:           model.CompetitionStatusLive,
	}
}

type checkoutFixture struct {
	orders       *test.OrderRepositoryStub
	tickets      *test.TicketRepositoryStub
	competitions *test.CompetitionRepositoryStub
	payments     *test.PaymentRepositoryStub
	gateway      *test.GatewayStub
}

func newCheckout(fix *checkoutFixture) *usecase.CheckoutUseCase {
	return usecase.NewCheckoutUseCase(
		fix.orders, fix.tickets, fix.competitions, fix.payments,
		payments.NewRegistry(*fix.gateway),
		15*time.Minute, "https://shop.example/return", "https://shop.example/cancel",
		discardLogger(),
	)
}

func checkoutFixtureWith(competition *model.Competition) *checkoutFixture {
	return &checkoutFixture{
		orders:  &test.OrderRepositoryStub{},
		tickets: &test.TicketRepositoryStub{},
		competitions: &test.CompetitionRepositoryStub{
			GetByIDFn: func(_ context.Context, id int64) (*model.Competition, error) {
				if id != competition.ID {
					return nil, domainErrors.ErrNotFound
				}
				return competition, nil
			},
		},
		payments: &test.PaymentRepositoryStub{},
		gateway:  &test.GatewayStub{NameVal: "paypal"},
	}
}

func validInput() usecase.CheckoutInput {
	return usecase.CheckoutInput{
		CompetitionID: 3,
		Quantity:      2,
		Provider:      "paypal",
		Billing:       model.BillingDetails{Name: "Sam", Email: "sam@example.com"},
	}
}

func TestCheckoutHappyPath(t *testing.T) {
	competition := liveCompetition()
	fix := checkoutFixtureWith(competition)

	var createdOrder *model.Order
	var usedTTL time.Duration
	fix.orders.CreateWithTicketsFn = func(_ context.Context, order *model.Order, ttl time.Duration) (*model.Order, error) {
		order.ID = 21
		order.TicketNumbers = []int{1, 2}
		order.Status = model.OrderStatusPending
		order.PaymentStatus = model.PaymentStatusPending
		createdOrder = order
		usedTTL = ttl
		return order, nil
	}
	var paymentRow *model.Payment
	fix.payments.CreateFn = func(_ context.Context, payment *model.Payment) (*model.Payment, error) {
		paymentRow = payment
		return payment, nil
	}

	uc := newCheckout(fix)
	result, err := uc.Checkout(context.Background(), validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ApproveURL == "" {
		t.Fatal("expected approve URL from gateway intent")
	}
	if createdOrder == nil {
		t.Fatal("expected order persisted")
	}
	if createdOrder.AmountPence != 500 {
		t.Fatalf("expected amount 2*250=500, got %d", createdOrder.AmountPence)
	}
	if createdOrder.ProviderOrderID == "" {
		t.Fatal("expected provider ref stored on the order")
	}
	if usedTTL != 15*time.Minute {
		t.Fatalf("expected reservation ttl forwarded, got %s", usedTTL)
	}
	if paymentRow == nil || paymentRow.Status != model.PaymentStatePending {
		t.Fatalf("expected pending payment mirror, got %+v", paymentRow)
	}
}

func TestCheckoutValidation(t *testing.T) {
	competition := liveCompetition()
	fix := checkoutFixtureWith(competition)
	uc := newCheckout(fix)

	cases := []struct {
		name    string
		mutate  func(*usecase.CheckoutInput)
		wantErr error
	}{
		{"missing email", func(in *usecase.CheckoutInput) { in.Billing.Email = "  " }, domainErrors.ErrEmailRequired},
		{"zero quantity", func(in *usecase.CheckoutInput) { in.Quantity = 0 }, domainErrors.ErrInvalidQuantity},
		{"over max per order", func(in *usecase.CheckoutInput) { in.Quantity = 11 }, domainErrors.ErrInvalidQuantity},
		{"unknown competition", func(in *usecase.CheckoutInput) { in.CompetitionID = 404 }, domainErrors.ErrNotFound},
		{"unknown provider", func(in *usecase.CheckoutInput) { in.Provider = "stripe" }, payments.ErrUnknownProvider},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			if _, err := uc.Checkout(context.Background(), input); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCheckoutClosedCompetition(t *testing.T) {
	competition := liveCompetition()
	competition.Status = model.CompetitionStatusClosed
	fix := checkoutFixtureWith(competition)
	uc := newCheckout(fix)
	if _, err := uc.Checkout(context.Background(), validInput()); !errors.Is(err, domainErrors.ErrCompetitionClosed) {
		t.Fatalf("expected ErrCompetitionClosed, got %v", err)
	}
}

func TestCheckoutSoldOut(t *testing.T) {
	competition := liveCompetition()
	fix := checkoutFixtureWith(competition)
	fix.orders.CreateWithTicketsFn = func(context.Context, *model.Order, time.Duration) (*model.Order, error) {
		return nil, domainErrors.ErrSoldOut
	}
	uc := newCheckout(fix)
	if _, err := uc.Checkout(context.Background(), validInput()); !errors.Is(err, domainErrors.ErrSoldOut) {
		t.Fatalf("expected ErrSoldOut, got %v", err)
	}
}

func TestCheckoutRetriesNumberRace(t *testing.T) {
	competition := liveCompetition()
	fix := checkoutFixtureWith(competition)
	attempts := 0
	fix.orders.CreateWithTicketsFn = func(_ context.Context, order *model.Order, _ time.Duration) (*model.Order, error) {
		attempts++
		if attempts < 3 {
			return nil, domainErrors.ErrAlreadyExists
		}
		order.ID = 9
		order.TicketNumbers = []int{8, 9}
		return order, nil
	}

	uc := newCheckout(fix)
	result, err := uc.Checkout(context.Background(), validInput())
	if err != nil {
		t.Fatalf("unexpected error after retries: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if result.Order.ID != 9 {
		t.Fatalf("unexpected order: %+v", result.Order)
	}
}

func TestCheckoutGivesUpAfterRepeatedRaces(t *testing.T) {
	competition := liveCompetition()
	fix := checkoutFixtureWith(competition)
	fix.orders.CreateWithTicketsFn = func(context.Context, *model.Order, time.Duration) (*model.Order, error) {
		return nil, domainErrors.ErrAlreadyExists
	}
	uc := newCheckout(fix)
	if _, err := uc.Checkout(context.Background(), validInput()); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists after retries exhausted, got %v", err)
	}
}

func TestCheckoutGatewayFailure(t *testing.T) {
	competition := liveCompetition()
	fix := checkoutFixtureWith(competition)
	gatewayErr := errors.New("provider down")
	fix.gateway.CreateFn = func(context.Context, payments.CreateRequest) (*payments.PaymentIntent, error) {
		return nil, gatewayErr
	}
	fix.orders.CreateWithTicketsFn = func(context.Context, *model.Order, time.Duration) (*model.Order, error) {
		t.Fatal("no order may be created when the provider intent failed")
		return nil, nil
	}
	uc := newCheckout(fix)
	if _, err := uc.Checkout(context.Background(), validInput()); !errors.Is(err, gatewayErr) {
		t.Fatalf("expected gateway error, got %v", err)
	}
}
