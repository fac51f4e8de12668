package test

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/ravenlane/compo/internal/domain/model"
	"github.com/ravenlane/compo/internal/usecase"
)

// CatalogFacadeStub serves predefined competitions.
type CatalogFacadeStub struct {
	HomeFeedFn    func(context.Context) ([]model.Competition, error)
	CompetitionFn func(context.Context, int64) (*model.Competition, error)
}

func (s CatalogFacadeStub) HomeFeed(ctx context.Context) ([]model.Competition, error) {
	if s.HomeFeedFn != nil {
		return s.HomeFeedFn(ctx)
	}
	return []model.Competition{{ID: 1, Title: "Win a thing", Status: model.CompetitionStatusLive}}, nil
}

func (s CatalogFacadeStub) Competition(ctx context.Context, id int64) (*model.Competition, error) {
	if s.CompetitionFn != nil {
		return s.CompetitionFn(ctx, id)
	}
	return &model.Competition{ID: id, Status: model.CompetitionStatusLive}, nil
}

// CheckoutFacadeStub provides controllable checkout behaviour.
type CheckoutFacadeStub struct {
	CheckoutFn func(context.Context, usecase.CheckoutInput) (*usecase.CheckoutResult, error)
	OrderFn    func(context.Context, string) (*model.Order, error)
	ConfirmFn  func(context.Context, string) (*model.Order, *usecase.SettleResult, error)
}

func (s CheckoutFacadeStub) Checkout(ctx context.Context, input usecase.CheckoutInput) (*usecase.CheckoutResult, error) {
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, input)
	}
	return &usecase.CheckoutResult{
		Order: &model.Order{ID: 1, PublicRef: uuid.New(), Status: model.OrderStatusPending},
	}, nil
}

func (s CheckoutFacadeStub) Order(ctx context.Context, publicRef string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, publicRef)
	}
	ref, _ := uuid.Parse(publicRef)
	return &model.Order{ID: 1, PublicRef: ref}, nil
}

func (s CheckoutFacadeStub) ConfirmPayment(ctx context.Context, publicRef string) (*model.Order, *usecase.SettleResult, error) {
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, publicRef)
	}
	ref, _ := uuid.Parse(publicRef)
	return &model.Order{ID: 1, PublicRef: ref, Status: model.OrderStatusCompleted}, &usecase.SettleResult{TicketsIssued: 1}, nil
}

// WebhookFacadeStub records webhook deliveries.
type WebhookFacadeStub struct {
	HandleFn func(context.Context, string, http.Header, []byte) error
}

func (s WebhookFacadeStub) HandleWebhook(ctx context.Context, provider string, header http.Header, body []byte) error {
	if s.HandleFn != nil {
		return s.HandleFn(ctx, provider, header, body)
	}
	return nil
}

// AccountFacadeStub serves user purchases.
type AccountFacadeStub struct {
	OrdersFn  func(context.Context, int64) ([]model.Order, error)
	TicketsFn func(context.Context, int64) ([]model.Ticket, error)
}

func (s AccountFacadeStub) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, userID)
	}
	return []model.Order{{ID: 1, PublicRef: uuid.New()}}, nil
}

func (s AccountFacadeStub) Tickets(ctx context.Context, userID int64) ([]model.Ticket, error) {
	if s.TicketsFn != nil {
		return s.TicketsFn(ctx, userID)
	}
	return []model.Ticket{{CompetitionID: 1, Number: 7, Status: model.TicketStatusActive}}, nil
}

// AdminFacadeStub covers admin endpoints.
type AdminFacadeStub struct {
	CreateCompetitionFn func(context.Context, *model.Competition) (*model.Competition, error)
	BustHomeFeedFn      func(context.Context) error
}

func (s AdminFacadeStub) CreateCompetition(ctx context.Context, competition *model.Competition) (*model.Competition, error) {
	if s.CreateCompetitionFn != nil {
		return s.CreateCompetitionFn(ctx, competition)
	}
	competition.ID = 1
	competition.Status = model.CompetitionStatusLive
	return competition, nil
}

func (s AdminFacadeStub) BustHomeFeed(ctx context.Context) error {
	if s.BustHomeFeedFn != nil {
		return s.BustHomeFeedFn(ctx)
	}
	return nil
}

// ReservationFacadeStub drives the reaper in tests.
type ReservationFacadeStub struct {
	ExpiredFn func(context.Context, int) ([]int64, error)
	ReleaseFn func(context.Context, int64) error
}

func (s *ReservationFacadeStub) ExpiredReservationOrders(ctx context.Context, limit int) ([]int64, error) {
	if s.ExpiredFn != nil {
		return s.ExpiredFn(ctx, limit)
	}
	return nil, nil
}

func (s *ReservationFacadeStub) ReleaseExpired(ctx context.Context, orderID int64) error {
	if s.ReleaseFn != nil {
		return s.ReleaseFn(ctx, orderID)
	}
	return nil
}

// CompoFacadeStub aggregates facade dependencies for HTTP layer tests.
type CompoFacadeStub struct {
	AuthFacadeStub
	CatalogFacadeStub
	CheckoutFacadeStub
	WebhookFacadeStub
	AccountFacadeStub
	AdminFacadeStub
}
