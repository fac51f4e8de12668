package handlers

import (
	"context"
	"net/http"

	"github.com/ravenlane/compo/internal/domain/model"
	"github.com/ravenlane/compo/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, email, password string) (string, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	ParseToken(token string) (int64, error)
}

// CatalogFacade serves the public competition catalogue.
type CatalogFacade interface {
	HomeFeed(ctx context.Context) ([]model.Competition, error)
	Competition(ctx context.Context, id int64) (*model.Competition, error)
}

// CheckoutFacade covers purchase creation and confirmation.
type CheckoutFacade interface {
	Checkout(ctx context.Context, input usecase.CheckoutInput) (*usecase.CheckoutResult, error)
	Order(ctx context.Context, publicRef string) (*model.Order, error)
	ConfirmPayment(ctx context.Context, publicRef string) (*model.Order, *usecase.SettleResult, error)
}

// WebhookFacade settles provider webhook deliveries.
type WebhookFacade interface {
	HandleWebhook(ctx context.Context, provider string, header http.Header, body []byte) error
}

// AccountFacade lists a user's purchases.
type AccountFacade interface {
	Orders(ctx context.Context, userID int64) ([]model.Order, error)
	Tickets(ctx context.Context, userID int64) ([]model.Ticket, error)
}

// AdminFacade covers the token-guarded admin surface.
type AdminFacade interface {
	CreateCompetition(ctx context.Context, competition *model.Competition) (*model.Competition, error)
	BustHomeFeed(ctx context.Context) error
}

// CompoFacade aggregates the full set of operations used across handlers.
type CompoFacade interface {
	AuthFacade
	CatalogFacade
	CheckoutFacade
	WebhookFacade
	AccountFacade
	AdminFacade
}
