package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/ravenlane/compo/internal/adapter/feedcache"
	"github.com/ravenlane/compo/internal/adapter/notify"
	"github.com/ravenlane/compo/internal/adapter/payments"
	"github.com/ravenlane/compo/internal/config"
	"github.com/ravenlane/compo/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewAuthUseCase,
	newCompetitionUseCase,
	newCheckoutUseCase,
	newFulfillmentUseCase,
)

type competitionParams struct {
	fx.In

	Competitions repository.CompetitionRepository
	Cache        *feedcache.Cache
	Logger       *slog.Logger
}

func newCompetitionUseCase(p competitionParams) *CompetitionUseCase {
	return NewCompetitionUseCase(p.Competitions, p.Cache, p.Logger)
}

type checkoutParams struct {
	fx.In

	Orders       repository.OrderRepository
	Tickets      repository.TicketRepository
	Competitions repository.CompetitionRepository
	Payments     repository.PaymentRepository
	Gateways     *payments.Registry
	Config       *config.Config
	Logger       *slog.Logger
}

func newCheckoutUseCase(p checkoutParams) *CheckoutUseCase {
	return NewCheckoutUseCase(
		p.Orders, p.Tickets, p.Competitions, p.Payments, p.Gateways,
		p.Config.ReservationTTL, p.Config.CheckoutReturnURL, p.Config.CheckoutCancelURL,
		p.Logger,
	)
}

type fulfillmentParams struct {
	fx.In

	Orders       repository.OrderRepository
	Tickets      repository.TicketRepository
	Competitions repository.CompetitionRepository
	Payments     repository.PaymentRepository
	Events       repository.EventRepository
	Tx           repository.Transactor
	Notifier     notify.Notifier
	Config       *config.Config
	Logger       *slog.Logger
}

func newFulfillmentUseCase(p fulfillmentParams) *FulfillmentUseCase {
	return NewFulfillmentUseCase(
		p.Orders, p.Tickets, p.Competitions, p.Payments, p.Events, p.Tx,
		p.Notifier, p.Config.CounterPolicy, p.Logger,
	)
}
