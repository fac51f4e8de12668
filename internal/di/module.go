package di

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/ravenlane/compo/internal/adapter/feedcache"
	"github.com/ravenlane/compo/internal/adapter/notify"
	"github.com/ravenlane/compo/internal/adapter/payments"
	"github.com/ravenlane/compo/internal/adapter/payments/paypal"
	"github.com/ravenlane/compo/internal/adapter/payments/square"
	"github.com/ravenlane/compo/internal/app"
	"github.com/ravenlane/compo/internal/config"
	"github.com/ravenlane/compo/internal/logger"
	"github.com/ravenlane/compo/internal/pkg/auth"
	"github.com/ravenlane/compo/internal/server/http/router"
	"github.com/ravenlane/compo/internal/storage/postgres"
	"github.com/ravenlane/compo/internal/usecase"
)

// Module assembles the full application graph; opts let tests swap
// individual pieces.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		feedcache.Module,
		notify.Module,
		fx.Provide(newPaymentsRegistry),
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

type registryParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// newPaymentsRegistry registers every provider that has credentials
// configured. An empty registry is valid; checkout then rejects all
// providers.
func newPaymentsRegistry(p registryParams) (*payments.Registry, error) {
	var gateways []payments.Gateway

	if p.Config.PayPal.ClientID != "" {
		client, err := paypal.New(
			p.Config.PayPal.BaseURL,
			p.Config.PayPal.ClientID,
			p.Config.PayPal.ClientSecret,
			p.Config.PayPal.WebhookID,
			p.Logger,
		)
		if err != nil {
			return nil, err
		}
		gateways = append(gateways, client)
	}

	if p.Config.Square.AccessToken != "" {
		client, err := square.New(
			p.Config.Square.BaseURL,
			p.Config.Square.AccessToken,
			p.Config.Square.LocationID,
			p.Config.Square.WebhookSignatureKey,
			p.Config.Square.WebhookURL,
			p.Logger,
		)
		if err != nil {
			return nil, err
		}
		gateways = append(gateways, client)
	}

	return payments.NewRegistry(gateways...), nil
}
