package notify

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/ravenlane/compo/internal/config"
)

// Module exposes the notifier implementation to the fx graph.
var Module = fx.Provide(newNotifier)

type notifierParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newNotifier(p notifierParams) (Notifier, error) {
	if p.Config.MailerAddress == "" {
		return NewNoopNotifier(p.Logger), nil
	}
	return NewHTTPNotifier(p.Config.MailerAddress, p.Logger)
}
