package postgres

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/ravenlane/compo/internal/config"
	"github.com/ravenlane/compo/internal/domain/repository"
)

// Module wires PostgreSQL storage and repository adapters.
var Module = fx.Options(
	fx.Provide(newStorage),
	fx.Provide(
		func(s *Storage) repository.UserRepository { return s.Users() },
		func(s *Storage) repository.OrderRepository { return s.Orders() },
		func(s *Storage) repository.TicketRepository { return s.Tickets() },
		func(s *Storage) repository.CompetitionRepository { return s.Competitions() },
		func(s *Storage) repository.PaymentRepository { return s.Payments() },
		func(s *Storage) repository.EventRepository { return s.Events() },
		func(s *Storage) repository.Transactor { return s },
	),
	fx.Invoke(registerLifecycle),
)

type storageParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newStorage(p storageParams) (*Storage, error) {
	return New(p.Ctx, p.Config.DatabaseURI, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, storage *Storage) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			storage.Close()
			return nil
		},
	})
}
