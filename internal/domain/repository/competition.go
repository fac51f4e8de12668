package repository

import (
	"context"

	"github.com/ravenlane/compo/internal/domain/model"
)

// CounterUpdate is the outcome of an atomic sold-counter mutation.
// TicketsSold and Status reflect the post-update row.
type CounterUpdate struct {
	Applied     bool
	TicketsSold int
	Status      model.CompetitionStatus
}

// CompetitionRepository describes persistence operations with competitions.
type CompetitionRepository interface {
	Create(ctx context.Context, competition *model.Competition) (*model.Competition, error)
	GetByID(ctx context.Context, id int64) (*model.Competition, error)
	ListLive(ctx context.Context) ([]model.Competition, error)

	// IncrementSold adds quantity to the sold counter in one statement,
	// closing the competition in the same update when a finite limit is
	// reached or exceeded.
	IncrementSold(ctx context.Context, id int64, quantity int) (*CounterUpdate, error)
	// IncrementSoldCapped is the reject-policy variant: the increment is
	// applied only if it would not push the counter past the limit.
	IncrementSoldCapped(ctx context.Context, id int64, quantity int) (*CounterUpdate, error)
	// DecrementSold subtracts quantity, clamping at zero. Reports whether
	// clamping occurred.
	DecrementSold(ctx context.Context, id int64, quantity int) (*CounterUpdate, error)
}
