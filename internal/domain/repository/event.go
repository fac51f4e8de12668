package repository

import (
	"context"

	"github.com/ravenlane/compo/internal/domain/model"
)

// EventRepository is the append-only audit trail.
type EventRepository interface {
	Append(ctx context.Context, event *model.Event) error
	ListByEntity(ctx context.Context, entityKind string, entityID int64) ([]model.Event, error)
}
