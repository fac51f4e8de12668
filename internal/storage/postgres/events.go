package postgres

import (
	"context"
	"encoding/json"

	"github.com/ravenlane/compo/internal/domain/model"
)

func (r *eventRepository) Append(ctx context.Context, event *model.Event) error {
	payload, err := marshalPayload(event.Payload)
	if err != nil {
		return err
	}
	const query = `INSERT INTO events (id, type, entity_kind, entity_id, user_id, competition_id, payload)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.storage.db(ctx).Exec(ctx, query,
		event.ID, event.Type, event.EntityKind, event.EntityID, event.UserID, event.CompetitionID, payload)
	return err
}

func (r *eventRepository) ListByEntity(ctx context.Context, entityKind string, entityID int64) ([]model.Event, error) {
	const query = `SELECT id, type, entity_kind, entity_id, user_id, competition_id, payload, created_at
                   FROM events WHERE entity_kind=$1 AND entity_id=$2 ORDER BY created_at DESC`
	rows, err := r.storage.db(ctx).Query(ctx, query, entityKind, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Event
	for rows.Next() {
		var e model.Event
		var payload []byte
		if err := rows.Scan(&e.ID, &e.Type, &e.EntityKind, &e.EntityID, &e.UserID, &e.CompetitionID, &payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &e.Payload); err != nil {
				return nil, err
			}
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
