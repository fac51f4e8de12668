package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/ravenlane/compo/internal/domain/errors"
	"github.com/ravenlane/compo/internal/domain/model"
	"github.com/ravenlane/compo/internal/domain/repository"
)

const competitionColumns = `id, title, description, ticket_price_pence, currency,
        ticket_limit, tickets_sold, max_per_order, status, draw_at, created_at, updated_at`

func scanCompetition(row pgx.Row) (*model.Competition, error) {
	var c model.Competition
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.TicketPricePence, &c.Currency,
		&c.TicketLimit, &c.TicketsSold, &c.MaxPerOrder, &c.Status, &c.DrawAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *competitionRepository) Create(ctx context.Context, competition *model.Competition) (*model.Competition, error) {
	const query = `INSERT INTO competitions (title, description, ticket_price_pence, currency,
                       ticket_limit, max_per_order, status, draw_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
                   RETURNING id, tickets_sold, created_at, updated_at`
	status := competition.Status
	if status == "" {
		status = model.CompetitionStatusLive
	}
	err := r.storage.db(ctx).QueryRow(ctx, query,
		competition.Title, competition.Description, competition.TicketPricePence, competition.Currency,
		competition.TicketLimit, competition.MaxPerOrder, status, competition.DrawAt,
	).Scan(&competition.ID, &competition.TicketsSold, &competition.CreatedAt, &competition.UpdatedAt)
	if err != nil {
		return nil, err
	}
	competition.Status = status
	return competition, nil
}

func (r *competitionRepository) GetByID(ctx context.Context, id int64) (*model.Competition, error) {
	const query = `SELECT ` + competitionColumns + ` FROM competitions WHERE id=$1`
	return scanCompetition(r.storage.db(ctx).QueryRow(ctx, query, id))
}

func (r *competitionRepository) ListLive(ctx context.Context) ([]model.Competition, error) {
	const query = `SELECT ` + competitionColumns + ` FROM competitions
                   WHERE status=$1 ORDER BY created_at DESC`
	rows, err := r.storage.db(ctx).Query(ctx, query, model.CompetitionStatusLive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Competition
	for rows.Next() {
		c, err := scanCompetition(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// IncrementSold is a single increment-and-compare statement: the sold-out
// close is decided from the post-increment value inside the same update,
// so no window exists where the counter hit the limit while the
// competition still reads live.
func (r *competitionRepository) IncrementSold(ctx context.Context, id int64, quantity int) (*repository.CounterUpdate, error) {
	const query = `UPDATE competitions
                   SET tickets_sold = tickets_sold + $2,
                       status = CASE WHEN ticket_limit IS NOT NULL AND tickets_sold + $2 >= ticket_limit
                                     THEN $3::text ELSE status END,
                       updated_at = NOW()
                   WHERE id=$1
                   RETURNING tickets_sold, status`
	update := &repository.CounterUpdate{Applied: true}
	err := r.storage.db(ctx).QueryRow(ctx, query, id, quantity, model.CompetitionStatusClosed).
		Scan(&update.TicketsSold, &update.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return update, nil
}

// IncrementSoldCapped refuses the increment when it would push the
// counter past a finite limit; the caller decides what to do with the
// over-capacity order.
func (r *competitionRepository) IncrementSoldCapped(ctx context.Context, id int64, quantity int) (*repository.CounterUpdate, error) {
	const query = `UPDATE competitions
                   SET tickets_sold = tickets_sold + $2,
                       status = CASE WHEN ticket_limit IS NOT NULL AND tickets_sold + $2 >= ticket_limit
                                     THEN $3::text ELSE status END,
                       updated_at = NOW()
                   WHERE id=$1 AND (ticket_limit IS NULL OR tickets_sold + $2 <= ticket_limit)
                   RETURNING tickets_sold, status`
	update := &repository.CounterUpdate{Applied: true}
	err := r.storage.db(ctx).QueryRow(ctx, query, id, quantity, model.CompetitionStatusClosed).
		Scan(&update.TicketsSold, &update.Status)
	if err == nil {
		return update, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// Increment refused or competition missing; read the row to tell apart.
	const current = `SELECT tickets_sold, status FROM competitions WHERE id=$1`
	update.Applied = false
	err = r.storage.db(ctx).QueryRow(ctx, current, id).Scan(&update.TicketsSold, &update.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return update, nil
}

// DecrementSold clamps at zero; the previous value is captured in the
// same statement so clamping is reported without a read-then-write race.
func (r *competitionRepository) DecrementSold(ctx context.Context, id int64, quantity int) (*repository.CounterUpdate, error) {
	const query = `WITH prev AS (SELECT tickets_sold FROM competitions WHERE id=$1)
                   UPDATE competitions c
                   SET tickets_sold = GREATEST(c.tickets_sold - $2, 0), updated_at = NOW()
                   FROM prev
                   WHERE c.id=$1
                   RETURNING c.tickets_sold, c.status, prev.tickets_sold`
	update := &repository.CounterUpdate{Applied: true}
	var before int
	err := r.storage.db(ctx).QueryRow(ctx, query, id, quantity).
		Scan(&update.TicketsSold, &update.Status, &before)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	if before < quantity {
		update.Applied = false
	}
	return update, nil
}
