package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/ravenlane/compo/internal/domain/errors"
	"github.com/ravenlane/compo/internal/domain/model"
)

// reserveTicketsTx allocates quantity free numbers for the order inside
// the caller's transaction. For limited competitions numbers come from
// the 1..limit pool so released numbers get reused; unlimited
// competitions extend from the current maximum. Expired reservations are
// swept first to free their numbers. A concurrent reservation racing for
// the same numbers trips the (competition_id, number) unique constraint;
// callers retry.
func reserveTicketsTx(ctx context.Context, tx pgx.Tx, competitionID, orderID int64, userID *int64, quantity int, reservedUntil time.Time) ([]int, error) {
	const sweepExpired = `DELETE FROM tickets
                          WHERE competition_id=$1 AND status=$2 AND reserved_until < NOW()`

	const insertLimited = `INSERT INTO tickets (competition_id, number, status, order_id, user_id, reserved_until)
                           SELECT $1, g.n, $2, $3, $4, $5
                           FROM generate_series(1, (SELECT ticket_limit FROM competitions WHERE id=$1)) AS g(n)
                           WHERE NOT EXISTS (
                               SELECT 1 FROM tickets t WHERE t.competition_id=$1 AND t.number=g.n)
                           ORDER BY g.n
                           LIMIT $6
                           RETURNING number`

	const insertUnlimited = `INSERT INTO tickets (competition_id, number, status, order_id, user_id, reserved_until)
                             SELECT $1, COALESCE((SELECT MAX(number) FROM tickets WHERE competition_id=$1), 0) + g.n, $2, $3, $4, $5
                             FROM generate_series(1, $6) AS g(n)
                             RETURNING number`

	if _, err := tx.Exec(ctx, sweepExpired, competitionID, model.TicketStatusReserved); err != nil {
		return nil, err
	}

	var limit *int
	if err := tx.QueryRow(ctx, `SELECT ticket_limit FROM competitions WHERE id=$1`, competitionID).Scan(&limit); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}

	query := insertUnlimited
	if limit != nil {
		query = insertLimited
	}

	rows, err := tx.Query(ctx, query, competitionID, model.TicketStatusReserved, orderID, userID, reservedUntil, quantity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var numbers []int
	for rows.Next() {
		var n int32
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers = append(numbers, int(n))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(numbers) < quantity {
		return nil, domainErrors.ErrSoldOut
	}
	return numbers, nil
}

func (r *ticketRepository) Activate(ctx context.Context, competitionID, orderID int64, userID *int64, numbers []int) (int, error) {
	// Scoped to the settling order: a number whose expired reservation was
	// reassigned to a different order no longer matches order_id and stays
	// untouched.
	const query = `UPDATE tickets
                   SET status=$1, user_id=$2, reserved_until=NULL
                   WHERE competition_id=$3 AND order_id=$4 AND status=$5 AND number = ANY($6)`
	tag, err := r.storage.db(ctx).Exec(ctx, query,
		model.TicketStatusActive, userID, competitionID, orderID, model.TicketStatusReserved, toInt32Slice(numbers))
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *ticketRepository) ReleaseReserved(ctx context.Context, competitionID, orderID int64, numbers []int) (int, error) {
	const query = `DELETE FROM tickets
                   WHERE competition_id=$1 AND order_id=$2 AND status=$3 AND number = ANY($4)`
	tag, err := r.storage.db(ctx).Exec(ctx, query,
		competitionID, orderID, model.TicketStatusReserved, toInt32Slice(numbers))
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *ticketRepository) RefundActive(ctx context.Context, competitionID, orderID int64) (int, error) {
	const query = `UPDATE tickets
                   SET status=$1
                   WHERE competition_id=$2 AND order_id=$3 AND status=$4`
	tag, err := r.storage.db(ctx).Exec(ctx, query,
		model.TicketStatusRefunded, competitionID, orderID, model.TicketStatusActive)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *ticketRepository) ExpiredReservationOrders(ctx context.Context, limit int) ([]int64, error) {
	const query = `SELECT DISTINCT order_id FROM tickets
                   WHERE status=$1 AND reserved_until < NOW()
                   LIMIT $2`
	rows, err := r.storage.db(ctx).Query(ctx, query, model.TicketStatusReserved, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

const ticketColumns = `id, competition_id, number, status, order_id, user_id, reserved_until, created_at`

func scanTickets(rows pgx.Rows) ([]model.Ticket, error) {
	defer rows.Close()
	var result []model.Ticket
	for rows.Next() {
		var t model.Ticket
		if err := rows.Scan(&t.ID, &t.CompetitionID, &t.Number, &t.Status, &t.OrderID, &t.UserID, &t.ReservedUntil, &t.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *ticketRepository) ListByUser(ctx context.Context, userID int64) ([]model.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets
                   WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.db(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return scanTickets(rows)
}

func (r *ticketRepository) ListByOrder(ctx context.Context, orderID int64) ([]model.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets
                   WHERE order_id=$1 ORDER BY number`
	rows, err := r.storage.db(ctx).Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	return scanTickets(rows)
}
