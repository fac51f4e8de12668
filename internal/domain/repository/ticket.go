package repository

import (
	"context"

	"github.com/ravenlane/compo/internal/domain/model"
)

// TicketRepository manages the per-competition ticket number pool.
// Reservation happens through OrderRepository.CreateWithTickets.
type TicketRepository interface {
	// Activate flips the order's still-reserved numbers to active,
	// attaches owner and clears the expiry. Returns how many rows
	// transitioned; numbers no longer reserved are left untouched.
	Activate(ctx context.Context, competitionID, orderID int64, userID *int64, numbers []int) (int, error)
	// ReleaseReserved deletes the order's still-reserved numbers,
	// returning them to the pool. Absent rows are a no-op.
	ReleaseReserved(ctx context.Context, competitionID, orderID int64, numbers []int) (int, error)
	// RefundActive flips the order's active tickets to refunded.
	RefundActive(ctx context.Context, competitionID, orderID int64) (int, error)
	// ExpiredReservationOrders lists orders that still hold reserved
	// tickets past their expiry, for the reaper.
	ExpiredReservationOrders(ctx context.Context, limit int) ([]int64, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Ticket, error)
	ListByOrder(ctx context.Context, orderID int64) ([]model.Ticket, error)
}
