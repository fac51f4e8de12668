package model

import "time"

// TicketStatus describes lifecycle of a numbered ticket.
type TicketStatus string

const (
	TicketStatusReserved TicketStatus = "reserved"
	TicketStatusActive   TicketStatus = "active"
	TicketStatusRefunded TicketStatus = "refunded"
)

// Ticket is one numbered entry within a competition. A number is held by
// at most one non-expired reserved-or-active record per competition.
type Ticket struct {
	ID            int64
	CompetitionID int64
	Number        int
	Status        TicketStatus
	OrderID       int64
	UserID        *int64
	ReservedUntil *time.Time
	CreatedAt     time.Time
}
