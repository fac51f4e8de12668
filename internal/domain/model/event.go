package model

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates fulfillment-relevant domain events.
type EventType string

const (
	EventOrderPaid     EventType = "order-paid"
	EventTicketIssued  EventType = "ticket-issued"
	EventOrderFailed   EventType = "order-failed"
	EventOrderRefunded EventType = "order-refunded"
	EventOrderRejected EventType = "order-rejected-capacity"
)

// Event is an append-only audit record. Created, never mutated.
type Event struct {
	ID            uuid.UUID
	Type          EventType
	EntityKind    string
	EntityID      int64
	UserID        *int64
	CompetitionID *int64
	Payload       map[string]any
	CreatedAt     time.Time
}
