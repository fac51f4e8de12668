package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus describes order fulfillment lifecycle.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// PaymentStatus describes payment lifecycle of an order. Transitions:
// pending→paid, pending→failed, paid→refunded. No transition out of
// failed or refunded.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// BillingDetails captures contact details collected at checkout.
// Email is required for the purchase notification.
type BillingDetails struct {
	Name  string
	Email string
	Phone string
}

// Order represents one purchase attempt against a competition. Ticket
// numbers are assigned at creation time and immutable thereafter.
type Order struct {
	ID              int64
	PublicRef       uuid.UUID
	UserID          *int64
	CompetitionID   int64
	Quantity        int
	TicketNumbers   []int
	AmountPence     int64
	Currency        string
	Provider        string
	ProviderOrderID string
	CaptureID       string
	Status          OrderStatus
	PaymentStatus   PaymentStatus
	Billing         BillingDetails
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
