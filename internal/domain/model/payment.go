package model

import "time"

// PaymentState describes the local mirror of a provider-side payment.
type PaymentState string

const (
	PaymentStatePending   PaymentState = "pending"
	PaymentStateSucceeded PaymentState = "succeeded"
	PaymentStateFailed    PaymentState = "failed"
	PaymentStateRefunded  PaymentState = "refunded"
)

// Payment mirrors one provider-side payment/capture for an order.
type Payment struct {
	ID                int64
	OrderID           int64
	UserID            *int64
	Provider          string
	ProviderPaymentID string
	AmountPence       int64
	Currency          string
	Status            PaymentState
	RefundID          string
	RefundAmountPence int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
