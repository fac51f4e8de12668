package dto

import "time"

// OrderResponse is the public view of an order.
type OrderResponse struct {
	Ref           string    `json:"ref"`
	CompetitionID int64     `json:"competition_id"`
	Quantity      int       `json:"quantity"`
	TicketNumbers []int     `json:"ticket_numbers,omitempty"`
	AmountPence   int64     `json:"amount_pence"`
	Currency      string    `json:"currency"`
	Provider      string    `json:"provider"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
}

// TicketResponse is one ticket held by a user.
type TicketResponse struct {
	CompetitionID int64     `json:"competition_id"`
	Number        int       `json:"number"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
