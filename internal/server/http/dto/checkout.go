package dto

// BillingDetails identifies the buyer on an order.
type BillingDetails struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"required"`
	Phone string `json:"phone"`
}

// CheckoutRequest describes a purchase attempt.
type CheckoutRequest struct {
	CompetitionID int64          `json:"competition_id" binding:"required"`
	Quantity      int            `json:"quantity" binding:"required"`
	Provider      string         `json:"provider" binding:"required"`
	CardToken     string         `json:"card_token"`
	Billing       BillingDetails `json:"billing" binding:"required"`
}

// CheckoutResponse returns the created pending order reference and, for
// redirect providers, the approval URL.
type CheckoutResponse struct {
	OrderRef   string `json:"order_ref"`
	ApproveURL string `json:"approve_url,omitempty"`
	Status     string `json:"status"`
}

// ConfirmResponse reports the settlement outcome of a confirmation.
// AlreadySettled marks the fast-path reply for an order that was
// settled before this call, so clients can skip the purchase
// transition they already showed.
type ConfirmResponse struct {
	OrderRef          string `json:"order_ref"`
	Status            string `json:"status"`
	AlreadySettled    bool   `json:"already_settled"`
	TicketNumbers     []int  `json:"ticket_numbers,omitempty"`
	CompetitionClosed bool   `json:"competition_closed,omitempty"`
}
