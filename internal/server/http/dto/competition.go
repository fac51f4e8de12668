package dto

import "time"

// CompetitionResponse is the public view of a competition.
type CompetitionResponse struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	TicketPricePence int64      `json:"ticket_price_pence"`
	Currency         string     `json:"currency"`
	TicketLimit      *int       `json:"ticket_limit,omitempty"`
	TicketsSold      int        `json:"tickets_sold"`
	MaxPerOrder      int        `json:"max_per_order"`
	Status           string     `json:"status"`
	DrawAt           *time.Time `json:"draw_at,omitempty"`
}

// CreateCompetitionRequest describes the admin payload for a new
// competition.
type CreateCompetitionRequest struct {
	Title            string     `json:"title" binding:"required"`
	Description      string     `json:"description"`
	TicketPricePence int64      `json:"ticket_price_pence" binding:"required"`
	Currency         string     `json:"currency" binding:"required"`
	TicketLimit      *int       `json:"ticket_limit"`
	MaxPerOrder      int        `json:"max_per_order"`
	DrawAt           *time.Time `json:"draw_at"`
}
