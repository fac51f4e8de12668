package model

import "time"

// CompetitionStatus describes competition lifecycle.
type CompetitionStatus string

const (
	CompetitionStatusLive      CompetitionStatus = "live"
	CompetitionStatusClosed    CompetitionStatus = "closed"
	CompetitionStatusCompleted CompetitionStatus = "completed"
)

// Competition is the prize draw tickets belong to. TicketLimit nil means
// unlimited entries. TicketsSold never exceeds TicketLimit except under
// the admit-then-close counter policy, which permits a one-order overshoot.
type Competition struct {
	ID               int64
	Title            string
	Description      string
	TicketPricePence int64
	Currency         string
	TicketLimit      *int
	TicketsSold      int
	MaxPerOrder      int
	Status           CompetitionStatus
	DrawAt           *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
