package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Orders() OrderRepository
	Tickets() TicketRepository
	Competitions() CompetitionRepository
	Payments() PaymentRepository
	Events() EventRepository
}
