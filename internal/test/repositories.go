package test

import (
	"context"
	"time"

	domainErrors "github.com/ravenlane/compo/internal/domain/errors"
	"github.com/ravenlane/compo/internal/domain/model"
	"github.com/ravenlane/compo/internal/domain/repository"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, email, passwordHash string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.User)
	}
	if _, exists := s.Users[email]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user := &model.User{ID: s.Next, Email: email, PasswordHash: passwordHash}
	s.Next++
	s.Users[email] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByEmail fetches user by email or returns not found.
func (s *UserRepositoryStub) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[email]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// OrderRepositoryStub allows tests to customize order persistence behaviour.
type OrderRepositoryStub struct {
	CreateWithTicketsFn func(context.Context, *model.Order, time.Duration) (*model.Order, error)
	GetByIDFn           func(context.Context, int64) (*model.Order, error)
	GetByPublicRefFn    func(context.Context, string) (*model.Order, error)
	GetByProviderRefFn  func(context.Context, string) (*model.Order, error)
	ListByUserFn        func(context.Context, int64) ([]model.Order, error)
	MarkPaidFn          func(context.Context, int64, string) (bool, error)
	MarkFailedFn        func(context.Context, int64) (bool, error)
	MarkRefundedFn      func(context.Context, int64) (bool, error)
}

func (s *OrderRepositoryStub) CreateWithTickets(ctx context.Context, order *model.Order, ttl time.Duration) (*model.Order, error) {
	if s.CreateWithTicketsFn != nil {
		return s.CreateWithTicketsFn(ctx, order, ttl)
	}
	order.ID = 1
	order.Status = model.OrderStatusPending
	order.PaymentStatus = model.PaymentStatusPending
	if order.TicketNumbers == nil {
		order.TicketNumbers = []int{1}
	}
	return order, nil
}

func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	return &model.Order{ID: id}, nil
}

func (s *OrderRepositoryStub) GetByPublicRef(ctx context.Context, ref string) (*model.Order, error) {
	if s.GetByPublicRefFn != nil {
		return s.GetByPublicRefFn(ctx, ref)
	}
	return nil, domainErrors.ErrNotFound
}

func (s *OrderRepositoryStub) GetByProviderRef(ctx context.Context, providerRef string) (*model.Order, error) {
	if s.GetByProviderRefFn != nil {
		return s.GetByProviderRefFn(ctx, providerRef)
	}
	return nil, domainErrors.ErrNotFound
}

func (s *OrderRepositoryStub) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	if s.ListByUserFn != nil {
		return s.ListByUserFn(ctx, userID)
	}
	return nil, nil
}

func (s *OrderRepositoryStub) MarkPaid(ctx context.Context, orderID int64, captureID string) (bool, error) {
	if s.MarkPaidFn != nil {
		return s.MarkPaidFn(ctx, orderID, captureID)
	}
	return true, nil
}

func (s *OrderRepositoryStub) MarkFailed(ctx context.Context, orderID int64) (bool, error) {
	if s.MarkFailedFn != nil {
		return s.MarkFailedFn(ctx, orderID)
	}
	return true, nil
}

func (s *OrderRepositoryStub) MarkRefunded(ctx context.Context, orderID int64) (bool, error) {
	if s.MarkRefundedFn != nil {
		return s.MarkRefundedFn(ctx, orderID)
	}
	return true, nil
}

// TicketRepositoryStub allows tests to customize ticket pool behaviour.
type TicketRepositoryStub struct {
	ActivateFn                 func(context.Context, int64, int64, *int64, []int) (int, error)
	ReleaseReservedFn          func(context.Context, int64, int64, []int) (int, error)
	RefundActiveFn             func(context.Context, int64, int64) (int, error)
	ExpiredReservationOrdersFn func(context.Context, int) ([]int64, error)
	ListByUserFn               func(context.Context, int64) ([]model.Ticket, error)
	ListByOrderFn              func(context.Context, int64) ([]model.Ticket, error)
}

func (s *TicketRepositoryStub) Activate(ctx context.Context, competitionID, orderID int64, userID *int64, numbers []int) (int, error) {
	if s.ActivateFn != nil {
		return s.ActivateFn(ctx, competitionID, orderID, userID, numbers)
	}
	return len(numbers), nil
}

func (s *TicketRepositoryStub) ReleaseReserved(ctx context.Context, competitionID, orderID int64, numbers []int) (int, error) {
	if s.ReleaseReservedFn != nil {
		return s.ReleaseReservedFn(ctx, competitionID, orderID, numbers)
	}
	return len(numbers), nil
}

func (s *TicketRepositoryStub) RefundActive(ctx context.Context, competitionID, orderID int64) (int, error) {
	if s.RefundActiveFn != nil {
		return s.RefundActiveFn(ctx, competitionID, orderID)
	}
	return 0, nil
}

func (s *TicketRepositoryStub) ExpiredReservationOrders(ctx context.Context, limit int) ([]int64, error) {
	if s.ExpiredReservationOrdersFn != nil {
		return s.ExpiredReservationOrdersFn(ctx, limit)
	}
	return nil, nil
}

func (s *TicketRepositoryStub) ListByUser(ctx context.Context, userID int64) ([]model.Ticket, error) {
	if s.ListByUserFn != nil {
		return s.ListByUserFn(ctx, userID)
	}
	return nil, nil
}

func (s *TicketRepositoryStub) ListByOrder(ctx context.Context, orderID int64) ([]model.Ticket, error) {
	if s.ListByOrderFn != nil {
		return s.ListByOrderFn(ctx, orderID)
	}
	return nil, nil
}

// CompetitionRepositoryStub allows tests to customize competition behaviour.
type CompetitionRepositoryStub struct {
	CreateFn              func(context.Context, *model.Competition) (*model.Competition, error)
	GetByIDFn             func(context.Context, int64) (*model.Competition, error)
	ListLiveFn            func(context.Context) ([]model.Competition, error)
	IncrementSoldFn       func(context.Context, int64, int) (*repository.CounterUpdate, error)
	IncrementSoldCappedFn func(context.Context, int64, int) (*repository.CounterUpdate, error)
	DecrementSoldFn       func(context.Context, int64, int) (*repository.CounterUpdate, error)
}

func (s *CompetitionRepositoryStub) Create(ctx context.Context, competition *model.Competition) (*model.Competition, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, competition)
	}
	competition.ID = 1
	competition.Status = model.CompetitionStatusLive
	return competition, nil
}

func (s *CompetitionRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Competition, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	return &model.Competition{ID: id, Status: model.CompetitionStatusLive, MaxPerOrder: 100}, nil
}

func (s *CompetitionRepositoryStub) ListLive(ctx context.Context) ([]model.Competition, error) {
	if s.ListLiveFn != nil {
		return s.ListLiveFn(ctx)
	}
	return nil, nil
}

func (s *CompetitionRepositoryStub) IncrementSold(ctx context.Context, id int64, quantity int) (*repository.CounterUpdate, error) {
	if s.IncrementSoldFn != nil {
		return s.IncrementSoldFn(ctx, id, quantity)
	}
	return &repository.CounterUpdate{Applied: true, TicketsSold: quantity, Status: model.CompetitionStatusLive}, nil
}

func (s *CompetitionRepositoryStub) IncrementSoldCapped(ctx context.Context, id int64, quantity int) (*repository.CounterUpdate, error) {
	if s.IncrementSoldCappedFn != nil {
		return s.IncrementSoldCappedFn(ctx, id, quantity)
	}
	return &repository.CounterUpdate{Applied: true, TicketsSold: quantity, Status: model.CompetitionStatusLive}, nil
}

func (s *CompetitionRepositoryStub) DecrementSold(ctx context.Context, id int64, quantity int) (*repository.CounterUpdate, error) {
	if s.DecrementSoldFn != nil {
		return s.DecrementSoldFn(ctx, id, quantity)
	}
	return &repository.CounterUpdate{Applied: true, Status: model.CompetitionStatusLive}, nil
}

// PaymentRepositoryStub allows tests to customize payment mirror behaviour.
type PaymentRepositoryStub struct {
	CreateFn                 func(context.Context, *model.Payment) (*model.Payment, error)
	GetByOrderFn             func(context.Context, int64) (*model.Payment, error)
	GetByProviderPaymentIDFn func(context.Context, string) (*model.Payment, error)
	MarkSucceededFn          func(context.Context, int64, string) error
	MarkFailedFn             func(context.Context, int64) error
	MarkRefundedFn           func(context.Context, int64, string, int64) (bool, error)
}

func (s *PaymentRepositoryStub) Create(ctx context.Context, payment *model.Payment) (*model.Payment, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, payment)
	}
	payment.ID = 1
	return payment, nil
}

func (s *PaymentRepositoryStub) GetByOrder(ctx context.Context, orderID int64) (*model.Payment, error) {
	if s.GetByOrderFn != nil {
		return s.GetByOrderFn(ctx, orderID)
	}
	return &model.Payment{ID: 1, OrderID: orderID, Status: model.PaymentStateSucceeded}, nil
}

func (s *PaymentRepositoryStub) GetByProviderPaymentID(ctx context.Context, providerPaymentID string) (*model.Payment, error) {
	if s.GetByProviderPaymentIDFn != nil {
		return s.GetByProviderPaymentIDFn(ctx, providerPaymentID)
	}
	return nil, domainErrors.ErrNotFound
}

func (s *PaymentRepositoryStub) MarkSucceeded(ctx context.Context, orderID int64, providerPaymentID string) error {
	if s.MarkSucceededFn != nil {
		return s.MarkSucceededFn(ctx, orderID, providerPaymentID)
	}
	return nil
}

func (s *PaymentRepositoryStub) MarkFailed(ctx context.Context, orderID int64) error {
	if s.MarkFailedFn != nil {
		return s.MarkFailedFn(ctx, orderID)
	}
	return nil
}

func (s *PaymentRepositoryStub) MarkRefunded(ctx context.Context, paymentID int64, refundID string, refundAmountPence int64) (bool, error) {
	if s.MarkRefundedFn != nil {
		return s.MarkRefundedFn(ctx, paymentID, refundID, refundAmountPence)
	}
	return true, nil
}

// TransactorStub runs the function inline. RunFn can wrap the call to
// observe whether it would have committed or to undo stub state on a
// simulated rollback.
type TransactorStub struct {
	RunFn func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (s *TransactorStub) Transactional(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.RunFn != nil {
		return s.RunFn(ctx, fn)
	}
	return fn(ctx)
}

// EventRepositoryStub records appended events for assertions.
type EventRepositoryStub struct {
	AppendFn func(context.Context, *model.Event) error
	Events   []model.Event
	Err      error
}

func (s *EventRepositoryStub) Append(ctx context.Context, event *model.Event) error {
	if s.AppendFn != nil {
		return s.AppendFn(ctx, event)
	}
	if s.Err != nil {
		return s.Err
	}
	s.Events = append(s.Events, *event)
	return nil
}

func (s *EventRepositoryStub) ListByEntity(ctx context.Context, entityKind string, entityID int64) ([]model.Event, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var matched []model.Event
	for _, e := range s.Events {
		if e.EntityKind == entityKind && e.EntityID == entityID {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

var (
	_ repository.UserRepository        = (*UserRepositoryStub)(nil)
	_ repository.OrderRepository       = (*OrderRepositoryStub)(nil)
	_ repository.TicketRepository      = (*TicketRepositoryStub)(nil)
	_ repository.CompetitionRepository = (*CompetitionRepositoryStub)(nil)
	_ repository.PaymentRepository     = (*PaymentRepositoryStub)(nil)
	_ repository.EventRepository       = (*EventRepositoryStub)(nil)
	_ repository.Transactor            = (*TransactorStub)(nil)
)
