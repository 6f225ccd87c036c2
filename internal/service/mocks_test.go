package service

import (
	"context"
	"time"

	"github.com/seatsurge/ticketd/internal/domain"
	"github.com/seatsurge/ticketd/internal/repository"
)

// MockBookingRepository is a mock implementation of repository.BookingRepository
type MockBookingRepository struct {
	CreateFunc                    func(ctx context.Context, booking *domain.Booking) error
	GetByIDFunc                   func(ctx context.Context, id string) (*domain.Booking, error)
	ListByUserFunc                func(ctx context.Context, userID string, limit, offset int) ([]*domain.Booking, error)
	ListActiveHoldsFunc           func(ctx context.Context, eventID string, now time.Time) ([]*domain.Booking, error)
	ListExpiredHoldsFunc          func(ctx context.Context, now time.Time, limit int) ([]*domain.Booking, error)
	ListConfirmedMissingSeatsFunc func(ctx context.Context, limit int) ([]*domain.Booking, error)
	ConfirmFunc                   func(ctx context.Context, id, paymentRef string, now time.Time) error
	CancelFunc                    func(ctx context.Context, id string, expected domain.BookingStatus, now time.Time) error
	MarkExpiredFunc               func(ctx context.Context, id string, now time.Time) error
	RefundFunc                    func(ctx context.Context, id string, now time.Time) error
	UpdateCustomerInfoFunc        func(ctx context.Context, id, name, email, phone string) error
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, booking)
	}
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrBookingNotFound
}

func (m *MockBookingRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Booking, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, limit, offset)
	}
	return []*domain.Booking{}, nil
}

func (m *MockBookingRepository) ListActiveHolds(ctx context.Context, eventID string, now time.Time) ([]*domain.Booking, error) {
	if m.ListActiveHoldsFunc != nil {
		return m.ListActiveHoldsFunc(ctx, eventID, now)
	}
	return []*domain.Booking{}, nil
}

func (m *MockBookingRepository) ListExpiredHolds(ctx context.Context, now time.Time, limit int) ([]*domain.Booking, error) {
	if m.ListExpiredHoldsFunc != nil {
		return m.ListExpiredHoldsFunc(ctx, now, limit)
	}
	return []*domain.Booking{}, nil
}

func (m *MockBookingRepository) ListConfirmedMissingSeats(ctx context.Context, limit int) ([]*domain.Booking, error) {
	if m.ListConfirmedMissingSeatsFunc != nil {
		return m.ListConfirmedMissingSeatsFunc(ctx, limit)
	}
	return []*domain.Booking{}, nil
}

func (m *MockBookingRepository) Confirm(ctx context.Context, id, paymentRef string, now time.Time) error {
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(ctx, id, paymentRef, now)
	}
	return nil
}

func (m *MockBookingRepository) Cancel(ctx context.Context, id string, expected domain.BookingStatus, now time.Time) error {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, id, expected, now)
	}
	return nil
}

func (m *MockBookingRepository) MarkExpired(ctx context.Context, id string, now time.Time) error {
	if m.MarkExpiredFunc != nil {
		return m.MarkExpiredFunc(ctx, id, now)
	}
	return nil
}

func (m *MockBookingRepository) Refund(ctx context.Context, id string, now time.Time) error {
	if m.RefundFunc != nil {
		return m.RefundFunc(ctx, id, now)
	}
	return nil
}

func (m *MockBookingRepository) UpdateCustomerInfo(ctx context.Context, id, name, email, phone string) error {
	if m.UpdateCustomerInfoFunc != nil {
		return m.UpdateCustomerInfoFunc(ctx, id, name, email, phone)
	}
	return nil
}

// MockEventRepository is a mock implementation of repository.EventRepository
type MockEventRepository struct {
	CreateFunc       func(ctx context.Context, event *domain.Event) error
	GetByIDFunc      func(ctx context.Context, id string) (*domain.Event, error)
	UpdateFunc       func(ctx context.Context, event *domain.Event) error
	DeleteFunc       func(ctx context.Context, id string) error
	ListFunc         func(ctx context.Context, filter *repository.EventFilter, limit, offset int) ([]*domain.Event, int, error)
	CommitSeatsFunc  func(ctx context.Context, eventID string, seats []string) error
	ReleaseSeatsFunc func(ctx context.Context, eventID string, seats []string) error
}

func (m *MockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	return nil
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) Update(ctx context.Context, event *domain.Event) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, event)
	}
	return nil
}

func (m *MockEventRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockEventRepository) List(ctx context.Context, filter *repository.EventFilter, limit, offset int) ([]*domain.Event, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter, limit, offset)
	}
	return []*domain.Event{}, 0, nil
}

func (m *MockEventRepository) CommitSeats(ctx context.Context, eventID string, seats []string) error {
	if m.CommitSeatsFunc != nil {
		return m.CommitSeatsFunc(ctx, eventID, seats)
	}
	return nil
}

func (m *MockEventRepository) ReleaseSeats(ctx context.Context, eventID string, seats []string) error {
	if m.ReleaseSeatsFunc != nil {
		return m.ReleaseSeatsFunc(ctx, eventID, seats)
	}
	return nil
}

// MockSeatLockRepository is a mock implementation of repository.SeatLockRepository
type MockSeatLockRepository struct {
	AcquireSeatsFunc func(ctx context.Context, eventID, bookingID string, seats []string, ttl time.Duration) (*repository.SeatLockResult, error)
	ReleaseSeatsFunc func(ctx context.Context, eventID, bookingID string, seats []string) error
}

func (m *MockSeatLockRepository) AcquireSeats(ctx context.Context, eventID, bookingID string, seats []string, ttl time.Duration) (*repository.SeatLockResult, error) {
	if m.AcquireSeatsFunc != nil {
		return m.AcquireSeatsFunc(ctx, eventID, bookingID, seats, ttl)
	}
	return &repository.SeatLockResult{Acquired: true}, nil
}

func (m *MockSeatLockRepository) ReleaseSeats(ctx context.Context, eventID, bookingID string, seats []string) error {
	if m.ReleaseSeatsFunc != nil {
		return m.ReleaseSeatsFunc(ctx, eventID, bookingID, seats)
	}
	return nil
}

// MockUserRepository is a mock implementation of repository.UserRepository
type MockUserRepository struct {
	CreateFunc        func(ctx context.Context, user *domain.User) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFunc    func(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmailFunc func(ctx context.Context, email string) (bool, error)
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.ExistsByEmailFunc != nil {
		return m.ExistsByEmailFunc(ctx, email)
	}
	return false, nil
}

// MockNotifier records published notifications
type MockNotifier struct {
	Published []*domain.Notification
	Err       error
}

func (m *MockNotifier) Publish(ctx context.Context, n *domain.Notification) error {
	if m.Err != nil {
		return m.Err
	}
	m.Published = append(m.Published, n)
	return nil
}
