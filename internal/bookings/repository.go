package bookings

import (
	"context"
	"sort"
	"sync"
)

// Repository defines the interface for booking storage
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id string) (*Booking, error)
	// ListByDate returns bookings for date ordered by creation time; an empty
	// date lists everything.
	ListByDate(ctx context.Context, date string) ([]*Booking, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Booking, error)
}

// Pinger is implemented by repositories backed by an external service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// InMemoryRepository keeps bookings in a map for the lifetime of the process.
type InMemoryRepository struct {
	mu       sync.RWMutex
	bookings map[string]*Booking
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		bookings: make(map[string]*Booking),
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, b *Booking) error {
	r.mu.Lock()
	r.bookings[b.ID] = b.clone()
	r.mu.Unlock()
	return nil
}

func (r *InMemoryRepository) Get(ctx context.Context, id string) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return b.clone(), nil
}

func (r *InMemoryRepository) ListByDate(ctx context.Context, date string) ([]*Booking, error) {
	r.mu.RLock()
	out := make([]*Booking, 0)
	for _, b := range r.bookings {
		if date == "" || b.SelectedDate == date {
			out = append(out, b.clone())
		}
	}
	r.mu.RUnlock()

	sortByCreated(out)
	return out, nil
}

func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	b.Status = status
	return b.clone(), nil
}

func sortByCreated(list []*Booking) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}
