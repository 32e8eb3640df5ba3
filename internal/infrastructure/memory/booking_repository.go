package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"kazi-marketplace/internal/domain/aggregate"
	"kazi-marketplace/internal/domain/repository"
	"kazi-marketplace/pkg/errors"
)

// BookingRepository is an in-memory implementation of the booking storage
// boundary. It backs local development and tests; the compare-and-swap
// semantics match the MongoDB implementation.
type BookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*aggregate.Booking
}

// NewBookingRepository creates an empty in-memory booking repository.
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{bookings: make(map[string]*aggregate.Booking)}
}

// Save inserts a newly created booking.
func (r *BookingRepository) Save(ctx context.Context, booking *aggregate.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bookings[booking.ID()]; exists {
		return errors.NewConflictError("booking already exists: " + booking.ID())
	}
	r.bookings[booking.ID()] = clone(booking)
	return nil
}

// SaveTransition persists a mutated booking only when the stored version
// still matches expectedVersion. The version check and the write happen under
// one lock, so exactly one of two racing transitions wins.
func (r *BookingRepository) SaveTransition(ctx context.Context, booking *aggregate.Booking, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.bookings[booking.ID()]
	if !exists {
		return errors.NewNotFoundError("booking")
	}
	if stored.Version() != expectedVersion {
		return errors.NewConcurrentModificationError("booking " + booking.ID() + " was modified concurrently")
	}
	r.bookings[booking.ID()] = clone(booking)
	return nil
}

// GetByID retrieves a booking snapshot by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*aggregate.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, exists := r.bookings[id]
	if !exists {
		return nil, errors.NewNotFoundError("booking")
	}
	return clone(stored), nil
}

// List returns a consistent snapshot of bookings matching the filter, oldest
// first.
func (r *BookingRepository) List(ctx context.Context, filter repository.BookingFilter) ([]*aggregate.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*aggregate.Booking
	for _, b := range r.bookings {
		if !matches(b, filter) {
			continue
		}
		result = append(result, clone(b))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt().Before(result[j].CreatedAt())
	})
	return result, nil
}

func matches(b *aggregate.Booking, filter repository.BookingFilter) bool {
	if filter.UserID != "" {
		switch filter.Role {
		case aggregate.PartyClient:
			if b.ClientID() != filter.UserID {
				return false
			}
		case aggregate.PartyProvider:
			if b.ProviderID() != filter.UserID {
				return false
			}
		default:
			if b.ClientID() != filter.UserID && b.ProviderID() != filter.UserID {
				return false
			}
		}
	}
	if filter.Status != "" && b.Status() != filter.Status {
		return false
	}
	if filter.From != nil && b.CreatedAt().Before(*filter.From) {
		return false
	}
	if filter.To != nil && b.CreatedAt().After(*filter.To) {
		return false
	}
	return true
}

// clone deep-copies a booking so the stored snapshot is never aliased by
// callers.
func clone(b *aggregate.Booking) *aggregate.Booking {
	return aggregate.ReconstructBooking(
		b.ID(), b.ClientID(), b.ProviderID(), b.ServiceID(), b.Title(), b.Description(),
		b.Budget(), copyTime(b.StartDate()), copyTime(b.EndDate()), b.Status(),
		append([]string(nil), b.ClientNotes()...),
		append([]string(nil), b.ProviderNotes()...),
		b.Version(), b.CreatedAt(), b.UpdatedAt(),
	)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
