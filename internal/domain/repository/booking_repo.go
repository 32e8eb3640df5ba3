package repository

import (
	"context"
	"time"

	"kazi-marketplace/internal/domain/aggregate"
)

// BookingFilter narrows a booking listing. Zero values mean "no constraint";
// UserID requires Role to pick the side of the engagement.
type BookingFilter struct {
	UserID string
	Role   aggregate.Party
	Status aggregate.BookingStatus
	From   *time.Time
	To     *time.Time
}

// BookingRepository is the storage boundary for bookings. Implementations
// must return a consistent snapshot from List and enforce the optimistic
// version check in SaveTransition.
type BookingRepository interface {
	// Save inserts a newly created booking.
	Save(ctx context.Context, booking *aggregate.Booking) error

	// SaveTransition persists a mutated booking with a compare-and-swap on
	// expectedVersion. A version mismatch yields a CONCURRENT_MODIFICATION
	// error and leaves the stored booking untouched.
	SaveTransition(ctx context.Context, booking *aggregate.Booking, expectedVersion int) error

	GetByID(ctx context.Context, id string) (*aggregate.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]*aggregate.Booking, error)
}
