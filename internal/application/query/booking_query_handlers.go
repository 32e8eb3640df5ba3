package query

import (
	"context"
	"time"

	"kazi-marketplace/internal/domain/aggregate"
	"kazi-marketplace/internal/domain/repository"

	"github.com/shopspring/decimal"
)

// BookingView is the read-side representation of a booking. Field names
// mirror the entity attributes for compatibility with export tooling.
type BookingView struct {
	ID            string          `json:"id"`
	ClientID      string          `json:"clientId"`
	ProviderID    string          `json:"providerId"`
	ServiceID     string          `json:"serviceId"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Budget        decimal.Decimal `json:"budget"`
	StartDate     *time.Time      `json:"startDate,omitempty"`
	EndDate       *time.Time      `json:"endDate,omitempty"`
	Status        string          `json:"status"`
	ClientNotes   []string        `json:"clientNotes"`
	ProviderNotes []string        `json:"providerNotes"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	Version       int             `json:"version"`
}

// NewBookingView projects a booking aggregate into its read model.
func NewBookingView(b *aggregate.Booking) *BookingView {
	return &BookingView{
		ID:            b.ID(),
		ClientID:      b.ClientID(),
		ProviderID:    b.ProviderID(),
		ServiceID:     b.ServiceID(),
		Title:         b.Title(),
		Description:   b.Description(),
		Budget:        b.Budget(),
		StartDate:     b.StartDate(),
		EndDate:       b.EndDate(),
		Status:        string(b.Status()),
		ClientNotes:   b.ClientNotes(),
		ProviderNotes: b.ProviderNotes(),
		CreatedAt:     b.CreatedAt(),
		UpdatedAt:     b.UpdatedAt(),
		Version:       b.Version(),
	}
}

// GetBookingHandler retrieves a single booking by ID.
type GetBookingHandler struct {
	bookings repository.BookingRepository
}

func NewGetBookingHandler(bookings repository.BookingRepository) *GetBookingHandler {
	return &GetBookingHandler{bookings: bookings}
}

func (h *GetBookingHandler) Handle(ctx context.Context, bookingID string) (*BookingView, error) {
	booking, err := h.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return NewBookingView(booking), nil
}

// ListBookingsHandler lists bookings matching a filter.
type ListBookingsHandler struct {
	bookings repository.BookingRepository
}

func NewListBookingsHandler(bookings repository.BookingRepository) *ListBookingsHandler {
	return &ListBookingsHandler{bookings: bookings}
}

func (h *ListBookingsHandler) Handle(ctx context.Context, filter repository.BookingFilter) ([]*BookingView, error) {
	bookings, err := h.bookings.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]*BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, NewBookingView(b))
	}
	return views, nil
}
