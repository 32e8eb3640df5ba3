package services

import (
	"context"

	"kazi-marketplace/internal/application/command"
	"kazi-marketplace/internal/application/query"
	"kazi-marketplace/internal/domain/repository"
)

// BookingService orchestrates booking operations
type BookingService struct {
	// Command handlers (using Unit of Work)
	createBookingHandler     *command.CreateBookingWithUoWHandler
	transitionBookingHandler *command.TransitionBookingWithUoWHandler
	resolveDisputeHandler    *command.ResolveDisputeWithUoWHandler

	// Query handlers
	getBookingHandler   *query.GetBookingHandler
	listBookingsHandler *query.ListBookingsHandler
}

func NewBookingService(
	createBookingHandler *command.CreateBookingWithUoWHandler,
	transitionBookingHandler *command.TransitionBookingWithUoWHandler,
	resolveDisputeHandler *command.ResolveDisputeWithUoWHandler,
	getBookingHandler *query.GetBookingHandler,
	listBookingsHandler *query.ListBookingsHandler,
) *BookingService {
	return &BookingService{
		createBookingHandler:     createBookingHandler,
		transitionBookingHandler: transitionBookingHandler,
		resolveDisputeHandler:    resolveDisputeHandler,
		getBookingHandler:        getBookingHandler,
		listBookingsHandler:      listBookingsHandler,
	}
}

// Command operations
func (s *BookingService) CreateBooking(ctx context.Context, cmd command.CreateBooking) (string, error) {
	return s.createBookingHandler.Handle(ctx, &cmd)
}

func (s *BookingService) TransitionBooking(ctx context.Context, cmd command.TransitionBooking) error {
	return s.transitionBookingHandler.Handle(ctx, &cmd)
}

func (s *BookingService) ResolveDispute(ctx context.Context, cmd command.ResolveDispute) error {
	return s.resolveDisputeHandler.Handle(ctx, &cmd)
}

// Query operations
func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*query.BookingView, error) {
	return s.getBookingHandler.Handle(ctx, bookingID)
}

func (s *BookingService) ListBookings(ctx context.Context, filter repository.BookingFilter) ([]*query.BookingView, error) {
	return s.listBookingsHandler.Handle(ctx, filter)
}
