package command

import (
	"context"
	"fmt"
	"log"
	"time"

	"kazi-marketplace/internal/domain/aggregate"
	"kazi-marketplace/internal/domain/repository"
	"kazi-marketplace/internal/infrastructure/bus"
	"kazi-marketplace/pkg/errors"

	"github.com/shopspring/decimal"
)

// CreateBookingWithUoWHandler handles create booking commands with Unit of Work
type CreateBookingWithUoWHandler struct {
	uowFactory repository.UnitOfWorkFactory
	eventBus   bus.EventBus
}

// NewCreateBookingWithUoWHandler creates a new create booking handler with UoW
func NewCreateBookingWithUoWHandler(uowFactory repository.UnitOfWorkFactory, eventBus bus.EventBus) *CreateBookingWithUoWHandler {
	return &CreateBookingWithUoWHandler{uowFactory: uowFactory, eventBus: eventBus}
}

// Handle processes the create booking command and returns the new booking ID.
func (h *CreateBookingWithUoWHandler) Handle(ctx context.Context, cmd *CreateBooking) (string, error) {
	if cmd == nil {
		return "", errors.NewValidationError("command cannot be nil")
	}

	budget, err := decimal.NewFromString(cmd.Budget)
	if err != nil {
		return "", errors.NewInvalidBudgetError(fmt.Sprintf("invalid budget: %v", err))
	}

	startDate, err := parseOptionalDate(cmd.StartDate, "startDate")
	if err != nil {
		return "", err
	}
	endDate, err := parseOptionalDate(cmd.EndDate, "endDate")
	if err != nil {
		return "", err
	}

	booking, err := aggregate.NewBooking(cmd.ClientID, cmd.ProviderID, cmd.ServiceID, cmd.Title, cmd.Description, budget, startDate, endDate)
	if err != nil {
		return "", err
	}

	uow := h.uowFactory.CreateUnitOfWork()
	defer uow.Close()

	if err := uow.Begin(ctx); err != nil {
		return "", errors.NewStorageUnavailableError(fmt.Sprintf("failed to begin transaction: %v", err))
	}

	if err := uow.BookingRepository().Save(ctx, booking); err != nil {
		uow.Rollback(ctx)
		return "", err
	}

	events := booking.GetUncommittedEvents()
	if err := uow.Commit(ctx); err != nil {
		return "", errors.NewStorageUnavailableError(fmt.Sprintf("failed to commit transaction: %v", err))
	}

	if err := h.eventBus.PublishBatch(ctx, events); err != nil {
		log.Printf("Warning: failed to publish booking events: %v", err)
	}
	booking.MarkEventsAsCommitted()

	return booking.ID(), nil
}

// TransitionBookingWithUoWHandler handles booking lifecycle transitions with
// Unit of Work. It is the only write path for booking status outside dispute
// resolution.
type TransitionBookingWithUoWHandler struct {
	uowFactory repository.UnitOfWorkFactory
	eventBus   bus.EventBus
}

// NewTransitionBookingWithUoWHandler creates a new transition handler with UoW
func NewTransitionBookingWithUoWHandler(uowFactory repository.UnitOfWorkFactory, eventBus bus.EventBus) *TransitionBookingWithUoWHandler {
	return &TransitionBookingWithUoWHandler{uowFactory: uowFactory, eventBus: eventBus}
}

// Handle processes the transition booking command.
func (h *TransitionBookingWithUoWHandler) Handle(ctx context.Context, cmd *TransitionBooking) error {
	if cmd == nil {
		return errors.NewValidationError("command cannot be nil")
	}
	if cmd.BookingID == "" {
		return errors.NewMissingRequiredFieldError("bookingId")
	}
	if cmd.Status == "" {
		return errors.NewMissingRequiredFieldError("status")
	}
	if cmd.ExpectedVersion <= 0 {
		return errors.NewValidationError("expectedVersion must be the version read by the caller")
	}

	uow := h.uowFactory.CreateUnitOfWork()
	defer uow.Close()

	if err := uow.Begin(ctx); err != nil {
		return errors.NewStorageUnavailableError(fmt.Sprintf("failed to begin transaction: %v", err))
	}

	repo := uow.BookingRepository()
	booking, err := repo.GetByID(ctx, cmd.BookingID)
	if err != nil {
		uow.Rollback(ctx)
		return err
	}

	if booking.Version() != cmd.ExpectedVersion {
		uow.Rollback(ctx)
		return errors.NewConcurrentModificationError(
			fmt.Sprintf("booking %s changed since it was read (version %d, expected %d)", booking.ID(), booking.Version(), cmd.ExpectedVersion))
	}

	if err := booking.Transition(aggregate.BookingStatus(cmd.Status), aggregate.Party(cmd.ActingParty), cmd.Note); err != nil {
		uow.Rollback(ctx)
		return err
	}

	if err := repo.SaveTransition(ctx, booking, cmd.ExpectedVersion); err != nil {
		uow.Rollback(ctx)
		return err
	}

	events := booking.GetUncommittedEvents()
	if err := uow.Commit(ctx); err != nil {
		return errors.NewStorageUnavailableError(fmt.Sprintf("failed to commit transaction: %v", err))
	}

	if err := h.eventBus.PublishBatch(ctx, events); err != nil {
		log.Printf("Warning: failed to publish booking events: %v", err)
	}
	booking.MarkEventsAsCommitted()

	return nil
}

func parseOptionalDate(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid %s format: %v", field, err))
	}
	return &parsed, nil
}
