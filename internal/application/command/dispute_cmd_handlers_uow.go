package command

import (
	"context"
	"fmt"
	"log"

	"kazi-marketplace/internal/domain/aggregate"
	"kazi-marketplace/internal/domain/repository"
	"kazi-marketplace/internal/infrastructure/bus"
	"kazi-marketplace/pkg/errors"
)

// ResolveDisputeWithUoWHandler handles dispute resolution commands with Unit
// of Work. Resolution is the only way out of the disputed status.
type ResolveDisputeWithUoWHandler struct {
	uowFactory repository.UnitOfWorkFactory
	eventBus   bus.EventBus
}

// NewResolveDisputeWithUoWHandler creates a new dispute resolution handler with UoW
func NewResolveDisputeWithUoWHandler(uowFactory repository.UnitOfWorkFactory, eventBus bus.EventBus) *ResolveDisputeWithUoWHandler {
	return &ResolveDisputeWithUoWHandler{uowFactory: uowFactory, eventBus: eventBus}
}

// Handle processes the resolve dispute command.
func (h *ResolveDisputeWithUoWHandler) Handle(ctx context.Context, cmd *ResolveDispute) error {
	if cmd == nil {
		return errors.NewValidationError("command cannot be nil")
	}
	if cmd.BookingID == "" {
		return errors.NewMissingRequiredFieldError("bookingId")
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

	if err := booking.ResolveDispute(cmd.ResolutionNote, aggregate.BookingStatus(cmd.Outcome), cmd.ResolvedBy); err != nil {
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
		log.Printf("Warning: failed to publish dispute events: %v", err)
	}
	booking.MarkEventsAsCommitted()

	return nil
}
