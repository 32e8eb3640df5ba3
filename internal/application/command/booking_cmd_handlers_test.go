package command

import (
	"context"
	"sync"
	"testing"

	"kazi-marketplace/internal/domain/aggregate"
	"kazi-marketplace/internal/infrastructure/bus"
	"kazi-marketplace/internal/infrastructure/memory"
	"kazi-marketplace/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	repo       *memory.BookingRepository
	create     *CreateBookingWithUoWHandler
	transition *TransitionBookingWithUoWHandler
	resolve    *ResolveDisputeWithUoWHandler
}

func newFixture() *fixture {
	repo := memory.NewBookingRepository()
	factory := memory.NewUnitOfWorkFactory(repo)
	eventBus := bus.NewInMemoryEventBus()
	return &fixture{
		repo:       repo,
		create:     NewCreateBookingWithUoWHandler(factory, eventBus),
		transition: NewTransitionBookingWithUoWHandler(factory, eventBus),
		resolve:    NewResolveDisputeWithUoWHandler(factory, eventBus),
	}
}

func (f *fixture) createPending(t *testing.T) string {
	t.Helper()
	id, err := f.create.Handle(context.Background(), &CreateBooking{
		ClientID:   "client-1",
		ProviderID: "provider-1",
		ServiceID:  "service-1",
		Title:      "Compound cleaning",
		Budget:     "1000000",
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) mustTransition(t *testing.T, id, status, actor string, expectedVersion int) {
	t.Helper()
	require.NoError(t, f.transition.Handle(context.Background(), &TransitionBooking{
		BookingID:       id,
		Status:          status,
		ActingParty:     actor,
		ExpectedVersion: expectedVersion,
	}))
}

func TestCreateBookingHandler(t *testing.T) {
	f := newFixture()
	id := f.createPending(t)

	stored, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, aggregate.BookingStatusPending, stored.Status())
	assert.Equal(t, 1, stored.Version())
	assert.Equal(t, "1000000", stored.Budget().String())
}

func TestCreateBookingHandlerRejectsBadBudget(t *testing.T) {
	f := newFixture()
	_, err := f.create.Handle(context.Background(), &CreateBooking{
		ClientID: "c", ProviderID: "p", ServiceID: "s", Title: "t", Budget: "not-a-number",
	})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidBudget), "got %v", err)

	_, err = f.create.Handle(context.Background(), &CreateBooking{
		ClientID: "c", ProviderID: "p", ServiceID: "s", Title: "t", Budget: "-10",
	})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidBudget), "got %v", err)
}

func TestBookingLifecycleEndToEnd(t *testing.T) {
	f := newFixture()
	id := f.createPending(t)

	f.mustTransition(t, id, "accepted", "provider", 1)
	f.mustTransition(t, id, "in_progress", "provider", 2)
	f.mustTransition(t, id, "completed", "provider", 3)

	stored, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, aggregate.BookingStatusCompleted, stored.Status())
	assert.Equal(t, 4, stored.Version())
}

func TestTransitionHandlerStaleVersion(t *testing.T) {
	f := newFixture()
	id := f.createPending(t)
	f.mustTransition(t, id, "accepted", "provider", 1)

	err := f.transition.Handle(context.Background(), &TransitionBooking{
		BookingID:       id,
		Status:          "cancelled",
		ActingParty:     "client",
		ExpectedVersion: 1, // read before the provider accepted
	})
	assert.True(t, errors.HasCode(err, errors.CodeConcurrentModification), "got %v", err)
}

func TestConcurrentTransitionsExactlyOneWins(t *testing.T) {
	f := newFixture()
	id := f.createPending(t)

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i, status := range []string{"accepted", "cancelled"} {
		wg.Add(1)
		go func(slot int, target string) {
			defer wg.Done()
			results[slot] = f.transition.Handle(context.Background(), &TransitionBooking{
				BookingID:       id,
				Status:          target,
				ActingParty:     "provider",
				ExpectedVersion: 1,
			})
		}(i, status)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.HasCode(err, errors.CodeConcurrentModification):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes, "exactly one concurrent transition must win")
	assert.Equal(t, 1, conflicts, "the loser must observe a concurrent modification")
}

func TestResolveDisputeHandlerEndToEnd(t *testing.T) {
	f := newFixture()
	id := f.createPending(t)
	f.mustTransition(t, id, "accepted", "provider", 1)
	f.mustTransition(t, id, "in_progress", "provider", 2)
	f.mustTransition(t, id, "disputed", "client", 3)

	require.NoError(t, f.resolve.Handle(context.Background(), &ResolveDispute{
		BookingID:       id,
		ResolutionNote:  "refund issued",
		Outcome:         "cancelled",
		ResolvedBy:      "admin-1",
		ExpectedVersion: 4,
	}))

	stored, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, aggregate.BookingStatusCancelled, stored.Status())
	assert.Contains(t, stored.ProviderNotes(), "refund issued")
}

func TestResolveDisputeHandlerEmptyNote(t *testing.T) {
	f := newFixture()
	id := f.createPending(t)
	f.mustTransition(t, id, "accepted", "provider", 1)
	f.mustTransition(t, id, "in_progress", "provider", 2)
	f.mustTransition(t, id, "disputed", "client", 3)

	err := f.resolve.Handle(context.Background(), &ResolveDispute{
		BookingID:       id,
		ResolutionNote:  "",
		Outcome:         "completed",
		ResolvedBy:      "admin-1",
		ExpectedVersion: 4,
	})
	assert.True(t, errors.HasCode(err, errors.CodeEmptyResolutionNote), "got %v", err)

	stored, getErr := f.repo.GetByID(context.Background(), id)
	require.NoError(t, getErr)
	assert.Equal(t, aggregate.BookingStatusDisputed, stored.Status())
	assert.Equal(t, 4, stored.Version())
}

func TestResolveDisputeHandlerNotDisputed(t *testing.T) {
	f := newFixture()
	id := f.createPending(t)

	err := f.resolve.Handle(context.Background(), &ResolveDispute{
		BookingID:       id,
		ResolutionNote:  "n/a",
		Outcome:         "cancelled",
		ResolvedBy:      "admin-1",
		ExpectedVersion: 1,
	})
	assert.True(t, errors.HasCode(err, errors.CodeNotDisputed), "got %v", err)
}
