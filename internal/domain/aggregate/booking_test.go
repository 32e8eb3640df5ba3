package aggregate

import (
	"testing"
	"time"

	"kazi-marketplace/pkg/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	b, err := NewBooking("client-1", "provider-1", "service-1", "House cleaning", "", decimal.NewFromInt(1000000), nil, nil)
	require.NoError(t, err)
	return b
}

func bookingInStatus(status BookingStatus) *Booking {
	now := time.Now().UTC()
	return ReconstructBooking(
		"booking-1", "client-1", "provider-1", "service-1", "House cleaning", "",
		decimal.NewFromInt(1000000), nil, nil, status, nil, nil, 3, now, now,
	)
}

func TestNewBookingValidation(t *testing.T) {
	budget := decimal.NewFromInt(500000)

	tests := []struct {
		name     string
		mutate   func() (*Booking, error)
		wantCode string
	}{
		{
			name: "missing client",
			mutate: func() (*Booking, error) {
				return NewBooking("", "p", "s", "title", "", budget, nil, nil)
			},
			wantCode: errors.CodeMissingRequiredField,
		},
		{
			name: "missing provider",
			mutate: func() (*Booking, error) {
				return NewBooking("c", "  ", "s", "title", "", budget, nil, nil)
			},
			wantCode: errors.CodeMissingRequiredField,
		},
		{
			name: "missing service",
			mutate: func() (*Booking, error) {
				return NewBooking("c", "p", "", "title", "", budget, nil, nil)
			},
			wantCode: errors.CodeMissingRequiredField,
		},
		{
			name: "missing title",
			mutate: func() (*Booking, error) {
				return NewBooking("c", "p", "s", "", "", budget, nil, nil)
			},
			wantCode: errors.CodeMissingRequiredField,
		},
		{
			name: "zero budget",
			mutate: func() (*Booking, error) {
				return NewBooking("c", "p", "s", "title", "", decimal.Zero, nil, nil)
			},
			wantCode: errors.CodeInvalidBudget,
		},
		{
			name: "negative budget",
			mutate: func() (*Booking, error) {
				return NewBooking("c", "p", "s", "title", "", decimal.NewFromInt(-5), nil, nil)
			},
			wantCode: errors.CodeInvalidBudget,
		},
		{
			name: "start after end",
			mutate: func() (*Booking, error) {
				start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
				end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
				return NewBooking("c", "p", "s", "title", "", budget, &start, &end)
			},
			wantCode: errors.CodeInvalidDateRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.mutate()
			require.Error(t, err)
			assert.Nil(t, b)
			assert.True(t, errors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestNewBookingDefaults(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	b, err := NewBooking("client-1", "provider-1", "service-1", "Garden work", "weekly", decimal.NewFromInt(250000), &start, &end)
	require.NoError(t, err)

	assert.NotEmpty(t, b.ID())
	assert.Equal(t, BookingStatusPending, b.Status())
	assert.Equal(t, 1, b.Version())
	assert.False(t, b.CreatedAt().IsZero())
	assert.Len(t, b.GetUncommittedEvents(), 1)
	assert.Equal(t, "BookingCreated", b.GetUncommittedEvents()[0].EventType())
}

func TestTransitionLegalPath(t *testing.T) {
	b := newTestBooking(t)

	require.NoError(t, b.Transition(BookingStatusAccepted, PartyProvider, "see you Monday"))
	require.NoError(t, b.Transition(BookingStatusInProgress, PartyProvider, ""))
	require.NoError(t, b.Transition(BookingStatusCompleted, PartyProvider, "done"))

	assert.Equal(t, BookingStatusCompleted, b.Status())
	assert.Equal(t, 4, b.Version())
	assert.Equal(t, []string{"see you Monday", "done"}, b.ProviderNotes())
	assert.Empty(t, b.ClientNotes())
}

func TestTransitionRejectsIllegalEdges(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
	}{
		{BookingStatusPending, BookingStatusInProgress},
		{BookingStatusPending, BookingStatusCompleted},
		{BookingStatusPending, BookingStatusDisputed},
		{BookingStatusAccepted, BookingStatusCompleted},
		{BookingStatusAccepted, BookingStatusDisputed},
		{BookingStatusInProgress, BookingStatusAccepted},
		{BookingStatusInProgress, BookingStatusPending},
	}
	for _, tc := range cases {
		b := bookingInStatus(tc.from)
		err := b.Transition(tc.to, PartyAdmin, "")
		assert.True(t, errors.HasCode(err, errors.CodeIllegalTransition), "%s -> %s: got %v", tc.from, tc.to, err)
		assert.Equal(t, tc.from, b.Status())
	}
}

func TestTransitionNeverLeavesLegalGraph(t *testing.T) {
	all := []BookingStatus{
		BookingStatusPending, BookingStatusAccepted, BookingStatusInProgress,
		BookingStatusCompleted, BookingStatusCancelled, BookingStatusDisputed,
	}
	for _, from := range all {
		for _, to := range all {
			b := bookingInStatus(from)
			err := b.Transition(to, PartyAdmin, "")
			if err == nil {
				assert.True(t, CanTransition(from, to), "transition %s -> %s succeeded but is not a legal edge", from, to)
				assert.NotEqual(t, BookingStatusDisputed, from, "generic transition must not move a disputed booking")
			}
		}
	}
}

func TestTransitionTerminalStates(t *testing.T) {
	for _, status := range []BookingStatus{BookingStatusCompleted, BookingStatusCancelled} {
		b := bookingInStatus(status)
		err := b.Transition(BookingStatusCancelled, PartyAdmin, "")
		assert.True(t, errors.HasCode(err, errors.CodeTerminalStateMutation), "got %v", err)
	}
}

func TestTransitionNoteAttribution(t *testing.T) {
	b := newTestBooking(t)
	require.NoError(t, b.Transition(BookingStatusCancelled, PartyClient, "changed my mind"))
	assert.Equal(t, []string{"changed my mind"}, b.ClientNotes())
	assert.Empty(t, b.ProviderNotes())

	b2 := newTestBooking(t)
	require.NoError(t, b2.Transition(BookingStatusCancelled, PartyAdmin, "fraud check failed"))
	assert.Equal(t, []string{"fraud check failed"}, b2.ProviderNotes())
	assert.Empty(t, b2.ClientNotes())
}

func TestTransitionInvalidInputs(t *testing.T) {
	b := newTestBooking(t)

	err := b.Transition("archived", PartyClient, "")
	assert.True(t, errors.HasCode(err, errors.CodeValidation))

	err = b.Transition(BookingStatusAccepted, "visitor", "")
	assert.True(t, errors.HasCode(err, errors.CodeValidation))
}

func TestResolveDispute(t *testing.T) {
	b := bookingInStatus(BookingStatusDisputed)

	require.NoError(t, b.ResolveDispute("refund issued", BookingStatusCancelled, "admin-7"))
	assert.Equal(t, BookingStatusCancelled, b.Status())
	assert.Contains(t, b.ProviderNotes(), "refund issued")

	events := b.GetUncommittedEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "BookingTransitioned", events[0].EventType())
	assert.Equal(t, "DisputeResolved", events[1].EventType())
}

func TestResolveDisputeEmptyNote(t *testing.T) {
	b := bookingInStatus(BookingStatusDisputed)
	before := b.Version()

	err := b.ResolveDispute("   ", BookingStatusCompleted, "admin-7")
	assert.True(t, errors.HasCode(err, errors.CodeEmptyResolutionNote), "got %v", err)
	assert.Equal(t, BookingStatusDisputed, b.Status())
	assert.Equal(t, before, b.Version())
	assert.Empty(t, b.GetUncommittedEvents())
}

func TestResolveDisputeNotDisputed(t *testing.T) {
	b := bookingInStatus(BookingStatusInProgress)
	err := b.ResolveDispute("looks fine", BookingStatusCompleted, "admin-7")
	assert.True(t, errors.HasCode(err, errors.CodeNotDisputed), "got %v", err)
}

func TestResolveDisputeNonTerminalOutcome(t *testing.T) {
	b := bookingInStatus(BookingStatusDisputed)
	err := b.ResolveDispute("reopening work", BookingStatusInProgress, "admin-7")
	assert.True(t, errors.HasCode(err, errors.CodeIllegalTransition), "got %v", err)
	assert.Equal(t, BookingStatusDisputed, b.Status())
}
