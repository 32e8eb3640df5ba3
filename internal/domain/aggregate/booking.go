package aggregate

import (
	"strings"
	"time"

	"kazi-marketplace/internal/domain/event"
	"kazi-marketplace/pkg/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingStatus is the lifecycle status of a booking.
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusAccepted   BookingStatus = "accepted"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
	BookingStatusDisputed   BookingStatus = "disputed"
)

// Party identifies who is acting on a booking.
type Party string

const (
	PartyClient   Party = "client"
	PartyProvider Party = "provider"
	PartyAdmin    Party = "admin"
)

// legalTransitions is the single source of truth for the booking lifecycle.
// Any (from, to) pair not listed here is rejected.
var legalTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:    {BookingStatusAccepted, BookingStatusCancelled},
	BookingStatusAccepted:   {BookingStatusInProgress, BookingStatusCancelled},
	BookingStatusInProgress: {BookingStatusCompleted, BookingStatusDisputed, BookingStatusCancelled},
	BookingStatusDisputed:   {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCompleted:  {},
	BookingStatusCancelled:  {},
}

// ValidStatus reports whether s is a recognized booking status.
func ValidStatus(s BookingStatus) bool {
	_, ok := legalTransitions[s]
	return ok
}

// ValidParty reports whether p is a recognized acting party.
func ValidParty(p Party) bool {
	return p == PartyClient || p == PartyProvider || p == PartyAdmin
}

// CanTransition reports whether the edge (from, to) is in the lifecycle graph.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s has no outgoing transitions.
func IsTerminal(s BookingStatus) bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// Booking is a single client-provider engagement for a service. Only the
// transition methods may change its status; every other component treats
// bookings as read-only values.
type Booking struct {
	id            string
	clientID      string
	providerID    string
	serviceID     string
	title         string
	description   string
	budget        decimal.Decimal
	startDate     *time.Time
	endDate       *time.Time
	status        BookingStatus
	clientNotes   []string
	providerNotes []string
	createdAt     time.Time
	updatedAt     time.Time
	version       int

	uncommittedEvents []event.DomainEvent
}

// NewBooking validates the candidate fields and creates a pending booking.
func NewBooking(clientID, providerID, serviceID, title, description string, budget decimal.Decimal, startDate, endDate *time.Time) (*Booking, error) {
	switch {
	case strings.TrimSpace(clientID) == "":
		return nil, errors.NewMissingRequiredFieldError("clientId")
	case strings.TrimSpace(providerID) == "":
		return nil, errors.NewMissingRequiredFieldError("providerId")
	case strings.TrimSpace(serviceID) == "":
		return nil, errors.NewMissingRequiredFieldError("serviceId")
	case strings.TrimSpace(title) == "":
		return nil, errors.NewMissingRequiredFieldError("title")
	}
	if budget.LessThanOrEqual(decimal.Zero) {
		return nil, errors.NewInvalidBudgetError("budget must be greater than zero")
	}
	if startDate != nil && endDate != nil && startDate.After(*endDate) {
		return nil, errors.NewInvalidDateRangeError("startDate must not be after endDate")
	}

	now := time.Now().UTC()
	booking := &Booking{
		id:          uuid.New().String(),
		clientID:    clientID,
		providerID:  providerID,
		serviceID:   serviceID,
		title:       title,
		description: description,
		budget:      budget,
		startDate:   startDate,
		endDate:     endDate,
		status:      BookingStatusPending,
		createdAt:   now,
		updatedAt:   now,
		version:     1,
	}

	booking.raiseEvent(&event.BookingCreated{
		BookingID:  booking.id,
		ClientID:   clientID,
		ProviderID: providerID,
		ServiceID:  serviceID,
		Title:      title,
		Budget:     budget.String(),
		StartDate:  startDate,
		EndDate:    endDate,
		Status:     string(booking.status),
		Timestamp:  now,
	})

	return booking, nil
}

// ReconstructBooking rebuilds a booking from persisted state.
func ReconstructBooking(
	id, clientID, providerID, serviceID, title, description string,
	budget decimal.Decimal,
	startDate, endDate *time.Time,
	status BookingStatus,
	clientNotes, providerNotes []string,
	version int,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:            id,
		clientID:      clientID,
		providerID:    providerID,
		serviceID:     serviceID,
		title:         title,
		description:   description,
		budget:        budget,
		startDate:     startDate,
		endDate:       endDate,
		status:        status,
		clientNotes:   clientNotes,
		providerNotes: providerNotes,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// Transition moves the booking along a legal lifecycle edge. Dispute
// resolution has its own entry point; the disputed outgoing edges are not
// reachable from here.
func (b *Booking) Transition(target BookingStatus, actor Party, note string) error {
	if !ValidStatus(target) {
		return errors.NewValidationError("invalid target status: " + string(target))
	}
	if !ValidParty(actor) {
		return errors.NewValidationError("invalid acting party: " + string(actor))
	}
	if IsTerminal(b.status) {
		return errors.NewTerminalStateMutationError(string(b.status))
	}
	if b.status == BookingStatusDisputed {
		// disputed bookings leave only through ResolveDispute
		return errors.NewIllegalTransitionError(string(b.status), string(target))
	}
	return b.applyTransition(target, actor, note)
}

// ResolveDispute closes a disputed booking with a terminal outcome. The
// resolution note is mandatory and always lands in the provider notes as the
// platform's authoritative record.
func (b *Booking) ResolveDispute(resolutionNote string, outcome BookingStatus, resolvedBy string) error {
	if b.status != BookingStatusDisputed {
		return errors.NewNotDisputedError(string(b.status))
	}
	if strings.TrimSpace(resolutionNote) == "" {
		return errors.NewEmptyResolutionNoteError()
	}
	if outcome != BookingStatusCompleted && outcome != BookingStatusCancelled {
		return errors.NewIllegalTransitionError(string(b.status), string(outcome))
	}

	if err := b.applyTransition(outcome, PartyAdmin, resolutionNote); err != nil {
		return err
	}

	b.raiseEvent(&event.DisputeResolved{
		BookingID:      b.id,
		Outcome:        string(outcome),
		ResolutionNote: resolutionNote,
		ResolvedBy:     resolvedBy,
		EventVersion:   b.version,
		Timestamp:      b.updatedAt,
	})

	return nil
}

func (b *Booking) applyTransition(target BookingStatus, actor Party, note string) error {
	if !CanTransition(b.status, target) {
		return errors.NewIllegalTransitionError(string(b.status), string(target))
	}

	oldStatus := b.status
	now := time.Now().UTC()

	b.status = target
	b.appendNote(actor, note)
	b.version++
	b.updatedAt = now

	b.raiseEvent(&event.BookingTransitioned{
		BookingID:    b.id,
		OldStatus:    string(oldStatus),
		NewStatus:    string(target),
		ActingParty:  string(actor),
		Note:         note,
		EventVersion: b.version,
		Timestamp:    now,
	})

	return nil
}

// appendNote attributes a note to the acting party. Admin notes go to the
// provider notes, which serve as the platform's record.
func (b *Booking) appendNote(actor Party, note string) {
	if strings.TrimSpace(note) == "" {
		return
	}
	if actor == PartyClient {
		b.clientNotes = append(b.clientNotes, note)
	} else {
		b.providerNotes = append(b.providerNotes, note)
	}
}

func (b *Booking) raiseEvent(ev event.DomainEvent) {
	b.uncommittedEvents = append(b.uncommittedEvents, ev)
}

func (b *Booking) GetUncommittedEvents() []event.DomainEvent {
	return b.uncommittedEvents
}

func (b *Booking) MarkEventsAsCommitted() {
	b.uncommittedEvents = nil
}

// Getters
func (b *Booking) ID() string              { return b.id }
func (b *Booking) ClientID() string        { return b.clientID }
func (b *Booking) ProviderID() string      { return b.providerID }
func (b *Booking) ServiceID() string       { return b.serviceID }
func (b *Booking) Title() string           { return b.title }
func (b *Booking) Description() string     { return b.description }
func (b *Booking) Budget() decimal.Decimal { return b.budget }
func (b *Booking) StartDate() *time.Time   { return b.startDate }
func (b *Booking) EndDate() *time.Time     { return b.endDate }
func (b *Booking) Status() BookingStatus   { return b.status }
func (b *Booking) ClientNotes() []string   { return b.clientNotes }
func (b *Booking) ProviderNotes() []string { return b.providerNotes }
func (b *Booking) CreatedAt() time.Time    { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time    { return b.updatedAt }
func (b *Booking) Version() int            { return b.version }

// Entity interface implementation
func (b *Booking) GetID() string    { return b.id }
func (b *Booking) GetVersion() int  { return b.version }
func (b *Booking) SetVersion(v int) { b.version = v }
