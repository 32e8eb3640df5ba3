package event

import "time"

// DomainEvent is implemented by every event raised by an aggregate.
type DomainEvent interface {
	EventType() string
	AggregateID() string
	OccurredAt() time.Time
	Version() int
}

// BookingCreated event
type BookingCreated struct {
	BookingID  string     `json:"booking_id"`
	ClientID   string     `json:"client_id"`
	ProviderID string     `json:"provider_id"`
	ServiceID  string     `json:"service_id"`
	Title      string     `json:"title"`
	Budget     string     `json:"budget"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	Status     string     `json:"status"`
	Timestamp  time.Time  `json:"timestamp"`
}

func (e *BookingCreated) EventType() string     { return "BookingCreated" }
func (e *BookingCreated) AggregateID() string   { return e.BookingID }
func (e *BookingCreated) OccurredAt() time.Time { return e.Timestamp }
func (e *BookingCreated) Version() int          { return 1 }

// BookingTransitioned event
type BookingTransitioned struct {
	BookingID    string    `json:"booking_id"`
	OldStatus    string    `json:"old_status"`
	NewStatus    string    `json:"new_status"`
	ActingParty  string    `json:"acting_party"`
	Note         string    `json:"note,omitempty"`
	EventVersion int       `json:"version"`
	Timestamp    time.Time `json:"timestamp"`
}

func (e *BookingTransitioned) EventType() string     { return "BookingTransitioned" }
func (e *BookingTransitioned) AggregateID() string   { return e.BookingID }
func (e *BookingTransitioned) OccurredAt() time.Time { return e.Timestamp }
func (e *BookingTransitioned) Version() int          { return e.EventVersion }

// DisputeResolved event
type DisputeResolved struct {
	BookingID      string    `json:"booking_id"`
	Outcome        string    `json:"outcome"`
	ResolutionNote string    `json:"resolution_note"`
	ResolvedBy     string    `json:"resolved_by"`
	EventVersion   int       `json:"version"`
	Timestamp      time.Time `json:"timestamp"`
}

func (e *DisputeResolved) EventType() string     { return "DisputeResolved" }
func (e *DisputeResolved) AggregateID() string   { return e.BookingID }
func (e *DisputeResolved) OccurredAt() time.Time { return e.Timestamp }
func (e *DisputeResolved) Version() int          { return e.EventVersion }
