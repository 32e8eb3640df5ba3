package command

// CreateBooking command to open a new engagement between a client and a
// provider. Budget is a decimal string in the platform base currency; dates
// are RFC3339 and optional.
type CreateBooking struct {
	ClientID    string `json:"clientId"`
	ProviderID  string `json:"providerId"`
	ServiceID   string `json:"serviceId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Budget      string `json:"budget"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
}

// TransitionBooking command to move a booking along its lifecycle.
// ExpectedVersion is the version the caller read; the write is rejected with
// CONCURRENT_MODIFICATION when it no longer matches.
type TransitionBooking struct {
	BookingID       string `json:"bookingId"`
	Status          string `json:"status"`
	ActingParty     string `json:"actingParty"`
	Note            string `json:"note,omitempty"`
	ExpectedVersion int    `json:"expectedVersion"`
}

// ResolveDispute command to close a disputed booking with a terminal outcome.
type ResolveDispute struct {
	BookingID       string `json:"bookingId"`
	ResolutionNote  string `json:"resolutionNote"`
	Outcome         string `json:"outcome"`
	ResolvedBy      string `json:"resolvedBy"`
	ExpectedVersion int    `json:"expectedVersion"`
}
