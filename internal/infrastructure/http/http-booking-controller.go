package http

import (
	"encoding/json"
	"net/http"
	"time"

	"kazi-marketplace/internal/application/command"
	"kazi-marketplace/internal/application/services"
	"kazi-marketplace/internal/domain/aggregate"
	"kazi-marketplace/internal/domain/repository"
	"kazi-marketplace/pkg/errors"
	"kazi-marketplace/pkg/middleware"
	"kazi-marketplace/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// HTTPBookingController implements the booking API over HTTP transport
type HTTPBookingController struct {
	bookingService *services.BookingService
	validate       *validator.Validate
}

// NewHTTPBookingController creates a new HTTP booking controller
func NewHTTPBookingController(bookingService *services.BookingService) *HTTPBookingController {
	return &HTTPBookingController{
		bookingService: bookingService,
		validate:       validator.New(),
	}
}

type createBookingRequest struct {
	ProviderID  string `json:"providerId" validate:"required"`
	ServiceID   string `json:"serviceId" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	Budget      string `json:"budget" validate:"required"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
}

// CreateBooking handles POST /bookings. The client side of the engagement is
// always the authenticated caller.
func (c *HTTPBookingController) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.HandleError(w, r, errors.NewValidationError("Invalid JSON format"))
		return
	}
	if err := c.validate.Struct(req); err != nil {
		middleware.HandleError(w, r, validationError(err))
		return
	}

	clientID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		middleware.HandleError(w, r, errors.NewValidationError("authenticated user required"))
		return
	}

	cmd := command.CreateBooking{
		ClientID:    clientID,
		ProviderID:  req.ProviderID,
		ServiceID:   req.ServiceID,
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}

	bookingID, err := c.bookingService.CreateBooking(r.Context(), cmd)
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}

	response.SendCreated(w, r, map[string]interface{}{
		"id":      bookingID,
		"message": "Booking created successfully",
	})
}

// GetBooking handles GET /bookings/{id}
func (c *HTTPBookingController) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		middleware.HandleError(w, r, errors.NewMissingRequiredFieldError("id"))
		return
	}

	booking, err := c.bookingService.GetBooking(r.Context(), id)
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}

	response.SendSuccess(w, r, booking)
}

// ListBookings handles GET /bookings. Non-admin callers only see engagements
// they participate in.
func (c *HTTPBookingController) ListBookings(w http.ResponseWriter, r *http.Request) {
	filter, err := bookingFilterFromRequest(r)
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}

	bookings, err := c.bookingService.ListBookings(r.Context(), filter)
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}

	response.SendSuccess(w, r, bookings)
}

type transitionBookingRequest struct {
	Status          string `json:"status" validate:"required"`
	Note            string `json:"note,omitempty"`
	ExpectedVersion int    `json:"expectedVersion" validate:"required,gt=0"`
}

// TransitionBooking handles PUT /bookings/{id}/status. The acting party is
// taken from the caller's token, never from the request body.
func (c *HTTPBookingController) TransitionBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		middleware.HandleError(w, r, errors.NewMissingRequiredFieldError("id"))
		return
	}

	var req transitionBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.HandleError(w, r, errors.NewValidationError("Invalid JSON format"))
		return
	}
	if err := c.validate.Struct(req); err != nil {
		middleware.HandleError(w, r, validationError(err))
		return
	}

	role, _ := middleware.GetUserRoleFromContext(r.Context())

	cmd := command.TransitionBooking{
		BookingID:       id,
		Status:          req.Status,
		ActingParty:     role,
		Note:            req.Note,
		ExpectedVersion: req.ExpectedVersion,
	}

	if err := c.bookingService.TransitionBooking(r.Context(), cmd); err != nil {
		middleware.HandleError(w, r, err)
		return
	}

	response.SendSuccess(w, r, map[string]interface{}{
		"id":      id,
		"status":  req.Status,
		"message": "Booking transitioned successfully",
	})
}

type resolveDisputeRequest struct {
	ResolutionNote  string `json:"resolutionNote" validate:"required"`
	Outcome         string `json:"outcome" validate:"required,oneof=completed cancelled"`
	ExpectedVersion int    `json:"expectedVersion" validate:"required,gt=0"`
}

// ResolveDispute handles POST /bookings/{id}/dispute/resolve (admin only)
func (c *HTTPBookingController) ResolveDispute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		middleware.HandleError(w, r, errors.NewMissingRequiredFieldError("id"))
		return
	}

	var req resolveDisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.HandleError(w, r, errors.NewValidationError("Invalid JSON format"))
		return
	}
	if err := c.validate.Struct(req); err != nil {
		middleware.HandleError(w, r, validationError(err))
		return
	}

	adminID, _ := middleware.GetUserIDFromContext(r.Context())

	cmd := command.ResolveDispute{
		BookingID:       id,
		ResolutionNote:  req.ResolutionNote,
		Outcome:         req.Outcome,
		ResolvedBy:      adminID,
		ExpectedVersion: req.ExpectedVersion,
	}

	if err := c.bookingService.ResolveDispute(r.Context(), cmd); err != nil {
		middleware.HandleError(w, r, err)
		return
	}

	response.SendSuccess(w, r, map[string]interface{}{
		"id":      id,
		"status":  req.Outcome,
		"message": "Dispute resolved successfully",
	})
}

// bookingFilterFromRequest builds a listing filter scoped to the caller.
// Admins may inspect any user via query parameters; everyone else is pinned
// to their own engagements.
func bookingFilterFromRequest(r *http.Request) (repository.BookingFilter, error) {
	filter := repository.BookingFilter{}

	role, _ := middleware.GetUserRoleFromContext(r.Context())
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	if role == string(aggregate.PartyAdmin) {
		filter.UserID = r.URL.Query().Get("userId")
		filter.Role = aggregate.Party(r.URL.Query().Get("role"))
	} else {
		filter.UserID = userID
		filter.Role = aggregate.Party(role)
	}

	if status := r.URL.Query().Get("status"); status != "" {
		if !aggregate.ValidStatus(aggregate.BookingStatus(status)) {
			return filter, errors.NewValidationError("unknown status: " + status)
		}
		filter.Status = aggregate.BookingStatus(status)
	}

	from, err := parseTimeParam(r, "from")
	if err != nil {
		return filter, err
	}
	to, err := parseTimeParam(r, "to")
	if err != nil {
		return filter, err
	}
	filter.From = from
	filter.To = to

	return filter, nil
}

// parseTimeParam reads an optional time query parameter, accepting RFC3339 or
// a plain UTC date.
func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return &parsed, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, errors.NewValidationError("invalid " + name + " parameter: expected RFC3339 or YYYY-MM-DD")
	}
	return &parsed, nil
}

// validationError flattens validator output into the typed taxonomy.
func validationError(err error) error {
	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		if first.Tag() == "required" {
			return errors.NewMissingRequiredFieldError(first.Field())
		}
		return errors.NewValidationError("invalid field " + first.Field())
	}
	return errors.NewValidationError("invalid request payload")
}
