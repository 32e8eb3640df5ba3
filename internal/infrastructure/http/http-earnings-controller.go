package http

import (
	"net/http"

	"kazi-marketplace/internal/application/query"
	"kazi-marketplace/internal/application/services"
	"kazi-marketplace/internal/domain/aggregate"
	"kazi-marketplace/internal/domain/policy"
	"kazi-marketplace/internal/domain/repository"
	"kazi-marketplace/internal/infrastructure/export"
	"kazi-marketplace/pkg/errors"
	"kazi-marketplace/pkg/middleware"
	"kazi-marketplace/pkg/response"

	"github.com/go-chi/chi/v5"
)

// HTTPEarningsController serves earnings reports, the admin dashboard and the
// CSV export.
type HTTPEarningsController struct {
	reportingService *services.ReportingService
	bookingService   *services.BookingService
	policies         *policy.Provider
	policySource     policy.Source
}

// NewHTTPEarningsController creates a new HTTP earnings controller
func NewHTTPEarningsController(
	reportingService *services.ReportingService,
	bookingService *services.BookingService,
	policies *policy.Provider,
	policySource policy.Source,
) *HTTPEarningsController {
	return &HTTPEarningsController{
		reportingService: reportingService,
		bookingService:   bookingService,
		policies:         policies,
		policySource:     policySource,
	}
}

// GetEarnings handles GET /admin/earnings (platform-wide)
func (c *HTTPEarningsController) GetEarnings(w http.ResponseWriter, r *http.Request) {
	q, err := earningsQueryFromRequest(r, "")
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}

	snapshot, err := c.reportingService.GetEarnings(r.Context(), q)
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}

	response.SendSuccess(w, r, snapshot)
}

// GetProviderEarnings handles GET /providers/{id}/earnings. Providers may
// only read their own figures; admins may read anyone's.
func (c *HTTPEarningsController) GetProviderEarnings(w http.ResponseWriter, r *http.Request) {
	providerID := chi.URLParam(r, "id")
	if providerID == "" {
		middleware.HandleError(w, r, errors.NewMissingRequiredFieldError("id"))
		return
	}

	role, _ := middleware.GetUserRoleFromContext(r.Context())
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	if role != string(aggregate.PartyAdmin) && userID != providerID {
		response.SendError(w, r, http.StatusForbidden, "FORBIDDEN", "Providers may only view their own earnings")
		return
	}

	q, err := earningsQueryFromRequest(r, providerID)
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}

	snapshot, err := c.reportingService.GetEarnings(r.Context(), q)
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}

	response.SendSuccess(w, r, snapshot)
}

// GetDashboard handles GET /admin/dashboard
func (c *HTTPEarningsController) GetDashboard(w http.ResponseWriter, r *http.Request) {
	granularity, err := query.ParseGranularity(r.URL.Query().Get("granularity"))
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	window, err := windowFromRequest(r)
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}

	stats, err := c.reportingService.GetDashboardStats(r.Context(), query.GetDashboardStats{
		Window:      window,
		Granularity: granularity,
	})
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}

	response.SendSuccess(w, r, stats)
}

// ExportBookingsCSV handles GET /admin/earnings/export. The response streams
// a CSV of all bookings in the window; commission fees appear only on
// completed rows.
func (c *HTTPEarningsController) ExportBookingsCSV(w http.ResponseWriter, r *http.Request) {
	window, err := windowFromRequest(r)
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}

	filter := repository.BookingFilter{From: window.From, To: window.To}
	if status := r.URL.Query().Get("status"); status != "" {
		if !aggregate.ValidStatus(aggregate.BookingStatus(status)) {
			middleware.HandleError(w, r, errors.NewValidationError("unknown status: "+status))
			return
		}
		filter.Status = aggregate.BookingStatus(status)
	}

	bookings, err := c.bookingService.ListBookings(r.Context(), filter)
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.csv"`)

	if err := export.WriteBookingsCSV(w, bookings, c.policies.Current()); err != nil {
		// Headers are already sent; the truncated body is all we can signal.
		middleware.HandleError(w, r, err)
	}
}

// ReloadPolicy handles POST /admin/policy/reload
func (c *HTTPEarningsController) ReloadPolicy(w http.ResponseWriter, r *http.Request) {
	reloaded, err := c.reportingService.ReloadCommissionPolicy(r.Context(), c.policySource)
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}

	response.SendSuccess(w, r, map[string]interface{}{
		"commissionRate": reloaded.Rate,
		"message":        "Commission policy reloaded",
	})
}

// earningsQueryFromRequest parses window and granularity query parameters.
func earningsQueryFromRequest(r *http.Request, providerID string) (query.GetEarnings, error) {
	granularity, err := query.ParseGranularity(r.URL.Query().Get("granularity"))
	if err != nil {
		return query.GetEarnings{}, err
	}
	window, err := windowFromRequest(r)
	if err != nil {
		return query.GetEarnings{}, err
	}
	return query.GetEarnings{
		Window:      window,
		Granularity: granularity,
		ProviderID:  providerID,
	}, nil
}

func windowFromRequest(r *http.Request) (query.Window, error) {
	from, err := parseTimeParam(r, "from")
	if err != nil {
		return query.Window{}, err
	}
	to, err := parseTimeParam(r, "to")
	if err != nil {
		return query.Window{}, err
	}
	return query.Window{From: from, To: to}, nil
}
