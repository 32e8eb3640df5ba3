package query

import (
	"github.com/shopspring/decimal"
)

// GetEarnings query for the earnings report. An empty ProviderID means
// platform-wide; a zero-value Window means all time.
type GetEarnings struct {
	Window      Window
	Granularity Granularity
	ProviderID  string
}

// PeriodEarnings is one row of the per-period breakdown. Growth is the
// percentage change of gross revenue against the previous period, zero when
// the previous period had none.
type PeriodEarnings struct {
	Period       string          `json:"period"`
	GrossRevenue decimal.Decimal `json:"grossRevenue"`
	Fee          decimal.Decimal `json:"fee"`
	BookingCount int             `json:"bookingCount"`
	Growth       decimal.Decimal `json:"growth"`
}

// EarningsSnapshot is the derived, never-persisted earnings view. Field names
// mirror the booking entity attributes for export tooling compatibility.
type EarningsSnapshot struct {
	GrossRevenue       decimal.Decimal  `json:"grossRevenue"`
	PlatformFee        decimal.Decimal  `json:"platformFee"`
	NetRevenue         decimal.Decimal  `json:"netRevenue"`
	AverageTransaction decimal.Decimal  `json:"averageTransaction"`
	CompletedCount     int              `json:"completedCount"`
	CommissionRate     decimal.Decimal  `json:"commissionRate"`
	Breakdown          []PeriodEarnings `json:"breakdown"`
}

// GetDashboardStats query for the admin dashboard trend view.
type GetDashboardStats struct {
	Window      Window
	Granularity Granularity
}

// PeriodCount is a per-period booking count.
type PeriodCount struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
}

// PeriodRevenue is a per-period gross revenue figure.
type PeriodRevenue struct {
	Period       string          `json:"period"`
	GrossRevenue decimal.Decimal `json:"grossRevenue"`
}

// DashboardStats aggregates booking activity for the admin dashboard.
type DashboardStats struct {
	TotalBookings     int             `json:"totalBookings"`
	StatusCounts      map[string]int  `json:"statusCounts"`
	GrossRevenue      decimal.Decimal `json:"grossRevenue"`
	BookingsPerPeriod []PeriodCount   `json:"bookingsPerPeriod"`
	RevenuePerPeriod  []PeriodRevenue `json:"revenuePerPeriod"`
	RevenueGrowth     decimal.Decimal `json:"revenueGrowth"`
}
