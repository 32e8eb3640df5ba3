package query

import (
	"context"

	"kazi-marketplace/internal/domain/aggregate"
	"kazi-marketplace/internal/domain/repository"

	"github.com/shopspring/decimal"
)

// DashboardStatsHandler produces the admin trend view. Booking counts and
// revenue share the one aggregator, parameterized only by extractor, so both
// charts agree on bucket boundaries.
type DashboardStatsHandler struct {
	bookings repository.BookingRepository
}

func NewDashboardStatsHandler(bookings repository.BookingRepository) *DashboardStatsHandler {
	return &DashboardStatsHandler{bookings: bookings}
}

func (h *DashboardStatsHandler) Handle(ctx context.Context, q GetDashboardStats) (*DashboardStats, error) {
	granularity := q.Granularity
	if granularity == "" {
		granularity = GranularityDay
	}

	bookings, err := h.bookings.List(ctx, repository.BookingFilter{From: q.Window.From, To: q.Window.To})
	if err != nil {
		return nil, err
	}
	if err := contextError(ctx); err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalBookings: len(bookings),
		StatusCounts:  make(map[string]int),
		GrossRevenue:  decimal.Zero,
	}

	var completed []*aggregate.Booking
	for _, b := range bookings {
		stats.StatusCounts[string(b.Status())]++
		if b.Status() == aggregate.BookingStatusCompleted {
			completed = append(completed, b)
			stats.GrossRevenue = stats.GrossRevenue.Add(b.Budget())
		}
	}

	countBuckets, err := BucketByPeriod(bookings, (*aggregate.Booking).CreatedAt, q.Window, granularity)
	if err != nil {
		return nil, err
	}
	for _, bucket := range countBuckets {
		stats.BookingsPerPeriod = append(stats.BookingsPerPeriod, PeriodCount{Period: bucket.Period, Count: len(bucket.Items)})
	}

	revenueBuckets, err := BucketByPeriod(completed, (*aggregate.Booking).CreatedAt, q.Window, granularity)
	if err != nil {
		return nil, err
	}
	for _, bucket := range revenueBuckets {
		periodGross := decimal.Zero
		for _, b := range bucket.Items {
			periodGross = periodGross.Add(b.Budget())
		}
		stats.RevenuePerPeriod = append(stats.RevenuePerPeriod, PeriodRevenue{Period: bucket.Period, GrossRevenue: periodGross})
	}

	if n := len(stats.RevenuePerPeriod); n >= 2 {
		stats.RevenueGrowth = GrowthRate(
			stats.RevenuePerPeriod[n-2].GrossRevenue,
			stats.RevenuePerPeriod[n-1].GrossRevenue,
		)
	} else {
		stats.RevenueGrowth = decimal.Zero
	}

	return stats, nil
}
