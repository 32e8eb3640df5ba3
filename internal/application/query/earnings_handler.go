package query

import (
	"context"

	"kazi-marketplace/internal/domain/aggregate"
	"kazi-marketplace/internal/domain/policy"
	"kazi-marketplace/internal/domain/repository"
	"kazi-marketplace/pkg/errors"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// EarningsHandler answers earnings queries from booking snapshots. The
// computation itself is pure; the handler only adds storage access, the
// captured commission rate and cancellation checks.
type EarningsHandler struct {
	bookings repository.BookingRepository
	policies *policy.Provider
}

// NewEarningsHandler creates a new earnings query handler.
func NewEarningsHandler(bookings repository.BookingRepository, policies *policy.Provider) *EarningsHandler {
	return &EarningsHandler{bookings: bookings, policies: policies}
}

// Handle computes an earnings snapshot for the query window. The commission
// rate is captured once before the computation and never re-read, so a policy
// reload mid-request cannot produce mixed figures. A cancelled context yields
// a typed error, never a partial snapshot.
func (h *EarningsHandler) Handle(ctx context.Context, q GetEarnings) (*EarningsSnapshot, error) {
	granularity := q.Granularity
	if granularity == "" {
		granularity = GranularityMonth
	}

	pol := h.policies.Current()

	filter := repository.BookingFilter{
		Status: aggregate.BookingStatusCompleted,
		From:   q.Window.From,
		To:     q.Window.To,
	}
	if q.ProviderID != "" {
		filter.UserID = q.ProviderID
		filter.Role = aggregate.PartyProvider
	}

	bookings, err := h.bookings.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := contextError(ctx); err != nil {
		return nil, err
	}

	return ComputeEarnings(bookings, pol, q.Window, granularity)
}

// ComputeEarnings derives an earnings snapshot from a set of bookings. Only
// completed bookings created inside the window contribute. Pure: identical
// inputs always yield an identical snapshot.
func ComputeEarnings(bookings []*aggregate.Booking, pol policy.CommissionPolicy, window Window, granularity Granularity) (*EarningsSnapshot, error) {
	completed := make([]*aggregate.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Status() == aggregate.BookingStatusCompleted && window.Contains(b.CreatedAt()) {
			completed = append(completed, b)
		}
	}

	gross := decimal.Zero
	for _, b := range completed {
		gross = gross.Add(b.Budget())
	}
	fee := gross.Mul(pol.Rate)
	net := gross.Sub(fee)

	average := decimal.Zero
	if len(completed) > 0 {
		average = gross.Div(decimal.NewFromInt(int64(len(completed))))
	}

	buckets, err := BucketByPeriod(completed, (*aggregate.Booking).CreatedAt, window, granularity)
	if err != nil {
		return nil, err
	}

	breakdown := make([]PeriodEarnings, 0, len(buckets))
	previous := decimal.Zero
	for i, bucket := range buckets {
		periodGross := decimal.Zero
		for _, b := range bucket.Items {
			periodGross = periodGross.Add(b.Budget())
		}
		growth := decimal.Zero
		if i > 0 {
			growth = GrowthRate(previous, periodGross)
		}
		breakdown = append(breakdown, PeriodEarnings{
			Period:       bucket.Period,
			GrossRevenue: periodGross,
			Fee:          periodGross.Mul(pol.Rate),
			BookingCount: len(bucket.Items),
			Growth:       growth,
		})
		previous = periodGross
	}

	return &EarningsSnapshot{
		GrossRevenue:       gross,
		PlatformFee:        fee,
		NetRevenue:         net,
		AverageTransaction: average,
		CompletedCount:     len(completed),
		CommissionRate:     pol.Rate,
		Breakdown:          breakdown,
	}, nil
}

// GrowthRate returns the percentage change from previous to current, defined
// as zero when previous is zero so an empty period never yields an infinite
// or NaN growth figure.
func GrowthRate(previous, current decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(oneHundred)
}

// contextError maps a finished context to the typed error taxonomy.
func contextError(ctx context.Context) error {
	switch ctx.Err() {
	case nil:
		return nil
	case context.DeadlineExceeded:
		return errors.NewRequestTimeoutError("earnings query deadline exceeded")
	default:
		return errors.NewRequestCancelledError("earnings query cancelled by caller")
	}
}
