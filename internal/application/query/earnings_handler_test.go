package query

import (
	"context"
	"testing"
	"time"

	"kazi-marketplace/internal/domain/aggregate"
	"kazi-marketplace/internal/domain/policy"
	"kazi-marketplace/internal/domain/repository"
	"kazi-marketplace/pkg/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tenPercent(t *testing.T) policy.CommissionPolicy {
	t.Helper()
	pol, err := policy.NewCommissionPolicy(decimal.RequireFromString("0.10"))
	require.NoError(t, err)
	return pol
}

func completedBooking(budget int64, createdAt time.Time) *aggregate.Booking {
	return aggregate.ReconstructBooking(
		"booking-"+createdAt.Format("20060102150405.000000000"),
		"client-1", "provider-1", "service-1", "Job", "",
		decimal.NewFromInt(budget), nil, nil,
		aggregate.BookingStatusCompleted, nil, nil, 4, createdAt, createdAt,
	)
}

func bookingWithStatus(budget int64, createdAt time.Time, status aggregate.BookingStatus) *aggregate.Booking {
	return aggregate.ReconstructBooking(
		"booking-x", "client-1", "provider-1", "service-1", "Job", "",
		decimal.NewFromInt(budget), nil, nil, status, nil, nil, 2, createdAt, createdAt,
	)
}

func TestComputeEarningsEndToEnd(t *testing.T) {
	created := ts("2026-03-10T10:00:00Z")
	snapshot, err := ComputeEarnings(
		[]*aggregate.Booking{completedBooking(1000000, created)},
		tenPercent(t), AllTime(), GranularityMonth,
	)
	require.NoError(t, err)

	assert.Equal(t, "1000000", snapshot.GrossRevenue.String())
	assert.Equal(t, "100000", snapshot.PlatformFee.String())
	assert.Equal(t, "900000", snapshot.NetRevenue.String())
	assert.Equal(t, "1000000", snapshot.AverageTransaction.String())
	assert.Equal(t, 1, snapshot.CompletedCount)
	require.Len(t, snapshot.Breakdown, 1)
	assert.Equal(t, "2026-03", snapshot.Breakdown[0].Period)
	assert.Equal(t, 1, snapshot.Breakdown[0].BookingCount)
}

func TestComputeEarningsEmptySet(t *testing.T) {
	snapshot, err := ComputeEarnings(nil, tenPercent(t), AllTime(), GranularityMonth)
	require.NoError(t, err)

	assert.True(t, snapshot.GrossRevenue.IsZero())
	assert.True(t, snapshot.PlatformFee.IsZero())
	assert.True(t, snapshot.AverageTransaction.IsZero())
	assert.Equal(t, 0, snapshot.CompletedCount)
	assert.Empty(t, snapshot.Breakdown)
}

func TestComputeEarningsExcludesNonCompleted(t *testing.T) {
	created := ts("2026-03-10T10:00:00Z")
	bookings := []*aggregate.Booking{
		completedBooking(500000, created),
		bookingWithStatus(900000, created, aggregate.BookingStatusCancelled),
		bookingWithStatus(700000, created, aggregate.BookingStatusDisputed),
		bookingWithStatus(300000, created, aggregate.BookingStatusInProgress),
	}

	snapshot, err := ComputeEarnings(bookings, tenPercent(t), AllTime(), GranularityMonth)
	require.NoError(t, err)
	assert.Equal(t, "500000", snapshot.GrossRevenue.String())
	assert.Equal(t, 1, snapshot.CompletedCount)
}

func TestComputeEarningsWindowFiltersByCreatedAt(t *testing.T) {
	window := windowOf("2026-03-01T00:00:00Z", "2026-03-31T23:59:59Z")
	bookings := []*aggregate.Booking{
		completedBooking(400000, ts("2026-02-15T00:00:00Z")),
		completedBooking(600000, ts("2026-03-15T00:00:00Z")),
	}

	snapshot, err := ComputeEarnings(bookings, tenPercent(t), window, GranularityMonth)
	require.NoError(t, err)
	assert.Equal(t, "600000", snapshot.GrossRevenue.String())
	assert.Equal(t, 1, snapshot.CompletedCount)
}

func TestComputeEarningsIsIdempotent(t *testing.T) {
	bookings := []*aggregate.Booking{
		completedBooking(250000, ts("2026-01-05T00:00:00Z")),
		completedBooking(750000, ts("2026-02-20T00:00:00Z")),
	}
	window := windowOf("2026-01-01T00:00:00Z", "2026-02-28T23:59:59Z")

	first, err := ComputeEarnings(bookings, tenPercent(t), window, GranularityMonth)
	require.NoError(t, err)
	second, err := ComputeEarnings(bookings, tenPercent(t), window, GranularityMonth)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComputeEarningsBreakdownGrowth(t *testing.T) {
	window := windowOf("2026-01-01T00:00:00Z", "2026-03-31T23:59:59Z")
	bookings := []*aggregate.Booking{
		// January empty, February 500000 -> growth stays 0 (previous was 0)
		completedBooking(500000, ts("2026-02-10T00:00:00Z")),
		completedBooking(750000, ts("2026-03-10T00:00:00Z")),
	}

	snapshot, err := ComputeEarnings(bookings, tenPercent(t), window, GranularityMonth)
	require.NoError(t, err)
	require.Len(t, snapshot.Breakdown, 3)

	assert.True(t, snapshot.Breakdown[0].Growth.IsZero())
	assert.True(t, snapshot.Breakdown[1].Growth.IsZero(), "growth from an empty period must be 0, got %s", snapshot.Breakdown[1].Growth)
	assert.Equal(t, "50", snapshot.Breakdown[2].Growth.String())
}

func TestGrowthRate(t *testing.T) {
	assert.True(t, GrowthRate(decimal.Zero, decimal.NewFromInt(500000)).IsZero())
	assert.Equal(t, "100", GrowthRate(decimal.NewFromInt(200), decimal.NewFromInt(400)).String())
	assert.Equal(t, "-50", GrowthRate(decimal.NewFromInt(400), decimal.NewFromInt(200)).String())
}

type listFunc func(ctx context.Context, filter repository.BookingFilter) ([]*aggregate.Booking, error)

type stubBookingRepo struct {
	list listFunc
}

func (s *stubBookingRepo) Save(ctx context.Context, b *aggregate.Booking) error { return nil }
func (s *stubBookingRepo) SaveTransition(ctx context.Context, b *aggregate.Booking, expectedVersion int) error {
	return nil
}
func (s *stubBookingRepo) GetByID(ctx context.Context, id string) (*aggregate.Booking, error) {
	return nil, errors.NewNotFoundError("booking")
}
func (s *stubBookingRepo) List(ctx context.Context, filter repository.BookingFilter) ([]*aggregate.Booking, error) {
	return s.list(ctx, filter)
}

func TestEarningsHandlerCancellation(t *testing.T) {
	provider := policy.NewProvider(tenPercent(t))
	ctx, cancel := context.WithCancel(context.Background())

	repo := &stubBookingRepo{list: func(ctx context.Context, filter repository.BookingFilter) ([]*aggregate.Booking, error) {
		cancel() // caller abandons the report while storage is being read
		return []*aggregate.Booking{completedBooking(100000, ts("2026-03-01T00:00:00Z"))}, nil
	}}

	handler := NewEarningsHandler(repo, provider)
	snapshot, err := handler.Handle(ctx, GetEarnings{})
	assert.Nil(t, snapshot)
	assert.True(t, errors.HasCode(err, errors.CodeRequestCancelled), "got %v", err)
}

func TestEarningsHandlerCapturesRateOnce(t *testing.T) {
	initial := tenPercent(t)
	provider := policy.NewProvider(initial)

	repo := &stubBookingRepo{list: func(ctx context.Context, filter repository.BookingFilter) ([]*aggregate.Booking, error) {
		// policy reload arriving mid-query must not affect this computation
		updated, _ := policy.NewCommissionPolicy(decimal.RequireFromString("0.25"))
		_ = provider.Reload(ctx, policy.SourceFunc(func(context.Context) (policy.CommissionPolicy, error) {
			return updated, nil
		}))
		return []*aggregate.Booking{completedBooking(1000000, ts("2026-03-01T00:00:00Z"))}, nil
	}}

	handler := NewEarningsHandler(repo, provider)
	snapshot, err := handler.Handle(context.Background(), GetEarnings{})
	require.NoError(t, err)
	assert.Equal(t, "100000", snapshot.PlatformFee.String())
	assert.Equal(t, "0.1", snapshot.CommissionRate.String())
}
