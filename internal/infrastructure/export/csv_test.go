package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"kazi-marketplace/internal/application/query"
	"kazi-marketplace/internal/domain/policy"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func view(id, status string, amount int64, createdAt time.Time) *query.BookingView {
	return &query.BookingView{
		ID:         id,
		ClientID:   "client-1",
		ProviderID: "provider-1",
		ServiceID:  "service-1",
		Status:     status,
		Budget:     decimal.NewFromInt(amount),
		CreatedAt:  createdAt,
	}
}

func TestWriteBookingsCSVHeaderOrder(t *testing.T) {
	var buf bytes.Buffer
	pol, err := policy.NewCommissionPolicy(policy.DefaultCommissionRate)
	require.NoError(t, err)

	require.NoError(t, WriteBookingsCSV(&buf, nil, pol))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t,
		[]string{"Date", "Booking ID", "Amount", "Fees", "Net Amount", "Client", "Provider", "Service", "Status"},
		records[0])
}

func TestWriteBookingsCSVFeesOnlyForCompleted(t *testing.T) {
	var buf bytes.Buffer
	pol, err := policy.NewCommissionPolicy(decimal.RequireFromString("0.10"))
	require.NoError(t, err)

	created := time.Date(2026, time.March, 15, 22, 30, 0, 0, time.FixedZone("EAT", 3*3600))
	bookings := []*query.BookingView{
		view("bk-1", "completed", 1000000, created),
		view("bk-2", "cancelled", 500000, created),
	}

	require.NoError(t, WriteBookingsCSV(&buf, bookings, pol))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	completed := records[1]
	assert.Equal(t, "2026-03-15", completed[0], "dates must be rendered in UTC")
	assert.Equal(t, "bk-1", completed[1])
	assert.Equal(t, "1000000", completed[2])
	assert.Equal(t, "100000", completed[3])
	assert.Equal(t, "900000", completed[4])
	assert.Equal(t, "completed", completed[8])

	cancelled := records[2]
	assert.Equal(t, "0", cancelled[3], "non-completed bookings carry no fee")
	assert.Equal(t, "500000", cancelled[4])
}
