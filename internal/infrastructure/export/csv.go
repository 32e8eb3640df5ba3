package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"kazi-marketplace/internal/application/query"
	"kazi-marketplace/internal/domain/aggregate"
	"kazi-marketplace/internal/domain/policy"
	"kazi-marketplace/pkg/errors"

	"github.com/shopspring/decimal"
)

// csvHeader is the fixed column order consumed by downstream spreadsheet
// tooling. Do not reorder.
var csvHeader = []string{"Date", "Booking ID", "Amount", "Fees", "Net Amount", "Client", "Provider", "Service", "Status"}

// WriteBookingsCSV streams bookings as CSV rows. Commission fees apply only
// to completed bookings; every other status exports a zero fee and the full
// amount as net.
func WriteBookingsCSV(w io.Writer, bookings []*query.BookingView, pol policy.CommissionPolicy) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return errors.NewInternalError(fmt.Sprintf("failed to write CSV header: %v", err))
	}

	for _, b := range bookings {
		fee := decimal.Zero
		if b.Status == string(aggregate.BookingStatusCompleted) {
			fee = b.Budget.Mul(pol.Rate)
		}
		net := b.Budget.Sub(fee)

		record := []string{
			b.CreatedAt.UTC().Format("2006-01-02"),
			b.ID,
			b.Budget.String(),
			fee.String(),
			net.String(),
			b.ClientID,
			b.ProviderID,
			b.ServiceID,
			b.Status,
		}
		if err := writer.Write(record); err != nil {
			return errors.NewInternalError(fmt.Sprintf("failed to write CSV record: %v", err))
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.NewInternalError(fmt.Sprintf("failed to flush CSV output: %v", err))
	}
	return nil
}
