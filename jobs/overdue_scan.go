package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/amparo-lar/amparo-lar/internal/payables"
	"github.com/amparo-lar/amparo-lar/internal/receivables"
)

// PayableScanner lists payables for the overdue scan.
type PayableScanner interface {
	List(ctx context.Context, filter payables.ListFilter) ([]payables.View, error)
}

// ReceivableScanner lists receivables for the overdue scan.
type ReceivableScanner interface {
	List(ctx context.Context, filter receivables.ListFilter) ([]receivables.View, error)
}

// NewOverdueScanHandler builds the handler that counts entries past due and
// still pendente. The scan only reports; stored statuses are never changed
// here, operators flag vencido explicitly.
func NewOverdueScanHandler(p PayableScanner, r ReceivableScanner, logger *slog.Logger, now func() time.Time) asynq.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context, t *asynq.Task) error {
		payload, err := DecodeOverdueScan(t, now)
		if err != nil {
			return err
		}

		var payableCount int
		var payableValue float64
		payableViews, err := p.List(ctx, payables.ListFilter{})
		if err != nil {
			return err
		}
		for _, v := range payableViews {
			if v.OverdueNow {
				payableCount++
				payableValue += v.Value
			}
		}

		var receivableCount int
		var receivableValue float64
		receivableViews, err := r.List(ctx, receivables.ListFilter{})
		if err != nil {
			return err
		}
		for _, v := range receivableViews {
			if v.OverdueNow {
				receivableCount++
				receivableValue += v.Value
			}
		}

		logger.Info("overdue scan",
			slog.String("job", "overdue_scan"),
			slog.Time("as_of", payload.AsOf),
			slog.Int("payables_overdue", payableCount),
			slog.Float64("payables_value", payableValue),
			slog.Int("receivables_overdue", receivableCount),
			slog.Float64("receivables_value", receivableValue),
		)
		return nil
	}
}
