package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/amparo-lar/amparo-lar/internal/reports"
)

// DashboardBuilder is the slice of the reporting service the warmup needs.
type DashboardBuilder interface {
	Dashboard(ctx context.Context, periodStart time.Time) (reports.Dashboard, error)
}

// NewReportsWarmupHandler builds the handler that precomputes the dashboard
// into the cache so the first morning request is served warm.
func NewReportsWarmupHandler(builder DashboardBuilder, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		started := time.Now()
		dashboard, err := builder.Dashboard(ctx, time.Time{})
		if err != nil {
			logger.Error("reports warmup", slog.Any("error", err))
			return err
		}
		logger.Info("reports warmup",
			slog.String("job", "reports_warmup"),
			slog.Duration("took", time.Since(started)),
			slog.Int("trend_points", len(dashboard.Trend)),
		)
		return nil
	}
}
