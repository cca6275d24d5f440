package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/amparo-lar/amparo-lar/internal/ledger"
	"github.com/amparo-lar/amparo-lar/internal/payables"
	"github.com/amparo-lar/amparo-lar/internal/receivables"
	"github.com/amparo-lar/amparo-lar/internal/reconciliation"
)

type fakeSources struct {
	ledgerCalls int
	periodStart time.Time
	view        ledger.PeriodView
	summaries   []ledger.MonthlySummary
}

func (f *fakeSources) DefaultPeriodStart() time.Time {
	return f.periodStart
}

func (f *fakeSources) CurrentPeriod(ctx context.Context, periodStart time.Time) (ledger.PeriodView, error) {
	f.ledgerCalls++
	return f.view, nil
}

func (f *fakeSources) HistoricalSummaries(ctx context.Context, periodStart time.Time) ([]ledger.MonthlySummary, error) {
	return f.summaries, nil
}

func (f *fakeSources) Totals(ctx context.Context, today time.Time) (payables.Totals, error) {
	return payables.Totals{Pending: 500, OverdueNow: 120}, nil
}

type fakeReceivables struct{}

func (fakeReceivables) Totals(ctx context.Context, today time.Time) (receivables.Totals, error) {
	return receivables.Totals{Pending: 2500, OverdueNow: 800}, nil
}

type fakeReconciliation struct{}

func (fakeReconciliation) Summary(ctx context.Context, filter reconciliation.Filter) (reconciliation.Summary, error) {
	return reconciliation.Summary{PendingCount: 3, PendingValue: 450}, nil
}

func newTestSources() *fakeSources {
	return &fakeSources{
		periodStart: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		view: ledger.PeriodView{
			Rows:          make([]ledger.LedgerRow, 2),
			InflowTotal:   60,
			OutflowTotal:  40,
			EndingBalance: 20,
		},
		summaries: []ledger.MonthlySummary{
			{Month: ledger.MonthKey{Year: 2024, Month: time.May}, InflowTotal: 300, OutflowTotal: 100, Balance: 200},
			{Month: ledger.MonthKey{Year: 2024, Month: time.April}, InflowTotal: 150, OutflowTotal: 170, Balance: -20},
		},
	}
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestDashboardAggregates(t *testing.T) {
	ctx := context.Background()
	sources := newTestSources()
	svc := NewService(sources, sources, fakeReceivables{}, fakeReconciliation{}, nil)
	svc.WithNow(func() time.Time { return time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC) })

	dashboard, err := svc.Dashboard(ctx, time.Time{})
	require.NoError(t, err)
	require.Equal(t, sources.periodStart, dashboard.PeriodStart)
	require.Equal(t, 20.0, dashboard.CashPosition.EndingBalance)
	require.Equal(t, 2, dashboard.CashPosition.MovementCount)
	require.Equal(t, 500.0, dashboard.Payables.Pending)
	require.Equal(t, 2500.0, dashboard.Receivables.Pending)
	require.Equal(t, 3, dashboard.Reconciliation.PendingCount)

	// Trend points come out oldest first for charting.
	require.Len(t, dashboard.Trend, 2)
	require.Equal(t, "2024-04", dashboard.Trend[0].Period)
	require.Equal(t, "2024-05", dashboard.Trend[1].Period)
	require.Equal(t, -20.0, dashboard.Trend[0].Net)
}

func TestDashboardServedFromCacheUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	sources := newTestSources()
	svc := NewService(sources, sources, fakeReceivables{}, fakeReconciliation{}, newTestCache(t))
	svc.WithNow(func() time.Time { return time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC) })

	_, err := svc.Dashboard(ctx, time.Time{})
	require.NoError(t, err)
	_, err = svc.Dashboard(ctx, time.Time{})
	require.NoError(t, err)
	require.Equal(t, 1, sources.ledgerCalls)

	require.NoError(t, svc.Invalidate(ctx))

	_, err = svc.Dashboard(ctx, time.Time{})
	require.NoError(t, err)
	require.Equal(t, 2, sources.ledgerCalls)
}

func TestTrendEmptyHistory(t *testing.T) {
	sources := newTestSources()
	sources.summaries = nil
	svc := NewService(sources, sources, fakeReceivables{}, fakeReconciliation{}, nil)

	points, err := svc.Trend(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Empty(t, points)
}
