package reports

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/amparo-lar/amparo-lar/internal/ledger"
	"github.com/amparo-lar/amparo-lar/internal/payables"
	"github.com/amparo-lar/amparo-lar/internal/receivables"
	"github.com/amparo-lar/amparo-lar/internal/reconciliation"
)

// LedgerSource feeds the dashboard with ledger views.
type LedgerSource interface {
	DefaultPeriodStart() time.Time
	CurrentPeriod(ctx context.Context, periodStart time.Time) (ledger.PeriodView, error)
	HistoricalSummaries(ctx context.Context, periodStart time.Time) ([]ledger.MonthlySummary, error)
}

// PayableSource feeds the dashboard with payable totals.
type PayableSource interface {
	Totals(ctx context.Context, today time.Time) (payables.Totals, error)
}

// ReceivableSource feeds the dashboard with receivable totals.
type ReceivableSource interface {
	Totals(ctx context.Context, today time.Time) (receivables.Totals, error)
}

// ReconciliationSource feeds the dashboard with the reconciliation summary.
type ReconciliationSource interface {
	Summary(ctx context.Context, filter reconciliation.Filter) (reconciliation.Summary, error)
}

// Service composes the read-only reporting views over the other domains.
type Service struct {
	ledger         LedgerSource
	payables       PayableSource
	receivables    ReceivableSource
	reconciliation ReconciliationSource
	cache          *Cache
	now            func() time.Time
}

// NewService constructs the reporting Service. cache may be nil.
func NewService(l LedgerSource, p PayableSource, r ReceivableSource, rec ReconciliationSource, cache *Cache) *Service {
	return &Service{
		ledger:         l,
		payables:       p,
		receivables:    r,
		reconciliation: rec,
		cache:          cache,
		now:            time.Now,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Dashboard assembles the consolidated snapshot, served from cache when a
// fresh copy exists. A zero periodStart falls back to the ledger default.
func (s *Service) Dashboard(ctx context.Context, periodStart time.Time) (Dashboard, error) {
	if periodStart.IsZero() {
		periodStart = s.ledger.DefaultPeriodStart()
	}
	key, err := s.cache.BuildKey(ctx, keyDashboard(periodStart)...)
	if err != nil {
		return Dashboard{}, err
	}
	var dashboard Dashboard
	err = s.cache.FetchJSON(ctx, key, &dashboard, func(ctx context.Context) (interface{}, error) {
		return s.buildDashboard(ctx, periodStart)
	})
	return dashboard, err
}

func (s *Service) buildDashboard(ctx context.Context, periodStart time.Time) (Dashboard, error) {
	today := s.now()

	var (
		period           ledger.PeriodView
		summaries        []ledger.MonthlySummary
		payableTotals    payables.Totals
		receivableTotals receivables.Totals
		reconSummary     reconciliation.Summary
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		period, err = s.ledger.CurrentPeriod(ctx, periodStart)
		return err
	})
	g.Go(func() error {
		var err error
		summaries, err = s.ledger.HistoricalSummaries(ctx, periodStart)
		return err
	})
	g.Go(func() error {
		var err error
		payableTotals, err = s.payables.Totals(ctx, today)
		return err
	})
	g.Go(func() error {
		var err error
		receivableTotals, err = s.receivables.Totals(ctx, today)
		return err
	})
	g.Go(func() error {
		var err error
		reconSummary, err = s.reconciliation.Summary(ctx, reconciliation.Filter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	return Dashboard{
		GeneratedAt:    today,
		PeriodStart:    periodStart,
		CashPosition:   CashPositionOf(period),
		Payables:       payableTotals,
		Receivables:    receivableTotals,
		Reconciliation: reconSummary,
		Trend:          TrendFromSummaries(summaries),
	}, nil
}

// Trend returns the monthly cashflow trend alone, cached separately so the
// chart endpoint stays cheap.
func (s *Service) Trend(ctx context.Context, periodStart time.Time) ([]TrendPoint, error) {
	if periodStart.IsZero() {
		periodStart = s.ledger.DefaultPeriodStart()
	}
	key, err := s.cache.BuildKey(ctx, keyTrend(periodStart)...)
	if err != nil {
		return nil, err
	}
	var points []TrendPoint
	err = s.cache.FetchJSON(ctx, key, &points, func(ctx context.Context) (interface{}, error) {
		summaries, err := s.ledger.HistoricalSummaries(ctx, periodStart)
		if err != nil {
			return nil, err
		}
		return TrendFromSummaries(summaries), nil
	})
	return points, err
}

// Invalidate bumps the cache version after financial writes.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}
