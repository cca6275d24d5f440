package reports

import (
	"time"

	"github.com/amparo-lar/amparo-lar/internal/ledger"
	"github.com/amparo-lar/amparo-lar/internal/payables"
	"github.com/amparo-lar/amparo-lar/internal/receivables"
	"github.com/amparo-lar/amparo-lar/internal/reconciliation"
)

// Dashboard is the consolidated financial snapshot for the admin screens.
// Every figure is recomputed from the underlying records; nothing here is
// stored back.
type Dashboard struct {
	GeneratedAt    time.Time              `json:"generated_at"`
	PeriodStart    time.Time              `json:"period_start"`
	CashPosition   CashPosition           `json:"cash_position"`
	Payables       payables.Totals        `json:"payables"`
	Receivables    receivables.Totals     `json:"receivables"`
	Reconciliation reconciliation.Summary `json:"reconciliation"`
	Trend          []TrendPoint           `json:"trend"`
}

// CashPosition condenses the current-period ledger view.
type CashPosition struct {
	InflowTotal   float64 `json:"inflow_total"`
	OutflowTotal  float64 `json:"outflow_total"`
	EndingBalance float64 `json:"ending_balance"`
	MovementCount int     `json:"movement_count"`
}

// TrendPoint is one month of cash movement for the trend chart.
type TrendPoint struct {
	Period  string  `json:"period"`
	Inflow  float64 `json:"inflow"`
	Outflow float64 `json:"outflow"`
	Net     float64 `json:"net"`
}

// CashPositionOf folds a ledger period view into the dashboard shape.
func CashPositionOf(view ledger.PeriodView) CashPosition {
	return CashPosition{
		InflowTotal:   view.InflowTotal,
		OutflowTotal:  view.OutflowTotal,
		EndingBalance: view.EndingBalance,
		MovementCount: len(view.Rows),
	}
}

// TrendFromSummaries turns the most-recent-first monthly summaries into
// chronological trend points for charting.
func TrendFromSummaries(summaries []ledger.MonthlySummary) []TrendPoint {
	out := make([]TrendPoint, 0, len(summaries))
	for i := len(summaries) - 1; i >= 0; i-- {
		s := summaries[i]
		out = append(out, TrendPoint{
			Period:  s.Month.String(),
			Inflow:  s.InflowTotal,
			Outflow: s.OutflowTotal,
			Net:     s.Balance,
		})
	}
	return out
}
