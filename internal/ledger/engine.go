package ledger

import (
	"sort"
	"time"
)

// The engine functions are pure transforms over already-fetched movement
// collections. Malformed amounts are rejected at write time by the service;
// everything here assumes valid inputs.

// ComputeCurrentPeriod filters movements on or after periodStart, orders
// them by (movement date, created at) and annotates each row with the
// running balance.
func ComputeCurrentPeriod(movements []CashMovement, periodStart time.Time) PeriodView {
	start := dateOnly(periodStart)
	scoped := make([]CashMovement, 0, len(movements))
	for _, m := range movements {
		if !dateOnly(m.MovementDate).Before(start) {
			scoped = append(scoped, m)
		}
	}
	return scan(scoped)
}

// ComputeHistoricalSummaries groups movements strictly before periodStart
// into monthly summaries, most recent month first.
func ComputeHistoricalSummaries(movements []CashMovement, periodStart time.Time) []MonthlySummary {
	start := dateOnly(periodStart)
	byMonth := make(map[MonthKey]*MonthlySummary)
	for _, m := range movements {
		if !dateOnly(m.MovementDate).Before(start) {
			continue
		}
		key := MonthKeyOf(m.MovementDate)
		summary, ok := byMonth[key]
		if !ok {
			summary = &MonthlySummary{Month: key}
			byMonth[key] = summary
		}
		if m.Type == MovementOutflow {
			summary.OutflowTotal += m.Amount
		} else {
			summary.InflowTotal += m.Amount
		}
	}
	out := make([]MonthlySummary, 0, len(byMonth))
	for _, summary := range byMonth {
		summary.Balance = summary.InflowTotal - summary.OutflowTotal
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[j].Month.Before(out[i].Month)
	})
	return out
}

// ClosePeriod advances the current-period boundary to the first day of the
// month following current. Pure view-boundary shift: no data moves. The
// operation is one-way; each call advances by exactly one month.
func ClosePeriod(current time.Time) time.Time {
	y, m, _ := current.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}

// DetailForMonth runs the period scan restricted to a single month, for
// report and drill-down views.
func DetailForMonth(movements []CashMovement, year int, month time.Month) PeriodView {
	key := MonthKey{Year: year, Month: month}
	scoped := make([]CashMovement, 0, len(movements))
	for _, m := range movements {
		if MonthKeyOf(m.MovementDate) == key {
			scoped = append(scoped, m)
		}
	}
	return scan(scoped)
}

// scan orders the movements and accumulates the running balance.
func scan(movements []CashMovement) PeriodView {
	ordered := make([]CashMovement, len(movements))
	copy(ordered, movements)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OrderKey().Less(ordered[j].OrderKey())
	})

	view := PeriodView{Rows: make([]LedgerRow, 0, len(ordered))}
	var balance float64
	for _, m := range ordered {
		balance += m.Signed()
		if m.Type == MovementOutflow {
			view.OutflowTotal += m.Amount
		} else {
			view.InflowTotal += m.Amount
		}
		view.Rows = append(view.Rows, LedgerRow{CashMovement: m, RunningBalance: balance})
	}
	view.EndingBalance = balance
	return view
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
