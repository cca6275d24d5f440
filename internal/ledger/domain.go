package ledger

import (
	"time"

	"github.com/google/uuid"
)

// MovementType classifies a cash movement's contribution to the balance.
type MovementType string

const (
	MovementInflow  MovementType = "entrada"
	MovementOutflow MovementType = "saida"
)

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	return t == MovementInflow || t == MovementOutflow
}

// CashMovement is a single ledger entry. Amount is stored non-negative; the
// sign of its contribution comes only from Type.
type CashMovement struct {
	ID           uuid.UUID
	MovementDate time.Time
	Description  string
	Type         MovementType
	Amount       float64
	CategoryID   *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Signed returns the movement's contribution to a running balance.
func (m CashMovement) Signed() float64 {
	if m.Type == MovementOutflow {
		return -m.Amount
	}
	return m.Amount
}

// OrderKey returns the composite sort key for ledger ordering.
func (m CashMovement) OrderKey() OrderKey {
	return OrderKey{MovementDate: m.MovementDate, CreatedAt: m.CreatedAt}
}

// OrderKey is the explicit composite ordering for ledger scans: movement
// date ascending, creation time as tie-breaker for same-day entries.
type OrderKey struct {
	MovementDate time.Time
	CreatedAt    time.Time
}

// Less reports whether k sorts strictly before other.
func (k OrderKey) Less(other OrderKey) bool {
	kd, od := dateOnly(k.MovementDate), dateOnly(other.MovementDate)
	if !kd.Equal(od) {
		return kd.Before(od)
	}
	return k.CreatedAt.Before(other.CreatedAt)
}

// MonthKey identifies a calendar month for historical grouping.
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthKeyOf extracts the month key from a date.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// Before reports whether k is an earlier month than other.
func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// String renders the key as YYYY-MM.
func (k MonthKey) String() string {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// LedgerRow is a movement annotated with the running balance up to and
// including itself.
type LedgerRow struct {
	CashMovement
	RunningBalance float64
}

// PeriodView is the annotated sequence for the current period or a month
// drill-down. EndingBalance is the last row's balance, 0 when empty.
type PeriodView struct {
	Rows          []LedgerRow
	InflowTotal   float64
	OutflowTotal  float64
	EndingBalance float64
}

// MonthlySummary aggregates one historical month.
type MonthlySummary struct {
	Month        MonthKey
	InflowTotal  float64
	OutflowTotal float64
	Balance      float64
}

// CashCategory labels movements. Inactive categories stay out of new-entry
// pickers but remain valid weak references on historical movements.
type CashCategory struct {
	ID     uuid.UUID
	Name   string
	Active bool
}
