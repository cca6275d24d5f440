package payables

import (
	"time"

	"github.com/google/uuid"

	"github.com/amparo-lar/amparo-lar/internal/lifecycle"
	"github.com/amparo-lar/amparo-lar/internal/shared"
)

// Payable is an obligation to pay a supplier, tracked independently of the
// cash ledger. Status is the stored, authoritative lifecycle state.
type Payable struct {
	ID             uuid.UUID
	Description    string
	Value          float64
	DueDate        time.Time
	SettlementDate *time.Time
	CategoryID     uuid.UUID
	SupplierName   string
	PaymentMethod  string
	Status         lifecycle.Status
	Observations   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Entry adapts the payable for the lifecycle classifier.
func (p Payable) Entry() lifecycle.Entry {
	return lifecycle.Entry{ID: p.ID, Value: p.Value, DueDate: p.DueDate, Status: p.Status}
}

// View is the read-side annotation: the stored status plus the ephemeral
// overdue flag, displayed alongside but never merged.
type View struct {
	Payable
	OverdueNow bool
}

// ListFilter is a conjunctive filter over payables.
type ListFilter struct {
	Statuses   []lifecycle.Status
	CategoryID *uuid.UUID
	Range      shared.DateRange
}

// Totals summarise payables for dashboard cards.
type Totals struct {
	Pending       float64
	Paid          float64
	StoredOverdue float64
	OverdueNow    float64
	Cancelled     float64
}

// CreatePayableInput carries a new payable.
type CreatePayableInput struct {
	Description   string    `validate:"required,max=255"`
	Value         float64   `validate:"required,gt=0"`
	DueDate       time.Time `validate:"required"`
	CategoryID    uuid.UUID `validate:"required"`
	SupplierName  string    `validate:"required,max=255"`
	PaymentMethod string    `validate:"max=120"`
	Observations  string    `validate:"max=1000"`
}

// UpdatePayableInput replaces every mutable field.
type UpdatePayableInput struct {
	ID uuid.UUID `validate:"required"`
	CreatePayableInput
}

// ChangeStatusInput drives a user-initiated lifecycle transition.
type ChangeStatusInput struct {
	ID             uuid.UUID  `validate:"required"`
	Status         string     `validate:"required,oneof=pendente pago vencido cancelado"`
	SettlementDate *time.Time `validate:"-"`
}
