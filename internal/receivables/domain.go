package receivables

import (
	"time"

	"github.com/google/uuid"

	"github.com/amparo-lar/amparo-lar/internal/lifecycle"
	"github.com/amparo-lar/amparo-lar/internal/shared"
)

// Receivable is an expectation to receive from a payer. Recurrence fields
// are descriptive only; nothing generates future occurrences from them.
type Receivable struct {
	ID                  uuid.UUID
	Description         string
	Value               float64
	DueDate             time.Time
	SettlementDate      *time.Time
	CategoryID          uuid.UUID
	PayerName           string
	PaymentMethod       string
	Status              lifecycle.Status
	Observations        string
	Recurring           bool
	RecurrenceFrequency *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Entry adapts the receivable for the lifecycle classifier.
func (r Receivable) Entry() lifecycle.Entry {
	return lifecycle.Entry{ID: r.ID, Value: r.Value, DueDate: r.DueDate, Status: r.Status}
}

// View carries the stored status plus the ephemeral overdue flag.
type View struct {
	Receivable
	OverdueNow bool
}

// ListFilter is a conjunctive filter over receivables.
type ListFilter struct {
	Statuses   []lifecycle.Status
	CategoryID *uuid.UUID
	Range      shared.DateRange
}

// Totals summarise receivables for dashboard cards.
type Totals struct {
	Pending       float64
	Received      float64
	StoredOverdue float64
	OverdueNow    float64
	Cancelled     float64
}

// CreateReceivableInput carries a new receivable.
type CreateReceivableInput struct {
	Description         string    `validate:"required,max=255"`
	Value               float64   `validate:"required,gt=0"`
	DueDate             time.Time `validate:"required"`
	CategoryID          uuid.UUID `validate:"required"`
	PayerName           string    `validate:"required,max=255"`
	PaymentMethod       string    `validate:"max=120"`
	Observations        string    `validate:"max=1000"`
	Recurring           bool      `validate:"-"`
	RecurrenceFrequency *string   `validate:"omitempty,oneof=mensal trimestral semestral anual"`
}

// UpdateReceivableInput replaces every mutable field.
type UpdateReceivableInput struct {
	ID uuid.UUID `validate:"required"`
	CreateReceivableInput
}

// ChangeStatusInput drives a user-initiated lifecycle transition.
type ChangeStatusInput struct {
	ID             uuid.UUID  `validate:"required"`
	Status         string     `validate:"required,oneof=pendente recebido vencido cancelado"`
	SettlementDate *time.Time `validate:"-"`
}
