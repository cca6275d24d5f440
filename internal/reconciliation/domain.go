package reconciliation

import (
	"time"

	"github.com/google/uuid"

	"github.com/amparo-lar/amparo-lar/internal/shared"
)

// Status tracks a bank movement through reconciliation. Movements start
// pendente and end in exactly one of the two terminal states.
type Status string

const (
	StatusPending    Status = "pendente"
	StatusReconciled Status = "conciliado"
	StatusDivergent  Status = "divergente"
)

var transitions = map[Status][]Status{
	StatusPending: {StatusReconciled, StatusDivergent},
}

// Known reports whether the status is one of the three reconciliation states.
func Known(s Status) bool {
	switch s {
	case StatusPending, StatusReconciled, StatusDivergent:
		return true
	}
	return false
}

// Terminal reports whether no further transitions leave the status.
func Terminal(s Status) bool {
	return len(transitions[s]) == 0
}

// Transition validates a reconciliation edge, returning an
// InvalidTransitionError when the edge is not in the table.
func Transition(id uuid.UUID, from, to Status) error {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &shared.InvalidTransitionError{
		Entity: "bank_movement",
		ID:     id,
		From:   string(from),
		To:     string(to),
	}
}

// MovementType mirrors the ledger direction on bank statements.
type MovementType string

const (
	TypeInflow  MovementType = "entrada"
	TypeOutflow MovementType = "saida"
)

// Valid reports whether the movement type is entrada or saida.
func (t MovementType) Valid() bool {
	return t == TypeInflow || t == TypeOutflow
}

// BankAccount identifies an institution account statements are imported for.
type BankAccount struct {
	ID             uuid.UUID
	Name           string
	Bank           string
	Agency         string
	AccountNumber  string
	CurrentBalance float64
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BankMovement is one statement line under reconciliation.
type BankMovement struct {
	ID            uuid.UUID
	MovementDate  time.Time
	Description   string
	Value         float64
	Type          MovementType
	Status        Status
	BankAccountID uuid.UUID
	Document      string
	Observations  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Filter narrows bank movements. All set fields apply conjunctively;
// Search matches the description case-insensitively.
type Filter struct {
	Search        string
	Status        Status
	BankAccountID *uuid.UUID
	Type          MovementType
	Range         shared.DateRange
}

// Summary aggregates a filtered movement set for the reconciliation screen.
type Summary struct {
	PendingCount    int
	ReconciledCount int
	DivergentCount  int
	PendingValue    float64
	ReconciledValue float64
	DivergentValue  float64
	InflowValue     float64
	OutflowValue    float64
}

// Summarize folds movements into per-status counts and sums plus the
// direction totals.
func Summarize(movements []BankMovement) Summary {
	var sum Summary
	for _, m := range movements {
		switch m.Status {
		case StatusPending:
			sum.PendingCount++
			sum.PendingValue += m.Value
		case StatusReconciled:
			sum.ReconciledCount++
			sum.ReconciledValue += m.Value
		case StatusDivergent:
			sum.DivergentCount++
			sum.DivergentValue += m.Value
		}
		switch m.Type {
		case TypeInflow:
			sum.InflowValue += m.Value
		case TypeOutflow:
			sum.OutflowValue += m.Value
		}
	}
	return sum
}

// CreateAccountInput carries a new bank account.
type CreateAccountInput struct {
	Name           string  `validate:"required,max=255"`
	Bank           string  `validate:"required,max=120"`
	Agency         string  `validate:"max=20"`
	AccountNumber  string  `validate:"max=30"`
	CurrentBalance float64 `validate:"-"`
}

// CreateMovementInput carries a new statement line. Imported lines always
// start pendente.
type CreateMovementInput struct {
	MovementDate  time.Time `validate:"required"`
	Description   string    `validate:"required,max=255"`
	Value         float64   `validate:"required,gt=0"`
	Type          string    `validate:"required,oneof=entrada saida"`
	BankAccountID uuid.UUID `validate:"required"`
	Document      string    `validate:"max=60"`
	Observations  string    `validate:"max=1000"`
}
