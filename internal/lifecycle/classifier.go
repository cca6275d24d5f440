package lifecycle

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/amparo-lar/amparo-lar/internal/shared"
)

// Status is the stored, authoritative lifecycle state of a payable or
// receivable. It is never recomputed from dates by the system; the overdue
// predicate below is a read-only annotation that may disagree with it.
type Status string

const (
	StatusPending   Status = "pendente"
	StatusPaid      Status = "pago"     // payable settlement
	StatusReceived  Status = "recebido" // receivable settlement
	StatusOverdue   Status = "vencido"
	StatusCancelled Status = "cancelado"
)

// transitions is the explicit edge table. Settled and cancelled states are
// terminal; pendente -> vencido is a user-driven edit, not an automatic flip.
var transitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusReceived, StatusOverdue, StatusCancelled},
	StatusOverdue: {StatusPaid, StatusReceived, StatusCancelled},
}

// Known reports whether s is part of the status set.
func Known(s Status) bool {
	switch s {
	case StatusPending, StatusPaid, StatusReceived, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func Terminal(s Status) bool {
	return Known(s) && len(transitions[s]) == 0
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates a status change, returning an InvalidTransitionError
// with full context when the edge is not in the table.
func Transition(entity string, id uuid.UUID, from, to Status) error {
	if !CanTransition(from, to) {
		return &shared.InvalidTransitionError{Entity: entity, ID: id, From: string(from), To: string(to)}
	}
	return nil
}

// Settled reports whether s records a completed payment or receipt.
func Settled(s Status) bool {
	return s == StatusPaid || s == StatusReceived
}

// Entry is the classifier's view of a payable or receivable.
type Entry struct {
	ID      uuid.UUID
	Value   float64
	DueDate time.Time
	Status  Status
}

// IsOverdueNow is the ephemeral overdue predicate: pending and past due as
// of today. Display-only; never written back to Status.
func IsOverdueNow(e Entry, today time.Time) bool {
	return e.Status == StatusPending && shared.DateOnly(e.DueDate).Before(shared.DateOnly(today))
}

// SortCritical orders entries for "critical accounts" lists: stored vencido
// first, then due date ascending. Ties keep their incoming order.
func SortCritical(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		pi, pj := criticalRank(entries[i].Status), criticalRank(entries[j].Status)
		if pi != pj {
			return pi < pj
		}
		return shared.DateOnly(entries[i].DueDate).Before(shared.DateOnly(entries[j].DueDate))
	})
}

func criticalRank(s Status) int {
	if s == StatusOverdue {
		return 0
	}
	return 1
}

// TotalByStatus sums entry values with the given stored status.
func TotalByStatus(entries []Entry, status Status) float64 {
	var total float64
	for _, e := range entries {
		if e.Status == status {
			total += e.Value
		}
	}
	return total
}

// TotalOverdue sums entries that are either stored vencido or pending past
// due. The two sets may overlap or diverge; the union is what dashboards
// alert on.
func TotalOverdue(entries []Entry, today time.Time) float64 {
	var total float64
	for _, e := range entries {
		if e.Status == StatusOverdue || IsOverdueNow(e, today) {
			total += e.Value
		}
	}
	return total
}
