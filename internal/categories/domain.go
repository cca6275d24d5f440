package categories

import "github.com/google/uuid"

// CategoryType splits financial categories between income and expense.
// Receivables must reference receita categories, payables despesa.
type CategoryType string

const (
	TypeIncome  CategoryType = "receita"
	TypeExpense CategoryType = "despesa"
)

// Valid reports whether t is a known category type.
func (t CategoryType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// FinancialCategory is a typed label for payables and receivables. Inactive
// categories are hidden from pickers but remain valid weak references.
type FinancialCategory struct {
	ID     uuid.UUID
	Name   string
	Type   CategoryType
	Active bool
}
