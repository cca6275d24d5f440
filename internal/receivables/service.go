package receivables

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/amparo-lar/amparo-lar/internal/categories"
	"github.com/amparo-lar/amparo-lar/internal/lifecycle"
	"github.com/amparo-lar/amparo-lar/internal/shared"
)

// CategoryGuard validates category references at write time.
type CategoryGuard interface {
	RequireType(ctx context.Context, entity string, id uuid.UUID, want categories.CategoryType) error
}

// Service owns the receivable lifecycle.
type Service struct {
	repo       Repository
	categories CategoryGuard
	validate   *validator.Validate
	now        func() time.Time
}

// NewService constructs a receivable Service.
func NewService(repo Repository, guard CategoryGuard) *Service {
	return &Service{
		repo:       repo,
		categories: guard,
		validate:   validator.New(),
		now:        time.Now,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create validates and stores a new pending receivable. The category must be
// a receita category. A recurrence frequency without the recurring flag is
// rejected.
func (s *Service) Create(ctx context.Context, input CreateReceivableInput) (Receivable, error) {
	if err := s.validateInput(input); err != nil {
		return Receivable{}, err
	}
	if err := validateRecurrence(input); err != nil {
		return Receivable{}, err
	}
	if err := s.categories.RequireType(ctx, "receivable", input.CategoryID, categories.TypeIncome); err != nil {
		return Receivable{}, err
	}
	rec := Receivable{
		ID:                  uuid.New(),
		Description:         input.Description,
		Value:               input.Value,
		DueDate:             shared.DateOnly(input.DueDate),
		CategoryID:          input.CategoryID,
		PayerName:           input.PayerName,
		PaymentMethod:       input.PaymentMethod,
		Status:              lifecycle.StatusPending,
		Observations:        input.Observations,
		Recurring:           input.Recurring,
		RecurrenceFrequency: input.RecurrenceFrequency,
	}
	return s.repo.Insert(ctx, rec)
}

// Update performs a full field replace. The stored status is untouched;
// status changes go through ChangeStatus.
func (s *Service) Update(ctx context.Context, input UpdateReceivableInput) (Receivable, error) {
	if err := s.validateInput(input); err != nil {
		return Receivable{}, err
	}
	if err := validateRecurrence(input.CreateReceivableInput); err != nil {
		return Receivable{}, err
	}
	current, err := s.repo.Get(ctx, input.ID)
	if err != nil {
		return Receivable{}, err
	}
	if current.CategoryID != input.CategoryID {
		if err := s.categories.RequireType(ctx, "receivable", input.CategoryID, categories.TypeIncome); err != nil {
			return Receivable{}, err
		}
	}
	current.Description = input.Description
	current.Value = input.Value
	current.DueDate = shared.DateOnly(input.DueDate)
	current.CategoryID = input.CategoryID
	current.PayerName = input.PayerName
	current.PaymentMethod = input.PaymentMethod
	current.Observations = input.Observations
	current.Recurring = input.Recurring
	current.RecurrenceFrequency = input.RecurrenceFrequency
	return s.repo.Update(ctx, current)
}

// Delete removes a receivable permanently.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ChangeStatus applies a user-driven lifecycle transition through the
// explicit edge table. Settling stamps the receipt date.
func (s *Service) ChangeStatus(ctx context.Context, input ChangeStatusInput) (Receivable, error) {
	if err := s.validateInput(input); err != nil {
		return Receivable{}, err
	}
	target := lifecycle.Status(input.Status)
	current, err := s.repo.Get(ctx, input.ID)
	if err != nil {
		return Receivable{}, err
	}
	if err := lifecycle.Transition("receivable", current.ID, current.Status, target); err != nil {
		return Receivable{}, err
	}
	current.Status = target
	if target == lifecycle.StatusReceived {
		when := shared.DateOnly(s.now())
		if input.SettlementDate != nil {
			when = shared.DateOnly(*input.SettlementDate)
		}
		current.SettlementDate = &when
	} else {
		current.SettlementDate = nil
	}
	return s.repo.Update(ctx, current)
}

// Get loads a single receivable with its overdue annotation.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (View, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	return View{Receivable: rec, OverdueNow: lifecycle.IsOverdueNow(rec.Entry(), s.now())}, nil
}

// List returns receivables matching the conjunctive filter, annotated with
// the overdue-now flag.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]View, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	today := s.now()
	out := make([]View, 0, len(items))
	for _, rec := range items {
		out = append(out, View{Receivable: rec, OverdueNow: lifecycle.IsOverdueNow(rec.Entry(), today)})
	}
	return out, nil
}

// Critical returns open receivables ordered for the alert list: stored
// vencido first, then due date ascending.
func (s *Service) Critical(ctx context.Context) ([]View, error) {
	items, err := s.repo.List(ctx, ListFilter{
		Statuses: []lifecycle.Status{lifecycle.StatusPending, lifecycle.StatusOverdue},
	})
	if err != nil {
		return nil, err
	}
	entries := make([]lifecycle.Entry, len(items))
	byID := make(map[uuid.UUID]Receivable, len(items))
	for i, rec := range items {
		entries[i] = rec.Entry()
		byID[rec.ID] = rec
	}
	lifecycle.SortCritical(entries)

	today := s.now()
	out := make([]View, 0, len(entries))
	for _, e := range entries {
		rec := byID[e.ID]
		out = append(out, View{Receivable: rec, OverdueNow: lifecycle.IsOverdueNow(e, today)})
	}
	return out, nil
}

// Totals aggregates receivable values for dashboard cards. Empty input
// yields zero-valued totals.
func (s *Service) Totals(ctx context.Context, today time.Time) (Totals, error) {
	if today.IsZero() {
		today = s.now()
	}
	items, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return Totals{}, err
	}
	entries := make([]lifecycle.Entry, len(items))
	for i, rec := range items {
		entries[i] = rec.Entry()
	}
	return Totals{
		Pending:       lifecycle.TotalByStatus(entries, lifecycle.StatusPending),
		Received:      lifecycle.TotalByStatus(entries, lifecycle.StatusReceived),
		StoredOverdue: lifecycle.TotalByStatus(entries, lifecycle.StatusOverdue),
		OverdueNow:    lifecycle.TotalOverdue(entries, today),
		Cancelled:     lifecycle.TotalByStatus(entries, lifecycle.StatusCancelled),
	}, nil
}

func validateRecurrence(input CreateReceivableInput) error {
	if !input.Recurring && input.RecurrenceFrequency != nil {
		return shared.NewValidationError("receivable", "frequencia_recorrencia", "frequency set on a non recurring receivable")
	}
	return nil
}

func (s *Service) validateInput(input any) error {
	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return shared.NewValidationError("receivable", verrs[0].Field(), "failed "+verrs[0].Tag()+" validation")
		}
		return shared.NewValidationError("receivable", "", err.Error())
	}
	return nil
}
