package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/amparo-lar/amparo-lar/internal/shared"
)

// CreateMovementInput carries a new ledger entry. Malformed amounts are
// rejected here, before any aggregation sees them.
type CreateMovementInput struct {
	MovementDate time.Time  `validate:"required"`
	Description  string     `validate:"required,max=255"`
	Type         string     `validate:"required,oneof=entrada saida"`
	Amount       float64    `validate:"required,gt=0"`
	CategoryID   *uuid.UUID `validate:"-"`
}

// UpdateMovementInput replaces every mutable field of an entry.
type UpdateMovementInput struct {
	ID uuid.UUID `validate:"required"`
	CreateMovementInput
}

// CreateCategoryInput carries a new cash category.
type CreateCategoryInput struct {
	Name string `validate:"required,max=120"`
}

// Service owns ledger writes and exposes the period views.
type Service struct {
	repo     Repository
	validate *validator.Validate
	now      func() time.Time
}

// NewService constructs a ledger Service.
func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(),
		now:      time.Now,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// DefaultPeriodStart is the first day of the current calendar month.
func (s *Service) DefaultPeriodStart() time.Time {
	return shared.FirstOfMonth(s.now().UTC())
}

// CreateMovement validates and stores a new entry.
func (s *Service) CreateMovement(ctx context.Context, input CreateMovementInput) (CashMovement, error) {
	if err := s.validateInput("cash_movement", input); err != nil {
		return CashMovement{}, err
	}
	if err := s.checkCategoryRef(ctx, input.CategoryID, true); err != nil {
		return CashMovement{}, err
	}
	m := CashMovement{
		ID:           uuid.New(),
		MovementDate: shared.DateOnly(input.MovementDate),
		Description:  input.Description,
		Type:         MovementType(input.Type),
		Amount:       input.Amount,
		CategoryID:   input.CategoryID,
	}
	return s.repo.InsertMovement(ctx, m)
}

// UpdateMovement performs a full field replace of an existing entry.
func (s *Service) UpdateMovement(ctx context.Context, input UpdateMovementInput) (CashMovement, error) {
	if err := s.validateInput("cash_movement", input); err != nil {
		return CashMovement{}, err
	}
	current, err := s.repo.GetMovement(ctx, input.ID)
	if err != nil {
		return CashMovement{}, err
	}
	// Historical movements may keep a weak reference to a since-deactivated
	// category; only new references are restricted to active ones.
	requireActive := input.CategoryID != nil &&
		(current.CategoryID == nil || *current.CategoryID != *input.CategoryID)
	if err := s.checkCategoryRef(ctx, input.CategoryID, requireActive); err != nil {
		return CashMovement{}, err
	}
	current.MovementDate = shared.DateOnly(input.MovementDate)
	current.Description = input.Description
	current.Type = MovementType(input.Type)
	current.Amount = input.Amount
	current.CategoryID = input.CategoryID
	return s.repo.UpdateMovement(ctx, current)
}

// DeleteMovement removes an entry permanently. No soft delete or undo.
func (s *Service) DeleteMovement(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteMovement(ctx, id)
}

// CurrentPeriod returns the annotated current-period view. A zero
// periodStart defaults to the first day of the current month.
func (s *Service) CurrentPeriod(ctx context.Context, periodStart time.Time) (PeriodView, error) {
	if periodStart.IsZero() {
		periodStart = s.DefaultPeriodStart()
	}
	movements, err := s.repo.ListMovements(ctx)
	if err != nil {
		return PeriodView{}, err
	}
	return ComputeCurrentPeriod(movements, periodStart), nil
}

// HistoricalSummaries returns the monthly aggregation of movements before
// periodStart.
func (s *Service) HistoricalSummaries(ctx context.Context, periodStart time.Time) ([]MonthlySummary, error) {
	if periodStart.IsZero() {
		periodStart = s.DefaultPeriodStart()
	}
	movements, err := s.repo.ListMovements(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeHistoricalSummaries(movements, periodStart), nil
}

// MonthDetail returns the drill-down scan for one historical month.
func (s *Service) MonthDetail(ctx context.Context, year int, month time.Month) (PeriodView, error) {
	movements, err := s.repo.ListMovements(ctx)
	if err != nil {
		return PeriodView{}, err
	}
	return DetailForMonth(movements, year, month), nil
}

// CreateCategory stores a new active category.
func (s *Service) CreateCategory(ctx context.Context, input CreateCategoryInput) (CashCategory, error) {
	if err := s.validateInput("cash_category", input); err != nil {
		return CashCategory{}, err
	}
	return s.repo.InsertCategory(ctx, CashCategory{ID: uuid.New(), Name: input.Name, Active: true})
}

// DeactivateCategory soft-deletes a category. Existing movements keep their
// reference.
func (s *Service) DeactivateCategory(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetCategoryActive(ctx, id, false)
}

// ReactivateCategory restores a category to new-entry pickers.
func (s *Service) ReactivateCategory(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetCategoryActive(ctx, id, true)
}

// ListCategories lists categories; activeOnly scopes to picker candidates.
func (s *Service) ListCategories(ctx context.Context, activeOnly bool) ([]CashCategory, error) {
	return s.repo.ListCategories(ctx, activeOnly)
}

func (s *Service) checkCategoryRef(ctx context.Context, id *uuid.UUID, requireActive bool) error {
	if id == nil {
		return nil
	}
	category, err := s.repo.GetCategory(ctx, *id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewValidationError("cash_movement", "category_id", "unknown category")
		}
		return err
	}
	if requireActive && !category.Active {
		return shared.NewValidationError("cash_movement", "category_id", "category is inactive")
	}
	return nil
}

func (s *Service) validateInput(entity string, input any) error {
	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return shared.NewValidationError(entity, verrs[0].Field(), "failed "+verrs[0].Tag()+" validation")
		}
		return shared.NewValidationError(entity, "", err.Error())
	}
	return nil
}
