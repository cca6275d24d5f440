package categories

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/amparo-lar/amparo-lar/internal/shared"
)

// CreateCategoryInput carries a new typed category.
type CreateCategoryInput struct {
	Name string `validate:"required,max=120"`
	Type string `validate:"required,oneof=receita despesa"`
}

// Service owns financial category writes and reference checks.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService constructs a category Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// Create stores a new active category.
func (s *Service) Create(ctx context.Context, input CreateCategoryInput) (FinancialCategory, error) {
	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return FinancialCategory{}, shared.NewValidationError("financial_category", verrs[0].Field(), "failed "+verrs[0].Tag()+" validation")
		}
		return FinancialCategory{}, shared.NewValidationError("financial_category", "", err.Error())
	}
	return s.repo.Insert(ctx, FinancialCategory{
		ID:     uuid.New(),
		Name:   input.Name,
		Type:   CategoryType(input.Type),
		Active: true,
	})
}

// List returns categories of a type; activeOnly scopes to picker candidates.
func (s *Service) List(ctx context.Context, typ CategoryType, activeOnly bool) ([]FinancialCategory, error) {
	return s.repo.List(ctx, typ, activeOnly)
}

// Deactivate soft-deletes a category.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetActive(ctx, id, false)
}

// RequireType loads a category and validates it carries the expected type.
// Used by payables (despesa) and receivables (receita) at write time.
func (s *Service) RequireType(ctx context.Context, entity string, id uuid.UUID, want CategoryType) error {
	category, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewValidationError(entity, "categoria_id", "unknown category")
		}
		return err
	}
	if category.Type != want {
		return shared.NewValidationError(entity, "categoria_id", "category must be of type "+string(want))
	}
	return nil
}
