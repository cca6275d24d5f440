package reconciliation

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/amparo-lar/amparo-lar/internal/shared"
)

// Service owns bank accounts and the statement reconciliation state machine.
type Service struct {
	repo     Repository
	validate *validator.Validate
	now      func() time.Time
}

// NewService constructs a reconciliation Service.
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

// CreateAccount registers a bank account, active by default.
func (s *Service) CreateAccount(ctx context.Context, input CreateAccountInput) (BankAccount, error) {
	if err := s.validateInput(input); err != nil {
		return BankAccount{}, err
	}
	a := BankAccount{
		ID:             uuid.New(),
		Name:           input.Name,
		Bank:           input.Bank,
		Agency:         input.Agency,
		AccountNumber:  input.AccountNumber,
		CurrentBalance: input.CurrentBalance,
		Active:         true,
	}
	return s.repo.InsertAccount(ctx, a)
}

// ListAccounts returns bank accounts, optionally only active ones.
func (s *Service) ListAccounts(ctx context.Context, activeOnly bool) ([]BankAccount, error) {
	return s.repo.ListAccounts(ctx, activeOnly)
}

// DeactivateAccount hides an account from import screens. Its movements and
// their reconciliation history stay intact.
func (s *Service) DeactivateAccount(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetAccountActive(ctx, id, false)
}

// ReactivateAccount makes an account importable again.
func (s *Service) ReactivateAccount(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetAccountActive(ctx, id, true)
}

// ImportMovement records one statement line in the pendente state. The
// referenced account must exist and be active.
func (s *Service) ImportMovement(ctx context.Context, input CreateMovementInput) (BankMovement, error) {
	if err := s.validateInput(input); err != nil {
		return BankMovement{}, err
	}
	account, err := s.repo.GetAccount(ctx, input.BankAccountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return BankMovement{}, shared.NewValidationError("bank_movement", "conta_bancaria_id", "unknown bank account")
		}
		return BankMovement{}, err
	}
	if !account.Active {
		return BankMovement{}, shared.NewValidationError("bank_movement", "conta_bancaria_id", "bank account is inactive")
	}
	m := BankMovement{
		ID:            uuid.New(),
		MovementDate:  shared.DateOnly(input.MovementDate),
		Description:   input.Description,
		Value:         input.Value,
		Type:          MovementType(input.Type),
		Status:        StatusPending,
		BankAccountID: input.BankAccountID,
		Document:      input.Document,
		Observations:  input.Observations,
	}
	return s.repo.InsertMovement(ctx, m)
}

// Conciliate marks a pending movement as matched against the internal
// records. Movements already resolved are rejected.
func (s *Service) Conciliate(ctx context.Context, id uuid.UUID) (BankMovement, error) {
	return s.resolve(ctx, id, StatusReconciled, "")
}

// MarkDivergent marks a pending movement as mismatched, keeping the operator
// note alongside it.
func (s *Service) MarkDivergent(ctx context.Context, id uuid.UUID, note string) (BankMovement, error) {
	return s.resolve(ctx, id, StatusDivergent, note)
}

func (s *Service) resolve(ctx context.Context, id uuid.UUID, target Status, note string) (BankMovement, error) {
	current, err := s.repo.GetMovement(ctx, id)
	if err != nil {
		return BankMovement{}, err
	}
	if err := Transition(current.ID, current.Status, target); err != nil {
		return BankMovement{}, err
	}
	return s.repo.UpdateMovementStatus(ctx, id, target, note)
}

// GetMovement loads a single bank movement.
func (s *Service) GetMovement(ctx context.Context, id uuid.UUID) (BankMovement, error) {
	return s.repo.GetMovement(ctx, id)
}

// ListMovements returns statement lines matching the conjunctive filter.
func (s *Service) ListMovements(ctx context.Context, filter Filter) ([]BankMovement, error) {
	if filter.Status != "" && !Known(filter.Status) {
		return nil, shared.NewValidationError("bank_movement", "status", "unknown status "+string(filter.Status))
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, shared.NewValidationError("bank_movement", "tipo", "unknown type "+string(filter.Type))
	}
	return s.repo.ListMovements(ctx, filter)
}

// DeleteMovement removes a statement line. Only pendente lines may be
// removed; resolved lines are part of the reconciliation record.
func (s *Service) DeleteMovement(ctx context.Context, id uuid.UUID) error {
	current, err := s.repo.GetMovement(ctx, id)
	if err != nil {
		return err
	}
	if current.Status != StatusPending {
		return &shared.InvalidTransitionError{
			Entity: "bank_movement",
			ID:     id,
			From:   string(current.Status),
			To:     "removed",
		}
	}
	return s.repo.DeleteMovement(ctx, id)
}

// Summary aggregates the filtered movement set.
func (s *Service) Summary(ctx context.Context, filter Filter) (Summary, error) {
	movements, err := s.ListMovements(ctx, filter)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(movements), nil
}

func (s *Service) validateInput(input any) error {
	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return shared.NewValidationError("bank_movement", verrs[0].Field(), "failed "+verrs[0].Tag()+" validation")
		}
		return shared.NewValidationError("bank_movement", "", err.Error())
	}
	return nil
}
