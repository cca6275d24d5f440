package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/amparo-lar/amparo-lar/internal/shared"
)

type memoryLedgerRepo struct {
	movements  map[uuid.UUID]CashMovement
	categories map[uuid.UUID]CashCategory
	clock      time.Time
}

func newMemoryLedgerRepo() *memoryLedgerRepo {
	return &memoryLedgerRepo{
		movements:  make(map[uuid.UUID]CashMovement),
		categories: make(map[uuid.UUID]CashCategory),
		clock:      time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
	}
}

func (r *memoryLedgerRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *memoryLedgerRepo) ListMovements(ctx context.Context) ([]CashMovement, error) {
	out := make([]CashMovement, 0, len(r.movements))
	for _, m := range r.movements {
		out = append(out, m)
	}
	return out, nil
}

func (r *memoryLedgerRepo) GetMovement(ctx context.Context, id uuid.UUID) (CashMovement, error) {
	m, ok := r.movements[id]
	if !ok {
		return CashMovement{}, shared.ErrNotFound
	}
	return m, nil
}

func (r *memoryLedgerRepo) InsertMovement(ctx context.Context, m CashMovement) (CashMovement, error) {
	now := r.tick()
	m.CreatedAt = now
	m.UpdatedAt = now
	r.movements[m.ID] = m
	return m, nil
}

func (r *memoryLedgerRepo) UpdateMovement(ctx context.Context, m CashMovement) (CashMovement, error) {
	if _, ok := r.movements[m.ID]; !ok {
		return CashMovement{}, shared.ErrNotFound
	}
	m.UpdatedAt = r.tick()
	r.movements[m.ID] = m
	return m, nil
}

func (r *memoryLedgerRepo) DeleteMovement(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.movements[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.movements, id)
	return nil
}

func (r *memoryLedgerRepo) ListCategories(ctx context.Context, activeOnly bool) ([]CashCategory, error) {
	var out []CashCategory
	for _, c := range r.categories {
		if activeOnly && !c.Active {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *memoryLedgerRepo) GetCategory(ctx context.Context, id uuid.UUID) (CashCategory, error) {
	c, ok := r.categories[id]
	if !ok {
		return CashCategory{}, shared.ErrNotFound
	}
	return c, nil
}

func (r *memoryLedgerRepo) InsertCategory(ctx context.Context, c CashCategory) (CashCategory, error) {
	r.categories[c.ID] = c
	return c, nil
}

func (r *memoryLedgerRepo) SetCategoryActive(ctx context.Context, id uuid.UUID, active bool) error {
	c, ok := r.categories[id]
	if !ok {
		return shared.ErrNotFound
	}
	c.Active = active
	r.categories[id] = c
	return nil
}

func TestCreateMovementRejectsMalformedAmount(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryLedgerRepo())

	_, err := svc.CreateMovement(ctx, CreateMovementInput{
		MovementDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Description:  "doacao em especie",
		Type:         "entrada",
		Amount:       -10,
	})
	require.Error(t, err)
	require.True(t, shared.IsValidation(err))

	_, err = svc.CreateMovement(ctx, CreateMovementInput{
		MovementDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Description:  "doacao em especie",
		Type:         "transferencia",
		Amount:       10,
	})
	require.Error(t, err)
	require.True(t, shared.IsValidation(err))
}

func TestCreateMovementRejectsInactiveCategory(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLedgerRepo()
	svc := NewService(repo)

	inactive := CashCategory{ID: uuid.New(), Name: "Manutencao", Active: false}
	repo.categories[inactive.ID] = inactive

	_, err := svc.CreateMovement(ctx, CreateMovementInput{
		MovementDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Description:  "conserto telhado",
		Type:         "saida",
		Amount:       350,
		CategoryID:   &inactive.ID,
	})
	require.Error(t, err)
	require.True(t, shared.IsValidation(err))
}

func TestUpdateMovementKeepsWeakCategoryReference(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLedgerRepo()
	svc := NewService(repo)

	category := CashCategory{ID: uuid.New(), Name: "Alimentacao", Active: true}
	repo.categories[category.ID] = category

	created, err := svc.CreateMovement(ctx, CreateMovementInput{
		MovementDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Description:  "compras do mes",
		Type:         "saida",
		Amount:       420,
		CategoryID:   &category.ID,
	})
	require.NoError(t, err)

	// Deactivating the category must not block edits that keep the same
	// weak reference.
	require.NoError(t, svc.DeactivateCategory(ctx, category.ID))
	updated, err := svc.UpdateMovement(ctx, UpdateMovementInput{
		ID: created.ID,
		CreateMovementInput: CreateMovementInput{
			MovementDate: created.MovementDate,
			Description:  "compras do mes (corrigido)",
			Type:         "saida",
			Amount:       450,
			CategoryID:   &category.ID,
		},
	})
	require.NoError(t, err)
	require.Equal(t, 450.0, updated.Amount)
	require.Equal(t, &category.ID, updated.CategoryID)
}

func TestCurrentPeriodDefaultsToMonthStart(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLedgerRepo()
	svc := NewService(repo)
	svc.WithNow(func() time.Time { return time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC) })

	_, err := svc.CreateMovement(ctx, CreateMovementInput{
		MovementDate: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
		Description:  "mensalidade janeiro",
		Type:         "entrada",
		Amount:       900,
	})
	require.NoError(t, err)
	_, err = svc.CreateMovement(ctx, CreateMovementInput{
		MovementDate: time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
		Description:  "mensalidade fevereiro",
		Type:         "entrada",
		Amount:       950,
	})
	require.NoError(t, err)

	view, err := svc.CurrentPeriod(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, view.Rows, 1)
	require.InDelta(t, 950, view.EndingBalance, 1e-9)

	summaries, err := svc.HistoricalSummaries(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.InDelta(t, 900, summaries[0].Balance, 1e-9)
}

func TestDeleteMovementNotFound(t *testing.T) {
	svc := NewService(newMemoryLedgerRepo())
	err := svc.DeleteMovement(context.Background(), uuid.New())
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListCategoriesActiveOnly(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLedgerRepo()
	svc := NewService(repo)

	active, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Doacoes"})
	require.NoError(t, err)
	retired, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Eventos"})
	require.NoError(t, err)
	require.NoError(t, svc.DeactivateCategory(ctx, retired.ID))

	pickers, err := svc.ListCategories(ctx, true)
	require.NoError(t, err)
	require.Len(t, pickers, 1)
	require.Equal(t, active.ID, pickers[0].ID)

	all, err := svc.ListCategories(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
}
