package payables

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/amparo-lar/amparo-lar/internal/categories"
	"github.com/amparo-lar/amparo-lar/internal/lifecycle"
	"github.com/amparo-lar/amparo-lar/internal/shared"
)

type memoryPayableRepo struct {
	items map[uuid.UUID]Payable
}

func newMemoryPayableRepo() *memoryPayableRepo {
	return &memoryPayableRepo{items: make(map[uuid.UUID]Payable)}
}

func (r *memoryPayableRepo) List(ctx context.Context, filter ListFilter) ([]Payable, error) {
	var out []Payable
	for _, p := range r.items {
		if len(filter.Statuses) > 0 {
			match := false
			for _, s := range filter.Statuses {
				if p.Status == s {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		if !filter.Range.Contains(p.DueDate) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryPayableRepo) Get(ctx context.Context, id uuid.UUID) (Payable, error) {
	p, ok := r.items[id]
	if !ok {
		return Payable{}, shared.ErrNotFound
	}
	return p, nil
}

func (r *memoryPayableRepo) Insert(ctx context.Context, p Payable) (Payable, error) {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.items[p.ID] = p
	return p, nil
}

func (r *memoryPayableRepo) Update(ctx context.Context, p Payable) (Payable, error) {
	if _, ok := r.items[p.ID]; !ok {
		return Payable{}, shared.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	r.items[p.ID] = p
	return p, nil
}

func (r *memoryPayableRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type stubCategoryGuard struct {
	types map[uuid.UUID]categories.CategoryType
}

func (g *stubCategoryGuard) RequireType(ctx context.Context, entity string, id uuid.UUID, want categories.CategoryType) error {
	typ, ok := g.types[id]
	if !ok {
		return shared.NewValidationError(entity, "categoria_id", "unknown category")
	}
	if typ != want {
		return shared.NewValidationError(entity, "categoria_id", "category must be of type "+string(want))
	}
	return nil
}

func newTestService() (*Service, *memoryPayableRepo, uuid.UUID) {
	repo := newMemoryPayableRepo()
	expense := uuid.New()
	guard := &stubCategoryGuard{types: map[uuid.UUID]categories.CategoryType{
		expense: categories.TypeExpense,
	}}
	svc := NewService(repo, guard)
	svc.WithNow(func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) })
	return svc, repo, expense
}

func TestCreatePayable(t *testing.T) {
	ctx := context.Background()
	svc, _, expense := newTestService()

	p, err := svc.Create(ctx, CreatePayableInput{
		Description:  "energia eletrica",
		Value:        820.50,
		DueDate:      time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		CategoryID:   expense,
		SupplierName: "Companhia de Energia",
	})
	require.NoError(t, err)
	require.Equal(t, lifecycle.StatusPending, p.Status)
	require.Nil(t, p.SettlementDate)
}

func TestCreatePayableRejectsIncomeCategory(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	income := uuid.New()
	svc.categories.(*stubCategoryGuard).types[income] = categories.TypeIncome

	_, err := svc.Create(ctx, CreatePayableInput{
		Description:  "mensalidade",
		Value:        100,
		DueDate:      time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		CategoryID:   income,
		SupplierName: "Fornecedor X",
	})
	require.Error(t, err)
	require.True(t, shared.IsValidation(err))
}

func TestChangeStatusSettleStampsPaymentDate(t *testing.T) {
	ctx := context.Background()
	svc, _, expense := newTestService()

	p, err := svc.Create(ctx, CreatePayableInput{
		Description:  "fraldas geriatricas",
		Value:        300,
		DueDate:      time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		CategoryID:   expense,
		SupplierName: "Distribuidora Sul",
	})
	require.NoError(t, err)

	paid, err := svc.ChangeStatus(ctx, ChangeStatusInput{ID: p.ID, Status: "pago"})
	require.NoError(t, err)
	require.Equal(t, lifecycle.StatusPaid, paid.Status)
	require.NotNil(t, paid.SettlementDate)
	require.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *paid.SettlementDate)
}

func TestChangeStatusFromTerminalRejected(t *testing.T) {
	ctx := context.Background()
	svc, _, expense := newTestService()

	p, err := svc.Create(ctx, CreatePayableInput{
		Description:  "material de limpeza",
		Value:        90,
		DueDate:      time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		CategoryID:   expense,
		SupplierName: "Limpamax",
	})
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, ChangeStatusInput{ID: p.ID, Status: "cancelado"})
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, ChangeStatusInput{ID: p.ID, Status: "pago"})
	require.Error(t, err)
	require.True(t, shared.IsInvalidTransition(err))
}

func TestListAnnotatesOverdueWithoutMutatingStatus(t *testing.T) {
	ctx := context.Background()
	svc, repo, expense := newTestService()

	p, err := svc.Create(ctx, CreatePayableInput{
		Description:  "manutencao elevador",
		Value:        1200,
		DueDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		CategoryID:   expense,
		SupplierName: "ElevaTec",
	})
	require.NoError(t, err)

	views, err := svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.True(t, views[0].OverdueNow)
	require.Equal(t, lifecycle.StatusPending, views[0].Status)

	// The annotation never leaks into storage.
	stored := repo.items[p.ID]
	require.Equal(t, lifecycle.StatusPending, stored.Status)
}

func TestCriticalOrdering(t *testing.T) {
	ctx := context.Background()
	svc, repo, expense := newTestService()

	mk := func(desc string, due time.Time, status lifecycle.Status) uuid.UUID {
		p, err := svc.Create(ctx, CreatePayableInput{
			Description:  desc,
			Value:        10,
			DueDate:      due,
			CategoryID:   expense,
			SupplierName: "F",
		})
		require.NoError(t, err)
		if status != lifecycle.StatusPending {
			stored := repo.items[p.ID]
			stored.Status = status
			repo.items[p.ID] = stored
		}
		return p.ID
	}

	overdueLate := mk("a", time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC), lifecycle.StatusOverdue)
	pendingSoon := mk("b", time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), lifecycle.StatusPending)
	overdueSoon := mk("c", time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), lifecycle.StatusOverdue)

	views, err := svc.Critical(ctx)
	require.NoError(t, err)
	require.Len(t, views, 3)
	require.Equal(t, overdueSoon, views[0].ID)
	require.Equal(t, overdueLate, views[1].ID)
	require.Equal(t, pendingSoon, views[2].ID)
}

func TestTotalsEmpty(t *testing.T) {
	svc, _, _ := newTestService()
	totals, err := svc.Totals(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Zero(t, totals.Pending)
	require.Zero(t, totals.OverdueNow)
}
