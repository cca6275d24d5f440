package receivables

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

type memoryReceivableRepo struct {
	items map[uuid.UUID]Receivable
}

func newMemoryReceivableRepo() *memoryReceivableRepo {
	return &memoryReceivableRepo{items: make(map[uuid.UUID]Receivable)}
}

func (r *memoryReceivableRepo) List(ctx context.Context, filter ListFilter) ([]Receivable, error) {
	var out []Receivable
	for _, rec := range r.items {
		if len(filter.Statuses) > 0 {
			match := false
			for _, s := range filter.Statuses {
				if rec.Status == s {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		if filter.CategoryID != nil && rec.CategoryID != *filter.CategoryID {
			continue
		}
		if !filter.Range.Contains(rec.DueDate) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *memoryReceivableRepo) Get(ctx context.Context, id uuid.UUID) (Receivable, error) {
	rec, ok := r.items[id]
	if !ok {
		return Receivable{}, shared.ErrNotFound
	}
	return rec, nil
}

func (r *memoryReceivableRepo) Insert(ctx context.Context, rec Receivable) (Receivable, error) {
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	r.items[rec.ID] = rec
	return rec, nil
}

func (r *memoryReceivableRepo) Update(ctx context.Context, rec Receivable) (Receivable, error) {
	if _, ok := r.items[rec.ID]; !ok {
		return Receivable{}, shared.ErrNotFound
	}
	rec.UpdatedAt = time.Now()
	r.items[rec.ID] = rec
	return rec, nil
}

func (r *memoryReceivableRepo) Delete(ctx context.Context, id uuid.UUID) error {
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

func newTestService() (*Service, *memoryReceivableRepo, uuid.UUID) {
	repo := newMemoryReceivableRepo()
	income := uuid.New()
	guard := &stubCategoryGuard{types: map[uuid.UUID]categories.CategoryType{
		income: categories.TypeIncome,
	}}
	svc := NewService(repo, guard)
	svc.WithNow(func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) })
	return svc, repo, income
}

func TestCreateReceivable(t *testing.T) {
	ctx := context.Background()
	svc, _, income := newTestService()

	rec, err := svc.Create(ctx, CreateReceivableInput{
		Description: "mensalidade residente",
		Value:       2500,
		DueDate:     time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		CategoryID:  income,
		PayerName:   "Familia Souza",
	})
	require.NoError(t, err)
	require.Equal(t, lifecycle.StatusPending, rec.Status)
	require.Nil(t, rec.SettlementDate)
	require.False(t, rec.Recurring)
}

func TestCreateReceivableRejectsExpenseCategory(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	expense := uuid.New()
	svc.categories.(*stubCategoryGuard).types[expense] = categories.TypeExpense

	_, err := svc.Create(ctx, CreateReceivableInput{
		Description: "doacao",
		Value:       500,
		DueDate:     time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		CategoryID:  expense,
		PayerName:   "Doador Anonimo",
	})
	require.Error(t, err)
	require.True(t, shared.IsValidation(err))
}

func TestCreateReceivableRecurrence(t *testing.T) {
	ctx := context.Background()
	svc, _, income := newTestService()

	freq := "mensal"
	rec, err := svc.Create(ctx, CreateReceivableInput{
		Description:         "mensalidade residente",
		Value:               2500,
		DueDate:             time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		CategoryID:          income,
		PayerName:           "Familia Souza",
		Recurring:           true,
		RecurrenceFrequency: &freq,
	})
	require.NoError(t, err)
	require.True(t, rec.Recurring)
	require.NotNil(t, rec.RecurrenceFrequency)

	// Frequency without the recurring flag is inconsistent.
	_, err = svc.Create(ctx, CreateReceivableInput{
		Description:         "mensalidade residente",
		Value:               2500,
		DueDate:             time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC),
		CategoryID:          income,
		PayerName:           "Familia Souza",
		RecurrenceFrequency: &freq,
	})
	require.Error(t, err)
	require.True(t, shared.IsValidation(err))
}

func TestChangeStatusReceiveStampsReceiptDate(t *testing.T) {
	ctx := context.Background()
	svc, _, income := newTestService()

	rec, err := svc.Create(ctx, CreateReceivableInput{
		Description: "subvencao municipal",
		Value:       8000,
		DueDate:     time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		CategoryID:  income,
		PayerName:   "Prefeitura",
	})
	require.NoError(t, err)

	received, err := svc.ChangeStatus(ctx, ChangeStatusInput{ID: rec.ID, Status: "recebido"})
	require.NoError(t, err)
	require.Equal(t, lifecycle.StatusReceived, received.Status)
	require.NotNil(t, received.SettlementDate)
	require.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *received.SettlementDate)
}

func TestChangeStatusFromReceivedRejected(t *testing.T) {
	ctx := context.Background()
	svc, _, income := newTestService()

	rec, err := svc.Create(ctx, CreateReceivableInput{
		Description: "doacao pontual",
		Value:       300,
		DueDate:     time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		CategoryID:  income,
		PayerName:   "Doador",
	})
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, ChangeStatusInput{ID: rec.ID, Status: "recebido"})
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, ChangeStatusInput{ID: rec.ID, Status: "cancelado"})
	require.Error(t, err)
	require.True(t, shared.IsInvalidTransition(err))
}

func TestListAnnotatesOverdueWithoutMutatingStatus(t *testing.T) {
	ctx := context.Background()
	svc, repo, income := newTestService()

	rec, err := svc.Create(ctx, CreateReceivableInput{
		Description: "mensalidade atrasada",
		Value:       2500,
		DueDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		CategoryID:  income,
		PayerName:   "Familia Lima",
	})
	require.NoError(t, err)

	views, err := svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.True(t, views[0].OverdueNow)
	require.Equal(t, lifecycle.StatusPending, views[0].Status)

	stored := repo.items[rec.ID]
	require.Equal(t, lifecycle.StatusPending, stored.Status)
}

func TestTotalsDistinguishStoredAndEphemeralOverdue(t *testing.T) {
	ctx := context.Background()
	svc, repo, income := newTestService()

	mk := func(value float64, due time.Time, status lifecycle.Status) {
		rec, err := svc.Create(ctx, CreateReceivableInput{
			Description: "r",
			Value:       value,
			DueDate:     due,
			CategoryID:  income,
			PayerName:   "P",
		})
		require.NoError(t, err)
		if status != lifecycle.StatusPending {
			stored := repo.items[rec.ID]
			stored.Status = status
			repo.items[rec.ID] = stored
		}
	}

	mk(100, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), lifecycle.StatusPending)
	mk(200, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), lifecycle.StatusOverdue)
	mk(400, time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC), lifecycle.StatusPending)

	totals, err := svc.Totals(ctx, time.Time{})
	require.NoError(t, err)
	require.Equal(t, 500.0, totals.Pending)
	require.Equal(t, 200.0, totals.StoredOverdue)
	require.Equal(t, 300.0, totals.OverdueNow)
}
