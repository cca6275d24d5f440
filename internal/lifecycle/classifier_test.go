package lifecycle

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/amparo-lar/amparo-lar/internal/shared"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusReceived, true},
		{StatusPending, StatusOverdue, true},
		{StatusPending, StatusCancelled, true},
		{StatusOverdue, StatusPaid, true},
		{StatusOverdue, StatusCancelled, true},
		{StatusOverdue, StatusPending, false},
		{StatusPaid, StatusPending, false},
		{StatusPaid, StatusCancelled, false},
		{StatusReceived, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusPaid, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTransitionReturnsTypedError(t *testing.T) {
	id := uuid.New()
	err := Transition("payable", id, StatusPaid, StatusPending)
	require.Error(t, err)
	require.True(t, shared.IsInvalidTransition(err))
	require.NoError(t, Transition("payable", id, StatusPending, StatusPaid))
}

func TestTerminalStates(t *testing.T) {
	require.True(t, Terminal(StatusPaid))
	require.True(t, Terminal(StatusReceived))
	require.True(t, Terminal(StatusCancelled))
	require.False(t, Terminal(StatusPending))
	require.False(t, Terminal(StatusOverdue))
}

// The stored status and the overdue predicate are independent: a pending
// entry far past due stays pendente but reports overdue-now.
func TestIsOverdueNowDoesNotMergeWithStoredStatus(t *testing.T) {
	entry := Entry{
		ID:      uuid.New(),
		Value:   150,
		DueDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:  StatusPending,
	}
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	require.True(t, IsOverdueNow(entry, today))
	require.Equal(t, StatusPending, entry.Status)

	// Due today is not overdue yet.
	entry.DueDate = today
	require.False(t, IsOverdueNow(entry, today))

	// Settled and cancelled entries are never overdue-now.
	entry.DueDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	entry.Status = StatusPaid
	require.False(t, IsOverdueNow(entry, today))
	entry.Status = StatusCancelled
	require.False(t, IsOverdueNow(entry, today))
}

func TestSortCritical(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC) }
	entries := []Entry{
		{ID: uuid.New(), DueDate: d(10), Status: StatusPending},
		{ID: uuid.New(), DueDate: d(20), Status: StatusOverdue},
		{ID: uuid.New(), DueDate: d(5), Status: StatusPending},
		{ID: uuid.New(), DueDate: d(1), Status: StatusOverdue},
	}
	SortCritical(entries)

	require.Equal(t, StatusOverdue, entries[0].Status)
	require.Equal(t, d(1), entries[0].DueDate)
	require.Equal(t, StatusOverdue, entries[1].Status)
	require.Equal(t, d(20), entries[1].DueDate)
	require.Equal(t, d(5), entries[2].DueDate)
	require.Equal(t, d(10), entries[3].DueDate)
}

func TestTotals(t *testing.T) {
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	entries := []Entry{
		{Value: 100, DueDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Status: StatusPending},  // overdue-now
		{Value: 200, DueDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), Status: StatusPending},  // future
		{Value: 300, DueDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Status: StatusOverdue},  // stored
		{Value: 400, DueDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Status: StatusPaid},     // settled
		{Value: 50, DueDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Status: StatusCancelled}, // cancelled
	}

	require.InDelta(t, 300, TotalByStatus(entries, StatusPending), 1e-9)
	require.InDelta(t, 300, TotalByStatus(entries, StatusOverdue), 1e-9)
	require.InDelta(t, 400, TotalByStatus(entries, StatusPaid), 1e-9)

	// Union of stored vencido and pending-past-due.
	require.InDelta(t, 400, TotalOverdue(entries, today), 1e-9)
}

func TestTotalsEmptyInput(t *testing.T) {
	require.Zero(t, TotalByStatus(nil, StatusPending))
	require.Zero(t, TotalOverdue(nil, time.Now()))
}
