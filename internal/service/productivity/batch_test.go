package productivity

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/productivity"
	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/role"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nextMorning = time.Date(2024, 6, 13, 10, 0, 0, 0, time.UTC)

func newTestBatchService(store *memoryStore, roles role.Provider) productivity.BatchService {
	return NewBatchService(store, activityRepo{store}, store, roles, time.UTC, 4)
}

func seedMixedDay(store *memoryStore) {
	seedTypicalDay(store, "e1")

	store.sessions = append(store.sessions,
		closedSession("e2", at(7, 0), at(11, 0)),
		closedSession("e2", at(12, 0), at(15, 30)),
	)
	store.activities = append(store.activities,
		activity("e2", "packer", at(7, 20), at(8, 0), 30),
		activity("e2", "support", at(8, 30), at(10, 0), 40),
		activity("e2", "picker", at(12, 10), at(14, 0), 150),
	)

	store.sessions = append(store.sessions, closedSession("e3", at(8, 0), at(16, 0)))
}

// panickyRoles hands out a lookup that panics for one role id.
type panickyRoles struct {
	*fakeRoles
	panicOn string
}

type panickyLookup struct {
	inner   role.Lookup
	panicOn string
}

func (l panickyLookup) Get(id string) role.Profile {
	if id == l.panicOn {
		panic("corrupt profile " + id)
	}
	return l.inner.Get(id)
}

func (p panickyRoles) Reload(ctx context.Context) (role.Lookup, error) {
	inner, err := p.fakeRoles.Reload(ctx)
	if err != nil {
		return nil, err
	}
	return panickyLookup{inner: inner, panicOn: p.panicOn}, nil
}

func TestBatchService_RecalculateDay(t *testing.T) {
	store := newMemoryStore()
	seedMixedDay(store)
	roles := newFakeRoles(t)
	svc := newTestBatchService(store, roles)

	report, err := svc.RecalculateDay(context.Background(), fixtureDay, nextMorning)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, fixtureDay, report.Date)
	assert.Equal(t, 3, report.TotalEmployees)
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 0, report.Errors)

	assert.Equal(t, 2, store.setReads)
	assert.Equal(t, 1, roles.reloads)
	assert.Equal(t, 1, store.batchCalls)
	assert.Equal(t, 0, store.saveCalls)

	e3, ok := store.score("e3", fixtureDay)
	require.True(t, ok)
	assert.Equal(t, 470.0, e3.ActiveMinutes)
}

func TestBatchService_MatchesSinglePath(t *testing.T) {
	ctx := context.Background()

	single := newMemoryStore()
	seedMixedDay(single)
	scoreSvc := newTestScoreService(single, newFakeRoles(t))
	for _, id := range []string{"e1", "e2", "e3"} {
		_, err := scoreSvc.CalculateDaily(ctx, id, fixtureDay, nextMorning)
		require.NoError(t, err)
	}

	batch := newMemoryStore()
	seedMixedDay(batch)
	_, err := newTestBatchService(batch, newFakeRoles(t)).RecalculateDay(ctx, fixtureDay, nextMorning)
	require.NoError(t, err)

	require.Len(t, batch.scores, len(single.scores))
	for key, want := range single.scores {
		got, ok := batch.scores[key]
		require.True(t, ok, key)
		want.UpdatedAt, got.UpdatedAt = time.Time{}, time.Time{}
		assert.Equal(t, want, got, key)
		assert.Equal(t, single.idle[key], batch.idle[key], key)
	}
}

func TestBatchService_RejectsNonHistoricalDate(t *testing.T) {
	store := newMemoryStore()
	seedMixedDay(store)
	roles := newFakeRoles(t)
	svc := newTestBatchService(store, roles)

	for _, now := range []time.Time{at(18, 0), at(0, 0), time.Date(2024, 6, 11, 23, 0, 0, 0, time.UTC)} {
		_, err := svc.RecalculateDay(context.Background(), fixtureDay, now)
		assert.ErrorIs(t, err, productivity.ErrNotHistoricalDate)
	}

	assert.Equal(t, 0, store.setReads)
	assert.Equal(t, 0, roles.reloads)
	assert.Equal(t, 0, store.batchCalls)
	assert.Empty(t, store.scores)
}

func TestBatchService_HistoricalDependsOnBusinessZone(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	store := newMemoryStore()
	svc := NewBatchService(store, activityRepo{store}, store, newFakeRoles(t), chicago, 2)

	// 03:00 UTC on the 13th is still the evening of the 12th in Chicago.
	_, err = svc.RecalculateDay(context.Background(), fixtureDay, time.Date(2024, 6, 13, 3, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, productivity.ErrNotHistoricalDate)

	_, err = svc.RecalculateDay(context.Background(), fixtureDay, time.Date(2024, 6, 13, 6, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
}

func TestBatchService_OpenSessionIsPerEmployeeError(t *testing.T) {
	store := newMemoryStore()
	seedMixedDay(store)
	store.sessions = append(store.sessions, openSession("e4", at(20, 0)))
	svc := newTestBatchService(store, newFakeRoles(t))

	report, err := svc.RecalculateDay(context.Background(), fixtureDay, nextMorning)
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalEmployees)
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 1, report.Errors)

	_, ok := store.score("e4", fixtureDay)
	assert.False(t, ok)
	_, ok = store.score("e1", fixtureDay)
	assert.True(t, ok)
}

func TestBatchService_PanicIsContained(t *testing.T) {
	store := newMemoryStore()
	seedMixedDay(store)
	store.activities = append(store.activities, activity("e5", "cursed", at(9, 0), at(9, 30), 1))
	svc := newTestBatchService(store, panickyRoles{fakeRoles: newFakeRoles(t), panicOn: "cursed"})

	report, err := svc.RecalculateDay(context.Background(), fixtureDay, nextMorning)
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalEmployees)
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 1, report.Errors)
	_, ok := store.score("e5", fixtureDay)
	assert.False(t, ok)
}

func TestBatchService_InactiveEmployeesExcluded(t *testing.T) {
	store := newMemoryStore()
	seedMixedDay(store)
	store.inactive["e2"] = true
	svc := newTestBatchService(store, newFakeRoles(t))

	report, err := svc.RecalculateDay(context.Background(), fixtureDay, nextMorning)
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalEmployees)
	_, ok := store.score("e2", fixtureDay)
	assert.False(t, ok)
}

func TestBatchService_FatalErrors(t *testing.T) {
	t.Run("fetch failure", func(t *testing.T) {
		store := newMemoryStore()
		seedMixedDay(store)
		store.fetchErr = errStoreDown

		_, err := newTestBatchService(store, newFakeRoles(t)).RecalculateDay(context.Background(), fixtureDay, nextMorning)
		assert.ErrorIs(t, err, errStoreDown)
		assert.Equal(t, 0, store.batchCalls)
	})

	t.Run("role reload failure", func(t *testing.T) {
		store := newMemoryStore()
		seedMixedDay(store)
		roles := newFakeRoles(t)
		roles.reloadErr = errStoreDown

		_, err := newTestBatchService(store, roles).RecalculateDay(context.Background(), fixtureDay, nextMorning)
		assert.ErrorIs(t, err, errStoreDown)
		assert.Equal(t, 0, store.batchCalls)
	})

	t.Run("write failure", func(t *testing.T) {
		store := newMemoryStore()
		seedMixedDay(store)
		store.saveBatchErr = errStoreDown

		_, err := newTestBatchService(store, newFakeRoles(t)).RecalculateDay(context.Background(), fixtureDay, nextMorning)
		assert.ErrorIs(t, err, errStoreDown)
		assert.Equal(t, 1, store.batchCalls)
		assert.Empty(t, store.scores)
	})
}

func TestBatchService_EmptyDayStillWritesOnce(t *testing.T) {
	store := newMemoryStore()
	svc := newTestBatchService(store, newFakeRoles(t))

	report, err := svc.RecalculateDay(context.Background(), fixtureDay, nextMorning)
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalEmployees)
	assert.Equal(t, 1, store.batchCalls)
}

func TestBatchService_Backfill(t *testing.T) {
	store := newMemoryStore()
	seedMixedDay(store)
	svc := newTestBatchService(store, newFakeRoles(t))
	from := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	reports, err := svc.Backfill(context.Background(), from, fixtureDay, nextMorning)
	require.NoError(t, err)

	require.Len(t, reports, 3)
	assert.Equal(t, from, reports[0].Date)
	assert.Equal(t, fixtureDay, reports[2].Date)
	assert.Equal(t, 0, reports[0].TotalEmployees)
	assert.Equal(t, 3, reports[2].TotalEmployees)
	assert.Equal(t, 3, store.batchCalls)
}

func TestBatchService_BackfillValidation(t *testing.T) {
	store := newMemoryStore()
	svc := newTestBatchService(store, newFakeRoles(t))
	ctx := context.Background()

	_, err := svc.Backfill(ctx, fixtureDay, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), nextMorning)
	assert.ErrorIs(t, err, productivity.ErrInvalidRange)

	_, err = svc.Backfill(ctx, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), fixtureDay, at(12, 0))
	assert.ErrorIs(t, err, productivity.ErrNotHistoricalDate)

	assert.Equal(t, 0, store.setReads)
	assert.Equal(t, 0, store.batchCalls)
}

func TestGroupByEmployee(t *testing.T) {
	sessions := []productivity.ClockSession{
		closedSession("b", at(8, 0), at(9, 0)),
		closedSession("a", at(8, 0), at(9, 0)),
		closedSession("b", at(10, 0), at(11, 0)),
	}
	activities := []productivity.ActivityRecord{
		activity("c", "support", at(8, 0), at(8, 30), 1),
		activity("a", "support", at(8, 0), at(8, 30), 1),
	}

	days := GroupByEmployee(sessions, activities)

	require.Len(t, days, 3)
	assert.Equal(t, "a", days[0].EmployeeID)
	assert.Len(t, days[0].Sessions, 1)
	assert.Len(t, days[0].Activities, 1)
	assert.Equal(t, "b", days[1].EmployeeID)
	assert.Len(t, days[1].Sessions, 2)
	assert.Empty(t, days[1].Activities)
	assert.Equal(t, "c", days[2].EmployeeID)
	assert.Empty(t, days[2].Sessions)
}
