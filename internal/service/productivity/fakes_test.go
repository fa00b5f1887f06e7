package productivity

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/productivity"
	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/role"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store unavailable")

// fakeRoles is an in-memory role.Provider.
type fakeRoles struct {
	profiles  map[string]role.Profile
	fallback  role.Profile
	reloads   int
	reloadErr error
}

func newFakeRoles(t *testing.T) *fakeRoles {
	t.Helper()
	mk := func(id, typeName string, expected, threshold, multiplier float64) role.Profile {
		p, err := role.NewProfile(id, id, typeName, expected, threshold, multiplier)
		require.NoError(t, err)
		return p
	}
	return &fakeRoles{
		profiles: map[string]role.Profile{
			"picker":  mk("picker", role.TypeNameBatch, 120, 0, 1.5),
			"packer":  mk("packer", role.TypeNameBatch, 60, 0, 1),
			"support": mk("support", role.TypeNameContinuous, 0, 5, 2),
		},
		fallback: mk("default", role.TypeNameContinuous, 0, 5, 1),
	}
}

func (f *fakeRoles) Get(id string) role.Profile {
	if p, ok := f.profiles[id]; ok {
		return p
	}
	return f.fallback
}

func (f *fakeRoles) Current() role.Lookup { return f }

func (f *fakeRoles) Reload(ctx context.Context) (role.Lookup, error) {
	f.reloads++
	if f.reloadErr != nil {
		return nil, f.reloadErr
	}
	return f, nil
}

// memoryStore implements every productivity repository over slices.
type memoryStore struct {
	mu         sync.Mutex
	sessions   []productivity.ClockSession
	activities []productivity.ActivityRecord
	inactive   map[string]bool

	scores map[string]productivity.DailyScore
	idle   map[string][]productivity.IdlePeriod

	fetchErr     error
	saveErr      error
	saveBatchErr error

	setReads   int
	saveCalls  int
	batchCalls int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		inactive: map[string]bool{},
		scores:   map[string]productivity.DailyScore{},
		idle:     map[string][]productivity.IdlePeriod{},
	}
}

func scoreKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format("2006-01-02")
}

func overlaps(cs productivity.ClockSession, start, end time.Time) bool {
	if !cs.ClockIn.Before(end) {
		return false
	}
	return cs.ClockOut == nil || cs.ClockOut.After(start)
}

func (m *memoryStore) ListByEmployee(ctx context.Context, employeeID string, start, end time.Time) ([]productivity.ClockSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	var out []productivity.ClockSession
	for _, cs := range m.sessions {
		if cs.EmployeeID == employeeID && overlaps(cs, start, end) {
			out = append(out, cs)
		}
	}
	return out, nil
}

func (m *memoryStore) ListForActiveEmployees(ctx context.Context, start, end time.Time) ([]productivity.ClockSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setReads++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	var out []productivity.ClockSession
	for _, cs := range m.sessions {
		if !m.inactive[cs.EmployeeID] && overlaps(cs, start, end) {
			out = append(out, cs)
		}
	}
	return out, nil
}

// activityRepo adapts memoryStore to productivity.ActivityRepository, whose
// method names collide with the session repository.
type activityRepo struct{ m *memoryStore }

func (a activityRepo) ListByEmployee(ctx context.Context, employeeID string, start, end time.Time) ([]productivity.ActivityRecord, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	if a.m.fetchErr != nil {
		return nil, a.m.fetchErr
	}
	var out []productivity.ActivityRecord
	for _, r := range a.m.activities {
		if r.EmployeeID == employeeID && !r.WindowStart.Before(start) && r.WindowStart.Before(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (a activityRepo) ListForActiveEmployees(ctx context.Context, start, end time.Time) ([]productivity.ActivityRecord, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	a.m.setReads++
	if a.m.fetchErr != nil {
		return nil, a.m.fetchErr
	}
	var out []productivity.ActivityRecord
	for _, r := range a.m.activities {
		if !a.m.inactive[r.EmployeeID] && !r.WindowStart.Before(start) && r.WindowStart.Before(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryStore) ListActiveWithWork(ctx context.Context, start, end time.Time) ([]string, error) {
	sessions, err := m.ListForActiveEmployees(ctx, start, end)
	if err != nil {
		return nil, err
	}
	activities, err := activityRepo{m}.ListForActiveEmployees(ctx, start, end)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for _, cs := range sessions {
		seen[cs.EmployeeID] = true
	}
	for _, a := range activities {
		seen[a.EmployeeID] = true
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memoryStore) Save(ctx context.Context, result productivity.ScoreResult) (productivity.DailyScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.saveErr != nil {
		return productivity.DailyScore{}, m.saveErr
	}
	m.put(result)
	return m.scores[scoreKey(result.Score.EmployeeID, result.Score.ScoreDate)], nil
}

func (m *memoryStore) SaveBatch(ctx context.Context, scoreDate time.Time, results []productivity.ScoreResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++
	if m.saveBatchErr != nil {
		return m.saveBatchErr
	}
	for _, r := range results {
		m.put(r)
	}
	return nil
}

func (m *memoryStore) put(result productivity.ScoreResult) {
	score := result.Score
	score.UpdatedAt = time.Now()
	key := scoreKey(score.EmployeeID, score.ScoreDate)
	m.scores[key] = score
	m.idle[key] = append([]productivity.IdlePeriod(nil), result.IdlePeriods...)
}

func (m *memoryStore) GetByEmployeeAndDate(ctx context.Context, employeeID string, scoreDate time.Time) (productivity.DailyScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scores[scoreKey(employeeID, scoreDate)]
	if !ok {
		return productivity.DailyScore{}, productivity.ErrScoreNotFound
	}
	return s, nil
}

func (m *memoryStore) score(employeeID string, date time.Time) (productivity.DailyScore, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scores[scoreKey(employeeID, date)]
	return s, ok
}

// Timeline helpers. All fixtures live on 2024-06-12 in UTC unless noted.
var fixtureDay = time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return time.Date(2024, 6, 12, hour, minute, 0, 0, time.UTC)
}

func closedSession(employeeID string, in, out time.Time) productivity.ClockSession {
	return productivity.ClockSession{
		ID:         employeeID + "-" + in.Format("1504"),
		EmployeeID: employeeID,
		ClockIn:    in,
		ClockOut:   &out,
		Source:     "test",
	}
}

func openSession(employeeID string, in time.Time) productivity.ClockSession {
	return productivity.ClockSession{
		ID:         employeeID + "-" + in.Format("1504") + "-open",
		EmployeeID: employeeID,
		ClockIn:    in,
		Source:     "test",
	}
}

func activity(employeeID, roleID string, start, end time.Time, items int) productivity.ActivityRecord {
	return productivity.ActivityRecord{
		ID:          employeeID + "-" + start.Format("1504"),
		EmployeeID:  employeeID,
		RoleID:      roleID,
		WindowStart: start,
		WindowEnd:   end,
		ItemsCount:  items,
	}
}
