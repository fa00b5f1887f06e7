package productivity

import (
	"context"
	"time"
)

// ClockSessionRepository reads clock sessions overlapping a UTC window.
type ClockSessionRepository interface {
	// ListByEmployee returns one employee's sessions ordered by clock_in.
	ListByEmployee(ctx context.Context, employeeID string, start, end time.Time) ([]ClockSession, error)

	// ListForActiveEmployees returns the sessions of every active employee in
	// one query, ordered by employee_id, clock_in.
	ListForActiveEmployees(ctx context.Context, start, end time.Time) ([]ClockSession, error)
}

// ActivityRepository reads activity records whose window_start falls in a UTC window.
type ActivityRepository interface {
	ListByEmployee(ctx context.Context, employeeID string, start, end time.Time) ([]ActivityRecord, error)

	// ListForActiveEmployees returns every active employee's activity in one query.
	ListForActiveEmployees(ctx context.Context, start, end time.Time) ([]ActivityRecord, error)
}

// EmployeeRepository lists employees with anything to score in a window.
type EmployeeRepository interface {
	ListActiveWithWork(ctx context.Context, start, end time.Time) ([]string, error)
}

// ScoreRepository persists daily scores and the idle audit trail.
type ScoreRepository interface {
	// Save upserts one employee-day and replaces its idle periods atomically.
	Save(ctx context.Context, result ScoreResult) (DailyScore, error)

	// SaveBatch writes every result for scoreDate in one set-based operation.
	SaveBatch(ctx context.Context, scoreDate time.Time, results []ScoreResult) error

	GetByEmployeeAndDate(ctx context.Context, employeeID string, scoreDate time.Time) (DailyScore, error)
}
