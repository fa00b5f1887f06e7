package productivity

import (
	"context"
	"time"
)

// ScoreService computes and reads single employee-day scores.
type ScoreService interface {
	// CalculateDaily recomputes one employee-day. now decides which sessions
	// count as open.
	CalculateDaily(ctx context.Context, employeeID string, date time.Time, now time.Time) (DailyScore, error)

	// CalculateDailyForAll recomputes every active employee with work on date,
	// one employee-day at a time. Failures are logged and counted.
	CalculateDailyForAll(ctx context.Context, date time.Time, now time.Time) (BatchReport, error)

	GetDailyScore(ctx context.Context, employeeID string, date time.Time) (DailyScore, error)
}

// BatchService recomputes historical days with set-based reads and writes.
type BatchService interface {
	RecalculateDay(ctx context.Context, date time.Time, now time.Time) (BatchReport, error)

	// Backfill runs RecalculateDay for every date in [from, to].
	Backfill(ctx context.Context, from, to time.Time, now time.Time) ([]BatchReport, error)
}
