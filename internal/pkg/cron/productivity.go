package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/productivity"
	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/role"
	"github.com/cmlabs-hris/productivity-backend-go/internal/pkg/localday"
)

// ProductivityJobs keeps daily scores current while the day is running and
// settles the previous day with a batch run once it is over.
type ProductivityJobs struct {
	scoreService productivity.ScoreService
	batchService productivity.BatchService
	roles        role.Provider
	location     *time.Location
	now          func() time.Time

	recalcInterval  time.Duration
	refreshInterval time.Duration

	mu sync.Mutex
	// lastSettled is the last local date the batch job finished with no
	// per-employee errors, or gave up on after maxSettleAttempts.
	lastSettled   time.Time
	settleDay     time.Time
	settleAttempt int
}

// maxSettleAttempts bounds the hourly retries of a day whose batch run keeps
// reporting per-employee errors, such as a shift still open past midnight.
const maxSettleAttempts = 24

func NewProductivityJobs(
	scoreService productivity.ScoreService,
	batchService productivity.BatchService,
	roles role.Provider,
	location *time.Location,
	recalcInterval time.Duration,
	refreshInterval time.Duration,
) *ProductivityJobs {
	return &ProductivityJobs{
		scoreService:    scoreService,
		batchService:    batchService,
		roles:           roles,
		location:        location,
		now:             time.Now,
		recalcInterval:  recalcInterval,
		refreshInterval: refreshInterval,
	}
}

// RegisterJobs registers all productivity cron jobs
func (j *ProductivityJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("recalculate_today", j.recalcInterval, j.RecalculateToday)
	// Checked hourly; only does work once per local day.
	scheduler.AddJob("recalculate_yesterday", 1*time.Hour, j.RecalculateYesterday)
	scheduler.AddJob("refresh_role_profiles", j.refreshInterval, j.RefreshRoleProfiles)
}

// RecalculateToday rescores every employee with data on the current local day.
func (j *ProductivityJobs) RecalculateToday(ctx context.Context) error {
	now := j.now()
	today := localday.Today(now, j.location)

	report, err := j.scoreService.CalculateDailyForAll(ctx, today, now)
	if err != nil {
		return fmt.Errorf("failed to recalculate %s: %w", today.Format(localday.DateLayout), err)
	}

	slog.Info("Cron: Recalculated today's scores",
		"date", today.Format(localday.DateLayout),
		"processed", report.Processed,
		"errors", report.Errors)
	return nil
}

// RecalculateYesterday runs the batch recalculation for the previous local
// day until it settles. A failed run, or one with per-employee errors, is
// retried on the next tick.
func (j *ProductivityJobs) RecalculateYesterday(ctx context.Context) error {
	now := j.now()
	yesterday := localday.Today(now, j.location).AddDate(0, 0, -1)

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.lastSettled.Equal(yesterday) {
		return nil
	}

	if !j.settleDay.Equal(yesterday) {
		j.settleDay = yesterday
		j.settleAttempt = 0
	}
	j.settleAttempt++

	report, err := j.batchService.RecalculateDay(ctx, yesterday, now)
	if err != nil {
		return fmt.Errorf("failed to settle %s: %w", yesterday.Format(localday.DateLayout), err)
	}

	if report.Errors > 0 && j.settleAttempt < maxSettleAttempts {
		slog.Warn("Cron: Previous day not settled, retrying next tick",
			"run_id", report.RunID,
			"date", yesterday.Format(localday.DateLayout),
			"errors", report.Errors,
			"attempt", j.settleAttempt)
		return nil
	}
	j.lastSettled = yesterday

	slog.Info("Cron: Settled previous day",
		"run_id", report.RunID,
		"date", yesterday.Format(localday.DateLayout),
		"total_employees", report.TotalEmployees,
		"errors", report.Errors,
		"attempts", j.settleAttempt)
	return nil
}

// RefreshRoleProfiles swaps in a freshly loaded role snapshot.
func (j *ProductivityJobs) RefreshRoleProfiles(ctx context.Context) error {
	if _, err := j.roles.Reload(ctx); err != nil {
		return fmt.Errorf("failed to refresh role profiles: %w", err)
	}
	return nil
}
