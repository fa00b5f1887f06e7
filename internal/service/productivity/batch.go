package productivity

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/productivity"
	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/role"
	"github.com/cmlabs-hris/productivity-backend-go/internal/pkg/localday"
	"github.com/cmlabs-hris/productivity-backend-go/internal/pkg/metrics"
)

const pathBatch = "batch"

// BatchServiceImpl recalculates every employee for one historical day with
// three set-based reads (clock sessions, activity, role profiles) and one
// set-based write.
type BatchServiceImpl struct {
	sessionRepo  productivity.ClockSessionRepository
	activityRepo productivity.ActivityRepository
	scoreRepo    productivity.ScoreRepository
	roles        role.Provider
	location     *time.Location
	workers      int
}

func NewBatchService(
	sessionRepo productivity.ClockSessionRepository,
	activityRepo productivity.ActivityRepository,
	scoreRepo productivity.ScoreRepository,
	roles role.Provider,
	location *time.Location,
	workers int,
) productivity.BatchService {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &BatchServiceImpl{
		sessionRepo:  sessionRepo,
		activityRepo: activityRepo,
		scoreRepo:    scoreRepo,
		roles:        roles,
		location:     location,
		workers:      workers,
	}
}

// RecalculateDay implements productivity.BatchService.
func (s *BatchServiceImpl) RecalculateDay(ctx context.Context, date time.Time, now time.Time) (productivity.BatchReport, error) {
	started := time.Now()
	window := localday.Resolve(date, s.location)

	if !localday.IsHistorical(date, now, s.location) {
		return productivity.BatchReport{}, fmt.Errorf("%w: %s", productivity.ErrNotHistoricalDate, window)
	}

	report := productivity.BatchReport{
		RunID: uuid.NewString(),
		Date:  window.Date,
	}
	log := slog.With("run_id", report.RunID, "date", window.String())

	sessions, err := s.sessionRepo.ListForActiveEmployees(ctx, window.Start, window.End)
	if err != nil {
		metrics.RecordBatchRun("failed", time.Since(started).Seconds(), 0)
		return report, fmt.Errorf("failed to fetch clock sessions: %w", err)
	}

	activities, err := s.activityRepo.ListForActiveEmployees(ctx, window.Start, window.End)
	if err != nil {
		metrics.RecordBatchRun("failed", time.Since(started).Seconds(), 0)
		return report, fmt.Errorf("failed to fetch activity records: %w", err)
	}

	roles, err := s.roles.Reload(ctx)
	if err != nil {
		metrics.RecordBatchRun("failed", time.Since(started).Seconds(), 0)
		return report, fmt.Errorf("failed to load role profiles: %w", err)
	}

	days := GroupByEmployee(sessions, activities)
	report.TotalEmployees = len(days)

	results := make([]*productivity.ScoreResult, len(days))
	var failures atomic.Int64

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, day := range days {
		g.Go(func() error {
			result, err := computeHistorical(window, day, roles, now)
			if err != nil {
				failures.Add(1)
				metrics.RecordScoreFailure(pathBatch)
				log.Error("Batch employee calculation failed", "employee_id", day.EmployeeID, "error", err)
				return nil
			}
			results[i] = &result
			return nil
		})
	}
	_ = g.Wait()

	computed := make([]productivity.ScoreResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			computed = append(computed, *r)
		}
	}

	if err := s.scoreRepo.SaveBatch(ctx, window.Date, computed); err != nil {
		metrics.RecordBatchRun("failed", time.Since(started).Seconds(), report.TotalEmployees)
		return report, fmt.Errorf("failed to save batch scores: %w", err)
	}

	for _, r := range computed {
		metrics.RecordScoreComputed(pathBatch, r.ExcessIdle, len(r.IdlePeriods))
	}

	report.Processed = len(computed)
	report.Errors = int(failures.Load())
	report.DurationSeconds = time.Since(started).Seconds()
	metrics.RecordBatchRun("success", report.DurationSeconds, report.TotalEmployees)

	log.Info("Batch recalculation finished",
		"total_employees", report.TotalEmployees,
		"processed", report.Processed,
		"errors", report.Errors,
		"duration_seconds", report.DurationSeconds)
	return report, nil
}

// Backfill implements productivity.BatchService.
func (s *BatchServiceImpl) Backfill(ctx context.Context, from, to time.Time, now time.Time) ([]productivity.BatchReport, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s is after %s", productivity.ErrInvalidRange,
			from.Format(localday.DateLayout), to.Format(localday.DateLayout))
	}
	if !localday.IsHistorical(to, now, s.location) {
		return nil, fmt.Errorf("%w: %s", productivity.ErrNotHistoricalDate, to.Format(localday.DateLayout))
	}

	days := localday.Range(from, to)
	reports := make([]productivity.BatchReport, 0, len(days))
	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report, err := s.RecalculateDay(ctx, day, now)
		if err != nil {
			return reports, fmt.Errorf("backfill stopped at %s: %w", day.Format(localday.DateLayout), err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// computeHistorical scores one employee for a closed day. A panic in the
// calculation is turned into an error so one employee cannot sink the run.
func computeHistorical(
	window localday.Window,
	day productivity.EmployeeDay,
	roles role.Lookup,
	now time.Time,
) (result productivity.ScoreResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic computing employee %s: %v", day.EmployeeID, p)
		}
	}()

	for _, cs := range day.Sessions {
		if cs.IsOpen() {
			return productivity.ScoreResult{}, fmt.Errorf("%w: session %s", productivity.ErrOpenSessionInHistory, cs.ID)
		}
	}

	return ComputeDailyScore(window, day, roles, now), nil
}

// GroupByEmployee buckets set-based reads per employee, ordered by employee id.
func GroupByEmployee(sessions []productivity.ClockSession, activities []productivity.ActivityRecord) []productivity.EmployeeDay {
	byEmployee := make(map[string]*productivity.EmployeeDay)
	get := func(id string) *productivity.EmployeeDay {
		d, ok := byEmployee[id]
		if !ok {
			d = &productivity.EmployeeDay{EmployeeID: id}
			byEmployee[id] = d
		}
		return d
	}

	for _, cs := range sessions {
		d := get(cs.EmployeeID)
		d.Sessions = append(d.Sessions, cs)
	}
	for _, a := range activities {
		d := get(a.EmployeeID)
		d.Activities = append(d.Activities, a)
	}

	days := make([]productivity.EmployeeDay, 0, len(byEmployee))
	for _, d := range byEmployee {
		days = append(days, *d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].EmployeeID < days[j].EmployeeID })
	return days
}
