package productivity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/productivity"
	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/role"
	"github.com/cmlabs-hris/productivity-backend-go/internal/pkg/localday"
	"github.com/cmlabs-hris/productivity-backend-go/internal/pkg/metrics"
)

const pathSingle = "single"

type ScoreServiceImpl struct {
	sessionRepo  productivity.ClockSessionRepository
	activityRepo productivity.ActivityRepository
	employeeRepo productivity.EmployeeRepository
	scoreRepo    productivity.ScoreRepository
	roles        role.Provider
	location     *time.Location
}

func NewScoreService(
	sessionRepo productivity.ClockSessionRepository,
	activityRepo productivity.ActivityRepository,
	employeeRepo productivity.EmployeeRepository,
	scoreRepo productivity.ScoreRepository,
	roles role.Provider,
	location *time.Location,
) productivity.ScoreService {
	return &ScoreServiceImpl{
		sessionRepo:  sessionRepo,
		activityRepo: activityRepo,
		employeeRepo: employeeRepo,
		scoreRepo:    scoreRepo,
		roles:        roles,
		location:     location,
	}
}

// CalculateDaily implements productivity.ScoreService.
func (s *ScoreServiceImpl) CalculateDaily(ctx context.Context, employeeID string, date time.Time, now time.Time) (productivity.DailyScore, error) {
	window := localday.Resolve(date, s.location)

	sessions, err := s.sessionRepo.ListByEmployee(ctx, employeeID, window.Start, window.End)
	if err != nil {
		metrics.RecordScoreFailure(pathSingle)
		return productivity.DailyScore{}, fmt.Errorf("failed to fetch clock sessions: %w", err)
	}

	activities, err := s.activityRepo.ListByEmployee(ctx, employeeID, window.Start, window.End)
	if err != nil {
		metrics.RecordScoreFailure(pathSingle)
		return productivity.DailyScore{}, fmt.Errorf("failed to fetch activity records: %w", err)
	}

	day := productivity.EmployeeDay{
		EmployeeID: employeeID,
		Sessions:   sessions,
		Activities: activities,
	}
	if day.IsEmpty() {
		return productivity.DailyScore{}, productivity.ErrNoWorkRecorded
	}

	result := ComputeDailyScore(window, day, s.roles.Current(), now)

	saved, err := s.scoreRepo.Save(ctx, result)
	if err != nil {
		metrics.RecordScoreFailure(pathSingle)
		return productivity.DailyScore{}, fmt.Errorf("failed to save daily score: %w", err)
	}

	metrics.RecordScoreComputed(pathSingle, result.ExcessIdle, len(result.IdlePeriods))
	return saved, nil
}

// CalculateDailyForAll implements productivity.ScoreService.
func (s *ScoreServiceImpl) CalculateDailyForAll(ctx context.Context, date time.Time, now time.Time) (productivity.BatchReport, error) {
	started := time.Now()
	window := localday.Resolve(date, s.location)

	employeeIDs, err := s.employeeRepo.ListActiveWithWork(ctx, window.Start, window.End)
	if err != nil {
		return productivity.BatchReport{}, fmt.Errorf("failed to list employees with work: %w", err)
	}

	report := productivity.BatchReport{
		RunID:          uuid.NewString(),
		Date:           window.Date,
		TotalEmployees: len(employeeIDs),
	}

	for _, employeeID := range employeeIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		_, err := s.CalculateDaily(ctx, employeeID, date, now)
		switch {
		case err == nil:
			report.Processed++
		case errors.Is(err, productivity.ErrNoWorkRecorded):
			// Data disappeared between the listing and the fetch.
		default:
			report.Errors++
			slog.Error("Daily score calculation failed",
				"run_id", report.RunID,
				"employee_id", employeeID,
				"date", window.String(),
				"error", err)
		}
	}

	report.DurationSeconds = time.Since(started).Seconds()
	return report, nil
}

// GetDailyScore implements productivity.ScoreService.
func (s *ScoreServiceImpl) GetDailyScore(ctx context.Context, employeeID string, date time.Time) (productivity.DailyScore, error) {
	window := localday.Resolve(date, s.location)
	return s.scoreRepo.GetByEmployeeAndDate(ctx, employeeID, window.Date)
}
