package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/productivity"
	"github.com/cmlabs-hris/productivity-backend-go/internal/pkg/database"
)

var idlePeriodColumns = []string{
	"id", "employee_id", "score_date", "start_time", "end_time",
	"duration_minutes", "computed_threshold_minutes", "created_at",
}

type scoreRepository struct {
	db *database.DB
}

func NewScoreRepository(db *database.DB) productivity.ScoreRepository {
	return &scoreRepository{db: db}
}

// Save implements productivity.ScoreRepository.
func (r *scoreRepository) Save(ctx context.Context, result productivity.ScoreResult) (productivity.DailyScore, error) {
	score := result.Score

	err := WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, r.db)

		query := `
			INSERT INTO daily_scores (
				employee_id, score_date, items_processed, active_minutes,
				clocked_minutes, efficiency_rate, points_earned, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7::numeric, NOW()
			)
			ON CONFLICT (employee_id, score_date) DO UPDATE SET
				items_processed = EXCLUDED.items_processed,
				active_minutes = EXCLUDED.active_minutes,
				clocked_minutes = EXCLUDED.clocked_minutes,
				efficiency_rate = EXCLUDED.efficiency_rate,
				points_earned = EXCLUDED.points_earned,
				updated_at = EXCLUDED.updated_at
			RETURNING updated_at
		`

		err := q.QueryRow(txCtx, query,
			score.EmployeeID,
			score.ScoreDate,
			score.ItemsProcessed,
			score.ActiveMinutes,
			score.ClockedMinutes,
			score.EfficiencyRate,
			score.PointsEarned.StringFixed(2),
		).Scan(&score.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert daily score: %w", err)
		}

		_, err = q.Exec(txCtx,
			`DELETE FROM idle_periods WHERE employee_id = $1 AND score_date = $2`,
			score.EmployeeID, score.ScoreDate)
		if err != nil {
			return fmt.Errorf("failed to clear idle periods: %w", err)
		}

		return copyIdlePeriods(txCtx, q, result.IdlePeriods)
	})
	if err != nil {
		return productivity.DailyScore{}, err
	}

	return score, nil
}

// SaveBatch implements productivity.ScoreRepository. All scores go out in a
// single multi-row upsert built from parallel arrays.
func (r *scoreRepository) SaveBatch(ctx context.Context, scoreDate time.Time, results []productivity.ScoreResult) error {
	if len(results) == 0 {
		return nil
	}

	var (
		employeeIDs = make([]string, len(results))
		items       = make([]int32, len(results))
		active      = make([]float64, len(results))
		clocked     = make([]float64, len(results))
		efficiency  = make([]float64, len(results))
		points      = make([]string, len(results))
		periods     []productivity.IdlePeriod
	)
	for i, res := range results {
		s := res.Score
		employeeIDs[i] = s.EmployeeID
		items[i] = int32(s.ItemsProcessed)
		active[i] = s.ActiveMinutes
		clocked[i] = s.ClockedMinutes
		efficiency[i] = s.EfficiencyRate
		points[i] = s.PointsEarned.StringFixed(2)
		periods = append(periods, res.IdlePeriods...)
	}

	return WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, r.db)

		query := `
			INSERT INTO daily_scores (
				employee_id, score_date, items_processed, active_minutes,
				clocked_minutes, efficiency_rate, points_earned, updated_at
			)
			SELECT t.employee_id::uuid, $1::date, t.items_processed, t.active_minutes,
				t.clocked_minutes, t.efficiency_rate, t.points_earned::numeric, NOW()
			FROM unnest($2::text[], $3::int[], $4::float8[], $5::float8[], $6::float8[], $7::text[])
				AS t(employee_id, items_processed, active_minutes, clocked_minutes, efficiency_rate, points_earned)
			ON CONFLICT (employee_id, score_date) DO UPDATE SET
				items_processed = EXCLUDED.items_processed,
				active_minutes = EXCLUDED.active_minutes,
				clocked_minutes = EXCLUDED.clocked_minutes,
				efficiency_rate = EXCLUDED.efficiency_rate,
				points_earned = EXCLUDED.points_earned,
				updated_at = EXCLUDED.updated_at
		`

		if _, err := q.Exec(txCtx, query, scoreDate, employeeIDs, items, active, clocked, efficiency, points); err != nil {
			return fmt.Errorf("failed to upsert daily scores: %w", err)
		}

		_, err := q.Exec(txCtx,
			`DELETE FROM idle_periods WHERE score_date = $1 AND employee_id = ANY($2::text[]::uuid[])`,
			scoreDate, employeeIDs)
		if err != nil {
			return fmt.Errorf("failed to clear idle periods: %w", err)
		}

		return copyIdlePeriods(txCtx, q, periods)
	})
}

// GetByEmployeeAndDate implements productivity.ScoreRepository.
func (r *scoreRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, scoreDate time.Time) (productivity.DailyScore, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, score_date, items_processed, active_minutes,
			clocked_minutes, efficiency_rate, points_earned::text, updated_at
		FROM daily_scores
		WHERE employee_id = $1 AND score_date = $2
	`

	var (
		s      productivity.DailyScore
		points string
	)
	err := q.QueryRow(ctx, query, employeeID, scoreDate).Scan(
		&s.EmployeeID, &s.ScoreDate, &s.ItemsProcessed, &s.ActiveMinutes,
		&s.ClockedMinutes, &s.EfficiencyRate, &points, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return productivity.DailyScore{}, productivity.ErrScoreNotFound
		}
		return productivity.DailyScore{}, fmt.Errorf("failed to get daily score: %w", err)
	}

	s.PointsEarned, err = decimal.NewFromString(points)
	if err != nil {
		return productivity.DailyScore{}, fmt.Errorf("failed to parse points_earned %q: %w", points, err)
	}
	return s, nil
}

func copyIdlePeriods(ctx context.Context, q database.Querier, periods []productivity.IdlePeriod) error {
	if len(periods) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([][]any, len(periods))
	for i, p := range periods {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate idle period id: %w", err)
		}
		employeeID, err := uuid.Parse(p.EmployeeID)
		if err != nil {
			return fmt.Errorf("invalid employee id %q: %w", p.EmployeeID, err)
		}
		rows[i] = []any{
			id, employeeID, p.ScoreDate, p.StartTime, p.EndTime,
			p.DurationMinutes, p.ComputedThresholdMinutes, now,
		}
	}

	if _, err := q.CopyFrom(ctx, pgx.Identifier{"idle_periods"}, idlePeriodColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("failed to insert idle periods: %w", err)
	}
	return nil
}
