package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/productivity"
	"github.com/cmlabs-hris/productivity-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type activityRepository struct {
	db *database.DB
}

func NewActivityRepository(db *database.DB) productivity.ActivityRepository {
	return &activityRepository{db: db}
}

// ListByEmployee implements productivity.ActivityRepository.
func (r *activityRepository) ListByEmployee(ctx context.Context, employeeID string, start, end time.Time) ([]productivity.ActivityRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, role_id, window_start, window_end, items_count
		FROM activity_records
		WHERE employee_id = $1
		  AND window_start >= $2
		  AND window_start < $3
		ORDER BY window_start
	`

	rows, err := q.Query(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity records: %w", err)
	}
	return scanActivities(rows)
}

// ListForActiveEmployees implements productivity.ActivityRepository.
func (r *activityRepository) ListForActiveEmployees(ctx context.Context, start, end time.Time) ([]productivity.ActivityRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT a.id, a.employee_id, a.role_id, a.window_start, a.window_end, a.items_count
		FROM activity_records a
		JOIN employees e ON e.id = a.employee_id
		WHERE e.is_active
		  AND a.window_start >= $1
		  AND a.window_start < $2
		ORDER BY a.employee_id, a.window_start
	`

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity records for active employees: %w", err)
	}
	return scanActivities(rows)
}

func scanActivities(rows pgx.Rows) ([]productivity.ActivityRecord, error) {
	defer rows.Close()

	var records []productivity.ActivityRecord
	for rows.Next() {
		var a productivity.ActivityRecord
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.RoleID, &a.WindowStart, &a.WindowEnd, &a.ItemsCount); err != nil {
			return nil, fmt.Errorf("failed to scan activity record: %w", err)
		}
		records = append(records, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
