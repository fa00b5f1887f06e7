package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/productivity"
	"github.com/cmlabs-hris/productivity-backend-go/internal/pkg/database"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) productivity.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

// ListActiveWithWork implements productivity.EmployeeRepository.
func (e *employeeRepositoryImpl) ListActiveWithWork(ctx context.Context, start, end time.Time) ([]string, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT e.id
		FROM employees e
		WHERE e.is_active
		  AND (
			EXISTS (
				SELECT 1 FROM clock_sessions cs
				WHERE cs.employee_id = e.id
				  AND cs.clock_in < $2
				  AND (cs.clock_out IS NULL OR cs.clock_out > $1)
			)
			OR EXISTS (
				SELECT 1 FROM activity_records a
				WHERE a.employee_id = e.id
				  AND a.window_start >= $1
				  AND a.window_start < $2
			)
		  )
		ORDER BY e.id
	`

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query active employees: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan employee id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
