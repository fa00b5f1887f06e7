package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/productivity"
	"github.com/cmlabs-hris/productivity-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type clockSessionRepository struct {
	db *database.DB
}

func NewClockSessionRepository(db *database.DB) productivity.ClockSessionRepository {
	return &clockSessionRepository{db: db}
}

// ListByEmployee implements productivity.ClockSessionRepository.
func (r *clockSessionRepository) ListByEmployee(ctx context.Context, employeeID string, start, end time.Time) ([]productivity.ClockSession, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, clock_in, clock_out, source
		FROM clock_sessions
		WHERE employee_id = $1
		  AND clock_in < $3
		  AND (clock_out IS NULL OR clock_out > $2)
		ORDER BY clock_in
	`

	rows, err := q.Query(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query clock sessions: %w", err)
	}
	return scanClockSessions(rows)
}

// ListForActiveEmployees implements productivity.ClockSessionRepository.
func (r *clockSessionRepository) ListForActiveEmployees(ctx context.Context, start, end time.Time) ([]productivity.ClockSession, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT cs.id, cs.employee_id, cs.clock_in, cs.clock_out, cs.source
		FROM clock_sessions cs
		JOIN employees e ON e.id = cs.employee_id
		WHERE e.is_active
		  AND cs.clock_in < $2
		  AND (cs.clock_out IS NULL OR cs.clock_out > $1)
		ORDER BY cs.employee_id, cs.clock_in
	`

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query clock sessions for active employees: %w", err)
	}
	return scanClockSessions(rows)
}

func scanClockSessions(rows pgx.Rows) ([]productivity.ClockSession, error) {
	defer rows.Close()

	var sessions []productivity.ClockSession
	for rows.Next() {
		var cs productivity.ClockSession
		if err := rows.Scan(&cs.ID, &cs.EmployeeID, &cs.ClockIn, &cs.ClockOut, &cs.Source); err != nil {
			return nil, fmt.Errorf("failed to scan clock session: %w", err)
		}
		sessions = append(sessions, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}
