package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/productivity-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/productivity-backend-go/internal/repository/postgresql"
)

// TestDatabaseSetup owns a migrated connection to the test database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies the schema. The
// calling test is skipped when the variable is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 4, MinConns: 1})
	require.NoError(t, err)

	require.NoError(t, postgresql.Migrate(ctx, db))

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.TruncateAllTables(ctx))
	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables removes every row the tests may have written.
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"idle_periods",
		"daily_scores",
		"activity_records",
		"clock_sessions",
		"role_profiles",
		"employees",
	}

	for _, table := range tables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *TestDatabaseSetup) Close() {
	s.DB.Close()
}

func (s *TestDatabaseSetup) InsertEmployee(t *testing.T, active bool) string {
	t.Helper()
	id := uuid.NewString()
	_, err := s.DB.Exec(context.Background(),
		`INSERT INTO employees (id, full_name, is_active) VALUES ($1, $2, $3)`,
		id, "Employee "+id[:8], active)
	require.NoError(t, err)
	return id
}

func (s *TestDatabaseSetup) InsertSession(t *testing.T, employeeID string, in time.Time, out *time.Time) {
	t.Helper()
	_, err := s.DB.Exec(context.Background(),
		`INSERT INTO clock_sessions (id, employee_id, clock_in, clock_out, source) VALUES ($1, $2, $3, $4, 'test')`,
		uuid.NewString(), employeeID, in, out)
	require.NoError(t, err)
}

func (s *TestDatabaseSetup) InsertActivity(t *testing.T, employeeID, roleID string, start, end time.Time, items int) {
	t.Helper()
	_, err := s.DB.Exec(context.Background(),
		`INSERT INTO activity_records (id, employee_id, role_id, window_start, window_end, items_count)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.NewString(), employeeID, roleID, start, end, items)
	require.NoError(t, err)
}

func (s *TestDatabaseSetup) CountIdlePeriods(t *testing.T, employeeID string, scoreDate time.Time) int {
	t.Helper()
	var n int
	err := s.DB.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM idle_periods WHERE employee_id = $1 AND score_date = $2`,
		employeeID, scoreDate).Scan(&n)
	require.NoError(t, err)
	return n
}
