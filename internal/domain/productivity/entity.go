package productivity

import (
	"time"

	"github.com/shopspring/decimal"
)

type ClockSession struct {
	ID         string
	EmployeeID string
	ClockIn    time.Time
	// ClockOut is nil while the session is still open.
	ClockOut *time.Time
	Source   string
}

func (s ClockSession) IsOpen() bool {
	return s.ClockOut == nil
}

type ActivityRecord struct {
	ID          string
	EmployeeID  string
	RoleID      string
	WindowStart time.Time
	WindowEnd   time.Time
	ItemsCount  int
}

// IdlePeriod is one audit row for a gap whose idle time exceeded its threshold.
type IdlePeriod struct {
	ID                       string
	EmployeeID               string
	ScoreDate                time.Time
	StartTime                time.Time
	EndTime                  time.Time
	DurationMinutes          float64
	ComputedThresholdMinutes float64
	CreatedAt                time.Time
}

// DailyScore is keyed by (EmployeeID, ScoreDate); recalculation overwrites it.
type DailyScore struct {
	EmployeeID     string
	ScoreDate      time.Time
	ItemsProcessed int
	ActiveMinutes  float64
	ClockedMinutes float64
	EfficiencyRate float64
	PointsEarned   decimal.Decimal
	UpdatedAt      time.Time
}

// EmployeeDay is everything the calculator needs for one employee on one local day.
type EmployeeDay struct {
	EmployeeID string
	Sessions   []ClockSession
	Activities []ActivityRecord
}

func (d EmployeeDay) IsEmpty() bool {
	return len(d.Sessions) == 0 && len(d.Activities) == 0
}

// ScoreResult pairs a computed score with its idle audit rows.
type ScoreResult struct {
	Score       DailyScore
	IdlePeriods []IdlePeriod
	ExcessIdle  float64
}

type BatchReport struct {
	RunID           string
	Date            time.Time
	TotalEmployees  int
	Processed       int
	Errors          int
	DurationSeconds float64
}
