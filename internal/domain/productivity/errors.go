package productivity

import "errors"

var (
	// ErrNotHistoricalDate rejects a batch run for today or a future date.
	ErrNotHistoricalDate = errors.New("batch recalculation requires a date before the current local date")
	// ErrOpenSessionInHistory means an open clock session was supplied to the historical path.
	ErrOpenSessionInHistory = errors.New("open clock session on a historical date")
	// ErrNoWorkRecorded means the employee has neither sessions nor activity that day.
	ErrNoWorkRecorded = errors.New("no clock sessions or activity recorded for the day")
	ErrScoreNotFound  = errors.New("daily score not found")
	ErrInvalidRange   = errors.New("invalid date range")
)
