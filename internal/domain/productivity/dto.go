package productivity

import (
	"time"

	"github.com/cmlabs-hris/productivity-backend-go/internal/pkg/localday"
	"github.com/cmlabs-hris/productivity-backend-go/internal/pkg/validator"
)

type RecalculateRequest struct {
	Date string `json:"date"`
}

func (r RecalculateRequest) Validate() (time.Time, error) {
	var errs validator.ValidationErrors
	date, ok := parseDateField("date", r.Date, &errs)
	if !ok {
		return time.Time{}, errs
	}
	return date, nil
}

type BackfillRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (r BackfillRequest) Validate() (time.Time, time.Time, error) {
	var errs validator.ValidationErrors
	from, _ := parseDateField("from", r.From, &errs)
	to, _ := parseDateField("to", r.To, &errs)
	if len(errs) == 0 && to.Before(from) {
		errs = append(errs, validator.ValidationError{Field: "to", Message: "must not be before from"})
	}
	if len(errs) > 0 {
		return time.Time{}, time.Time{}, errs
	}
	return from, to, nil
}

func parseDateField(field, value string, errs *validator.ValidationErrors) (time.Time, bool) {
	if validator.IsEmpty(value) {
		*errs = append(*errs, validator.ValidationError{Field: field, Message: "is required"})
		return time.Time{}, false
	}
	date, ok := validator.IsValidDate(value)
	if !ok {
		*errs = append(*errs, validator.ValidationError{Field: field, Message: "must be a date in YYYY-MM-DD format"})
	}
	return date, ok
}

type DailyScoreResponse struct {
	EmployeeID     string  `json:"employee_id"`
	Date           string  `json:"date"`
	ItemsProcessed int     `json:"items_processed"`
	ActiveMinutes  float64 `json:"active_minutes"`
	ClockedMinutes float64 `json:"clocked_minutes"`
	EfficiencyRate float64 `json:"efficiency_rate"`
	PointsEarned   string  `json:"points_earned"`
	UpdatedAt      string  `json:"updated_at"`
}

func ToDailyScoreResponse(s DailyScore) DailyScoreResponse {
	return DailyScoreResponse{
		EmployeeID:     s.EmployeeID,
		Date:           s.ScoreDate.Format(localday.DateLayout),
		ItemsProcessed: s.ItemsProcessed,
		ActiveMinutes:  s.ActiveMinutes,
		ClockedMinutes: s.ClockedMinutes,
		EfficiencyRate: s.EfficiencyRate,
		PointsEarned:   s.PointsEarned.StringFixed(2),
		UpdatedAt:      s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type BatchReportResponse struct {
	RunID           string  `json:"run_id"`
	Date            string  `json:"date"`
	TotalEmployees  int     `json:"total_employees"`
	Processed       int     `json:"processed"`
	Errors          int     `json:"errors"`
	DurationSeconds float64 `json:"duration_seconds"`
}

func ToBatchReportResponse(r BatchReport) BatchReportResponse {
	return BatchReportResponse{
		RunID:           r.RunID,
		Date:            r.Date.Format(localday.DateLayout),
		TotalEmployees:  r.TotalEmployees,
		Processed:       r.Processed,
		Errors:          r.Errors,
		DurationSeconds: r.DurationSeconds,
	}
}
