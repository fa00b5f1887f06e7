package productivity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/productivity"
	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/role"
	"github.com/cmlabs-hris/productivity-backend-go/internal/pkg/localday"
)

const (
	minutesPlaces    = 2
	efficiencyPlaces = 4
	pointsPlaces     = 2
)

// ActiveTime derives active minutes and the efficiency rate from clocked
// minutes and excess idle. Both minute values are rounded to two places and
// the rate is computed from the rounded values, clamped to [0, 1].
func ActiveTime(clockedMinutes, excessIdleMinutes float64) (activeMinutes, efficiencyRate float64) {
	clocked := decimal.NewFromFloat(clockedMinutes).Round(minutesPlaces)
	if clocked.Sign() <= 0 {
		return 0, 0
	}

	active := clocked.Sub(decimal.NewFromFloat(excessIdleMinutes)).Round(minutesPlaces)
	if active.Sign() < 0 {
		active = decimal.Zero
	}
	if active.GreaterThan(clocked) {
		active = clocked
	}

	rate := active.Div(clocked).Round(efficiencyPlaces)
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		rate = decimal.NewFromInt(1)
	}

	return active.InexactFloat64(), rate.InexactFloat64()
}

// Points sums items x role multiplier, rounded half away from zero to two places.
func Points(activities []productivity.ActivityRecord, roles role.Lookup) decimal.Decimal {
	total := decimal.Zero
	for _, a := range activities {
		multiplier := decimal.NewFromFloat(roles.Get(a.RoleID).Multiplier)
		total = total.Add(decimal.NewFromInt(int64(a.ItemsCount)).Mul(multiplier))
	}
	return total.Round(pointsPlaces)
}

func itemsProcessed(activities []productivity.ActivityRecord) int {
	total := 0
	for _, a := range activities {
		total += a.ItemsCount
	}
	return total
}

// ComputeDailyScore is the single implementation of the scoring math. Both
// the per-employee aggregator and the batch recalculator call it, so the two
// paths cannot drift apart.
func ComputeDailyScore(
	window localday.Window,
	day productivity.EmployeeDay,
	roles role.Lookup,
	now time.Time,
) productivity.ScoreResult {
	analysis := AnalyzeIdle(window, day.Sessions, day.Activities, roles, now)
	active, efficiency := ActiveTime(analysis.ClockedMinutes, analysis.ExcessIdleMinutes)

	score := productivity.DailyScore{
		EmployeeID:     day.EmployeeID,
		ScoreDate:      window.Date,
		ItemsProcessed: itemsProcessed(day.Activities),
		ActiveMinutes:  active,
		ClockedMinutes: roundMinutes(analysis.ClockedMinutes),
		EfficiencyRate: efficiency,
		PointsEarned:   Points(day.Activities, roles),
	}

	periods := make([]productivity.IdlePeriod, 0, len(analysis.Gaps))
	for _, gap := range analysis.Gaps {
		periods = append(periods, productivity.IdlePeriod{
			EmployeeID:               day.EmployeeID,
			ScoreDate:                window.Date,
			StartTime:                gap.Start,
			EndTime:                  gap.End,
			DurationMinutes:          roundMinutes(gap.GapMinutes),
			ComputedThresholdMinutes: roundMinutes(gap.ThresholdMinutes),
		})
	}

	return productivity.ScoreResult{
		Score:       score,
		IdlePeriods: periods,
		ExcessIdle:  analysis.ExcessIdleMinutes,
	}
}

func roundMinutes(v float64) float64 {
	return decimal.NewFromFloat(v).Round(minutesPlaces).InexactFloat64()
}
