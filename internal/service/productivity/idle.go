package productivity

import (
	"math"
	"sort"
	"time"

	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/productivity"
	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/role"
	"github.com/cmlabs-hris/productivity-backend-go/internal/pkg/localday"
)

const (
	// SettleInMinutes is allowed between clocking in and the first activity.
	SettleInMinutes = 15.0
	// CleanupAllowanceMinutes is added to the end-of-shift threshold when the
	// employee actually clocked out.
	CleanupAllowanceMinutes = 15.0
	// NoActivityGraceMinutes is the flat idle deduction for a clock session
	// with no activity in it, capped at the session length.
	NoActivityGraceMinutes = 10.0
)

type GapKind string

const (
	GapStartOfShift      GapKind = "start_of_shift"
	GapBetweenActivities GapKind = "between_activities"
	GapEndOfShift        GapKind = "end_of_shift"
	GapNoActivity        GapKind = "no_activity"
)

// IdleGap is a gap whose length exceeded its threshold.
type IdleGap struct {
	Kind             GapKind
	Start            time.Time
	End              time.Time
	GapMinutes       float64
	ThresholdMinutes float64
	ExcessMinutes    float64
}

// IdleAnalysis is the outcome of walking one employee-day's timeline.
type IdleAnalysis struct {
	ClockedMinutes    float64
	ExcessIdleMinutes float64
	Gaps              []IdleGap
}

// shift is a clock session clipped to the local day.
type shift struct {
	start time.Time
	end   time.Time
	// closed is true only when the employee clocked out inside this day.
	closed     bool
	activities []productivity.ActivityRecord
}

func (s shift) minutes() float64 {
	return s.end.Sub(s.start).Minutes()
}

// AnalyzeIdle computes excess idle for one employee-day. Each clock session is
// analyzed on its own; time between sessions is neither clocked nor idle.
// Open sessions run until now, clipped to the day.
func AnalyzeIdle(
	window localday.Window,
	sessions []productivity.ClockSession,
	activities []productivity.ActivityRecord,
	roles role.Lookup,
	now time.Time,
) IdleAnalysis {
	shifts := buildShifts(window, sessions, now)

	var result IdleAnalysis
	for _, s := range shifts {
		result.ClockedMinutes += s.minutes()
	}
	if len(shifts) == 0 {
		return result
	}

	assignActivities(shifts, sortedActivities(activities))

	for _, s := range shifts {
		for _, gap := range analyzeShift(s, roles) {
			if gap.ExcessMinutes <= 0 {
				continue
			}
			result.ExcessIdleMinutes += gap.ExcessMinutes
			result.Gaps = append(result.Gaps, gap)
		}
	}
	return result
}

func analyzeShift(s shift, roles role.Lookup) []IdleGap {
	if len(s.activities) == 0 {
		// No timeline to walk. The whole session is flagged and only the
		// grace is counted as excess, the threshold column recording it.
		return []IdleGap{{
			Kind:             GapNoActivity,
			Start:            s.start,
			End:              s.end,
			GapMinutes:       s.minutes(),
			ThresholdMinutes: NoActivityGraceMinutes,
			ExcessMinutes:    math.Min(NoActivityGraceMinutes, s.minutes()),
		}}
	}

	gaps := make([]IdleGap, 0, len(s.activities)+1)

	first := s.activities[0]
	gaps = append(gaps, newGap(GapStartOfShift, s.start, first.WindowStart, SettleInMinutes))

	// The allowance after each activity depends on the activity just finished.
	for i := 1; i < len(s.activities); i++ {
		prev, curr := s.activities[i-1], s.activities[i]
		threshold := roles.Get(prev.RoleID).IdleThreshold(prev.ItemsCount)
		gaps = append(gaps, newGap(GapBetweenActivities, prev.WindowEnd, curr.WindowStart, threshold))
	}

	last := s.activities[len(s.activities)-1]
	threshold := roles.Get(last.RoleID).IdleThreshold(last.ItemsCount)
	if s.closed {
		threshold += CleanupAllowanceMinutes
	}
	gaps = append(gaps, newGap(GapEndOfShift, last.WindowEnd, s.end, threshold))

	return gaps
}

func newGap(kind GapKind, start, end time.Time, threshold float64) IdleGap {
	gapMinutes := end.Sub(start).Minutes()
	excess := gapMinutes - threshold
	if excess < 0 {
		excess = 0
	}
	return IdleGap{
		Kind:             kind,
		Start:            start,
		End:              end,
		GapMinutes:       gapMinutes,
		ThresholdMinutes: threshold,
		ExcessMinutes:    excess,
	}
}

// buildShifts clips sessions to the day, drops empty ones and merges overlaps.
func buildShifts(window localday.Window, sessions []productivity.ClockSession, now time.Time) []shift {
	shifts := make([]shift, 0, len(sessions))
	for _, cs := range sessions {
		start := cs.ClockIn
		if start.Before(window.Start) {
			start = window.Start
		}

		var end time.Time
		closed := false
		if cs.ClockOut != nil {
			end = *cs.ClockOut
			closed = true
		} else {
			end = now
		}
		if end.After(window.End) {
			end = window.End
			closed = false
		}

		if !end.After(start) {
			continue
		}
		shifts = append(shifts, shift{start: start, end: end, closed: closed})
	}

	sort.SliceStable(shifts, func(i, j int) bool { return shifts[i].start.Before(shifts[j].start) })

	merged := shifts[:0]
	for _, s := range shifts {
		if n := len(merged); n > 0 && !s.start.After(merged[n-1].end) {
			if s.end.After(merged[n-1].end) {
				merged[n-1].end = s.end
				merged[n-1].closed = s.closed
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// assignActivities attaches each activity to the shift its window starts in.
// Activity outside every shift still earns points but has no idle context.
func assignActivities(shifts []shift, ordered []productivity.ActivityRecord) {
	i := 0
	for _, a := range ordered {
		for i < len(shifts) && !a.WindowStart.Before(shifts[i].end) {
			i++
		}
		if i == len(shifts) {
			return
		}
		if a.WindowStart.Before(shifts[i].start) {
			continue
		}
		shifts[i].activities = append(shifts[i].activities, a)
	}
}

func sortedActivities(activities []productivity.ActivityRecord) []productivity.ActivityRecord {
	ordered := make([]productivity.ActivityRecord, len(activities))
	copy(ordered, activities)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].WindowStart.Before(ordered[j].WindowStart)
	})
	return ordered
}
