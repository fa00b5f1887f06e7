// Package localday maps business calendar dates onto UTC instants.
//
// A business day is the half-open interval between two consecutive local
// midnights in a fixed named zone. Around daylight-saving transitions that
// interval is 23 or 25 hours long, so callers must never assume 24h.
package localday

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid calendar date")

// Window is one local calendar day expressed in UTC.
type Window struct {
	// Date carries the calendar date at midnight UTC; used as the storage key.
	Date  time.Time
	Start time.Time
	End   time.Time
}

// Resolve returns the UTC window [Start, End) covering the calendar date of
// date (read in date's own location) as observed in loc.
func Resolve(date time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	end := time.Date(y, m, d+1, 0, 0, 0, 0, loc)

	return Window{
		Date:  time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Start: start.UTC(),
		End:   end.UTC(),
	}
}

// Duration is the real elapsed length of the local day.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Contains reports whether t falls inside [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

func (w Window) String() string {
	return w.Date.Format(DateLayout)
}

// Parse reads a YYYY-MM-DD calendar date.
func Parse(s string) (time.Time, error) {
	date, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return date, nil
}

// Today returns the calendar date of now in loc, at midnight UTC.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsHistorical reports whether date is strictly before the local date of now.
func IsHistorical(date, now time.Time, loc *time.Location) bool {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Before(Today(now, loc))
}

// Range lists every calendar date from..to inclusive. An inverted range is empty.
func Range(from, to time.Time) []time.Time {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
