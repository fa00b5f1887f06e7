package localday

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestResolve_RegularDay(t *testing.T) {
	loc := mustLoad(t, "America/Chicago")
	w := Resolve(time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), loc)

	assert.Equal(t, time.Date(2024, 6, 12, 5, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 6, 13, 5, 0, 0, 0, time.UTC), w.End)
	assert.Equal(t, 24*time.Hour, w.Duration())
	assert.Equal(t, "2024-06-12", w.String())
}

func TestResolve_SpringForwardIsShorter(t *testing.T) {
	loc := mustLoad(t, "America/Chicago")
	w := Resolve(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), loc)

	assert.Equal(t, time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 3, 11, 5, 0, 0, 0, time.UTC), w.End)
	assert.Equal(t, 23*time.Hour, w.Duration())
}

func TestResolve_FallBackIsLonger(t *testing.T) {
	loc := mustLoad(t, "America/Chicago")
	w := Resolve(time.Date(2024, 11, 3, 0, 0, 0, 0, time.UTC), loc)

	assert.Equal(t, time.Date(2024, 11, 3, 5, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 11, 4, 6, 0, 0, 0, time.UTC), w.End)
	assert.Equal(t, 25*time.Hour, w.Duration())
}

func TestResolve_UsesCalendarDateOfInput(t *testing.T) {
	loc := mustLoad(t, "America/Chicago")
	// 23:30 local on June 12 is already June 13 in UTC; the local date wins.
	local := time.Date(2024, 6, 12, 23, 30, 0, 0, loc)
	w := Resolve(local, loc)
	assert.Equal(t, "2024-06-12", w.String())
}

func TestWindow_Contains(t *testing.T) {
	w := Resolve(time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), time.UTC)

	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End.Add(-time.Nanosecond)))
	assert.False(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.Start.Add(-time.Second)))
}

func TestParse(t *testing.T) {
	d, err := Parse("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"", "2023-02-29", "2024-13-01", "12/06/2024"} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestTodayAndIsHistorical(t *testing.T) {
	loc := mustLoad(t, "America/Chicago")
	// 03:00 UTC on June 13 is still June 12 in Chicago.
	now := time.Date(2024, 6, 13, 3, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), Today(now, loc))
	assert.True(t, IsHistorical(time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC), now, loc))
	assert.False(t, IsHistorical(time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), now, loc))
	assert.False(t, IsHistorical(time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC), now, loc))
}

func TestRange(t *testing.T) {
	days := Range(time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, days, 4)
	assert.Equal(t, "2024-02-29", days[2].Format(DateLayout))

	assert.Empty(t, Range(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}
