package wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarMonth_Grid(t *testing.T) {
	m := CalendarMonth(2025, time.March, today(t))

	require.Len(t, m.Days, CalendarDays)
	assert.Equal(t, "Mars 2025", m.Label)
	assert.Equal(t, 3, m.Month)

	// 1 March 2025 is a Saturday, so the grid opens on Monday 24 February.
	first := m.Days[0]
	assert.Equal(t, "2025-02-24", first.Date)
	assert.Equal(t, 24, first.Number)
	assert.True(t, first.OtherMonth)
	assert.True(t, first.IsPast)
	assert.False(t, first.Available)

	assert.Equal(t, "2025-04-06", m.Days[41].Date)

	byDate := map[string]Day{}
	for _, d := range m.Days {
		byDate[d.Date] = d
	}
	assert.True(t, byDate["2025-03-02"].IsPast, "yesterday")
	assert.False(t, byDate["2025-03-03"].IsPast, "today")
	assert.True(t, byDate["2025-03-03"].Available)
	assert.False(t, byDate["2025-03-09"].Available, "sunday")
	assert.False(t, byDate["2025-03-09"].IsPast)
	assert.True(t, byDate["2025-03-10"].Available)
	assert.True(t, byDate["2025-04-01"].OtherMonth)
}

func TestCalendarMonth_StartsOnMondayWhenFirstIsMonday(t *testing.T) {
	// 1 September 2025 is a Monday.
	m := CalendarMonth(2025, time.September, today(t))
	assert.Equal(t, "2025-09-01", m.Days[0].Date)
	assert.False(t, m.Days[0].OtherMonth)
}

func TestCalendarMonth_FirstIsSunday(t *testing.T) {
	// 1 June 2025 is a Sunday, so the grid opens six days earlier.
	m := CalendarMonth(2025, time.June, today(t))
	assert.Equal(t, "2025-05-26", m.Days[0].Date)
}

func TestMonthNavigation(t *testing.T) {
	y, m := NextMonth(2025, time.December)
	assert.Equal(t, 2026, y)
	assert.Equal(t, time.January, m)

	y, m = NextMonth(2025, time.March)
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.April, m)

	y, m = PreviousMonth(2025, time.January)
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.December, m)

	y, m = PreviousMonth(2025, time.March)
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.February, m)
}
