package wizard

import (
	"fmt"
	"time"

	"github.com/wolfman30/lifecoach-booking/internal/bookings"
)

// CalendarDays is the fixed size of the month grid: six Monday-first weeks.
const CalendarDays = 42

var monthNames = [...]string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

// Day is one cell of the calendar grid.
type Day struct {
	Date       string `json:"date"`
	Number     int    `json:"number"`
	OtherMonth bool   `json:"otherMonth"`
	IsPast     bool   `json:"isPast"`
	Available  bool   `json:"available"`
}

// Month is the grid rendered for one month.
type Month struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Label string `json:"label"`
	Days  []Day  `json:"days"`
}

// MonthLabel renders the calendar header, e.g. "Mars 2025".
func MonthLabel(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", monthNames[month-1], year)
}

// CalendarMonth builds the grid for month starting on the Monday on or
// before the 1st. today decides which days are past and carries the
// timezone the grid is computed in.
func CalendarMonth(year int, month time.Month, today time.Time) Month {
	loc := today.Location()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	offset := (int(first.Weekday()) + 6) % 7
	start := first.AddDate(0, 0, -offset)
	midnight := bookings.StartOfDay(today)

	m := Month{
		Year:  year,
		Month: int(month),
		Label: MonthLabel(year, month),
		Days:  make([]Day, 0, CalendarDays),
	}
	for i := 0; i < CalendarDays; i++ {
		d := start.AddDate(0, 0, i)
		m.Days = append(m.Days, Day{
			Date:       d.Format(bookings.DateLayout),
			Number:     d.Day(),
			OtherMonth: d.Month() != month,
			IsPast:     d.Before(midnight),
			Available:  bookings.CheckDateBookable(d, today) == nil,
		})
	}
	return m
}

// NextMonth returns the month after (year, month), wrapping into next year.
func NextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// PreviousMonth returns the month before (year, month), wrapping into the
// previous year.
func PreviousMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}
