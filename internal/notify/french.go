package notify

import (
	"fmt"
	"time"

	"github.com/wolfman30/lifecoach-booking/internal/bookings"
)

var frenchWeekdays = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// FormatDateFR renders a date the way fr-FR long dates read, e.g.
// "mardi 4 mars 2025".
func FormatDateFR(t time.Time) string {
	return fmt.Sprintf("%s %d %s %d", frenchWeekdays[t.Weekday()], t.Day(), frenchMonths[t.Month()-1], t.Year())
}

// formatSelectedDate formats a YYYY-MM-DD wizard date, returning the raw
// value when it does not parse.
func formatSelectedDate(date string) string {
	t, err := time.Parse(bookings.DateLayout, date)
	if err != nil {
		return date
	}
	return FormatDateFR(t)
}

// formatDuration renders 80m as "1h20".
func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh%02d", h, m)
}
