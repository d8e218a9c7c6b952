// Package wizard models the five-step booking wizard the browser client runs,
// so its gating rules and calendar can be served and tested server-side.
package wizard

import (
	"time"

	"github.com/wolfman30/lifecoach-booking/internal/bookings"
)

// Session is the state of one pass through the wizard.
type Session struct {
	Step bookings.Step
	Data bookings.Request
}

// New returns a session on the first step with the wizard defaults.
func New() *Session {
	s := &Session{}
	s.Reset()
	return s
}

// Reset goes back to the first step and clears the form.
func (s *Session) Reset() {
	s.Step = bookings.StepObjective
	s.Data = bookings.Request{
		FitnessLevel: bookings.LevelBeginner,
		Location:     bookings.LocationHome,
	}
}

// Blocker returns why the current step cannot be left, or nil.
func (s *Session) Blocker(today time.Time) error {
	data := s.Data
	data.Normalize()
	return data.CheckStep(s.Step, today)
}

// CanProceed reports whether the current step is complete.
func (s *Session) CanProceed(today time.Time) bool {
	return s.Blocker(today) == nil
}

// Next advances one step when the current one is complete. The last step
// never advances; submission happens there instead.
func (s *Session) Next(today time.Time) bool {
	if int(s.Step) >= bookings.StepCount || !s.CanProceed(today) {
		return false
	}
	s.Step++
	return true
}

// Previous goes back one step, never before the first.
func (s *Session) Previous() bool {
	if s.Step <= bookings.StepObjective {
		return false
	}
	s.Step--
	return true
}

// SelectDate picks a calendar day if it is available. Changing the date
// clears a previously picked time.
func (s *Session) SelectDate(day Day) bool {
	if !day.Available || day.IsPast {
		return false
	}
	if s.Data.SelectedDate != day.Date {
		s.Data.SelectedTime = ""
	}
	s.Data.SelectedDate = day.Date
	return true
}

// SelectTime picks a slot unless it is unknown or already booked.
func (s *Session) SelectTime(slot string, booked []string) bool {
	if !bookings.IsKnownSlot(slot) {
		return false
	}
	for _, b := range booked {
		if b == slot {
			return false
		}
	}
	s.Data.SelectedTime = slot
	return true
}
