package bookings

import (
	"net/mail"
	"time"
)

// Step is a booking wizard step.
type Step int

const (
	StepObjective Step = iota + 1
	StepProfile
	StepDate
	StepTime
	StepConfirmation
)

// StepCount is the number of wizard steps.
const StepCount = int(StepConfirmation)

func (s Step) String() string {
	switch s {
	case StepObjective:
		return "objective"
	case StepProfile:
		return "profile"
	case StepDate:
		return "date"
	case StepTime:
		return "time"
	case StepConfirmation:
		return "confirmation"
	default:
		return "unknown"
	}
}

// CheckStep returns the reason the wizard cannot leave step, or nil. today
// carries the coach's timezone and is used for date checks.
func (r *Request) CheckStep(step Step, today time.Time) error {
	switch step {
	case StepObjective:
		if !r.Objective.Valid() {
			return ErrInvalidObjective
		}
	case StepProfile:
		if r.FirstName == "" || r.LastName == "" {
			return ErrMissingName
		}
		if r.Email == "" {
			return ErrMissingEmail
		}
		if _, err := mail.ParseAddress(r.Email); err != nil {
			return ErrInvalidEmail
		}
		if r.Phone == "" {
			return ErrMissingPhone
		}
		if !r.Age.Valid || r.Age.Value <= 0 {
			return ErrInvalidAge
		}
		if r.FitnessLevel != "" && !r.FitnessLevel.Valid() {
			return ErrInvalidFitnessLevel
		}
	case StepDate:
		day, err := ParseDate(r.SelectedDate, today.Location())
		if err != nil {
			return err
		}
		return CheckDateBookable(day, today)
	case StepTime:
		if r.SelectedTime == "" {
			return ErrMissingTime
		}
		if !IsKnownSlot(r.SelectedTime) {
			return ErrUnknownSlot
		}
		if !r.Location.Valid() {
			return ErrInvalidLocation
		}
		if r.Location == LocationHome && r.Address == "" {
			return ErrMissingAddress
		}
	case StepConfirmation:
		if !r.TermsAccepted {
			return ErrTermsNotAccepted
		}
	}
	return nil
}

// Validate checks every step in order and reports the first failure as a
// *StepError.
func (r *Request) Validate(today time.Time) error {
	for step := StepObjective; step <= StepConfirmation; step++ {
		if err := r.CheckStep(step, today); err != nil {
			return &StepError{Step: step, Err: err}
		}
	}
	return nil
}
