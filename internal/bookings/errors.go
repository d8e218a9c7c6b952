package bookings

import (
	"errors"
	"fmt"
)

var (
	// Step 1
	ErrInvalidObjective = errors.New("objective is required")

	// Step 2
	ErrMissingName         = errors.New("first and last name are required")
	ErrMissingEmail        = errors.New("email is required")
	ErrInvalidEmail        = errors.New("email is invalid")
	ErrMissingPhone        = errors.New("phone is required")
	ErrInvalidAge          = errors.New("age is required")
	ErrInvalidFitnessLevel = errors.New("fitness level is invalid")

	// Step 3
	ErrMissingDate = errors.New("date is required")
	ErrInvalidDate = errors.New("date must use YYYY-MM-DD")
	ErrPastDate    = errors.New("date is in the past")
	ErrClosedDay   = errors.New("no sessions on sundays")

	// Step 4
	ErrMissingTime     = errors.New("time is required")
	ErrUnknownSlot     = errors.New("time is not an offered slot")
	ErrInvalidLocation = errors.New("location is invalid")
	ErrMissingAddress  = errors.New("address is required for home sessions")
	ErrSlotTaken       = errors.New("slot is already booked")

	// Step 5
	ErrTermsNotAccepted = errors.New("terms must be accepted")

	ErrBookingNotFound  = errors.New("booking not found")
	ErrAlreadyCancelled = errors.New("booking already cancelled")
)

// StepError reports the first wizard step whose requirements are not met.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", int(e.Step), e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
