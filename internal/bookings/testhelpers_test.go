package bookings

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Monday 3 March 2025, 10:00 in Paris.
var testNow = time.Date(2025, 3, 3, 10, 0, 0, 0, mustLoad("Europe/Paris"))

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(name, 3600)
	}
	return loc
}

func fixedClock() time.Time { return testNow }

func validRequest() Request {
	return Request{
		Objective:     ObjectiveMuscleGain,
		FirstName:     "Camille",
		LastName:      "Durand",
		Email:         "camille@example.com",
		Phone:         "+33 6 12 34 56 78",
		Age:           NewMeasure(29),
		FitnessLevel:  LevelIntermediate,
		SelectedDate:  "2025-03-04",
		SelectedTime:  "08:30",
		Location:      LocationGym,
		TermsAccepted: true,
	}
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []*Booking
	err   error
}

func (n *recordingNotifier) NotifyBooking(_ context.Context, b *Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, b)
	return n.err
}

type slotEvent struct {
	kind, date, time string
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []slotEvent
}

func (b *recordingBroadcaster) SlotBooked(date, t string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, slotEvent{"booked", date, t})
}

func (b *recordingBroadcaster) SlotReleased(date, t string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, slotEvent{"released", date, t})
}

type failingRepository struct {
	*InMemoryRepository
}

var errStoreDown = errors.New("store down")

func (failingRepository) Create(context.Context, *Booking) error { return errStoreDown }
func (failingRepository) ListByDate(context.Context, string) ([]*Booking, error) {
	return nil, errStoreDown
}
