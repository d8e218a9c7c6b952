package bookings

import (
	"sort"
	"time"
)

const (
	// DateLayout is the wire format of selectedDate.
	DateLayout = "2006-01-02"

	// SessionDuration is the length of one coaching session.
	SessionDuration = 80 * time.Minute

	// SessionPriceEUR is paid on site.
	SessionPriceEUR = 60
)

// Period groups slots of the day the way the wizard displays them.
type Period string

const (
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
	PeriodEvening   Period = "evening"
)

type periodSlots struct {
	period Period
	slots  []string
}

var catalogue = []periodSlots{
	{PeriodMorning, []string{"07:00", "08:30", "10:00", "11:30"}},
	{PeriodAfternoon, []string{"14:00", "15:30", "17:00"}},
	{PeriodEvening, []string{"18:30", "20:00"}},
}

var slotIndex = func() map[string]int {
	idx := make(map[string]int)
	for _, p := range catalogue {
		for _, s := range p.slots {
			idx[s] = len(idx)
		}
	}
	return idx
}()

// Slots returns every offered start time in display order.
func Slots() []string {
	out := make([]string, 0, len(slotIndex))
	for _, p := range catalogue {
		out = append(out, p.slots...)
	}
	return out
}

// IsKnownSlot reports whether t is one of the offered start times.
func IsKnownSlot(t string) bool {
	_, ok := slotIndex[t]
	return ok
}

// SortSlots orders slots by catalogue position; unknown values go last in
// lexical order.
func SortSlots(slots []string) {
	sort.SliceStable(slots, func(i, j int) bool {
		ii, iok := slotIndex[slots[i]]
		jj, jok := slotIndex[slots[j]]
		switch {
		case iok && jok:
			return ii < jj
		case iok != jok:
			return iok
		default:
			return slots[i] < slots[j]
		}
	})
}

// ParseDate parses a wizard date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, ErrMissingDate
	}
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CheckDateBookable returns nil when sessions can be booked on day. Days
// before today and Sundays are closed.
func CheckDateBookable(day, today time.Time) error {
	day = StartOfDay(day)
	if day.Before(StartOfDay(today)) {
		return ErrPastDate
	}
	if day.Weekday() == time.Sunday {
		return ErrClosedDay
	}
	return nil
}

// SlotStatus is one start time and whether it can still be picked.
type SlotStatus struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// PeriodAvailability lists the slots of one period.
type PeriodAvailability struct {
	Period Period       `json:"period"`
	Slots  []SlotStatus `json:"slots"`
}

// Availability describes which slots are free on a date.
type Availability struct {
	Date     string               `json:"date"`
	Bookable bool                 `json:"bookable"`
	Reason   string               `json:"reason,omitempty"`
	Periods  []PeriodAvailability `json:"periods"`
	Booked   []string             `json:"bookedSlots"`
}

// BuildAvailability combines the catalogue with booked slots. When the date
// itself is closed every slot is reported unavailable.
func BuildAvailability(date string, dateErr error, booked []string) Availability {
	taken := make(map[string]struct{}, len(booked))
	for _, s := range booked {
		taken[s] = struct{}{}
	}
	av := Availability{
		Date:     date,
		Bookable: dateErr == nil,
		Booked:   append([]string{}, booked...),
	}
	if dateErr != nil {
		av.Reason = dateErr.Error()
	}
	for _, p := range catalogue {
		pa := PeriodAvailability{Period: p.period, Slots: make([]SlotStatus, 0, len(p.slots))}
		for _, s := range p.slots {
			_, isTaken := taken[s]
			pa.Slots = append(pa.Slots, SlotStatus{Time: s, Available: dateErr == nil && !isTaken})
		}
		av.Periods = append(av.Periods, pa)
	}
	return av
}
