package bookings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/lifecoach-booking/internal/observability/metrics"
	"github.com/wolfman30/lifecoach-booking/pkg/logging"
)

var bookingsTracer = otel.Tracer("lifecoach.internal.bookings")

// Notifier sends the confirmation emails for a new booking.
type Notifier interface {
	NotifyBooking(ctx context.Context, b *Booking) error
}

// Broadcaster pushes slot changes to connected clients.
type Broadcaster interface {
	SlotBooked(date, slot string)
	SlotReleased(date, slot string)
}

// Service implements the booking flow on top of a Repository.
type Service struct {
	repo         Repository
	notifier     Notifier
	broadcaster  Broadcaster
	metrics      *metrics.BookingMetrics
	logger       *logging.Logger
	loc          *time.Location
	now          func() time.Time
	rejectDouble bool

	// serializes the conflict check with the insert when rejectDouble is set
	createMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

func WithNotifier(n Notifier) Option       { return func(s *Service) { s.notifier = n } }
func WithBroadcaster(b Broadcaster) Option { return func(s *Service) { s.broadcaster = b } }
func WithMetrics(m *metrics.BookingMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLocation sets the coach timezone used to decide which dates are past.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDoubleBookingRejected makes Create fail with ErrSlotTaken when the slot
// already holds a confirmed booking.
func WithDoubleBookingRejected(reject bool) Option {
	return func(s *Service) { s.rejectDouble = reject }
}

// NewService constructs a bookings service.
func NewService(repo Repository, logger *logging.Logger, opts ...Option) *Service {
	if repo == nil {
		panic("bookings: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		repo:   repo,
		logger: logger,
		loc:    time.UTC,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns midnight of the current day in the coach timezone.
func (s *Service) Today() time.Time {
	return StartOfDay(s.now().In(s.loc))
}

// Location returns the coach timezone.
func (s *Service) Location() *time.Location { return s.loc }

// Create validates, stores and announces a booking, then emails the client
// and the coach. When the emails fail the booking stays stored and the error
// is returned.
func (s *Service) Create(ctx context.Context, req Request) (*Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.create")
	defer span.End()

	req.Normalize()
	if err := req.Validate(s.Today()); err != nil {
		s.metrics.ObserveBooking("invalid")
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("lifecoach.selected_date", req.SelectedDate),
		attribute.String("lifecoach.selected_time", req.SelectedTime),
	)

	booking := &Booking{
		ID:        uuid.NewString(),
		Request:   req,
		CreatedAt: s.now().UTC(),
		Status:    StatusConfirmed,
	}

	if err := s.store(ctx, booking); err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrSlotTaken) {
			s.metrics.ObserveBooking("conflict")
		} else {
			s.metrics.ObserveBooking("failed")
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("lifecoach.booking_id", booking.ID))
	s.logger.Info("booking confirmed",
		"booking_id", booking.ID,
		"date", booking.SelectedDate,
		"time", booking.SelectedTime,
		"location", string(booking.Location),
	)

	if s.broadcaster != nil {
		s.broadcaster.SlotBooked(booking.SelectedDate, booking.SelectedTime)
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyBooking(ctx, booking); err != nil {
			span.RecordError(err)
			s.metrics.ObserveBooking("failed")
			s.logger.Error("booking notification failed", "booking_id", booking.ID, "error", err)
			return booking, fmt.Errorf("bookings: notify: %w", err)
		}
	}

	s.metrics.ObserveBooking("created")
	return booking, nil
}

func (s *Service) store(ctx context.Context, b *Booking) error {
	if !s.rejectDouble {
		return s.repo.Create(ctx, b)
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	taken, err := s.bookedSlots(ctx, b.SelectedDate)
	if err != nil {
		return err
	}
	for _, slot := range taken {
		if slot == b.SelectedTime {
			return ErrSlotTaken
		}
	}
	return s.repo.Create(ctx, b)
}

// BookedSlots lists the start times already held by confirmed bookings on
// date, in catalogue order.
func (s *Service) BookedSlots(ctx context.Context, date string) ([]string, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.booked_slots")
	defer span.End()
	span.SetAttributes(attribute.String("lifecoach.date", date))

	if _, err := ParseDate(date, s.loc); err != nil {
		return nil, err
	}
	slots, err := s.bookedSlots(ctx, date)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return slots, nil
}

func (s *Service) bookedSlots(ctx context.Context, date string) ([]string, error) {
	list, err := s.repo.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	slots := make([]string, 0, len(list))
	for _, b := range list {
		if b.SelectedDate == date && b.Confirmed() {
			slots = append(slots, b.SelectedTime)
		}
	}
	SortSlots(slots)
	return slots, nil
}

// Availability reports which catalogue slots are still free on date.
func (s *Service) Availability(ctx context.Context, date string) (*Availability, error) {
	day, err := ParseDate(date, s.loc)
	if err != nil {
		return nil, err
	}
	booked, err := s.bookedSlots(ctx, date)
	if err != nil {
		return nil, err
	}
	av := BuildAvailability(date, CheckDateBookable(day, s.Today()), booked)
	return &av, nil
}

// Get returns a booking by id.
func (s *Service) Get(ctx context.Context, id string) (*Booking, error) {
	return s.repo.Get(ctx, id)
}

// List returns bookings for date, or all bookings when date is empty.
func (s *Service) List(ctx context.Context, date string) ([]*Booking, error) {
	if date != "" {
		if _, err := ParseDate(date, s.loc); err != nil {
			return nil, err
		}
	}
	return s.repo.ListByDate(ctx, date)
}

// Cancel marks a booking cancelled, which frees its slot.
func (s *Service) Cancel(ctx context.Context, id string) (*Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("lifecoach.booking_id", id))

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	b, err := s.repo.UpdateStatus(ctx, id, StatusCancelled)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.logger.Info("booking cancelled", "booking_id", id, "date", b.SelectedDate, "time", b.SelectedTime)
	if s.broadcaster != nil {
		s.broadcaster.SlotReleased(b.SelectedDate, b.SelectedTime)
	}
	return b, nil
}

// Ping checks the backing store when it supports it.
func (s *Service) Ping(ctx context.Context) error {
	if p, ok := s.repo.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
