package bookings

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/lifecoach-booking/pkg/logging"
)

func newTestService(repo Repository, opts ...Option) *Service {
	opts = append([]Option{WithClock(fixedClock), WithLocation(testNow.Location())}, opts...)
	return NewService(repo, logging.New("error"), opts...)
}

func TestServiceCreateStoresNotifiesAndBroadcasts(t *testing.T) {
	repo := NewInMemoryRepository()
	notifier := &recordingNotifier{}
	bc := &recordingBroadcaster{}
	svc := newTestService(repo, WithNotifier(notifier), WithBroadcaster(bc))

	b, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.True(t, b.CreatedAt.Equal(testNow))

	stored, err := repo.Get(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "camille@example.com", stored.Email)

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, b.ID, notifier.calls[0].ID)
	assert.Equal(t, []slotEvent{{"booked", "2025-03-04", "08:30"}}, bc.events)
}

func TestServiceCreateRejectsInvalidRequest(t *testing.T) {
	repo := NewInMemoryRepository()
	notifier := &recordingNotifier{}
	svc := newTestService(repo, WithNotifier(notifier))

	req := validRequest()
	req.TermsAccepted = false
	_, err := svc.Create(context.Background(), req)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepConfirmation, stepErr.Step)
	all, _ := repo.ListByDate(context.Background(), "")
	assert.Empty(t, all)
	assert.Empty(t, notifier.calls)
}

func TestServiceCreateKeepsBookingWhenEmailFails(t *testing.T) {
	repo := NewInMemoryRepository()
	notifier := &recordingNotifier{err: errors.New("provider down")}
	svc := newTestService(repo, WithNotifier(notifier))

	b, err := svc.Create(context.Background(), validRequest())
	require.Error(t, err)
	require.NotNil(t, b)

	slots, err := svc.BookedSlots(context.Background(), "2025-03-04")
	require.NoError(t, err)
	assert.Equal(t, []string{"08:30"}, slots)
}

func TestServiceCreateStoreFailure(t *testing.T) {
	svc := newTestService(&failingRepository{NewInMemoryRepository()})
	_, err := svc.Create(context.Background(), validRequest())
	assert.ErrorIs(t, err, errStoreDown)
}

func TestServiceAllowsDoubleBookingByDefault(t *testing.T) {
	svc := newTestService(NewInMemoryRepository())

	_, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	slots, err := svc.BookedSlots(context.Background(), "2025-03-04")
	require.NoError(t, err)
	assert.Equal(t, []string{"08:30", "08:30"}, slots)
}

func TestServiceRejectsDoubleBookingWhenEnabled(t *testing.T) {
	svc := newTestService(NewInMemoryRepository(), WithDoubleBookingRejected(true))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		taken   int
		workers = 8
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), validRequest())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrSlotTaken):
				taken++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, taken)
}

func TestServiceBookedSlotsIgnoresCancelledAndOtherDates(t *testing.T) {
	svc := newTestService(NewInMemoryRepository())
	ctx := context.Background()

	mk := func(date, slot string) *Booking {
		req := validRequest()
		req.SelectedDate, req.SelectedTime = date, slot
		b, err := svc.Create(ctx, req)
		require.NoError(t, err)
		return b
	}
	mk("2025-03-04", "20:00")
	cancelled := mk("2025-03-04", "10:00")
	mk("2025-03-04", "07:00")
	mk("2025-03-05", "11:30")

	_, err := svc.Cancel(ctx, cancelled.ID)
	require.NoError(t, err)

	slots, err := svc.BookedSlots(ctx, "2025-03-04")
	require.NoError(t, err)
	assert.Equal(t, []string{"07:00", "20:00"}, slots)

	empty, err := svc.BookedSlots(ctx, "2025-03-07")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = svc.BookedSlots(ctx, "tomorrow")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestServiceCancel(t *testing.T) {
	bc := &recordingBroadcaster{}
	svc := newTestService(NewInMemoryRepository(), WithBroadcaster(bc))
	ctx := context.Background()

	b, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, slotEvent{"released", "2025-03-04", "08:30"}, bc.events[len(bc.events)-1])

	_, err = svc.Cancel(ctx, b.ID)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
	_, err = svc.Cancel(ctx, "missing")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestServiceAvailability(t *testing.T) {
	svc := newTestService(NewInMemoryRepository())
	ctx := context.Background()
	_, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	av, err := svc.Availability(ctx, "2025-03-04")
	require.NoError(t, err)
	assert.True(t, av.Bookable)
	assert.Equal(t, []string{"08:30"}, av.Booked)
	assert.False(t, av.Periods[0].Slots[1].Available)

	sunday, err := svc.Availability(ctx, "2025-03-09")
	require.NoError(t, err)
	assert.False(t, sunday.Bookable)

	past, err := svc.Availability(ctx, "2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, ErrPastDate.Error(), past.Reason)
}

func TestServiceListAndToday(t *testing.T) {
	svc := newTestService(NewInMemoryRepository())
	ctx := context.Background()
	_, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = svc.List(ctx, "03-04")
	assert.ErrorIs(t, err, ErrInvalidDate)

	today := svc.Today()
	assert.Equal(t, 0, today.Hour())
	assert.Equal(t, 3, today.Day())
	assert.NoError(t, svc.Ping(ctx))
}
