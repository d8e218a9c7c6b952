package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/lifecoach-booking/internal/bookings"
	"github.com/wolfman30/lifecoach-booking/internal/observability/metrics"
)

type recordingSender struct {
	mu     sync.Mutex
	sent   []EmailMessage
	failOn string
}

func (r *recordingSender) Send(ctx context.Context, msg EmailMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("send without deadline")
	}
	if r.failOn != "" && msg.To == r.failOn {
		return errors.New("mailbox unavailable")
	}
	r.sent = append(r.sent, msg)
	return nil
}

func sampleBooking() *bookings.Booking {
	return &bookings.Booking{
		ID: "b-42",
		Request: bookings.Request{
			Objective:        bookings.ObjectiveWeightLoss,
			ObjectiveDetails: "Perdre 5 kg avant l'été",
			FirstName:        "Camille",
			LastName:         "Durand",
			Email:            "camille@example.com",
			Phone:            "0612345678",
			Age:              bookings.NewMeasure(34),
			Gender:           bookings.GenderFemale,
			Height:           bookings.NewMeasure(168),
			FitnessLevel:     bookings.LevelBeginner,
			HealthIssues:     "Genou <fragile>",
			SelectedDate:     "2025-03-04",
			SelectedTime:     "08:30",
			Location:         bookings.LocationHome,
			Address:          "12 rue de la Paix, Paris",
			TermsAccepted:    true,
		},
		CreatedAt: time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC),
		Status:    bookings.StatusConfirmed,
	}
}

func TestFormatDateFR(t *testing.T) {
	assert.Equal(t, "mardi 4 mars 2025", FormatDateFR(time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "dimanche 17 août 2025", FormatDateFR(time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "not-a-date", formatSelectedDate("not-a-date"))
	assert.Equal(t, "1h20", formatDuration(bookings.SessionDuration))
	assert.Equal(t, "1h", formatDuration(time.Hour))
}

func TestSubjects(t *testing.T) {
	b := sampleBooking()
	assert.Equal(t, "Confirmation de ta séance - mardi 4 mars 2025 à 08:30", ClientSubject(b))
	assert.Equal(t, "Nouvelle réservation - Camille Durand - mardi 4 mars 2025", CoachSubject(b))
}

func TestNotifyBooking_SendsClientThenCoach(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewBookingMetrics(reg)
	sender := &recordingSender{}
	n := NewBookingNotifier(sender, BookingNotifierConfig{CoachEmail: "coach@example.com"}, m, nil)

	require.NoError(t, n.NotifyBooking(context.Background(), sampleBooking()))
	require.Len(t, sender.sent, 2)

	client := sender.sent[0]
	assert.Equal(t, "camille@example.com", client.To)
	assert.Equal(t, "Camille Durand", client.ToName)
	assert.Contains(t, client.HTML, "mardi 4 mars 2025")
	assert.Contains(t, client.HTML, "1h20")
	assert.Contains(t, client.HTML, "À domicile")
	assert.Contains(t, client.HTML, "12 rue de la Paix, Paris")
	assert.Contains(t, client.HTML, "Perte de poids")
	assert.Contains(t, client.HTML, "Débutant")
	assert.Contains(t, client.HTML, "60€")
	assert.Contains(t, client.HTML, "https://wa.me/33769941881")
	assert.Contains(t, client.HTML, "24h")
	assert.Contains(t, client.Body, "Bonjour Camille")

	coach := sender.sent[1]
	assert.Equal(t, "coach@example.com", coach.To)
	assert.Contains(t, coach.HTML, "camille@example.com")
	assert.Contains(t, coach.HTML, "Femme")
	assert.Contains(t, coach.HTML, "168 cm")
	assert.NotContains(t, coach.HTML, "Poids :")
	assert.Contains(t, coach.HTML, "Genou &lt;fragile&gt;")
	assert.Contains(t, coach.HTML, "b-42")
	assert.Contains(t, coach.Body, "ID Réservation : b-42")

	assert.Equal(t, 2, testutil.CollectAndCount(reg, "lifecoach_notify_emails_total"))
}

func TestNotifyBooking_ClientFailureSkipsCoach(t *testing.T) {
	sender := &recordingSender{failOn: "camille@example.com"}
	n := NewBookingNotifier(sender, BookingNotifierConfig{CoachEmail: "coach@example.com"}, nil, nil)

	err := n.NotifyBooking(context.Background(), sampleBooking())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client confirmation")
	assert.Empty(t, sender.sent)
}

func TestNotifyBooking_CoachFailure(t *testing.T) {
	sender := &recordingSender{failOn: "coach@example.com"}
	n := NewBookingNotifier(sender, BookingNotifierConfig{CoachEmail: "coach@example.com"}, nil, nil)

	err := n.NotifyBooking(context.Background(), sampleBooking())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "coach notification")
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "camille@example.com", sender.sent[0].To)
}

func TestNotifyBooking_NoCoachEmail(t *testing.T) {
	sender := &recordingSender{}
	n := NewBookingNotifier(sender, BookingNotifierConfig{}, nil, nil)

	require.NoError(t, n.NotifyBooking(context.Background(), sampleBooking()))
	assert.Len(t, sender.sent, 1)
}

func TestNotifyBooking_OptionalFieldsOmitted(t *testing.T) {
	b := sampleBooking()
	b.Location = bookings.LocationGym
	b.Address = ""
	b.ObjectiveDetails = ""
	sender := &recordingSender{}
	n := NewBookingNotifier(sender, BookingNotifierConfig{}, nil, nil)

	require.NoError(t, n.NotifyBooking(context.Background(), b))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].HTML, "En salle")
	assert.NotContains(t, sender.sent[0].HTML, "Adresse :")
	assert.NotContains(t, sender.sent[0].Body, "Adresse :")
}

func TestNotifyBooking_Unconfigured(t *testing.T) {
	var n *BookingNotifier
	assert.Error(t, n.NotifyBooking(context.Background(), sampleBooking()))
	assert.Error(t, NewBookingNotifier(&recordingSender{}, BookingNotifierConfig{}, nil, nil).NotifyBooking(context.Background(), nil))
}
