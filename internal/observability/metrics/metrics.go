package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the booking flow.
type BookingMetrics struct {
	bookingsTotal     *prometheus.CounterVec
	emailsTotal       *prometheus.CounterVec
	slotLookupsTotal  *prometheus.CounterVec
	realtimeConnected prometheus.Gauge
	emailLatency      *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lifecoach",
			Subsystem: "bookings",
			Name:      "submissions_total",
			Help:      "Booking submissions by outcome",
		}, []string{"outcome"}),
		emailsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lifecoach",
			Subsystem: "notify",
			Name:      "emails_total",
			Help:      "Booking emails by recipient and status",
		}, []string{"recipient", "status"}),
		slotLookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lifecoach",
			Subsystem: "bookings",
			Name:      "slot_lookups_total",
			Help:      "Booked-slot lookups by channel",
		}, []string{"channel"}),
		realtimeConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lifecoach",
			Subsystem: "realtime",
			Name:      "connections",
			Help:      "Open realtime websocket connections",
		}),
		emailLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lifecoach",
			Subsystem: "notify",
			Name:      "email_latency_seconds",
			Help:      "Latency of outbound email provider calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"recipient"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.emailsTotal, m.slotLookupsTotal, m.realtimeConnected, m.emailLatency)
	return m
}

// ObserveBooking records a submission outcome: created, invalid, conflict or failed.
func (m *BookingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveEmail(recipient string, sent bool, seconds float64) {
	if m == nil {
		return
	}
	status := "failed"
	if sent {
		status = "sent"
	}
	m.emailsTotal.WithLabelValues(recipient, status).Inc()
	m.emailLatency.WithLabelValues(recipient).Observe(seconds)
}

func (m *BookingMetrics) ObserveSlotLookup(channel string) {
	if m == nil {
		return
	}
	m.slotLookupsTotal.WithLabelValues(channel).Inc()
}

func (m *BookingMetrics) RealtimeConnected() {
	if m == nil {
		return
	}
	m.realtimeConnected.Inc()
}

func (m *BookingMetrics) RealtimeDisconnected() {
	if m == nil {
		return
	}
	m.realtimeConnected.Dec()
}
