package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/lifecoach-booking/internal/bookings"
	"github.com/wolfman30/lifecoach-booking/internal/observability/metrics"
)

type stubLookup struct {
	slots map[string][]string
	err   error
}

func (s *stubLookup) BookedSlots(ctx context.Context, date string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	if date == "" {
		return nil, bookings.ErrMissingDate
	}
	if _, err := time.Parse(bookings.DateLayout, date); err != nil {
		return nil, bookings.ErrInvalidDate
	}
	if slots, ok := s.slots[date]; ok {
		return slots, nil
	}
	return []string{}, nil
}

// gathered sums every series of a counter or gauge family.
func gathered(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			total += metric.GetCounter().GetValue() + metric.GetGauge().GetValue()
		}
	}
	return total
}

func startHub(t *testing.T, hub *Hub) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, in InboundMessage) OutboundMessage {
	t.Helper()
	require.NoError(t, conn.WriteJSON(in))
	return readMessage(t, conn)
}

func readMessage(t *testing.T, conn *websocket.Conn) OutboundMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var out OutboundMessage
	require.NoError(t, conn.ReadJSON(&out))
	return out
}

func TestHub_PingPong(t *testing.T) {
	hub := NewHub(&stubLookup{}, nil, nil, nil)
	conn := dial(t, startHub(t, hub))

	out := roundTrip(t, conn, InboundMessage{Type: TypePing})
	assert.Equal(t, TypePong, out.Type)
}

func TestHub_GetBookedSlots(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewBookingMetrics(reg)
	lookup := &stubLookup{slots: map[string][]string{"2025-03-04": {"08:30", "17:00"}}}
	hub := NewHub(lookup, []string{"*"}, m, nil)
	conn := dial(t, startHub(t, hub))

	out := roundTrip(t, conn, InboundMessage{Type: TypeGetBookedSlots, Date: "2025-03-04"})
	assert.Equal(t, TypeBookedSlots, out.Type)
	assert.True(t, out.Success)
	assert.Equal(t, "2025-03-04", out.Date)
	assert.Equal(t, []string{"08:30", "17:00"}, out.BookedSlots)

	out = roundTrip(t, conn, InboundMessage{Type: TypeGetBookedSlots, Date: "2025-03-05"})
	assert.True(t, out.Success)
	assert.Empty(t, out.BookedSlots)

	out = roundTrip(t, conn, InboundMessage{Type: TypeGetBookedSlots, Date: "04/03/2025"})
	assert.False(t, out.Success)
	assert.Equal(t, bookings.ErrInvalidDate.Error(), out.Message)

	assert.Equal(t, 3.0, gathered(t, reg, "lifecoach_bookings_slot_lookups_total"))
}

func TestHub_GetBookedSlotsStoreFailure(t *testing.T) {
	hub := NewHub(&stubLookup{err: errors.New("redis down")}, nil, nil, nil)
	conn := dial(t, startHub(t, hub))

	out := roundTrip(t, conn, InboundMessage{Type: TypeGetBookedSlots, Date: "2025-03-04"})
	assert.False(t, out.Success)
	assert.Equal(t, "failed to load booked slots", out.Message)
}

func TestHub_UnknownType(t *testing.T) {
	hub := NewHub(&stubLookup{}, nil, nil, nil)
	conn := dial(t, startHub(t, hub))

	out := roundTrip(t, conn, InboundMessage{Type: "subscribe"})
	assert.Equal(t, TypeError, out.Type)
}

func TestHub_BroadcastSlotChanges(t *testing.T) {
	hub := NewHub(&stubLookup{}, nil, nil, nil)
	url := startHub(t, hub)
	a := dial(t, url)
	b := dial(t, url)
	require.Eventually(t, func() bool { return hub.Connections() == 2 }, 2*time.Second, 10*time.Millisecond)

	hub.SlotBooked("2025-03-04", "08:30")
	for _, conn := range []*websocket.Conn{a, b} {
		out := readMessage(t, conn)
		assert.Equal(t, TypeSlotBooked, out.Type)
		assert.Equal(t, "2025-03-04", out.Date)
		assert.Equal(t, "08:30", out.Time)
	}

	hub.SlotReleased("2025-03-04", "08:30")
	out := readMessage(t, a)
	assert.Equal(t, TypeSlotReleased, out.Type)
}

func TestHub_DisconnectTracking(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewBookingMetrics(reg)
	hub := NewHub(&stubLookup{}, nil, m, nil)
	conn := dial(t, startHub(t, hub))

	require.Eventually(t, func() bool { return hub.Connections() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return gathered(t, reg, "lifecoach_realtime_connections") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_ = conn.Close()

	require.Eventually(t, func() bool { return hub.Connections() == 0 }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return gathered(t, reg, "lifecoach_realtime_connections") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	hub := NewHub(&stubLookup{}, []string{"https://coach.example.com"}, nil, nil)
	url := startHub(t, hub)

	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "https://coach.example.com")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	_ = conn.Close()
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(&stubLookup{}, nil, nil, nil)
	conn := dial(t, startHub(t, hub))
	require.Eventually(t, func() bool { return hub.Connections() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
