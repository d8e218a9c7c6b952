// Package realtime runs the websocket channel the booking wizard keeps open
// to look up taken slots and hear about slots booked by other visitors.
package realtime

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wolfman30/lifecoach-booking/internal/bookings"
	"github.com/wolfman30/lifecoach-booking/internal/observability/metrics"
	"github.com/wolfman30/lifecoach-booking/pkg/logging"
)

const (
	maxMessageSize = 4 << 10
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	lookupTimeout  = 5 * time.Second
)

// Message types exchanged with the browser.
const (
	TypeGetBookedSlots = "getBookedSlots"
	TypeBookedSlots    = "bookedSlots"
	TypeSlotBooked     = "slotBooked"
	TypeSlotReleased   = "slotReleased"
	TypePing           = "ping"
	TypePong           = "pong"
	TypeError          = "error"
)

// SlotLookup returns the confirmed slots of a date.
type SlotLookup interface {
	BookedSlots(ctx context.Context, date string) ([]string, error)
}

// InboundMessage is what the wizard sends.
type InboundMessage struct {
	Type string `json:"type"`
	Date string `json:"date,omitempty"`
}

// OutboundMessage is what the hub sends back or broadcasts.
type OutboundMessage struct {
	Type        string   `json:"type"`
	Success     bool     `json:"success"`
	Date        string   `json:"date,omitempty"`
	Time        string   `json:"time,omitempty"`
	BookedSlots []string `json:"bookedSlots,omitempty"`
	Message     string   `json:"message,omitempty"`
}

// Hub tracks open connections and fans out slot changes.
type Hub struct {
	lookup   SlotLookup
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[string]*client
}

type client struct {
	id   string
	conn *websocket.Conn
	// gorilla connections allow one concurrent writer
	writeMu sync.Mutex
	done    chan struct{}
}

// NewHub creates a hub. allowedOrigins follows the CORS list; "*" or an
// empty list accepts every origin.
func NewHub(lookup SlotLookup, allowedOrigins []string, m *metrics.BookingMetrics, logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	h := &Hub{
		lookup:  lookup,
		metrics: m,
		logger:  logger,
		conns:   make(map[string]*client),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			set[o] = struct{}{}
		}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// Connections returns the number of open connections.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// HandleWebSocket upgrades the request and serves the connection until the
// peer goes away.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("realtime: upgrade failed", "error", err)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn, done: make(chan struct{})}
	h.register(c)
	defer h.unregister(c)

	go h.keepalive(c)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg InboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				h.logger.Debug("realtime: read failed", "connection_id", c.id, "error", err)
			}
			return
		}
		h.handle(r.Context(), c, msg)
	}
}

func (h *Hub) handle(ctx context.Context, c *client, msg InboundMessage) {
	switch msg.Type {
	case TypePing:
		h.send(c, OutboundMessage{Type: TypePong, Success: true})
	case TypeGetBookedSlots:
		h.metrics.ObserveSlotLookup("socket")
		h.send(c, h.bookedSlots(ctx, msg.Date))
	default:
		h.send(c, OutboundMessage{Type: TypeError, Message: "unknown message type"})
	}
}

func (h *Hub) bookedSlots(ctx context.Context, date string) OutboundMessage {
	if h.lookup == nil {
		return OutboundMessage{Type: TypeBookedSlots, Date: date, BookedSlots: []string{}, Message: "slot lookup unavailable"}
	}
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	slots, err := h.lookup.BookedSlots(ctx, date)
	if err != nil {
		msg := err.Error()
		if !isDateError(err) {
			h.logger.Error("realtime: booked slots lookup failed", "date", date, "error", err)
			msg = "failed to load booked slots"
		}
		return OutboundMessage{Type: TypeBookedSlots, Date: date, BookedSlots: []string{}, Message: msg}
	}
	return OutboundMessage{Type: TypeBookedSlots, Success: true, Date: date, BookedSlots: slots}
}

func isDateError(err error) bool {
	return errors.Is(err, bookings.ErrMissingDate) || errors.Is(err, bookings.ErrInvalidDate)
}

// SlotBooked tells every client that date/time was just taken.
func (h *Hub) SlotBooked(date, slot string) {
	h.Broadcast(OutboundMessage{Type: TypeSlotBooked, Success: true, Date: date, Time: slot})
}

// SlotReleased tells every client that date/time is free again.
func (h *Hub) SlotReleased(date, slot string) {
	h.Broadcast(OutboundMessage{Type: TypeSlotReleased, Success: true, Date: date, Time: slot})
}

// Broadcast sends msg to every open connection and returns how many
// received it.
func (h *Hub) Broadcast(msg OutboundMessage) int {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.conns))
	for _, c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	n := 0
	for _, c := range targets {
		if h.send(c, msg) {
			n++
		}
	}
	h.logger.Debug("realtime: broadcast", "type", msg.Type, "clients", n)
	return n
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.conns))
	for _, c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		c.writeMu.Unlock()
		_ = c.conn.Close()
	}
}

func (h *Hub) send(c *client, msg OutboundMessage) bool {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(msg); err != nil {
		h.logger.Debug("realtime: write failed", "connection_id", c.id, "error", err)
		return false
	}
	return true
}

func (h *Hub) keepalive(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.conns[c.id] = c
	total := len(h.conns)
	h.mu.Unlock()
	h.metrics.RealtimeConnected()
	h.logger.Info("realtime: client connected", "connection_id", c.id, "clients", total)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.conns, c.id)
	total := len(h.conns)
	h.mu.Unlock()
	close(c.done)
	_ = c.conn.Close()
	h.metrics.RealtimeDisconnected()
	h.logger.Info("realtime: client disconnected", "connection_id", c.id, "clients", total)
}

var _ bookings.Broadcaster = (*Hub)(nil)
