package bookings

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/lifecoach-booking/internal/observability/metrics"
	"github.com/wolfman30/lifecoach-booking/pkg/logging"
)

const (
	maxBookingBody = 64 << 10

	msgBookingConfirmed = "Réservation confirmée avec succès"
	msgBookingFailed    = "Une erreur est survenue lors de la réservation"
	msgSlotTaken        = "Ce créneau vient d'être réservé, merci d'en choisir un autre"
)

// Handler handles HTTP requests for bookings
type Handler struct {
	svc     *Service
	metrics *metrics.BookingMetrics
	logger  *logging.Logger
}

// NewHandler creates a new bookings handler
func NewHandler(svc *Service, m *metrics.BookingMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, metrics: m, logger: logger}
}

// CreateBookingResponse is the body returned by POST /api/booking.
type CreateBookingResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	BookingID string `json:"bookingId,omitempty"`
	Step      int    `json:"step,omitempty"`
}

// BookedSlotsResponse is the body returned by GET /api/booked-slots/{date}.
type BookedSlotsResponse struct {
	Success     bool     `json:"success"`
	BookedSlots []string `json:"bookedSlots"`
	Message     string   `json:"message,omitempty"`
}

// CreateBooking handles POST /api/booking
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req Request
	r.Body = http.MaxBytesReader(w, r.Body, maxBookingBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode booking request", "error", err)
		h.metrics.ObserveBooking("invalid")
		writeJSON(w, http.StatusBadRequest, CreateBookingResponse{Message: "Invalid request body"})
		return
	}

	booking, err := h.svc.Create(r.Context(), req)
	if err != nil {
		var stepErr *StepError
		switch {
		case errors.As(err, &stepErr):
			writeJSON(w, http.StatusBadRequest, CreateBookingResponse{Message: stepErr.Err.Error(), Step: int(stepErr.Step)})
		case errors.Is(err, ErrSlotTaken):
			writeJSON(w, http.StatusConflict, CreateBookingResponse{Message: msgSlotTaken})
		default:
			h.logger.Error("booking failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, CreateBookingResponse{Message: msgBookingFailed})
		}
		return
	}

	writeJSON(w, http.StatusOK, CreateBookingResponse{
		Success:   true,
		Message:   msgBookingConfirmed,
		BookingID: booking.ID,
	})
}

// BookedSlots handles GET /api/booked-slots/{date}
func (h *Handler) BookedSlots(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	h.metrics.ObserveSlotLookup("http")

	slots, err := h.svc.BookedSlots(r.Context(), date)
	if err != nil {
		if isDateError(err) {
			writeJSON(w, http.StatusBadRequest, BookedSlotsResponse{BookedSlots: []string{}, Message: err.Error()})
			return
		}
		h.logger.Error("failed to load booked slots", "error", err, "date", date)
		writeJSON(w, http.StatusInternalServerError, BookedSlotsResponse{BookedSlots: []string{}, Message: "failed to load booked slots"})
		return
	}
	writeJSON(w, http.StatusOK, BookedSlotsResponse{Success: true, BookedSlots: slots})
}

// AvailableSlots handles GET /api/slots/{date}
func (h *Handler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	h.metrics.ObserveSlotLookup("http")

	av, err := h.svc.Availability(r.Context(), date)
	if err != nil {
		if isDateError(err) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to compute availability", "error", err, "date", date)
		jsonError(w, "failed to compute availability", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, av)
}

// ListBookingsResponse is the admin listing body.
type ListBookingsResponse struct {
	Bookings []*Booking `json:"bookings"`
	Count    int        `json:"count"`
	Date     string     `json:"date,omitempty"`
}

// ListBookings handles GET /admin/bookings?date=YYYY-MM-DD
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	list, err := h.svc.List(r.Context(), date)
	if err != nil {
		if isDateError(err) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to list bookings", "error", err, "date", date)
		jsonError(w, "failed to list bookings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ListBookingsResponse{Bookings: list, Count: len(list), Date: date})
}

// GetBooking handles GET /admin/bookings/{bookingID}
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookingID")
	b, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeLookupError(w, err, id)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// CancelBooking handles POST /admin/bookings/{bookingID}/cancel
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookingID")
	b, err := h.svc.Cancel(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrAlreadyCancelled) {
			jsonError(w, err.Error(), http.StatusConflict)
			return
		}
		h.writeLookupError(w, err, id)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) writeLookupError(w http.ResponseWriter, err error, id string) {
	if errors.Is(err, ErrBookingNotFound) {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	h.logger.Error("booking lookup failed", "error", err, "booking_id", id)
	jsonError(w, "booking lookup failed", http.StatusInternalServerError)
}

func isDateError(err error) bool {
	return errors.Is(err, ErrInvalidDate) || errors.Is(err, ErrMissingDate)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
