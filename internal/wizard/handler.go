package wizard

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/lifecoach-booking/internal/bookings"
	"github.com/wolfman30/lifecoach-booking/pkg/logging"
)

const maxCheckBody = 64 << 10

// Clock supplies "today" in the coach's timezone.
type Clock interface {
	Today() time.Time
}

// Handler serves the calendar grid and step checks to the browser wizard.
type Handler struct {
	clock  Clock
	logger *logging.Logger
}

func NewHandler(clock Clock, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{clock: clock, logger: logger}
}

// CalendarResponse wraps a month grid with its neighbours for navigation.
type CalendarResponse struct {
	Success  bool      `json:"success"`
	Calendar Month     `json:"calendar"`
	Previous MonthLink `json:"previous"`
	Next     MonthLink `json:"next"`
}

// MonthLink points at an adjacent month.
type MonthLink struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// StepCheckRequest asks whether the wizard can leave Step with Data.
type StepCheckRequest struct {
	Step int              `json:"step"`
	Data bookings.Request `json:"data"`
}

// StepCheckResponse is the answer to a StepCheckRequest.
type StepCheckResponse struct {
	Success    bool   `json:"success"`
	Step       int    `json:"step"`
	CanProceed bool   `json:"canProceed"`
	NextStep   int    `json:"nextStep"`
	Message    string `json:"message,omitempty"`
}

// Calendar handles GET /api/calendar/{year}/{month}
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1970 || year > 9999 {
		jsonError(w, "invalid year", http.StatusBadRequest)
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		jsonError(w, "invalid month", http.StatusBadRequest)
		return
	}

	m := time.Month(month)
	py, pm := PreviousMonth(year, m)
	ny, nm := NextMonth(year, m)
	writeJSON(w, http.StatusOK, CalendarResponse{
		Success:  true,
		Calendar: CalendarMonth(year, m, h.clock.Today()),
		Previous: MonthLink{Year: py, Month: int(pm)},
		Next:     MonthLink{Year: ny, Month: int(nm)},
	})
}

// CheckStep handles POST /api/wizard/check
func (h *Handler) CheckStep(w http.ResponseWriter, r *http.Request) {
	var req StepCheckRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxCheckBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode step check", "error", err)
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Step < int(bookings.StepObjective) || req.Step > bookings.StepCount {
		jsonError(w, "invalid step", http.StatusBadRequest)
		return
	}

	s := &Session{Step: bookings.Step(req.Step), Data: req.Data}
	resp := StepCheckResponse{Success: true, Step: req.Step, NextStep: req.Step}
	if err := s.Blocker(h.clock.Today()); err != nil {
		resp.Message = err.Error()
	} else {
		resp.CanProceed = true
		s.Next(h.clock.Today())
		resp.NextStep = int(s.Step)
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]any{"success": false, "message": msg})
}
