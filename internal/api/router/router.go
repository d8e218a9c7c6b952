package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wolfman30/lifecoach-booking/internal/bookings"
	httpmiddleware "github.com/wolfman30/lifecoach-booking/internal/http/middleware"
	"github.com/wolfman30/lifecoach-booking/internal/realtime"
	"github.com/wolfman30/lifecoach-booking/internal/wizard"
	"github.com/wolfman30/lifecoach-booking/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	BookingsHandler *bookings.Handler
	WizardHandler   *wizard.Handler
	Realtime        *realtime.Hub
	// Readiness is checked by /ready; nil means always ready.
	Readiness      bookings.Pinger
	MetricsHandler http.Handler

	CORSAllowedOrigins []string
	AdminAuthSecret    string
	// BookingLimiter throttles POST /api/booking per client when set.
	BookingLimiter *httpmiddleware.RateLimiter
	// StaticDir holds the single page client; empty disables static serving.
	StaticDir string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (health checks, metrics, websocket)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		public.Get("/ready", readinessCheck(cfg.Readiness, cfg.Logger))
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.Realtime != nil {
			public.Get("/socket", cfg.Realtime.HandleWebSocket)
		}
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Compress(5))
		if cfg.BookingsHandler != nil {
			booking := api.With(requireJSON)
			if cfg.BookingLimiter != nil {
				booking = booking.With(httpmiddleware.RateLimit(cfg.BookingLimiter))
			}
			booking.Post("/booking", cfg.BookingsHandler.CreateBooking)
			api.Get("/booked-slots/{date}", cfg.BookingsHandler.BookedSlots)
			api.Get("/slots/{date}", cfg.BookingsHandler.AvailableSlots)
		}
		if cfg.WizardHandler != nil {
			api.Get("/calendar/{year}/{month}", cfg.WizardHandler.Calendar)
			api.With(requireJSON).Post("/wizard/check", cfg.WizardHandler.CheckStep)
		}
	})

	// Coach admin routes (protected by JWT)
	if cfg.AdminAuthSecret != "" && cfg.BookingsHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/bookings", cfg.BookingsHandler.ListBookings)
			admin.Get("/bookings/{bookingID}", cfg.BookingsHandler.GetBooking)
			admin.Post("/bookings/{bookingID}/cancel", cfg.BookingsHandler.CancelBooking)
		})
	}

	if cfg.StaticDir != "" {
		r.With(middleware.Compress(5)).Handle("/*", staticFiles(cfg.StaticDir))
	}

	return r
}
