package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/lifecoach-booking/cmd/mainconfig"
	"github.com/wolfman30/lifecoach-booking/internal/api/router"
	"github.com/wolfman30/lifecoach-booking/internal/app/bootstrap"
	"github.com/wolfman30/lifecoach-booking/internal/bookings"
	appconfig "github.com/wolfman30/lifecoach-booking/internal/config"
	httpmiddleware "github.com/wolfman30/lifecoach-booking/internal/http/middleware"
	"github.com/wolfman30/lifecoach-booking/internal/notify"
	"github.com/wolfman30/lifecoach-booking/internal/observability/metrics"
	"github.com/wolfman30/lifecoach-booking/internal/realtime"
	"github.com/wolfman30/lifecoach-booking/internal/wizard"
	"github.com/wolfman30/lifecoach-booking/pkg/logging"
)

// application is everything main needs to serve and shut down.
type application struct {
	handler http.Handler
	hub     *realtime.Hub
	closers []func()
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func main() {
	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.Info("starting lifecoach booking server",
		"env", cfg.Env,
		"port", cfg.Port,
		"store", cfg.BookingStore,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := buildApplication(ctx, cfg, prometheus.NewRegistry(), nil, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer app.close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("server error", "error", err)
		app.close()
		os.Exit(1)
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	app.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server stopped")
}

// buildApplication wires the store, email, realtime hub and router. ses may
// be nil; it is created from AWS config when EMAIL_PROVIDER=ses.
func buildApplication(ctx context.Context, cfg *appconfig.Config, reg *prometheus.Registry, ses notify.SESAPI, logger *logging.Logger) (*application, error) {
	app := &application{}

	metricsHandler, bookingMetrics := setupMetrics(reg)

	repo, closeRepo, err := bootstrap.BuildRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, closeRepo)

	if ses == nil && cfg.EmailProvider == bootstrap.EmailProviderSES {
		client, err := mainconfig.NewSESClient(ctx, cfg)
		if err != nil {
			logger.Warn("failed to build SES client", "error", err)
		} else {
			ses = client
		}
	}
	sender, provider, reason := bootstrap.BuildEmailSender(cfg, ses, logger)
	if reason != "" {
		logger.Warn("email delivery degraded", "provider", provider, "reason", reason)
	} else {
		logger.Info("email provider selected", "provider", provider)
	}
	notifier := bootstrap.BuildNotifier(cfg, sender, bookingMetrics, logger)

	loc := loadLocation(cfg.CoachTimezone, logger)
	// The hub and the service reference each other: the hub looks up slots
	// through the service, the service broadcasts through the hub.
	var svc *bookings.Service
	hub := realtime.NewHub(slotLookupFunc(func(ctx context.Context, date string) ([]string, error) {
		return svc.BookedSlots(ctx, date)
	}), cfg.CORSAllowedOrigins, bookingMetrics, logger)
	svc = bookings.NewService(repo, logger,
		bookings.WithNotifier(notifier),
		bookings.WithBroadcaster(hub),
		bookings.WithMetrics(bookingMetrics),
		bookings.WithLocation(loc),
		bookings.WithDoubleBookingRejected(cfg.RejectDoubleBooking),
	)
	app.hub = hub

	var limiter *httpmiddleware.RateLimiter
	if cfg.BookingRateLimit > 0 {
		limiter = httpmiddleware.NewRateLimiter(cfg.BookingRateLimit, cfg.BookingRateBurst)
		app.closers = append(app.closers, limiter.Stop)
	}

	app.handler = router.New(&router.Config{
		Logger:             logger,
		BookingsHandler:    bookings.NewHandler(svc, bookingMetrics, logger),
		WizardHandler:      wizard.NewHandler(svc, logger),
		Realtime:           hub,
		Readiness:          svc,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		BookingLimiter:     limiter,
		StaticDir:          cfg.StaticDir,
	})
	return app, nil
}

type slotLookupFunc func(ctx context.Context, date string) ([]string, error)

func (f slotLookupFunc) BookedSlots(ctx context.Context, date string) ([]string, error) {
	return f(ctx, date)
}

func setupMetrics(reg *prometheus.Registry) (http.Handler, *metrics.BookingMetrics) {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewBookingMetrics(reg)
}

func loadLocation(name string, logger *logging.Logger) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn("unknown coach timezone, using UTC", "timezone", name, "error", err)
		return time.UTC
	}
	return loc
}
