package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/lantern-care/lantern/internal/adapters/http/api"
	app "github.com/lantern-care/lantern/internal/app"
	"github.com/lantern-care/lantern/internal/config"
	"github.com/lantern-care/lantern/internal/domain/model"
	"github.com/lantern-care/lantern/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			logger.Error(err)
		}
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Create and start the service with configuration options
	svcOpts := []app.Option{
		app.WithLogger(loggerInstance),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.JobQueueSize),
		app.WithShardCount(cfg.ShardCount),
		app.WithBaselineWindow(cfg.WindowDays, cfg.MinDays),
		app.WithBaselineTTL(cfg.BaselineTTL),
		app.WithSweepSchedule(cfg.SweepSchedule),
		app.WithDataDir(cfg.DataDir),
		app.WithHistoryCap(cfg.HistoryCap),
		app.WithLogisticSteepness(cfg.LogisticSteepness),
		app.WithCategoryWeights(cfg.CalendarWeight, cfg.MusicWeight),
		app.WithHysteresis(cfg.HysteresisMargin, cfg.SustainCount),
		app.WithSignalWeights(cfg.SignalWeights),
		app.WithInterventionCooldown(cfg.InterventionCooldown),
		app.WithInterventionURL(cfg.InterventionURL),
		app.WithRetryPolicy(cfg.RetryInitialInterval, cfg.RetryMultiplier, cfg.RetryMaxAttempts),
	}
	for _, src := range cfg.DisabledSources {
		svcOpts = append(svcOpts, app.WithSourceDisabled(model.Category(src)))
	}
	svc := app.New(svcOpts...)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// Start service metrics updater
	go startServiceMetricsUpdater(ctx, svc)

	// Router and routes.
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	apiServer := api.NewServer(svc, svc, api.WithMaxHistoryLimit(cfg.MaxHistoryLimit))
	apiServer.Register(router)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// startServiceMetricsUpdater refreshes the service gauges periodically.
// GetStats publishes queue, baseline, and person counts as a side effect.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = svc.GetStats()
		}
	}
}
