package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deskbook/internal/api"
	"deskbook/internal/config"
	"deskbook/internal/domain"
	"deskbook/internal/events"
	"deskbook/internal/export"
	"deskbook/internal/logging"
	"deskbook/internal/metrics"
	"deskbook/internal/notify"
	"deskbook/internal/repository"
	"deskbook/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	store, storeCloser, err := repository.Open(cfg.Storage, &logger)
	if err != nil {
		logger.Error().Err(err).Str("backend", cfg.Storage.Backend).Msg("open desk store")
		return err
	}
	defer storeCloser.Close()
	logger.Info().Str("backend", cfg.Storage.Backend).Msg("desk store ready")

	if !cfg.API.Enabled {
		logger.Warn().Msg("API is disabled in config, but starting API application. Check your config.")
	}

	eventBus := events.NewEventBus()
	registerEventLogging(eventBus, &logger)

	notifier := initNotifier(cfg, &logger)

	deskService := service.NewDeskService(store, &logger)
	bookingService := service.NewBookingService(deskService, eventBus, notifier, &logger)
	exporter := export.NewExporter(deskService, &logger)

	httpServer := api.NewHTTPServer(&cfg.API, deskService, bookingService, exporter, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initNotifier(cfg *config.Config, logger *zerolog.Logger) domain.Notifier {
	if !cfg.Notify.Enabled || cfg.Notify.Endpoint == "" {
		logger.Info().Msg("booking notifications disabled, using log notifier")
		return &notify.LogNotifier{Logger: logger}
	}
	return notify.NewMailClient(cfg.Notify, logger)
}

func registerEventLogging(bus *events.EventBus, logger *zerolog.Logger) {
	handler := func(event *events.Event) error {
		logger.Debug().Str("event_type", event.Type).RawJSON("payload", event.Payload).Msg("desk event")
		return nil
	}
	for _, eventType := range []string{
		events.EventDeskBooked,
		events.EventDeskReleased,
		events.EventDesksBulkReleased,
	} {
		bus.Subscribe(eventType, handler)
	}
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if !cfg.API.HTTP.Enabled {
			return
		}
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
