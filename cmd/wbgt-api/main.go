package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/wbgt-forecast/internal/api/http"
	"github.com/i474232898/wbgt-forecast/internal/config"
	"github.com/i474232898/wbgt-forecast/internal/dashboard"
	"github.com/i474232898/wbgt-forecast/internal/forecast"
	"github.com/i474232898/wbgt-forecast/internal/logging"
	"github.com/i474232898/wbgt-forecast/internal/metrics"
	"github.com/i474232898/wbgt-forecast/internal/model"
	"github.com/i474232898/wbgt-forecast/internal/scheduler"
	"github.com/i474232898/wbgt-forecast/internal/sensor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	log := logging.New(cfg, "wbgt-api")
	slog.SetDefault(log)

	recorder := metrics.NewRecorder()

	// Shared HTTP client for outbound sensor and model calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	aggregator := sensor.NewAggregator(httpClient,
		sensor.WithLogger(log),
		sensor.WithFailureRecorder(recorder),
		sensor.WithBackoff(sensor.BackoffConfig{
			MaxRetries:      cfg.SensorMaxRetries,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		}),
	)
	sources := sensor.NewSources(cfg.TemperatureURL, cfg.HumidityURL, cfg.WindSpeedURL)

	// The model is loaded once; a missing artifact stops startup.
	m, err := model.Open(cfg.ModelPath, cfg.ModelURL, httpClient, log)
	if err != nil {
		log.Error("failed to load model", "err", err)
		os.Exit(1)
	}

	predictor := forecast.NewPredictor(aggregator, sources, m,
		forecast.WithLocation(cfg.ForecastLocation),
		forecast.WithLogger(log),
		forecast.WithRecorder(recorder),
	)

	sched := scheduler.New(dashboard.New(predictor, log), cfg.BulletinInterval, log)
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", "err", err)
		os.Exit(1)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "wbgt-api",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Three sequential sensor calls plus inference must fit.
		WriteTimeout: 3*cfg.HTTPTimeout + 10*time.Second,
		ErrorHandler: httpapi.ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, predictor, recorder)

	go func() {
		log.Info("listening", "port", cfg.Port, "env", cfg.AppEnv, "timezone", cfg.ForecastLocation.String())
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "err", err)
	}
}
