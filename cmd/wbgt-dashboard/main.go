package main

import (
	"context"
	"log/slog"
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
	"github.com/i474232898/wbgt-forecast/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	log := logging.New(cfg, "wbgt-dashboard")
	slog.SetDefault(log)

	if err := dashboard.LoadTemplates(); err != nil {
		log.Error("failed to load templates", "err", err)
		os.Exit(1)
	}

	client := dashboard.NewClient(cfg.PredictAPIURL, cfg.PredictTimeout)
	board := dashboard.New(client, log)

	app := fiber.New(fiber.Config{
		AppName:               "wbgt-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// A refresh makes four sequential predict calls.
		WriteTimeout: 4*cfg.PredictTimeout + 5*time.Second,
		ErrorHandler: httpapi.ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	dashboard.RegisterRoutes(app, board)

	go func() {
		log.Info("listening", "port", cfg.DashboardPort, "predict_api", cfg.PredictAPIURL)
		if err := app.Listen(":" + cfg.DashboardPort); err != nil {
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
