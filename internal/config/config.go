package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Default sensor sources (NEA real-time readings published on data.gov.sg).
const (
	DefaultTemperatureURL = "https://api.data.gov.sg/v1/environment/air-temperature"
	DefaultHumidityURL    = "https://api.data.gov.sg/v1/environment/relative-humidity"
	DefaultWindSpeedURL   = "https://api.data.gov.sg/v1/environment/wind-speed"
)

type AppConfig struct {
	AppEnv   string
	LogLevel slog.Level

	// Port serves the prediction API.
	Port string

	TemperatureURL string
	HumidityURL    string
	WindSpeedURL   string

	// HTTPTimeout bounds each outbound sensor call.
	HTTPTimeout      time.Duration
	SensorMaxRetries int

	// ModelPath is the local model artifact; ModelURL, when set, selects
	// remote inference instead.
	ModelPath string
	ModelURL  string

	// ForecastLocation is the zone hour/month features are taken in.
	ForecastLocation *time.Location

	// BulletinInterval enables the periodic forecast bulletin (0 = disabled).
	BulletinInterval time.Duration

	DashboardPort  string
	PredictAPIURL  string
	PredictTimeout time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "err", err)
	}
	cfg := &AppConfig{}

	cfg.AppEnv = getenvDefault("APP_ENV", "dev")
	switch cfg.AppEnv {
	case "dev", "prod":
	default:
		return nil, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", cfg.AppEnv)
	}

	level, err := parseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	cfg.Port = getenvDefault("PORT", "8000")

	cfg.TemperatureURL = getenvDefault("SENSOR_TEMPERATURE_URL", DefaultTemperatureURL)
	cfg.HumidityURL = getenvDefault("SENSOR_HUMIDITY_URL", DefaultHumidityURL)
	cfg.WindSpeedURL = getenvDefault("SENSOR_WIND_URL", DefaultWindSpeedURL)

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.SensorMaxRetries, err = getenvInt("SENSOR_MAX_RETRIES", 0); err != nil {
		return nil, err
	}
	if cfg.SensorMaxRetries < 0 {
		return nil, fmt.Errorf("invalid SENSOR_MAX_RETRIES %d: must not be negative", cfg.SensorMaxRetries)
	}

	cfg.ModelPath = getenvDefault("MODEL_PATH", "models/wbgt_model.json")
	cfg.ModelURL = os.Getenv("MODEL_URL")

	tz := getenvDefault("FORECAST_TIMEZONE", "Asia/Singapore")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid FORECAST_TIMEZONE %q: %w", tz, err)
	}
	cfg.ForecastLocation = loc

	if cfg.BulletinInterval, err = getenvDuration("BULLETIN_INTERVAL", "0s"); err != nil {
		return nil, err
	}

	cfg.DashboardPort = getenvDefault("DASHBOARD_PORT", "8501")
	cfg.PredictAPIURL = getenvDefault("PREDICT_API_URL", "http://localhost:8000/predict")
	if cfg.PredictTimeout, err = getenvDuration("PREDICT_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
