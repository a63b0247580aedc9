package sensor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/sony/gobreaker"
)

// DefaultValue substitutes any sensor reading that could not be obtained.
const DefaultValue = 0.0

var (
	// ErrNoItems is returned when the readings document has no items.
	ErrNoItems = errors.New("readings payload has no items")
	// ErrNoReadings is returned when the latest item has no numeric readings.
	ErrNoReadings = errors.New("no numeric readings")
)

// Source identifies one readings endpoint. Key labels it in logs and metrics.
type Source struct {
	Key string
	URL string
}

// Sources are the three inputs a prediction needs.
type Sources struct {
	Temperature Source
	Humidity    Source
	WindSpeed   Source
}

func NewSources(temperatureURL, humidityURL, windSpeedURL string) Sources {
	return Sources{
		Temperature: Source{Key: "temp", URL: temperatureURL},
		Humidity:    Source{Key: "rh", URL: humidityURL},
		WindSpeed:   Source{Key: "wind", URL: windSpeedURL},
	}
}

// FailureRecorder is notified whenever a reading falls back to DefaultValue.
type FailureRecorder interface {
	SensorFetchFailed(sensor string)
}

// Aggregator fetches readings collections and reduces them to one value.
type Aggregator struct {
	fetch    fetcher
	logger   *slog.Logger
	failures FailureRecorder

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

type Option func(*Aggregator)

func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

func WithFailureRecorder(r FailureRecorder) Option {
	return func(a *Aggregator) { a.failures = r }
}

func WithBackoff(b BackoffConfig) Option {
	return func(a *Aggregator) { a.fetch.backoff = b }
}

// NewAggregator creates an Aggregator. Without WithBackoff each fetch is
// attempted exactly once.
func NewAggregator(client *http.Client, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetch:    fetcher{client: client},
		logger:   slog.Default(),
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FetchMean retrieves the latest readings for src and returns their mean,
// rounded to 2 decimals.
func (a *Aggregator) FetchMean(ctx context.Context, src Source) (float64, error) {
	resp, err := a.fetch.get(ctx, a.breaker(src.Key), src.URL)
	if err != nil {
		return 0, fmt.Errorf("sensor %s: %w", src.Key, err)
	}
	defer resp.Body.Close()

	var payload Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("sensor %s: decode readings: %w", src.Key, err)
	}
	if len(payload.Items) == 0 {
		return 0, fmt.Errorf("sensor %s: %w", src.Key, ErrNoItems)
	}

	mean, ok := MeanOfReadings(payload.Items[0].Readings)
	if !ok {
		return 0, fmt.Errorf("sensor %s: %w", src.Key, ErrNoReadings)
	}
	return mean, nil
}

// LatestValue is FetchMean with every failure replaced by DefaultValue.
// The failure is logged and counted but never returned.
func (a *Aggregator) LatestValue(ctx context.Context, src Source) float64 {
	v, err := a.FetchMean(ctx, src)
	if err != nil {
		a.logger.Warn("sensor fetch failed; using default", "sensor", src.Key, "default", DefaultValue, "err", err)
		if a.failures != nil {
			a.failures.SensorFetchFailed(src.Key)
		}
		return DefaultValue
	}
	return v
}

func (a *Aggregator) breaker(key string) *gobreaker.CircuitBreaker {
	a.mu.Lock()
	defer a.mu.Unlock()

	cb, ok := a.breakers[key]
	if !ok {
		cb = newBreaker(key, a.logger)
		a.breakers[key] = cb
	}
	return cb
}
