package sensor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// BackoffConfig controls retries of a failed sensor fetch. MaxRetries of
// zero means a single attempt.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func (b BackoffConfig) validate() error {
	if b.MaxRetries < 0 {
		return fmt.Errorf("%w: negative retries", errInvalidBackoff)
	}
	if b.MaxRetries > 0 && b.InitialInterval <= 0 {
		return fmt.Errorf("%w: retries need a positive initial interval", errInvalidBackoff)
	}
	return nil
}

// delay doubles per attempt, capped at MaxInterval when one is set.
func (b BackoffConfig) delay(attempt int) time.Duration {
	d := b.InitialInterval << attempt
	if b.MaxInterval > 0 && (d > b.MaxInterval || d <= 0) {
		d = b.MaxInterval
	}
	return d
}

var (
	errRateLimited    = errors.New("sensor source rate limited")
	errServerError    = errors.New("sensor source server error")
	errUnexpected     = errors.New("unexpected sensor status")
	errCircuitOpen    = errors.New("sensor circuit open")
	errNoHTTPClient   = errors.New("http client not configured")
	errInvalidBackoff = errors.New("invalid backoff configuration")
)

// consecutiveFailuresToTrip opens a source's breaker; it half-opens again
// after breakerCooldown.
const (
	consecutiveFailuresToTrip = 6
	breakerCooldown           = 2 * time.Minute
)

func newBreaker(source string, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "sensor-" + source,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     breakerCooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= consecutiveFailuresToTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("sensor breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// fetcher performs resilient GETs against sensor sources.
type fetcher struct {
	client  *http.Client
	backoff BackoffConfig
}

// get returns a 2xx response for url. The caller owns the body.
func (f fetcher) get(ctx context.Context, cb *gobreaker.CircuitBreaker, url string) (*http.Response, error) {
	if f.client == nil {
		return nil, errNoHTTPClient
	}
	if err := f.backoff.validate(); err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		resp, err := f.once(ctx, cb, url)
		if err == nil {
			return resp, nil
		}
		if errors.Is(err, errCircuitOpen) || attempt >= f.backoff.MaxRetries {
			return nil, err
		}

		timer := time.NewTimer(f.backoff.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (f fetcher) once(ctx context.Context, cb *gobreaker.CircuitBreaker, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	result, err := cb.Execute(func() (interface{}, error) {
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, err
		}
		if err := statusError(resp.StatusCode); err != nil {
			resp.Body.Close()
			return nil, err
		}
		return resp, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
	}
	if err != nil {
		return nil, err
	}
	return result.(*http.Response), nil
}

func statusError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests:
		return errRateLimited
	case code >= 500:
		return fmt.Errorf("%w: %d", errServerError, code)
	default:
		return fmt.Errorf("%w: %d", errUnexpected, code)
	}
}
