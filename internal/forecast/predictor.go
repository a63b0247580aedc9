package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/i474232898/wbgt-forecast/internal/common"
	"github.com/i474232898/wbgt-forecast/internal/sensor"
)

var (
	// ErrEmptyOutput is returned when the model produced no values.
	ErrEmptyOutput = errors.New("model returned no output")
	// ErrNonFinite is returned when the model output is NaN or infinite.
	ErrNonFinite = errors.New("model returned a non-finite value")
	// ErrModelPanic wraps a panic raised inside the model.
	ErrModelPanic = errors.New("model panicked")
)

// SensorReader yields one aggregated value per source and never fails.
type SensorReader interface {
	LatestValue(ctx context.Context, src sensor.Source) float64
}

// Recorder observes prediction outcomes.
type Recorder interface {
	PredictionServed(horizon string, wbgt float64, elapsed time.Duration)
	PredictionFailed(horizon string, elapsed time.Duration)
}

// Predictor turns live sensor values and a horizon into a WBGT forecast.
type Predictor struct {
	sensors  SensorReader
	sources  sensor.Sources
	model    Model
	now      func() time.Time
	location *time.Location
	logger   *slog.Logger
	recorder Recorder
}

type Option func(*Predictor)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Predictor) { p.now = now }
}

// WithLocation sets the zone hour and month are derived in.
func WithLocation(loc *time.Location) Option {
	return func(p *Predictor) { p.location = loc }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Predictor) { p.logger = l }
}

func WithRecorder(r Recorder) Option {
	return func(p *Predictor) { p.recorder = r }
}

// NewPredictor wires a predictor around an already loaded model.
func NewPredictor(sensors SensorReader, sources sensor.Sources, model Model, opts ...Option) *Predictor {
	p := &Predictor{
		sensors:  sensors,
		sources:  sources,
		model:    model,
		now:      time.Now,
		location: time.Local,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Predict forecasts WBGT for the horizon label. Sensor outages never fail a
// prediction; model failures are returned as errors.
func (p *Predictor) Predict(ctx context.Context, label string) (Prediction, error) {
	start := time.Now()

	temp := p.sensors.LatestValue(ctx, p.sources.Temperature)
	rh := p.sensors.LatestValue(ctx, p.sources.Humidity)
	wind := p.sensors.LatestValue(ctx, p.sources.WindSpeed)

	tf := DeriveTimeFeatures(p.now().In(p.location), label)
	features := NewFeatureVector(temp, rh, wind, tf)

	wbgt, err := p.infer(ctx, features)
	if err != nil {
		p.logger.Error("prediction failed", "horizon", label, "err", err)
		if p.recorder != nil {
			p.recorder.PredictionFailed(metricLabel(label), time.Since(start))
		}
		return Prediction{}, fmt.Errorf("predict %q: %w", label, err)
	}

	pred := Prediction{
		Horizon: label,
		Inputs:  features,
		WBGT:    common.Round2(wbgt),
	}
	p.logger.Debug("prediction served", "horizon", label, "wbgt", pred.WBGT, "temp_c", temp, "rh_percent", rh, "wind_speed_ms", wind)
	if p.recorder != nil {
		p.recorder.PredictionServed(metricLabel(label), pred.WBGT, time.Since(start))
	}
	return pred, nil
}

func (p *Predictor) infer(ctx context.Context, features FeatureVector) (wbgt float64, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrModelPanic, rec)
		}
	}()

	out, err := p.model.Infer(ctx, features)
	if err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, ErrEmptyOutput
	}
	if math.IsNaN(out[0]) || math.IsInf(out[0], 0) {
		return 0, ErrNonFinite
	}
	return out[0], nil
}

// metricLabel bounds label cardinality; unknown horizons share one series.
func metricLabel(label string) string {
	if IsKnownHorizon(label) {
		return label
	}
	return "other"
}
