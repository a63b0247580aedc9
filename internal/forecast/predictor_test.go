package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/wbgt-forecast/internal/sensor"
)

var testSources = sensor.NewSources("http://sensors/temp", "http://sensors/rh", "http://sensors/wind")

type fakeSensors struct {
	mu     sync.Mutex
	values map[string]float64
	calls  []string
}

func (f *fakeSensors) LatestValue(_ context.Context, src sensor.Source) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, src.Key)
	return f.values[src.Key]
}

type fakeRecorder struct {
	mu     sync.Mutex
	served map[string]float64
	failed []string
}

func (r *fakeRecorder) PredictionServed(h string, v float64, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.served == nil {
		r.served = make(map[string]float64)
	}
	r.served[h] = v
}

func (r *fakeRecorder) PredictionFailed(h string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, h)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPredictor(s SensorReader, m Model, opts ...Option) *Predictor {
	base := []Option{
		WithClock(fixedClock(time.Date(2024, time.May, 1, 14, 10, 0, 0, time.UTC))),
		WithLocation(time.UTC),
		WithLogger(quietLogger()),
	}
	return NewPredictor(s, testSources, m, append(base, opts...)...)
}

func TestPredict_assemblesFeatureVector(t *testing.T) {
	sensors := &fakeSensors{values: map[string]float64{"temp": 31.0, "rh": 70.0, "wind": 1.5}}

	var seen []FeatureVector
	model := ModelFunc(func(_ context.Context, fv FeatureVector) ([]float64, error) {
		seen = append(seen, fv)
		return []float64{33.456}, nil
	})

	pred, err := newTestPredictor(sensors, model).Predict(context.Background(), "Now")
	require.NoError(t, err)

	want := FeatureVector{
		TempC:       31.0,
		RHPercent:   70.0,
		WindSpeedMS: 1.5,
		WBGTPrimary: 0,
		Hour:        14,
		Month:       5,
		HourSin:     math.Sin(2 * math.Pi * 14 / 24),
		HourCos:     math.Cos(2 * math.Pi * 14 / 24),
	}
	require.Len(t, seen, 1)
	assert.Equal(t, want, seen[0])
	assert.Equal(t, want, pred.Inputs)
	assert.Equal(t, "Now", pred.Horizon)
	assert.Equal(t, 33.46, pred.WBGT)
	assert.Equal(t, []string{"temp", "rh", "wind"}, sensors.calls)
}

func TestPredict_horizonShiftsOnlyTimeFeatures(t *testing.T) {
	sensors := &fakeSensors{values: map[string]float64{"temp": 30, "rh": 80, "wind": 2}}
	var hour int
	model := ModelFunc(func(_ context.Context, fv FeatureVector) ([]float64, error) {
		hour = fv.Hour
		return []float64{30}, nil
	})

	pred, err := newTestPredictor(sensors, model).Predict(context.Background(), "12h")
	require.NoError(t, err)
	assert.Equal(t, 2, hour)
	assert.Equal(t, 30.0, pred.Inputs.TempC)
}

func TestPredict_unknownHorizonEchoedWithNowFeatures(t *testing.T) {
	sensors := &fakeSensors{values: map[string]float64{}}
	model := ModelFunc(func(_ context.Context, fv FeatureVector) ([]float64, error) {
		return []float64{28}, nil
	})
	rec := &fakeRecorder{}

	pred, err := newTestPredictor(sensors, model, WithRecorder(rec)).Predict(context.Background(), "soon")
	require.NoError(t, err)
	assert.Equal(t, "soon", pred.Horizon)
	assert.Equal(t, 14, pred.Inputs.Hour)
	assert.Equal(t, 28.0, rec.served["other"])
}

func TestPredict_sensorOutageStillPredicts(t *testing.T) {
	sensors := &fakeSensors{values: map[string]float64{}}
	model := ModelFunc(func(_ context.Context, fv FeatureVector) ([]float64, error) {
		return []float64{fv.TempC + 25}, nil
	})

	pred, err := newTestPredictor(sensors, model).Predict(context.Background(), "3h")
	require.NoError(t, err)
	assert.Equal(t, 0.0, pred.Inputs.TempC)
	assert.Equal(t, 25.0, pred.WBGT)
}

func TestPredict_modelFailureIsolatedPerCall(t *testing.T) {
	sensors := &fakeSensors{values: map[string]float64{"temp": 31, "rh": 70, "wind": 1.5}}
	boom := errors.New("model exploded")
	model := ModelFunc(func(_ context.Context, fv FeatureVector) ([]float64, error) {
		if fv.Hour == 20 { // 14h + 6h
			return nil, boom
		}
		return []float64{31.2}, nil
	})
	rec := &fakeRecorder{}
	p := newTestPredictor(sensors, model, WithRecorder(rec))

	var (
		wg             sync.WaitGroup
		err6h, err3h   error
		pred3h, pred6h Prediction
	)
	wg.Add(2)
	go func() { defer wg.Done(); pred6h, err6h = p.Predict(context.Background(), "6h") }()
	go func() { defer wg.Done(); pred3h, err3h = p.Predict(context.Background(), "3h") }()
	wg.Wait()

	assert.ErrorIs(t, err6h, boom)
	assert.Contains(t, err6h.Error(), "model exploded")
	assert.Equal(t, Prediction{}, pred6h)

	require.NoError(t, err3h)
	assert.Equal(t, 31.2, pred3h.WBGT)

	pred3h, err3h = p.Predict(context.Background(), "3h")
	require.NoError(t, err3h)
	assert.Equal(t, 31.2, pred3h.WBGT)

	assert.Equal(t, []string{"6h"}, rec.failed)
}

func TestPredict_invalidModelOutput(t *testing.T) {
	cases := []struct {
		name string
		out  []float64
		want error
	}{
		{"empty", nil, ErrEmptyOutput},
		{"nan", []float64{math.NaN()}, ErrNonFinite},
		{"inf", []float64{math.Inf(1)}, ErrNonFinite},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			model := ModelFunc(func(context.Context, FeatureVector) ([]float64, error) { return tc.out, nil })
			_, err := newTestPredictor(&fakeSensors{}, model).Predict(context.Background(), "Now")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestPredict_modelPanicBecomesError(t *testing.T) {
	model := ModelFunc(func(context.Context, FeatureVector) ([]float64, error) {
		var weights []float64
		return []float64{weights[3]}, nil
	})

	var err error
	require.NotPanics(t, func() {
		_, err = newTestPredictor(&fakeSensors{}, model).Predict(context.Background(), "Now")
	})
	assert.ErrorIs(t, err, ErrModelPanic)
}

func TestPrediction_JSONShape(t *testing.T) {
	p := Prediction{
		Horizon: "Now",
		Inputs:  FeatureVector{TempC: 31, RHPercent: 70, WindSpeedMS: 1.5, Hour: 14, Month: 5},
		WBGT:    31.42,
	}
	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "Now", got["horizon"])
	assert.Equal(t, 31.42, got["wbgt_prediction"])

	inputs, ok := got["inputs"].(map[string]any)
	require.True(t, ok)
	for _, name := range FeatureNames {
		assert.Contains(t, inputs, name)
	}
	assert.Equal(t, 0.0, inputs["wbgt_primary"])
}
