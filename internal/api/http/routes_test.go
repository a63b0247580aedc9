package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/wbgt-forecast/internal/forecast"
	"github.com/i474232898/wbgt-forecast/internal/metrics"
)

type stubPredictor struct {
	mu     sync.Mutex
	labels []string
	fail   map[string]error
}

func (s *stubPredictor) Predict(_ context.Context, horizon string) (forecast.Prediction, error) {
	s.mu.Lock()
	s.labels = append(s.labels, horizon)
	s.mu.Unlock()

	if err := s.fail[horizon]; err != nil {
		return forecast.Prediction{}, err
	}
	return forecast.Prediction{
		Horizon: horizon,
		Inputs:  forecast.FeatureVector{TempC: 31, RHPercent: 70, WindSpeedMS: 1.5, Hour: 14, Month: 5},
		WBGT:    31.42,
	}, nil
}

func newTestApp(p Predictor, rec *metrics.Recorder) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, p, rec)
	return app
}

func postPredict(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestPredict_success(t *testing.T) {
	p := &stubPredictor{}
	app := newTestApp(p, nil)

	for _, path := range []string{"/predict", "/api/v1/predict"} {
		status, body := postPredict(t, app, path, `{"horizon":"3h"}`)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "3h", body["horizon"])
		assert.Equal(t, 31.42, body["wbgt_prediction"])
		inputs, ok := body["inputs"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, 70.0, inputs["rh_percent"])
		assert.NotContains(t, body, "error")
	}
}

func TestPredict_unknownAndEmptyHorizonAccepted(t *testing.T) {
	p := &stubPredictor{}
	app := newTestApp(p, nil)

	status, _ := postPredict(t, app, "/predict", `{"horizon":"tomorrow"}`)
	assert.Equal(t, http.StatusOK, status)

	status, _ = postPredict(t, app, "/predict", `{"horizon":""}`)
	assert.Equal(t, http.StatusOK, status)

	assert.Equal(t, []string{"tomorrow", ""}, p.labels)
}

func TestPredict_badRequests(t *testing.T) {
	p := &stubPredictor{}
	app := newTestApp(p, nil)

	for _, body := range []string{`{}`, `{"horizon":null}`, `{"horizon":`, `not json`} {
		status, out := postPredict(t, app, "/predict", body)
		assert.Equal(t, http.StatusBadRequest, status, "body %q", body)
		assert.NotEmpty(t, out["error"], "body %q", body)
	}
	assert.Empty(t, p.labels)
}

func TestPredict_failureReturnsErrorPayload(t *testing.T) {
	p := &stubPredictor{fail: map[string]error{"6h": errors.New(`predict "6h": model exploded`)}}
	app := newTestApp(p, nil)

	status, body := postPredict(t, app, "/predict", `{"horizon":"6h"}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, map[string]any{"error": `predict "6h": model exploded`}, body)

	status, body = postPredict(t, app, "/predict", `{"horizon":"3h"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 31.42, body["wbgt_prediction"])
}

func TestHealth(t *testing.T) {
	app := newTestApp(&stubPredictor{}, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	rec := metrics.NewRecorder()
	rec.PredictionServed("Now", 30.5, 0)
	app := newTestApp(&stubPredictor{}, rec)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `wbgt_predictions_total{horizon="Now",outcome="success"} 1`)
}

func TestMetrics_notServedWithoutRecorder(t *testing.T) {
	app := newTestApp(&stubPredictor{}, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
