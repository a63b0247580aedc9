package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/i474232898/wbgt-forecast/internal/forecast"
)

// DefaultTimeout bounds each call to the prediction endpoint.
const DefaultTimeout = 10 * time.Second

var (
	// ErrPredictionFailed is returned when the endpoint answered with an error payload.
	ErrPredictionFailed = errors.New("prediction failed")
	// ErrMissingPrediction is returned when a success response has no wbgt_prediction.
	ErrMissingPrediction = errors.New("response has no wbgt_prediction")
)

// Client calls a remote prediction endpoint.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a Client for the predict URL. A non-positive timeout
// selects DefaultTimeout.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type predictResponse struct {
	Horizon string                  `json:"horizon"`
	Inputs  *forecast.FeatureVector `json:"inputs"`
	WBGT    *float64                `json:"wbgt_prediction"`
	Error   string                  `json:"error"`
}

// Predict requests the forecast for one horizon.
func (c *Client) Predict(ctx context.Context, horizon string) (forecast.Prediction, error) {
	body, err := json.Marshal(map[string]string{"horizon": horizon})
	if err != nil {
		return forecast.Prediction{}, fmt.Errorf("predict client: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return forecast.Prediction{}, fmt.Errorf("predict client: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return forecast.Prediction{}, fmt.Errorf("predict client: %w", err)
	}
	defer resp.Body.Close()

	var out predictResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)

	if out.Error != "" {
		return forecast.Prediction{}, fmt.Errorf("%w: %s", ErrPredictionFailed, out.Error)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return forecast.Prediction{}, fmt.Errorf("predict client: unexpected status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return forecast.Prediction{}, fmt.Errorf("predict client: decode response: %w", decodeErr)
	}
	if out.WBGT == nil {
		return forecast.Prediction{}, ErrMissingPrediction
	}

	pred := forecast.Prediction{
		Horizon: out.Horizon,
		WBGT:    *out.WBGT,
	}
	if out.Inputs != nil {
		pred.Inputs = *out.Inputs
	}
	return pred, nil
}
