package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/wbgt-forecast/internal/forecast"
)

// RemoteModel delegates inference to a model server over HTTP.
type RemoteModel struct {
	url        string
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
}

type inferRequest struct {
	Features map[string]float64 `json:"features"`
	Order    []string           `json:"order"`
}

type inferResponse struct {
	Prediction []float64 `json:"prediction"`
	Error      string    `json:"error,omitempty"`
}

func NewRemoteModel(url string, client *http.Client) *RemoteModel {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &RemoteModel{
		url:        url,
		httpClient: client,
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "model-server",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
}

func (m *RemoteModel) Infer(ctx context.Context, fv forecast.FeatureVector) ([]float64, error) {
	body, err := json.Marshal(inferRequest{
		Features: fv.Named(),
		Order:    forecast.FeatureNames[:],
	})
	if err != nil {
		return nil, fmt.Errorf("model server: marshal request: %w", err)
	}

	result, err := m.circuit.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := m.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var out inferResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
		}
		if out.Error != "" {
			return nil, errors.New(out.Error)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("status %d", resp.StatusCode)
		}
		return out.Prediction, nil
	})
	if err != nil {
		return nil, fmt.Errorf("model server: %w", err)
	}
	return result.([]float64), nil
}
