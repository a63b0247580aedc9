package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/i474232898/wbgt-forecast/internal/forecast"
)

var (
	// ErrFeatureMismatch is returned when an artifact's feature list differs
	// from forecast.FeatureNames.
	ErrFeatureMismatch = errors.New("artifact features do not match model input")
	// ErrUnsupportedFormat is returned for artifact files that are neither JSON nor YAML.
	ErrUnsupportedFormat = errors.New("unsupported artifact format")
)

// Artifact is the serialized form of a trained linear regression.
type Artifact struct {
	Name         string    `json:"name" yaml:"name"`
	Version      string    `json:"version" yaml:"version"`
	Features     []string  `json:"features" yaml:"features"`
	Intercept    float64   `json:"intercept" yaml:"intercept"`
	Coefficients []float64 `json:"coefficients" yaml:"coefficients"`
}

// LinearModel evaluates intercept + Σ coefficient·feature. It is immutable
// after construction.
type LinearModel struct {
	name         string
	version      string
	intercept    float64
	coefficients []float64
}

// NewLinearModel validates the artifact against the feature order.
func NewLinearModel(a Artifact) (*LinearModel, error) {
	if len(a.Features) != len(forecast.FeatureNames) {
		return nil, fmt.Errorf("%w: got %d features, want %d", ErrFeatureMismatch, len(a.Features), len(forecast.FeatureNames))
	}
	for i, name := range forecast.FeatureNames {
		if a.Features[i] != name {
			return nil, fmt.Errorf("%w: position %d is %q, want %q", ErrFeatureMismatch, i, a.Features[i], name)
		}
	}
	if len(a.Coefficients) != len(a.Features) {
		return nil, fmt.Errorf("artifact has %d coefficients for %d features", len(a.Coefficients), len(a.Features))
	}
	if !finite(a.Intercept) {
		return nil, errors.New("artifact intercept is not finite")
	}
	for i, c := range a.Coefficients {
		if !finite(c) {
			return nil, fmt.Errorf("artifact coefficient for %s is not finite", a.Features[i])
		}
	}

	coeffs := make([]float64, len(a.Coefficients))
	copy(coeffs, a.Coefficients)
	return &LinearModel{
		name:         a.Name,
		version:      a.Version,
		intercept:    a.Intercept,
		coefficients: coeffs,
	}, nil
}

// LoadFile reads a JSON or YAML artifact, chosen by file extension.
func LoadFile(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	m, err := Parse(data, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	if err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes an artifact in the given format ("json", "yaml" or "yml").
func Parse(data []byte, format string) (*LinearModel, error) {
	var a Artifact
	switch format {
	case "json":
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return NewLinearModel(a)
}

func (m *LinearModel) Infer(_ context.Context, fv forecast.FeatureVector) ([]float64, error) {
	y := m.intercept
	for i, x := range fv.Values() {
		y += m.coefficients[i] * x
	}
	return []float64{y}, nil
}

func (m *LinearModel) Name() string    { return m.name }
func (m *LinearModel) Version() string { return m.version }

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
