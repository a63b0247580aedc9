package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/i474232898/wbgt-forecast/internal/forecast"
	"github.com/i474232898/wbgt-forecast/internal/risk"
)

// Forecaster yields one prediction per call. Both the HTTP Client and an
// in-process forecast.Predictor satisfy it.
type Forecaster interface {
	Predict(ctx context.Context, horizon string) (forecast.Prediction, error)
}

// HorizonResult is the outcome for one horizon. WBGT is nil when the
// prediction failed and Error says why.
type HorizonResult struct {
	Horizon string    `json:"horizon"`
	WBGT    *float64  `json:"wbgt"`
	Band    risk.Band `json:"band"`
	Error   string    `json:"error,omitempty"`
}

// Report is one full refresh across every horizon.
type Report struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Results     []HorizonResult `json:"results"`
	// Inputs are the live sensor inputs of the "Now" prediction, nil when
	// that prediction failed.
	Inputs *forecast.FeatureVector `json:"inputs"`
}

// Dashboard collects forecasts for the fixed horizon sequence.
type Dashboard struct {
	forecaster Forecaster
	logger     *slog.Logger
	now        func() time.Time
}

func New(f Forecaster, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{
		forecaster: f,
		logger:     logger,
		now:        time.Now,
	}
}

// Refresh requests every horizon in order, one at a time. A failed horizon
// is marked Unknown and the remaining horizons are still requested.
func (d *Dashboard) Refresh(ctx context.Context) Report {
	report := Report{GeneratedAt: d.now()}

	for _, h := range forecast.Horizons() {
		pred, err := d.forecaster.Predict(ctx, h)
		if err != nil {
			d.logger.Error("error fetching prediction", "horizon", h, "err", err)
			report.Results = append(report.Results, HorizonResult{
				Horizon: h,
				Band:    risk.Unknown,
				Error:   err.Error(),
			})
			continue
		}

		wbgt := pred.WBGT
		report.Results = append(report.Results, HorizonResult{
			Horizon: h,
			WBGT:    &wbgt,
			Band:    risk.Classify(&wbgt),
		})
		if h == forecast.HorizonNow {
			inputs := pred.Inputs
			report.Inputs = &inputs
		}
	}

	return report
}
