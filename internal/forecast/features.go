package forecast

// FeatureNames is the column order the model was trained on.
var FeatureNames = [8]string{
	"temp_c",
	"rh_percent",
	"wind_speed_ms",
	"wbgt_primary",
	"hour",
	"month",
	"hour_sin",
	"hour_cos",
}

// FeatureVector is the model input for one prediction.
// WBGTPrimary is always 0; the model ignores it at inference time.
type FeatureVector struct {
	TempC       float64 `json:"temp_c"`
	RHPercent   float64 `json:"rh_percent"`
	WindSpeedMS float64 `json:"wind_speed_ms"`
	WBGTPrimary float64 `json:"wbgt_primary"`
	Hour        int     `json:"hour"`
	Month       int     `json:"month"`
	HourSin     float64 `json:"hour_sin"`
	HourCos     float64 `json:"hour_cos"`
}

// NewFeatureVector assembles a vector from sensor means and time features.
func NewFeatureVector(tempC, rhPercent, windSpeedMS float64, tf TimeFeatures) FeatureVector {
	return FeatureVector{
		TempC:       tempC,
		RHPercent:   rhPercent,
		WindSpeedMS: windSpeedMS,
		WBGTPrimary: 0,
		Hour:        tf.Hour,
		Month:       tf.Month,
		HourSin:     tf.HourSin,
		HourCos:     tf.HourCos,
	}
}

// Values returns the features in FeatureNames order.
func (v FeatureVector) Values() []float64 {
	return []float64{
		v.TempC,
		v.RHPercent,
		v.WindSpeedMS,
		v.WBGTPrimary,
		float64(v.Hour),
		float64(v.Month),
		v.HourSin,
		v.HourCos,
	}
}

// Named returns the features keyed by name.
func (v FeatureVector) Named() map[string]float64 {
	values := v.Values()
	out := make(map[string]float64, len(FeatureNames))
	for i, name := range FeatureNames {
		out[name] = values[i]
	}
	return out
}

// Prediction is the response for one horizon.
type Prediction struct {
	Horizon string        `json:"horizon"`
	Inputs  FeatureVector `json:"inputs"`
	WBGT    float64       `json:"wbgt_prediction"`
}
