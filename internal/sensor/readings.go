package sensor

import (
	"github.com/i474232898/wbgt-forecast/internal/common"
)

// Payload is the part of a readings document the aggregator depends on:
// a list of items, each carrying per-station readings.
type Payload struct {
	Items []Item `json:"items"`
}

type Item struct {
	Readings []Reading `json:"readings"`
}

// Reading is one station value. Value keeps whatever JSON type the source
// sent; only numbers take part in aggregation.
type Reading struct {
	Value any `json:"value"`
}

// MeanOfReadings averages the numeric readings and rounds to 2 decimals.
// ok is false when there is nothing numeric to average.
func MeanOfReadings(readings []Reading) (mean float64, ok bool) {
	var (
		sum float64
		n   int
	)
	for _, r := range readings {
		v, isNum := r.Value.(float64)
		if !isNum {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, false
	}
	return common.Round2(sum / float64(n)), true
}
