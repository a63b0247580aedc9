package forecast

import (
	"math"
	"time"
)

// Forecast horizons understood by the predictor.
const (
	HorizonNow = "Now"
	Horizon3h  = "3h"
	Horizon6h  = "6h"
	Horizon12h = "12h"
)

var horizonOffsets = map[string]int{
	HorizonNow: 0,
	Horizon3h:  3,
	Horizon6h:  6,
	Horizon12h: 12,
}

// Horizons returns the fixed horizon sequence in display order.
func Horizons() []string {
	return []string{HorizonNow, Horizon3h, Horizon6h, Horizon12h}
}

// OffsetHours maps a horizon label to its lead time. Unknown labels are
// treated as "Now".
func OffsetHours(label string) int {
	return horizonOffsets[label]
}

// IsKnownHorizon reports whether label is one of Horizons().
func IsKnownHorizon(label string) bool {
	_, ok := horizonOffsets[label]
	return ok
}

// TimeFeatures are the calendar features of the forecast reference time.
// HourSin/HourCos place the hour on the unit circle so 23h and 0h are adjacent.
type TimeFeatures struct {
	Hour    int     `json:"hour"`
	Month   int     `json:"month"`
	HourSin float64 `json:"hour_sin"`
	HourCos float64 `json:"hour_cos"`
}

// DeriveTimeFeatures computes the features for now shifted by the horizon's
// offset. Hour and month are read in now's location.
func DeriveTimeFeatures(now time.Time, label string) TimeFeatures {
	ref := now.Add(time.Duration(OffsetHours(label)) * time.Hour)
	hour := ref.Hour()
	angle := 2 * math.Pi * float64(hour) / 24

	return TimeFeatures{
		Hour:    hour,
		Month:   int(ref.Month()),
		HourSin: math.Sin(angle),
		HourCos: math.Cos(angle),
	}
}
