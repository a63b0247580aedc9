package common

import "math"

// RoundTo rounds a float to the given number of decimal places.
func RoundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}

// Round2 rounds to two decimal places, the precision of every reported value.
func Round2(value float64) float64 {
	return RoundTo(value, 2)
}
