package common

import "math"

// Round2 rounds a monetary value to 2 decimal places. Applied at every
// display/storage boundary so repeated refreshes don't accumulate float
// drift.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round1 rounds to 1 decimal place, used for percentage deltas in alerts.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
