// Package rating computes a review's normalized rating.
package rating

import (
	"math"

	"github.com/jacentio/platewise"
)

const (
	MinQuality  = 1
	MaxQuality  = 10
	MinQuantity = 1
	MaxQuantity = 5
)

// Compute returns round(round(quality, 2) * sqrt(trunc(quantity) / 5), 2).
//
// A full quantity yields the quality unchanged; smaller quantities dampen it.
// The result feeds the running totalRating of a food item, so the rounding
// steps must not change.
func Compute(quality, quantity float64) (float64, error) {
	if math.IsNaN(quality) || quality < MinQuality || quality > MaxQuality {
		return 0, platewise.Invalid("quality", "must be between %d and %d", MinQuality, MaxQuality)
	}
	if math.IsNaN(quantity) || quantity < MinQuantity || quantity > MaxQuantity {
		return 0, platewise.Invalid("quantity", "must be between %d and %d", MinQuantity, MaxQuantity)
	}

	q := Round(quality, 2)
	n := math.Trunc(quantity)
	return Round(q*math.Sqrt(n/MaxQuantity), 2), nil
}

// Round rounds v to the given number of decimal places, halves away from zero.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
