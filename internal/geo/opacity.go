package geo

import (
	"math"
	"time"
)

// OpacityWindow is the age span mapped onto the opacity buckets.
const OpacityWindow = 60 * 24 * time.Hour

// opacityBuckets are percentages; recent updates land near 100.
var opacityBuckets = []float64{100, 85, 70, 45, 30, 20}

// AgeOpacity maps how recently a worksite was updated onto the nearest
// opacity bucket, as a fraction in [0.2, 1].
func AgeOpacity(updatedAt, now time.Time) float64 {
	start := now.Add(-OpacityWindow)
	pct := float64(updatedAt.Sub(start)) / float64(OpacityWindow) * 100

	closest := opacityBuckets[0]
	for _, b := range opacityBuckets[1:] {
		if math.Abs(b-pct) < math.Abs(closest-pct) {
			closest = b
		}
	}
	return closest / 100
}
