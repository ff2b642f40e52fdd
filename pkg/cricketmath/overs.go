package cricketmath

import (
	"fmt"
	"math"
)

// BallsPerOver is the number of legal deliveries in a completed over
const BallsPerOver = 6

// OversToBalls converts an N.B overs decimal into legal balls
// 8.3 → 51
// 8.0 → 48
// Fractional balls round to the nearest ball; six or more close the over: 8.95 → 54
func OversToBalls(overs float64) int {
	if overs <= 0 || math.IsNaN(overs) || math.IsInf(overs, 0) {
		return 0
	}
	// work in hundredths so 8.95 is not read as 8.9499...
	hundredths := int64(math.Round(overs * 100))
	whole := int(hundredths / 100)
	balls := min(int(math.Round(float64(hundredths%100)/10)), BallsPerOver)
	return whole*BallsPerOver + balls
}

// BallsToOvers converts legal balls into the N.B overs decimal
// 51 → 8.3
// 48 → 8.0
func BallsToOvers(balls int) float64 {
	if balls <= 0 {
		return 0
	}
	return float64(balls/BallsPerOver) + float64(balls%BallsPerOver)/10
}

// AddLegalBall advances an overs decimal by one legal delivery
// 8.5 → 9.0
func AddLegalBall(overs float64) float64 {
	return BallsToOvers(OversToBalls(overs) + 1)
}

// FormatOvers renders an overs decimal as "N.B" with B in 0..5
// 8.3 → "8.3"
// 8.0 → "8.0"
// 8.95 → "9.0"
func FormatOvers(overs float64) string {
	balls := OversToBalls(overs)
	return fmt.Sprintf("%d.%d", balls/BallsPerOver, balls%BallsPerOver)
}

// trueOvers converts an N.B decimal into fractional overs for division
// 8.3 → 8.5
func trueOvers(overs float64) float64 {
	return float64(OversToBalls(overs)) / BallsPerOver
}

// round2 rounds to two decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
