package lms

import (
	"math"

	"github.com/abhisek/xscaffold/internal/features"
)

// Confidence bounds for formula-based predictions. The formula is never
// fully certain, nor less than a coin flip.
const (
	MinFallbackConfidence = 0.5
	MaxFallbackConfidence = 0.98
)

// EstimateConfidence scores how internally consistent a feature vector is:
// confidence that matches performance, few answer changes, and few focus
// losses all raise it.
func EstimateConfidence(f features.Vector) float64 {
	scoreMatch := 1 - math.Abs(f.ScorePercentage/confidenceScale-f.AvgConfidence)/5
	stability := 1 - math.Min(1, f.AnswerChangesRate)
	focus := 1 - math.Min(1, f.TabSwitchesRate/3)

	c := (scoreMatch + stability + focus) / 3
	if math.IsNaN(c) {
		c = MinFallbackConfidence
	}
	return Round(clamp(c, MinFallbackConfidence, MaxFallbackConfidence), 4)
}
