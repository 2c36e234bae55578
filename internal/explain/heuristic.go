package explain

import (
	"math"

	"github.com/abhisek/xscaffold/internal/features"
)

// HeuristicContributions approximates per-feature SHAP values from the raw
// features. Values are rounded to three decimals. The stub model serves them
// as its contributions; they are never used for the fallback explanation.
func HeuristicContributions(v features.Vector) map[string]float64 {
	calibrationErr := math.Abs(v.AvgConfidence - v.ScorePercentage/20)

	c := map[string]float64{
		features.ScorePercentage:       (v.ScorePercentage - 50) * 0.01,
		features.HardQuestionAccuracy:  (v.HardQuestionAccuracy - 50) * 0.005,
		features.HintUsagePercentage:   (25 - v.HintUsagePercentage) * 0.006,
		features.AvgConfidence:         pick(calibrationErr <= 1, 0.05, -0.05),
		features.AnswerChangesRate:     (0.5 - v.AnswerChangesRate) * 0.1,
		features.TabSwitchesRate:       (1 - v.TabSwitchesRate) * 0.05,
		features.AvgTimePerQuestion:    pick(between(v.AvgTimePerQuestion, 30, 120), 0.02, -0.02),
		features.ReviewPercentage:      pick(between(v.ReviewPercentage, 10, 40), 0.02, 0),
		features.AvgFirstActionLatency: pick(between(v.AvgFirstActionLatency, 1, 5), 0.02, -0.01),
		features.ClicksPerQuestion:     pick(between(v.ClicksPerQuestion, 2, 8), 0.01, 0),
		features.PerformanceTrend:      v.PerformanceTrend * 0.003,
	}
	for k, x := range c {
		c[k] = math.Round(x*1000) / 1000
	}
	return c
}

func between(x, lo, hi float64) bool { return x >= lo && x <= hi }

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
