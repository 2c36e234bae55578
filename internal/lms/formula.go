package lms

import (
	"math"

	"github.com/abhisek/xscaffold/internal/features"
)

// Formula weights. These are fixed; they were derived offline against the
// training set and are not configurable at runtime.
const (
	weightScore       = 0.50
	weightHard        = 0.15
	weightCalibration = 10.0
	weightStability   = 10.0
	weightAttention   = 10.0
	weightHintPenalty = 15.0
	hintPenaltyPower  = 1.5

	// confidenceScale maps a 0-100 score onto the 1-5 Likert confidence
	// scale. Re-derive it if the confidence scale ever changes.
	confidenceScale = 20.0
)

// Components are the intermediate terms of the formula, each in [0,1].
type Components struct {
	HintUsage   float64 // Hu
	Calibration float64 // Ccal
	Stability   float64 // Ks
	Attention   float64 // Af
}

// Terms computes the formula's normalized components. Every input is clamped
// here even though upstream extraction already bounds them.
func Terms(f features.Vector) Components {
	score := clamp(f.ScorePercentage, 0, 100)
	conf := clamp(f.AvgConfidence, 1, 5)
	changes := math.Max(0, f.AnswerChangesRate)
	switches := math.Max(0, f.TabSwitchesRate)

	return Components{
		HintUsage:   clamp(f.HintUsagePercentage, 0, 100) / 100,
		Calibration: clamp(1-math.Abs(conf-score/confidenceScale)/5, 0, 1),
		Stability:   clamp(1-changes, 0, 1),
		Attention:   clamp(1-math.Min(1, switches/2), 0, 1),
	}
}

// Compute returns the Learning Mastery Score for a feature vector, in [0,100].
// It is a pure function: the same vector always yields the same float.
func Compute(f features.Vector) float64 {
	c := Terms(f)
	score := clamp(f.ScorePercentage, 0, 100)
	hard := clamp(f.HardQuestionAccuracy, 0, 100)

	lms := weightScore*score +
		weightHard*hard +
		weightCalibration*c.Calibration +
		weightStability*c.Stability +
		weightAttention*c.Attention -
		weightHintPenalty*math.Pow(c.HintUsage, hintPenaltyPower)

	return clamp(lms, 0, 100)
}

// clamp bounds x to [lo, hi]. NaN collapses to lo so a corrupt telemetry
// value cannot poison the score.
func clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) || x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Round rounds x to the given number of decimal places.
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
