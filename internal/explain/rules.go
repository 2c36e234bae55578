package explain

import (
	"strconv"

	"github.com/abhisek/xscaffold/internal/features"
)

// rule flags a feature as a strength or a weakness. A rule fires at most one
// side; positive is checked first.
type rule struct {
	feature        string
	positive       func(features.Vector) bool
	negative       func(features.Vector) bool
	positivePhrase func(float64) string
	negativePhrase func(float64) string
}

var rules = []rule{
	{
		feature:        features.ScorePercentage,
		positive:       func(v features.Vector) bool { return v.ScorePercentage >= 70 },
		negative:       func(v features.Vector) bool { return v.ScorePercentage < 50 },
		positivePhrase: func(x float64) string { return "Strong score of " + num(x) + "% (+)" },
		negativePhrase: func(x float64) string { return "Score of " + num(x) + "% needs improvement (-)" },
	},
	{
		feature:  features.HardQuestionAccuracy,
		positive: func(v features.Vector) bool { return v.HardQuestionAccuracy >= 60 },
		negative: func(v features.Vector) bool { return v.HardQuestionAccuracy < 40 },
	},
	{
		feature:        features.HintUsagePercentage,
		positive:       func(v features.Vector) bool { return v.HintUsagePercentage <= 20 },
		negative:       func(v features.Vector) bool { return v.HintUsagePercentage >= 50 },
		positivePhrase: func(x float64) string { return "Low hint dependency (" + num(x) + "%) (+)" },
		negativePhrase: func(x float64) string {
			return "High hint usage (" + num(x) + "%) suggests scaffolding dependency (-)"
		},
	},
	{
		feature: features.AvgConfidence,
		positive: func(v features.Vector) bool {
			return v.AvgConfidence >= 3.5 && v.ScorePercentage >= 60
		},
		negative: func(v features.Vector) bool {
			return v.AvgConfidence >= 4 && v.ScorePercentage < 50
		},
		negativePhrase: func(float64) string { return "Overconfidence detected (-)" },
	},
	{
		feature:  features.AnswerChangesRate,
		positive: func(v features.Vector) bool { return v.AnswerChangesRate <= 0.3 },
		negative: func(v features.Vector) bool { return v.AnswerChangesRate >= 1.0 },
	},
	{
		feature:        features.TabSwitchesRate,
		positive:       func(v features.Vector) bool { return v.TabSwitchesRate <= 1.0 },
		negative:       func(v features.Vector) bool { return v.TabSwitchesRate >= 2.5 },
		negativePhrase: func(float64) string { return "Focus patterns need attention (-)" },
	},
	{
		feature:        features.PerformanceTrend,
		positive:       func(v features.Vector) bool { return v.PerformanceTrend >= 5 },
		negative:       func(v features.Vector) bool { return v.PerformanceTrend <= -10 },
		positivePhrase: func(float64) string { return "Positive improvement trend (+)" },
		negativePhrase: func(float64) string { return "Performance declined during exam (-)" },
	},
}

func num(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
