package explain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/abhisek/xscaffold/internal/features"
)

var labels = map[string]string{
	features.ScorePercentage:       "Score",
	features.HardQuestionAccuracy:  "Advanced Mastery",
	features.HintUsagePercentage:   "Scaffolding Use",
	features.AvgConfidence:         "Confidence",
	features.AnswerChangesRate:     "Uncertainty Rate",
	features.TabSwitchesRate:       "Focus Rate",
	features.AvgTimePerQuestion:    "Avg. Time/Question",
	features.ReviewPercentage:      "Review %",
	features.AvgFirstActionLatency: "Processing Speed",
	features.ClicksPerQuestion:     "Interaction Intensity",
	features.PerformanceTrend:      "Endurance Trend",
}

var descriptions = map[string]string{
	features.ScorePercentage:       "Percentage of correct answers",
	features.HardQuestionAccuracy:  "Accuracy on difficult questions",
	features.HintUsagePercentage:   "Percentage of questions where hints were used",
	features.AvgConfidence:         "Mean self-reported confidence (1-5)",
	features.AnswerChangesRate:     "Average answer changes per question",
	features.TabSwitchesRate:       "Average tab switches per question",
	features.AvgTimePerQuestion:    "Mean time spent per question (seconds)",
	features.ReviewPercentage:      "Percentage of questions marked for review",
	features.AvgFirstActionLatency: "Mean time to first interaction (seconds)",
	features.ClicksPerQuestion:     "Average clicks per question",
	features.PerformanceTrend:      "Accuracy change (2nd half - 1st half)",
}

// Label returns the instructor-facing name of a feature. Unmapped keys are
// title-cased with underscores turned into spaces.
func Label(feature string) string {
	if l, ok := labels[feature]; ok {
		return l
	}
	return titleCase(feature)
}

// Description returns a one-line description of a feature, or "" if unknown.
func Description(feature string) string {
	return descriptions[feature]
}

func titleCase(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToTitle(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
