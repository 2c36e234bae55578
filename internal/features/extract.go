package features

import "math"

// DefaultDifficulty is assumed for questions without a difficulty rating.
const DefaultDifficulty = 2

// HardDifficulty is the lowest difficulty that counts as a hard question.
const HardDifficulty = 3

// Answer is one scored question, in the order it was presented.
type Answer struct {
	Correct    bool
	Difficulty int // 0 means unrated
}

// Telemetry holds the client-side aggregates captured during the exam,
// keyed by feature name. Absent keys take the values in TelemetryDefaults.
type Telemetry map[string]float64

// TelemetryDefaults are used when the exam client did not report a value.
var TelemetryDefaults = Telemetry{
	HintUsagePercentage:   0,
	AvgConfidence:         3.0,
	AnswerChangesRate:     0,
	TabSwitchesRate:       0,
	AvgTimePerQuestion:    60,
	ReviewPercentage:      0,
	AvgFirstActionLatency: 3,
	ClicksPerQuestion:     4,
}

func (t Telemetry) value(name string) float64 {
	if v, ok := t[name]; ok {
		return v
	}
	return TelemetryDefaults[name]
}

// Extract scores an attempt and combines the result with client telemetry.
//
// The score, hard-question accuracy and performance trend are derived from
// the answers; the rest come from telemetry. Hard-question accuracy is 50
// when no hard question was presented. The trend compares accuracy on the
// second half of the exam against the first, splitting at ceil(n/2).
func Extract(answers []Answer, t Telemetry) Vector {
	total := len(answers)
	half := (total + 1) / 2

	var correct, hardTotal, hardCorrect, firstCorrect, secondCorrect int
	for i, a := range answers {
		difficulty := a.Difficulty
		if difficulty == 0 {
			difficulty = DefaultDifficulty
		}
		if difficulty >= HardDifficulty {
			hardTotal++
			if a.Correct {
				hardCorrect++
			}
		}
		if !a.Correct {
			continue
		}
		correct++
		if i < half {
			firstCorrect++
		} else {
			secondCorrect++
		}
	}

	var score float64
	if total > 0 {
		score = float64(correct) / float64(total) * 100
	}

	hardAcc := 50.0
	if hardTotal > 0 {
		hardAcc = float64(hardCorrect) / float64(hardTotal) * 100
	}

	var firstAcc, secondAcc float64
	if half > 0 {
		firstAcc = float64(firstCorrect) / float64(half) * 100
	}
	if rest := total - half; rest > 0 {
		secondAcc = float64(secondCorrect) / float64(rest) * 100
	}

	return Vector{
		ScorePercentage:       round(score, 2),
		HardQuestionAccuracy:  round(hardAcc, 2),
		HintUsagePercentage:   round(t.value(HintUsagePercentage), 2),
		AvgConfidence:         round(t.value(AvgConfidence), 2),
		AnswerChangesRate:     round(t.value(AnswerChangesRate), 4),
		TabSwitchesRate:       round(t.value(TabSwitchesRate), 4),
		AvgTimePerQuestion:    round(t.value(AvgTimePerQuestion), 2),
		ReviewPercentage:      round(t.value(ReviewPercentage), 2),
		AvgFirstActionLatency: round(t.value(AvgFirstActionLatency), 2),
		ClicksPerQuestion:     round(t.value(ClicksPerQuestion), 2),
		PerformanceTrend:      round(secondAcc-firstAcc, 2),
	}
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
