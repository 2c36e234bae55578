package lms

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/xscaffold/internal/features"
)

func proficientVector() features.Vector {
	return features.Vector{
		ScorePercentage:       72.5,
		HardQuestionAccuracy:  65,
		HintUsagePercentage:   20,
		AvgConfidence:         3.8,
		AnswerChangesRate:     0.3,
		TabSwitchesRate:       0.8,
		AvgTimePerQuestion:    85,
		ReviewPercentage:      40,
		AvgFirstActionLatency: 4.5,
		ClicksPerQuestion:     4.2,
		PerformanceTrend:      8,
	}
}

func TestTerms(t *testing.T) {
	c := Terms(proficientVector())
	assert.InDelta(t, 0.2, c.HintUsage, 1e-9)
	assert.InDelta(t, 0.965, c.Calibration, 1e-9)
	assert.InDelta(t, 0.7, c.Stability, 1e-9)
	assert.InDelta(t, 0.6, c.Attention, 1e-9)
}

func TestCompute_ProficientScenario(t *testing.T) {
	got := Compute(proficientVector())
	want := 36.25 + 9.75 + 9.65 + 7 + 6 - 15*math.Pow(0.2, 1.5)
	assert.InDelta(t, want, got, 1e-9)
	assert.InDelta(t, 67.31, Round(got, 2), 1e-9)
	assert.Equal(t, TierProficient, Classify(Round(got, 2)))
}

func TestCompute_AtRiskScenario(t *testing.T) {
	f := features.Vector{
		ScorePercentage:       30,
		HardQuestionAccuracy:  50,
		HintUsagePercentage:   80,
		AvgConfidence:         1.5,
		AnswerChangesRate:     0.5,
		TabSwitchesRate:       1,
		AvgTimePerQuestion:    60,
		AvgFirstActionLatency: 3,
		ClicksPerQuestion:     4,
	}
	got := Compute(f)
	assert.Less(t, got, DevelopingThreshold)
	assert.Equal(t, TierAtRisk, Classify(got))
}

func TestCompute_Idempotent(t *testing.T) {
	f := proficientVector()
	assert.Equal(t, Compute(f), Compute(f))
}

func TestCompute_ClampsCorruptInputs(t *testing.T) {
	tests := []struct {
		name string
		f    features.Vector
		want float64
	}{
		{
			name: "out of range accuracy",
			f: features.Vector{
				ScorePercentage:      1000,
				HardQuestionAccuracy: 1000,
				AvgConfidence:        5,
			},
			// 50 + 15 + 10 + 10 + 10.
			want: 95,
		},
		{
			name: "negative everything",
			f: features.Vector{
				ScorePercentage:      -50,
				HardQuestionAccuracy: -50,
				HintUsagePercentage:  500,
				AvgConfidence:        5,
				AnswerChangesRate:    -3,
				TabSwitchesRate:      -3,
			},
			// Ccal = 0, Ks = 1, Af = 1, hint penalty = 15.
			want: 5,
		},
		{
			name: "NaN score",
			f: features.Vector{
				ScorePercentage: math.NaN(),
				AvgConfidence:   1,
			},
			// Ccal = 0.8, Ks = 1, Af = 1.
			want: 28,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Compute(tt.f), 1e-9)
		})
	}
}

func TestCompute_AlwaysInRange(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 2000 {
		f := features.Vector{
			ScorePercentage:       r.Float64() * 100,
			HardQuestionAccuracy:  r.Float64() * 100,
			HintUsagePercentage:   r.Float64() * 100,
			AvgConfidence:         1 + r.Float64()*4,
			AnswerChangesRate:     r.Float64() * 3,
			TabSwitchesRate:       r.Float64() * 5,
			AvgTimePerQuestion:    1 + r.Float64()*300,
			ReviewPercentage:      r.Float64() * 100,
			AvgFirstActionLatency: 0.1 + r.Float64()*20,
			ClicksPerQuestion:     r.Float64() * 20,
			PerformanceTrend:      r.Float64()*200 - 100,
		}
		got := Compute(f)
		require.GreaterOrEqual(t, got, 0.0)
		require.LessOrEqual(t, got, 100.0)
	}
}

func TestEstimateConfidence(t *testing.T) {
	// scoreMatch 0.965, stability 0.7, focus 1-0.8/3.
	want := Round((0.965+0.7+(1-0.8/3))/3, 4)
	assert.Equal(t, want, EstimateConfidence(proficientVector()))

	low := features.Vector{ScorePercentage: 0, AvgConfidence: 5, AnswerChangesRate: 4, TabSwitchesRate: 9}
	assert.Equal(t, MinFallbackConfidence, EstimateConfidence(low))

	high := features.Vector{ScorePercentage: 100, AvgConfidence: 5}
	assert.Equal(t, MaxFallbackConfidence, EstimateConfidence(high))
}
