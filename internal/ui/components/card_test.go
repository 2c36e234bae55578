package components

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/xscaffold/internal/explain"
	"github.com/abhisek/xscaffold/internal/features"
	"github.com/abhisek/xscaffold/internal/lms"
)

func TestResultCard_View(t *testing.T) {
	v := features.Vector{ScorePercentage: 85, HardQuestionAccuracy: 70, HintUsagePercentage: 10, AvgConfidence: 4, PerformanceTrend: 8}
	card := ResultCard{
		Title:       "fractions",
		LMS:         81.4,
		Tier:        lms.TierAdvanced,
		Confidence:  0.91,
		Source:      "MODEL",
		Explanation: explain.Synthesize(explain.Heuristic{Features: v}),
		Footer:      []string{"attempt 2 of 3"},
		Width:       50,
	}
	out := card.View()

	for _, want := range []string{"fractions", "Advanced", "91%", "MODEL", "+ Score", "Strong score of 85%", "attempt 2 of 3", "81.40"} {
		if !strings.Contains(out, want) {
			t.Errorf("card missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Needs attention") {
		t.Error("card should not list negative factors")
	}
}

func TestGauge_Width(t *testing.T) {
	for _, score := range []float64{-5, 0, 42.5, 100, 130} {
		g := NewGauge("LMS", score, 40)
		if w := lipgloss.Width(g.View()); w != 40 {
			t.Errorf("gauge width for %v = %d, want 40", score, w)
		}
	}
}
