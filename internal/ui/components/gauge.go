package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/xscaffold/internal/lms"
	"github.com/abhisek/xscaffold/internal/ui/theme"
)

// Gauge displays an LMS on a 0-100 horizontal bar colored by tier.
type Gauge struct {
	Label string
	LMS   float64
	Width int
}

// NewGauge creates a new LMS gauge.
func NewGauge(label string, score float64, width int) Gauge {
	return Gauge{Label: label, LMS: score, Width: width}
}

// View renders the gauge.
func (g Gauge) View() string {
	var result string

	if g.Label != "" {
		result += theme.Label.Render(g.Label) + "  "
	}

	scoreText := fmt.Sprintf("  %6.2f", g.LMS)
	barWidth := g.Width - lipgloss.Width(result) - len(scoreText)
	if barWidth < 10 {
		barWidth = 10
	}

	filled := int(float64(barWidth) * g.LMS / 100)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}

	fill := lipgloss.NewStyle().Background(theme.TierColor(lms.Classify(g.LMS)))
	result += fill.Render(strings.Repeat(" ", filled))
	result += theme.GaugeEmpty.Render(strings.Repeat(" ", barWidth-filled))
	result += theme.Body.Render(scoreText)

	return result
}
