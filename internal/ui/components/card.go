package components

import (
	"fmt"
	"strings"

	"github.com/abhisek/xscaffold/internal/explain"
	"github.com/abhisek/xscaffold/internal/lms"
	"github.com/abhisek/xscaffold/internal/ui/theme"
)

// ResultCard shows one classification with its explanation.
type ResultCard struct {
	Title       string
	LMS         float64
	Tier        lms.Tier
	Confidence  float64
	Source      string
	Explanation explain.Explanation
	// Footer lines are rendered dimmed below the explanation.
	Footer []string
	Width  int
}

// View renders the card.
func (c ResultCard) View() string {
	width := c.Width
	if width <= 0 {
		width = 60
	}

	var lines []string
	if c.Title != "" {
		lines = append(lines, theme.Title.Render(c.Title), "")
	}

	lines = append(lines,
		NewGauge("LMS", c.LMS, width).View(),
		"",
		fmt.Sprintf("%s %s   %s %s   %s %s",
			theme.Label.Render("Tier"), theme.TierBadge(c.Tier),
			theme.Label.Render("Confidence"), theme.Body.Render(fmt.Sprintf("%.0f%%", c.Confidence*100)),
			theme.Label.Render("Source"), theme.Body.Render(c.Source),
		),
	)

	if pos := c.Explanation.PositiveLabels(); len(pos) > 0 {
		lines = append(lines, "", theme.Label.Render("Strengths"))
		for _, p := range pos {
			lines = append(lines, theme.Positive.Render("  + "+p))
		}
	}
	if neg := c.Explanation.NegativeLabels(); len(neg) > 0 {
		lines = append(lines, "", theme.Label.Render("Needs attention"))
		for _, n := range neg {
			lines = append(lines, theme.Negative.Render("  - "+n))
		}
	}
	if c.Explanation.Narrative != "" {
		lines = append(lines, "", theme.Hint.Width(width).Render(c.Explanation.Narrative))
	}
	for i, f := range c.Footer {
		if i == 0 {
			lines = append(lines, "")
		}
		lines = append(lines, theme.Label.Render(f))
	}

	return theme.Card.Render(strings.Join(lines, "\n"))
}
