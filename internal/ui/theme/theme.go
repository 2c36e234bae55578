package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/xscaffold/internal/lms"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Warning   = lipgloss.Color("#EAB308") // Amber
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// Factors
var (
	Positive = lipgloss.NewStyle().
			Foreground(Success)

	Negative = lipgloss.NewStyle().
			Foreground(Error)
)

// Gauge
var (
	GaugeEmpty = lipgloss.NewStyle().
		Background(Border)
)

// TierColor returns the color associated with a tier.
func TierColor(t lms.Tier) color.Color {
	switch t {
	case lms.TierAdvanced:
		return Success
	case lms.TierProficient:
		return Secondary
	case lms.TierDeveloping:
		return Warning
	case lms.TierAtRisk:
		return Error
	}
	return TextDim
}

// TierBadge renders a tier as a colored badge.
func TierBadge(t lms.Tier) string {
	return lipgloss.NewStyle().
		Background(TierColor(t)).
		Foreground(lipgloss.Color("#0F172A")).
		Bold(true).
		Padding(0, 1).
		Render(t.Label())
}
