package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/xscaffold/internal/predict"
	"github.com/abhisek/xscaffold/internal/ui/components"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderResult prints a prediction as a styled card.
func renderResult(w io.Writer, title string, res predict.Result, footer ...string) {
	if res.ModelErr != nil {
		footer = append(footer, fmt.Sprintf("model unavailable: %v", res.ModelErr))
	}
	card := components.ResultCard{
		Title:       title,
		LMS:         res.Classification.LMS,
		Tier:        res.Classification.Tier,
		Confidence:  res.Classification.Confidence,
		Source:      string(res.Classification.Source),
		Explanation: res.Explanation,
		Footer:      footer,
	}
	lipgloss.Fprintln(w, card.View())
}
