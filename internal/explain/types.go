package explain

import (
	"fmt"

	"github.com/abhisek/xscaffold/internal/features"
)

// Mode records which evidence produced an explanation.
type Mode string

const (
	ModeContributions Mode = "contributions"
	ModeSummary       Mode = "summary"
	ModeHeuristic     Mode = "heuristic"
	ModeNone          Mode = "none"
)

// Evidence is the input to Synthesize. It is one of ModelContributions,
// ModelSummary or Heuristic.
type Evidence interface {
	isEvidence()
}

// ModelContributions are per-feature SHAP values returned by the model.
type ModelContributions map[string]float64

// ModelSummary is a model explanation that carries ranked factor names and
// prose but no per-feature values.
type ModelSummary struct {
	TopPositive []string
	TopNegative []string
	Narrative   string
}

// Heuristic asks for the rule-based explanation of a feature vector.
type Heuristic struct {
	Features features.Vector
}

func (ModelContributions) isEvidence() {}
func (ModelSummary) isEvidence()       {}
func (Heuristic) isEvidence()          {}

// Factor is one feature named in an explanation.
type Factor struct {
	Feature string `json:"feature"`
	// Contribution is set only for factors ranked from model SHAP values.
	Contribution *float64 `json:"contribution,omitempty"`
}

// Label returns the factor's display name.
func (f Factor) Label() string { return Label(f.Feature) }

// String renders the factor as "Label" or "Label (+0.123)".
func (f Factor) String() string {
	if f.Contribution == nil {
		return f.Label()
	}
	return fmt.Sprintf("%s (%+.3f)", f.Label(), *f.Contribution)
}

// Explanation is the human-readable account of a classification.
type Explanation struct {
	Mode      Mode     `json:"mode"`
	Positive  []Factor `json:"positive_factors"`
	Negative  []Factor `json:"negative_factors"`
	Narrative string   `json:"narrative"`
	// Contributions echoes the model's raw SHAP values, when there were any.
	Contributions map[string]float64 `json:"raw_contributions,omitempty"`
}

// PositiveLabels returns the rendered positive factors.
func (e Explanation) PositiveLabels() []string { return render(e.Positive) }

// NegativeLabels returns the rendered negative factors.
func (e Explanation) NegativeLabels() []string { return render(e.Negative) }

func render(fs []Factor) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.String()
	}
	return out
}
