package predict

import (
	"context"
	"strings"

	"github.com/abhisek/xscaffold/internal/explain"
	"github.com/abhisek/xscaffold/internal/features"
)

// Backend is the external prediction service as seen by the Gateway.
// Implementations return *ErrModelUnavailable or *ErrMalformedResponse on
// failure; the Gateway absorbs any error into the fallback path.
type Backend interface {
	Predict(ctx context.Context, v features.Vector) (*ModelOutput, error)
}

// ModelOutput is a successful response from the prediction service.
type ModelOutput struct {
	Level         int                `json:"mastery_level"`
	LevelName     string             `json:"mastery_level_name,omitempty"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities,omitempty"`

	Contributions   map[string]float64 `json:"contributions,omitempty"`
	TopPositive     []string           `json:"top_positive,omitempty"`
	TopNegative     []string           `json:"top_negative,omitempty"`
	NaturalLanguage string             `json:"natural_language,omitempty"`
}

// Evidence picks the richest explanation input the model supplied, or nil
// when it supplied none worth showing.
func (o *ModelOutput) Evidence() explain.Evidence {
	switch {
	case len(o.Contributions) > 0:
		return explain.ModelContributions(o.Contributions)
	case len(o.TopPositive) > 0 || len(o.TopNegative) > 0 || strings.TrimSpace(o.NaturalLanguage) != "":
		return explain.ModelSummary{
			TopPositive: o.TopPositive,
			TopNegative: o.TopNegative,
			Narrative:   o.NaturalLanguage,
		}
	}
	return nil
}

// Health is the parsed /health payload of the prediction service.
type Health struct {
	Status        string   `json:"status"`
	Model         string   `json:"model,omitempty"`
	Version       string   `json:"version,omitempty"`
	FeaturesCount int      `json:"features_count,omitempty"`
	Classes       []string `json:"classes,omitempty"`
	SHAPAvailable bool     `json:"shap_available"`
}
