package features

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Feature keys, in the order the prediction service expects them.
const (
	ScorePercentage       = "score_percentage"
	HardQuestionAccuracy  = "hard_question_accuracy"
	HintUsagePercentage   = "hint_usage_percentage"
	AvgConfidence         = "avg_confidence"
	AnswerChangesRate     = "answer_changes_rate"
	TabSwitchesRate       = "tab_switches_rate"
	AvgTimePerQuestion    = "avg_time_per_question"
	ReviewPercentage      = "review_percentage"
	AvgFirstActionLatency = "avg_first_action_latency"
	ClicksPerQuestion     = "clicks_per_question"
	PerformanceTrend      = "performance_trend"
)

// Names lists all feature keys in canonical order.
var Names = []string{
	ScorePercentage,
	HardQuestionAccuracy,
	HintUsagePercentage,
	AvgConfidence,
	AnswerChangesRate,
	TabSwitchesRate,
	AvgTimePerQuestion,
	ReviewPercentage,
	AvgFirstActionLatency,
	ClicksPerQuestion,
	PerformanceTrend,
}

// Vector is the behavioral record of one exam attempt. It is a plain value:
// every consumer receives its own copy, and nothing in the engine mutates it.
type Vector struct {
	ScorePercentage       float64 `json:"score_percentage"`
	HardQuestionAccuracy  float64 `json:"hard_question_accuracy"`
	HintUsagePercentage   float64 `json:"hint_usage_percentage"`
	AvgConfidence         float64 `json:"avg_confidence"`
	AnswerChangesRate     float64 `json:"answer_changes_rate"`
	TabSwitchesRate       float64 `json:"tab_switches_rate"`
	AvgTimePerQuestion    float64 `json:"avg_time_per_question"`
	ReviewPercentage      float64 `json:"review_percentage"`
	AvgFirstActionLatency float64 `json:"avg_first_action_latency"`
	ClicksPerQuestion     float64 `json:"clicks_per_question"`
	PerformanceTrend      float64 `json:"performance_trend"`
}

// Get returns the value of the named feature.
func (v Vector) Get(name string) (float64, bool) {
	switch name {
	case ScorePercentage:
		return v.ScorePercentage, true
	case HardQuestionAccuracy:
		return v.HardQuestionAccuracy, true
	case HintUsagePercentage:
		return v.HintUsagePercentage, true
	case AvgConfidence:
		return v.AvgConfidence, true
	case AnswerChangesRate:
		return v.AnswerChangesRate, true
	case TabSwitchesRate:
		return v.TabSwitchesRate, true
	case AvgTimePerQuestion:
		return v.AvgTimePerQuestion, true
	case ReviewPercentage:
		return v.ReviewPercentage, true
	case AvgFirstActionLatency:
		return v.AvgFirstActionLatency, true
	case ClicksPerQuestion:
		return v.ClicksPerQuestion, true
	case PerformanceTrend:
		return v.PerformanceTrend, true
	}
	return 0, false
}

// Map returns the vector as a flat field map.
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, len(Names))
	for _, name := range Names {
		m[name], _ = v.Get(name)
	}
	return m
}

// FromMap builds a Vector from a flat field map. All eleven keys must be
// present; unknown keys are rejected so typos don't silently become zeros.
func FromMap(m map[string]float64) (Vector, error) {
	var missing, unknown []string
	for _, name := range Names {
		if _, ok := m[name]; !ok {
			missing = append(missing, name)
		}
	}
	for k := range m {
		if _, ok := (Vector{}).Get(k); !ok {
			unknown = append(unknown, k)
		}
	}
	if len(missing) > 0 || len(unknown) > 0 {
		sort.Strings(unknown)
		var parts []string
		if len(missing) > 0 {
			parts = append(parts, "missing "+strings.Join(missing, ", "))
		}
		if len(unknown) > 0 {
			parts = append(parts, "unknown "+strings.Join(unknown, ", "))
		}
		return Vector{}, fmt.Errorf("invalid feature map: %s", strings.Join(parts, "; "))
	}

	return Vector{
		ScorePercentage:       m[ScorePercentage],
		HardQuestionAccuracy:  m[HardQuestionAccuracy],
		HintUsagePercentage:   m[HintUsagePercentage],
		AvgConfidence:         m[AvgConfidence],
		AnswerChangesRate:     m[AnswerChangesRate],
		TabSwitchesRate:       m[TabSwitchesRate],
		AvgTimePerQuestion:    m[AvgTimePerQuestion],
		ReviewPercentage:      m[ReviewPercentage],
		AvgFirstActionLatency: m[AvgFirstActionLatency],
		ClicksPerQuestion:     m[ClicksPerQuestion],
		PerformanceTrend:      m[PerformanceTrend],
	}, nil
}

// Domain is the declared range of a feature.
type Domain struct {
	Min, Max float64
	// MinExclusive marks domains that are open at the lower bound, e.g.
	// dwell times which must be strictly positive.
	MinExclusive bool
}

// Contains reports whether x lies in the domain.
func (d Domain) Contains(x float64) bool {
	if math.IsNaN(x) {
		return false
	}
	if d.MinExclusive {
		if x <= d.Min {
			return false
		}
	} else if x < d.Min {
		return false
	}
	return x <= d.Max
}

// Domains holds the declared range for every feature.
var Domains = map[string]Domain{
	ScorePercentage:       {Min: 0, Max: 100},
	HardQuestionAccuracy:  {Min: 0, Max: 100},
	HintUsagePercentage:   {Min: 0, Max: 100},
	AvgConfidence:         {Min: 1, Max: 5},
	AnswerChangesRate:     {Min: 0, Max: math.Inf(1)},
	TabSwitchesRate:       {Min: 0, Max: math.Inf(1)},
	AvgTimePerQuestion:    {Min: 0, Max: math.Inf(1), MinExclusive: true},
	ReviewPercentage:      {Min: 0, Max: 100},
	AvgFirstActionLatency: {Min: 0, Max: math.Inf(1), MinExclusive: true},
	ClicksPerQuestion:     {Min: 0, Max: math.Inf(1)},
	PerformanceTrend:      {Min: -100, Max: 100},
}

// Violation describes a feature value outside its declared domain.
type Violation struct {
	Feature string
	Value   float64
	Domain  Domain
}

func (v Violation) String() string {
	lo := "["
	if v.Domain.MinExclusive {
		lo = "("
	}
	return fmt.Sprintf("%s=%g outside %s%g, %g]", v.Feature, v.Value, lo, v.Domain.Min, v.Domain.Max)
}

// Validate reports out-of-domain values. Violations are informational: the
// scoring formula clamps its inputs, so a slightly malformed telemetry value
// never blocks a result.
func (v Vector) Validate() []Violation {
	var out []Violation
	for _, name := range Names {
		x, _ := v.Get(name)
		d := Domains[name]
		if !d.Contains(x) {
			out = append(out, Violation{Feature: name, Value: x, Domain: d})
		}
	}
	return out
}
