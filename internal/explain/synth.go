package explain

import (
	"math"
	"sort"
	"strings"
)

const (
	// MaxFactors caps each of the positive and negative factor lists.
	MaxFactors = 3
	// MaxPhrases caps the sentence fragments in a heuristic narrative.
	MaxPhrases = 4
	// ContributionThreshold is the minimum |SHAP value| for a factor to be named.
	ContributionThreshold = 0.05

	narrativePrefix = "Based on SHAP analysis: "
	// NeutralNarrative is used whenever no evidence singles out a factor.
	NeutralNarrative = narrativePrefix + "Standard performance patterns observed."
)

// Synthesize builds an explanation from the given evidence. It never fails:
// nil or empty evidence yields the neutral narrative and no factors.
func Synthesize(e Evidence) Explanation {
	switch ev := e.(type) {
	case ModelContributions:
		if len(ev) > 0 {
			return fromContributions(ev)
		}
	case ModelSummary:
		if len(ev.TopPositive)+len(ev.TopNegative) > 0 || strings.TrimSpace(ev.Narrative) != "" {
			return fromSummary(ev)
		}
	case Heuristic:
		return fromRules(ev)
	}
	return neutral()
}

func neutral() Explanation {
	return Explanation{
		Mode:      ModeNone,
		Positive:  []Factor{},
		Negative:  []Factor{},
		Narrative: NeutralNarrative,
	}
}

func fromContributions(c ModelContributions) Explanation {
	keys := make([]string, 0, len(c))
	for k, v := range c {
		if math.IsNaN(v) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ai, aj := math.Abs(c[keys[i]]), math.Abs(c[keys[j]])
		if ai != aj {
			return ai > aj
		}
		return keys[i] < keys[j]
	})

	exp := Explanation{
		Mode:          ModeContributions,
		Positive:      []Factor{},
		Negative:      []Factor{},
		Contributions: make(map[string]float64, len(c)),
	}
	for k, v := range c {
		exp.Contributions[k] = v
	}

	for _, k := range keys {
		v := c[k]
		switch {
		case v > ContributionThreshold && len(exp.Positive) < MaxFactors:
			exp.Positive = append(exp.Positive, Factor{Feature: k, Contribution: &v})
		case v < -ContributionThreshold && len(exp.Negative) < MaxFactors:
			exp.Negative = append(exp.Negative, Factor{Feature: k, Contribution: &v})
		}
	}

	if len(exp.Positive) == 0 && len(exp.Negative) == 0 {
		exp.Narrative = NeutralNarrative
		return exp
	}

	var clauses []string
	if len(exp.Positive) > 0 {
		clauses = append(clauses, "Positive factors include "+strings.Join(exp.PositiveLabels(), ", ")+".")
	}
	if len(exp.Negative) > 0 {
		clauses = append(clauses, "Areas needing improvement: "+strings.Join(exp.NegativeLabels(), ", ")+".")
	}
	exp.Narrative = narrativePrefix + strings.Join(clauses, " ")
	return exp
}

func fromSummary(s ModelSummary) Explanation {
	exp := Explanation{
		Mode:      ModeSummary,
		Positive:  namesToFactors(s.TopPositive),
		Negative:  namesToFactors(s.TopNegative),
		Narrative: strings.TrimSpace(s.Narrative),
	}
	if exp.Narrative == "" {
		exp.Narrative = NeutralNarrative
	}
	return exp
}

func namesToFactors(names []string) []Factor {
	out := []Factor{}
	seen := make(map[string]bool)
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, Factor{Feature: n})
		if len(out) == MaxFactors {
			break
		}
	}
	return out
}

func fromRules(h Heuristic) Explanation {
	exp := Explanation{
		Mode:     ModeHeuristic,
		Positive: []Factor{},
		Negative: []Factor{},
	}
	var phrases []string

	for _, r := range rules {
		value, _ := h.Features.Get(r.feature)
		var phrase string
		switch {
		case r.positive != nil && r.positive(h.Features):
			if len(exp.Positive) < MaxFactors {
				exp.Positive = append(exp.Positive, Factor{Feature: r.feature})
			}
			if r.positivePhrase != nil {
				phrase = r.positivePhrase(value)
			}
		case r.negative != nil && r.negative(h.Features):
			if len(exp.Negative) < MaxFactors {
				exp.Negative = append(exp.Negative, Factor{Feature: r.feature})
			}
			if r.negativePhrase != nil {
				phrase = r.negativePhrase(value)
			}
		}
		if phrase != "" && len(phrases) < MaxPhrases {
			phrases = append(phrases, phrase)
		}
	}

	if len(phrases) == 0 {
		exp.Narrative = NeutralNarrative
	} else {
		exp.Narrative = narrativePrefix + strings.Join(phrases, ". ") + "."
	}
	return exp
}
