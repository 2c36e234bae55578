package insights

import (
	"sort"

	"github.com/abhisek/xscaffold/internal/lms"
	"github.com/abhisek/xscaffold/internal/store"
)

// FactorCount is how often a feature appeared on one side of the learner's
// explanations.
type FactorCount struct {
	Feature string `json:"feature"`
	Count   int    `json:"count"`
}

// Summary aggregates a learner's latest classifications across units.
type Summary struct {
	LearnerID string                       `json:"learner_id"`
	Units     int                          `json:"units"`
	AvgLMS    float64                      `json:"avg_lms"`
	BestLMS   float64                      `json:"best_lms"`
	AvgScore  float64                      `json:"avg_score"`
	Tiers     map[lms.Tier]int             `json:"tiers"`
	Strengths []FactorCount                `json:"strengths"`
	Gaps      []FactorCount                `json:"gaps"`
	Records   []store.ClassificationRecord `json:"-"`
}

// Aggregate summarizes recs. Averages are rounded to one decimal.
func Aggregate(learnerID string, recs []store.ClassificationRecord) Summary {
	s := Summary{
		LearnerID: learnerID,
		Units:     len(recs),
		Tiers:     make(map[lms.Tier]int, len(lms.Tiers)),
		Records:   recs,
	}
	for _, t := range lms.Tiers {
		s.Tiers[t] = 0
	}
	if len(recs) == 0 {
		return s
	}

	pos := map[string]int{}
	neg := map[string]int{}
	var sumLMS, sumScore float64
	for i, r := range recs {
		sumLMS += r.LMS
		sumScore += r.Features.ScorePercentage
		if i == 0 || r.LMS > s.BestLMS {
			s.BestLMS = r.LMS
		}
		if r.Tier.Valid() {
			s.Tiers[r.Tier]++
		}
		for _, f := range r.Explanation.Positive {
			pos[f.Feature]++
		}
		for _, f := range r.Explanation.Negative {
			neg[f.Feature]++
		}
	}

	n := float64(len(recs))
	s.AvgLMS = lms.Round(sumLMS/n, 1)
	s.AvgScore = lms.Round(sumScore/n, 1)
	s.Strengths = ranked(pos)
	s.Gaps = ranked(neg)
	return s
}

// ranked orders counts by frequency, then name.
func ranked(counts map[string]int) []FactorCount {
	out := make([]FactorCount, 0, len(counts))
	for f, c := range counts {
		out = append(out, FactorCount{Feature: f, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Feature < out[j].Feature
	})
	return out
}
