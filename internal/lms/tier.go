package lms

import "strings"

// Tier is the ordinal mastery classification of an LMS.
type Tier string

const (
	TierAtRisk     Tier = "at_risk"
	TierDeveloping Tier = "developing"
	TierProficient Tier = "proficient"
	TierAdvanced   Tier = "advanced"
)

// Tiers lists all tiers from lowest to highest.
var Tiers = []Tier{TierAtRisk, TierDeveloping, TierProficient, TierAdvanced}

// Inclusive lower bounds of the upper three tiers.
const (
	DevelopingThreshold = 36.0
	ProficientThreshold = 56.0
	AdvancedThreshold   = 76.0
)

// Classify maps an LMS to its tier. Boundary values belong to the higher tier.
func Classify(lms float64) Tier {
	switch {
	case lms >= AdvancedThreshold:
		return TierAdvanced
	case lms >= ProficientThreshold:
		return TierProficient
	case lms >= DevelopingThreshold:
		return TierDeveloping
	default:
		return TierAtRisk
	}
}

// Level returns the tier's ordinal (0 = at risk … 3 = advanced), or -1 for an
// unrecognized tier.
func (t Tier) Level() int {
	for i, tt := range Tiers {
		if tt == t {
			return i
		}
	}
	return -1
}

// Valid reports whether t is one of the four tiers.
func (t Tier) Valid() bool {
	return t.Level() >= 0
}

// Label returns the display name, e.g. "At Risk".
func (t Tier) Label() string {
	switch t {
	case TierAtRisk:
		return "At Risk"
	case TierDeveloping:
		return "Developing"
	case TierProficient:
		return "Proficient"
	case TierAdvanced:
		return "Advanced"
	}
	return "Unknown"
}

// ParseTier accepts the canonical name in any case, with '-' or ' ' in place
// of '_' ("AT_RISK", "at-risk", "At Risk").
func ParseTier(s string) (Tier, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	t := Tier(s)
	return t, t.Valid()
}

// Band is the inclusive LMS sub-range that a tier occupies.
type Band struct {
	Lo, Hi float64
}

// Mid returns the midpoint of the band.
func (b Band) Mid() float64 { return (b.Lo + b.Hi) / 2 }

// HalfWidth returns half the width of the band.
func (b Band) HalfWidth() float64 { return (b.Hi - b.Lo) / 2 }

var bands = map[Tier]Band{
	TierAtRisk:     {0, 35},
	TierDeveloping: {36, 55},
	TierProficient: {56, 75},
	TierAdvanced:   {76, 100},
}

// BandOf returns the LMS band of a tier.
func BandOf(t Tier) (Band, bool) {
	b, ok := bands[t]
	return b, ok
}

// TierFromLevel maps a model's ordinal output to a tier.
func TierFromLevel(level int) (Tier, bool) {
	if level < 0 || level >= len(Tiers) {
		return "", false
	}
	return Tiers[level], true
}

// ProjectLevel converts a discrete tier and the classifier's confidence into
// a displayable LMS inside that tier's band: the band midpoint shifted by
// (confidence-0.5) half-widths, rounded to one decimal.
//
// This exists only because the model emits a class, not a score. A model
// that returns a continuous score should bypass it.
func ProjectLevel(t Tier, confidence float64) float64 {
	b, ok := bands[t]
	if !ok {
		b = bands[TierDeveloping]
	}
	confidence = clamp(confidence, 0, 1)
	return Round(b.Mid()+(confidence-0.5)*b.HalfWidth(), 1)
}
