package scaffold

import (
	"fmt"

	"github.com/abhisek/xscaffold/internal/lms"
)

// Intensity is the amount of scaffolding a hint gives. Lower is lighter.
type Intensity int

const (
	Light     Intensity = 1
	Moderate  Intensity = 2
	Intensive Intensity = 3
)

// SelectIntensity maps a tier to a scaffolding intensity. Unknown or empty
// tiers get Moderate.
func SelectIntensity(t lms.Tier) Intensity {
	switch t {
	case lms.TierAdvanced, lms.TierProficient:
		return Light
	case lms.TierDeveloping:
		return Moderate
	case lms.TierAtRisk:
		return Intensive
	}
	return Moderate
}

func (i Intensity) String() string {
	switch i {
	case Light:
		return "L1"
	case Moderate:
		return "L2"
	case Intensive:
		return "L3"
	}
	return fmt.Sprintf("L%d", int(i))
}

// guidance is the intensity-specific instruction sent to the LLM.
func (i Intensity) guidance() string {
	switch i {
	case Light:
		return "The student is doing well. Give one short nudge that points in the right direction. Do not outline steps."
	case Intensive:
		return "The student is struggling. Break the problem into small guided steps and walk through the first step together, but stop before the final answer."
	default:
		return "The student is building confidence. Name the concept the question relies on and suggest a first step."
	}
}
