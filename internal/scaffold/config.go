package scaffold

// FallbackHint is returned whenever a hint cannot be generated.
const FallbackHint = "Sorry, hint not available at the moment."

// Config holds hint generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
	// WordBudget caps hint length per intensity.
	WordBudget map[Intensity]int
}

// DefaultConfig returns sensible defaults for hint generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   400,
		Temperature: 0.7,
		WordBudget: map[Intensity]int{
			Light:     40,
			Moderate:  70,
			Intensive: 110,
		},
	}
}
