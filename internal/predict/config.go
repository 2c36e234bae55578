package predict

import "time"

// Config holds settings for the external prediction service and the
// submission flow.
type Config struct {
	// BaseURL is the prediction service root, e.g. "http://localhost:5000".
	BaseURL string

	// PredictTimeout bounds a whole model call, health probe included. The
	// Gateway falls back once it elapses, whether or not the backend honors
	// its context. Zero disables the bound. Default: 10s.
	PredictTimeout time.Duration

	// HealthTimeout bounds the /health probe. Default: 3s.
	HealthTimeout time.Duration

	// ProbeHealth checks /health before every prediction.
	ProbeHealth bool

	// MinModelVersion rejects models reporting an older semantic version.
	// Empty accepts any model, including ones that report no version.
	MinModelVersion string

	// MaxAttempts caps submissions per (learner, unit). 0 means unlimited.
	MaxAttempts int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "http://localhost:5000",
		PredictTimeout: 10 * time.Second,
		HealthTimeout:  3 * time.Second,
		ProbeHealth:    true,
		MaxAttempts:    3,
	}
}
