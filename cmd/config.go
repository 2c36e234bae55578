package cmd

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/abhisek/xscaffold/internal/llm"
	"github.com/abhisek/xscaffold/internal/predict"
	"github.com/abhisek/xscaffold/internal/store"
)

func addModelFlags(f *pflag.FlagSet) {
	def := predict.DefaultConfig()
	f.String("model-url", def.BaseURL, "Prediction service base URL")
	f.Duration("predict-timeout", def.PredictTimeout, "Timeout for a single /predict call")
	f.Duration("health-timeout", def.HealthTimeout, "Timeout for the /health probe")
	f.Bool("probe-health", def.ProbeHealth, "Probe /health before each prediction")
	f.String("min-model-version", def.MinModelVersion, "Reject models older than this semantic version")
	f.Bool("no-model", false, "Skip the prediction service and use the LMS formula")
}

func predictConfig(v *viper.Viper) predict.Config {
	cfg := predict.DefaultConfig()
	cfg.BaseURL = v.GetString("model-url")
	cfg.PredictTimeout = v.GetDuration("predict-timeout")
	cfg.HealthTimeout = v.GetDuration("health-timeout")
	cfg.ProbeHealth = v.GetBool("probe-health")
	cfg.MinModelVersion = v.GetString("min-model-version")
	if v.IsSet("max-attempts") {
		cfg.MaxAttempts = v.GetInt("max-attempts")
	}
	return cfg
}

// newGateway builds a prediction gateway over the HTTP backend, or a
// formula-only gateway when --no-model is set.
func newGateway(v *viper.Viper, repo store.ClassificationRepo) *predict.Gateway {
	cfg := predictConfig(v)
	var backend predict.Backend
	if !v.GetBool("no-model") {
		backend = predict.NewHTTPBackend(cfg, &http.Client{})
	}
	return predict.NewGateway(backend, repo, cfg, slog.Default())
}

func addLLMFlags(f *pflag.FlagSet) {
	f.String("llm-provider", "", "LLM provider (anthropic, openai, gemini, openrouter, mock)")
	f.String("llm-model", "", "Model name for the selected provider")
}

// newLLMProvider resolves the LLM configuration from XSCAFFOLD_* variables,
// standard API key variables and flags. It returns nil when no provider is
// configured, which callers treat as "LLM unavailable".
func newLLMProvider(ctx context.Context, v *viper.Viper, events store.EventRepo) llm.Provider {
	cfg, ok := llm.ResolveConfig()
	if p := v.GetString("llm-provider"); p != "" {
		if !ok {
			cfg = llm.ConfigFromEnv()
		}
		cfg.Provider = p
		ok = true
	}
	if !ok {
		slog.Debug("no LLM provider configured")
		return nil
	}

	if m := v.GetString("llm-model"); m != "" {
		switch cfg.Provider {
		case "anthropic":
			cfg.Anthropic.Model = m
		case "openai":
			cfg.OpenAI.Model = m
		case "gemini":
			cfg.Gemini.Model = m
		case "openrouter":
			cfg.OpenRouter.Model = m
		}
	}

	if err := cfg.Validate(); err != nil {
		slog.Warn("LLM provider unavailable", "error", err)
		return nil
	}
	p, err := llm.NewProvider(ctx, cfg, events, slog.Default())
	if err != nil {
		slog.Warn("LLM provider unavailable", "error", err)
		return nil
	}
	return p
}
