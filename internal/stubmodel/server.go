// Package stubmodel serves a stand-in for the external prediction service.
// It classifies with the LMS formula and reports heuristic SHAP-style
// contributions, speaking the same /health and /predict protocol.
package stubmodel

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abhisek/xscaffold/internal/explain"
	"github.com/abhisek/xscaffold/internal/features"
	"github.com/abhisek/xscaffold/internal/lms"
)

// Options configures the stub service.
type Options struct {
	Model   string
	Version string
	// SHAP includes per-feature contributions in /predict responses.
	SHAP bool
	// Latency delays every /predict response.
	Latency time.Duration
}

// DefaultOptions returns the options used by the stub-model command.
func DefaultOptions() Options {
	return Options{
		Model:   "xscaffold_stub_model",
		Version: "1.0.0",
		SHAP:    true,
	}
}

// Server handles the stub service's routes.
type Server struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Server. A nil logger uses slog.Default().
func New(opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{opts: opts, logger: logger}
}

// Router returns the HTTP handler for the service.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)

	r.Get("/health", s.Health)
	r.Post("/predict", s.Predict)
	return r
}

// Health reports the service as healthy.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	classes := make([]string, len(lms.Tiers))
	for i, t := range lms.Tiers {
		classes[i] = string(t)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"model":          s.opts.Model,
		"version":        s.opts.Version,
		"features_count": len(features.Names),
		"classes":        classes,
		"shap_available": s.opts.SHAP,
	})
}

// Predict classifies the posted feature map.
func (s *Server) Predict(w http.ResponseWriter, r *http.Request) {
	var m map[string]float64
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("invalid feature values: %w", err))
		return
	}
	v, err := features.FromMap(m)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if s.opts.Latency > 0 {
		select {
		case <-time.After(s.opts.Latency):
		case <-r.Context().Done():
			return
		}
	}

	tier := lms.Classify(lms.Compute(v))
	confidence := lms.EstimateConfidence(v)

	resp := map[string]any{
		"prediction": map[string]any{
			"mastery_level":      tier.Level(),
			"mastery_level_name": string(tier),
			"confidence":         confidence,
			"probabilities":      probabilities(tier, confidence),
		},
	}
	// Without SHAP the reply carries no explanation, leaving it to the caller.
	if s.opts.SHAP {
		resp["explanation"] = shapExplanation(explain.HeuristicContributions(v))
	}

	s.logger.Debug("stub prediction",
		"request_id", middleware.GetReqID(r.Context()),
		"tier", tier,
		"confidence", confidence)
	writeJSON(w, http.StatusOK, resp)
}

// probabilities gives the predicted tier its confidence and spreads the
// rest evenly over the other tiers.
func probabilities(predicted lms.Tier, confidence float64) map[string]float64 {
	rest := (1 - confidence) / float64(len(lms.Tiers)-1)
	out := make(map[string]float64, len(lms.Tiers))
	for _, t := range lms.Tiers {
		p := rest
		if t == predicted {
			p = confidence
		}
		out[string(t)] = lms.Round(p, 4)
	}
	return out
}

type contribution struct {
	Value     float64 `json:"value"`
	Direction string  `json:"direction"`
	Magnitude float64 `json:"magnitude"`
}

func shapExplanation(values map[string]float64) map[string]any {
	contribs := make(map[string]contribution, len(values))
	names := make([]string, 0, len(values))
	for name, v := range values {
		dir := "negative"
		if v > 0 {
			dir = "positive"
		}
		contribs[name] = contribution{Value: v, Direction: dir, Magnitude: math.Abs(v)}
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		mi, mj := contribs[names[i]].Magnitude, contribs[names[j]].Magnitude
		if mi != mj {
			return mi > mj
		}
		return names[i] < names[j]
	})

	pos, neg := []string{}, []string{}
	for _, n := range names {
		switch {
		case contribs[n].Value > 0 && len(pos) < 3:
			pos = append(pos, n)
		case contribs[n].Value < 0 && len(neg) < 3:
			neg = append(neg, n)
		}
	}

	var parts []string
	if len(pos) > 0 {
		parts = append(parts, "Positive factors: "+formatFactors(pos, contribs))
	}
	if len(neg) > 0 {
		parts = append(parts, "Areas for improvement: "+formatFactors(neg, contribs))
	}

	return map[string]any{
		"contributions":    contribs,
		"top_positive":     pos,
		"top_negative":     neg,
		"natural_language": strings.Join(parts, ". ") + ".",
	}
}

func formatFactors(names []string, contribs map[string]contribution) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = fmt.Sprintf("%s (%+.3f)", n, contribs[n].Value)
	}
	return strings.Join(out, ", ")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
