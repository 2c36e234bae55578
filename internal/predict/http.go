package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/mod/semver"

	"github.com/abhisek/xscaffold/internal/features"
)

const maxResponseBytes = 1 << 20

// HTTPBackend talks to the prediction service over HTTP/JSON.
type HTTPBackend struct {
	cfg    Config
	client *http.Client
}

// NewHTTPBackend creates a backend for cfg.BaseURL. A nil client uses
// http.DefaultClient; per-call deadlines come from cfg.
func NewHTTPBackend(cfg Config, client *http.Client) *HTTPBackend {
	if client == nil {
		client = http.DefaultClient
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &HTTPBackend{cfg: cfg, client: client}
}

// Health probes GET /health. Any 2xx is healthy unless the payload reports
// an unhealthy status, a feature count other than the engine's, or a model
// version older than cfg.MinModelVersion.
func (b *HTTPBackend) Health(ctx context.Context) (*Health, error) {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.HealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.cfg.BaseURL+"/health", nil)
	if err != nil {
		return nil, &ErrModelUnavailable{Err: err}
	}
	raw, status, err := b.do(req)
	if err != nil {
		return nil, err
	}
	if status/100 != 2 {
		return nil, &ErrModelUnavailable{StatusCode: status, Err: fmt.Errorf("health check: %s", errorText(raw))}
	}

	h := parseHealth(raw)
	if h.Status != "" && h.Status != "healthy" && h.Status != "ok" {
		return h, &ErrModelUnavailable{StatusCode: status, Err: fmt.Errorf("service reports status %q", h.Status)}
	}
	if h.FeaturesCount != 0 && h.FeaturesCount != len(features.Names) {
		return h, &ErrModelUnavailable{StatusCode: status,
			Err: fmt.Errorf("model expects %d features, engine sends %d", h.FeaturesCount, len(features.Names))}
	}
	if err := checkVersion(h.Version, b.cfg.MinModelVersion); err != nil {
		return h, &ErrModelUnavailable{StatusCode: status, Err: err}
	}
	return h, nil
}

// Predict POSTs the feature vector to /predict. When cfg.ProbeHealth is set
// the health probe runs first and its failure short-circuits the call.
func (b *HTTPBackend) Predict(ctx context.Context, v features.Vector) (*ModelOutput, error) {
	if b.cfg.ProbeHealth {
		if _, err := b.Health(ctx); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, b.cfg.PredictTimeout)
	defer cancel()

	body, err := json.Marshal(v.Map())
	if err != nil {
		return nil, fmt.Errorf("marshal features: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.BaseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, &ErrModelUnavailable{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	raw, status, err := b.do(req)
	if err != nil {
		return nil, err
	}
	if status/100 != 2 {
		return nil, &ErrModelUnavailable{StatusCode: status, Err: fmt.Errorf("predict: %s", errorText(raw))}
	}
	return decodePrediction(raw)
}

func (b *HTTPBackend) do(req *http.Request) ([]byte, int, error) {
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, 0, &ErrModelUnavailable{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, &ErrModelUnavailable{StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	return raw, resp.StatusCode, nil
}

type predictResponse struct {
	Prediction struct {
		MasteryLevel     int                `json:"mastery_level"`
		MasteryLevelName string             `json:"mastery_level_name"`
		Confidence       float64            `json:"confidence"`
		Probabilities    map[string]float64 `json:"probabilities"`
	} `json:"prediction"`
	Explanation *struct {
		Contributions map[string]struct {
			Value float64 `json:"value"`
		} `json:"contributions"`
		TopPositive     []string `json:"top_positive"`
		TopNegative     []string `json:"top_negative"`
		NaturalLanguage string   `json:"natural_language"`
	} `json:"explanation"`
}

// decodePrediction validates and converts a /predict response body.
func decodePrediction(raw []byte) (*ModelOutput, error) {
	if err := validatePredictResponse(raw); err != nil {
		return nil, &ErrMalformedResponse{Content: raw, Err: err}
	}

	var resp predictResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &ErrMalformedResponse{Content: raw, Err: err}
	}

	out := &ModelOutput{
		Level:         resp.Prediction.MasteryLevel,
		LevelName:     resp.Prediction.MasteryLevelName,
		Confidence:    resp.Prediction.Confidence,
		Probabilities: resp.Prediction.Probabilities,
	}
	if e := resp.Explanation; e != nil {
		if len(e.Contributions) > 0 {
			out.Contributions = make(map[string]float64, len(e.Contributions))
			for k, c := range e.Contributions {
				out.Contributions[k] = c.Value
			}
		}
		out.TopPositive = e.TopPositive
		out.TopNegative = e.TopNegative
		out.NaturalLanguage = e.NaturalLanguage
	}
	return out, nil
}

func parseHealth(raw []byte) *Health {
	r := gjson.ParseBytes(raw)
	h := &Health{
		Status:        strings.ToLower(r.Get("status").String()),
		Model:         r.Get("model").String(),
		Version:       r.Get("version").String(),
		FeaturesCount: int(r.Get("features_count").Int()),
		SHAPAvailable: r.Get("shap_available").Bool(),
	}
	for _, c := range r.Get("classes").Array() {
		h.Classes = append(h.Classes, c.String())
	}
	return h
}

func checkVersion(have, min string) error {
	if min == "" {
		return nil
	}
	if have == "" {
		return fmt.Errorf("model reports no version, need >= %s", min)
	}
	hv, mv := canonicalVersion(have), canonicalVersion(min)
	if !semver.IsValid(hv) {
		return fmt.Errorf("model version %q is not a semantic version", have)
	}
	if semver.Compare(hv, mv) < 0 {
		return fmt.Errorf("model version %s is older than required %s", have, min)
	}
	return nil
}

func canonicalVersion(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// errorText extracts a short message from an error response body.
func errorText(raw []byte) string {
	if msg := gjson.GetBytes(raw, "error"); msg.Exists() {
		return msg.String()
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200]
	}
	if s == "" {
		return "empty response"
	}
	return s
}
