package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/xscaffold/internal/llm"
	"github.com/abhisek/xscaffold/internal/store"
)

const (
	NoDataMessage      = "No performance data available for this student yet."
	UnavailableMessage = "AI Insights are currently unavailable."
)

// Config holds insight generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{MaxTokens: 1000, Temperature: 0.7}
}

// Report is an instructor-facing analysis of one learner.
type Report struct {
	Summary  Summary `json:"summary"`
	Markdown string  `json:"markdown"`
	// Generated is false when Markdown is one of the fixed messages.
	Generated bool  `json:"generated"`
	Err       error `json:"-"`
}

// Service builds instructor insights from stored classifications.
type Service struct {
	repo     store.ClassificationRepo
	provider llm.Provider
	cfg      Config
	logger   *slog.Logger
}

// NewService creates an insights service. provider may be nil.
func NewService(repo store.ClassificationRepo, provider llm.Provider, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, provider: provider, cfg: cfg, logger: logger}
}

// Generate aggregates the learner's latest classifications and asks the LLM
// for a strategic analysis. Only a storage failure is returned as an error;
// LLM problems produce UnavailableMessage.
func (s *Service) Generate(ctx context.Context, learnerID string) (*Report, error) {
	recs, err := s.repo.ListLatest(ctx, learnerID, store.QueryOpts{})
	if err != nil {
		return nil, fmt.Errorf("list classifications: %w", err)
	}

	r := &Report{Summary: Aggregate(learnerID, recs)}
	if len(recs) == 0 {
		r.Markdown = NoDataMessage
		return r, nil
	}

	md, err := s.analyze(ctx, r.Summary)
	if err != nil {
		s.logger.Warn("insight generation failed", "learner", learnerID, "error", err)
		r.Markdown = UnavailableMessage
		r.Err = err
		return r, nil
	}
	r.Markdown = md
	r.Generated = true
	return r, nil
}

func (s *Service) analyze(ctx context.Context, sum Summary) (string, error) {
	if s.provider == nil {
		return "", errors.New("no LLM provider configured")
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeInsights)
	req := llm.Request{
		System: insightsSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildInsightsUserMessage(sum)},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	// Without a schema the provider wraps raw text as a JSON string.
	var text string
	if err := json.Unmarshal(resp.Content, &text); err != nil {
		return "", fmt.Errorf("parse insights response: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("empty insights response")
	}
	return text, nil
}
