package scaffold

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/xscaffold/internal/explain"
	"github.com/abhisek/xscaffold/internal/llm"
	"github.com/abhisek/xscaffold/internal/lms"
	"github.com/abhisek/xscaffold/internal/store"
)

// HintInput describes the question and the learner's current standing.
type HintInput struct {
	LearnerID   string
	UnitID      string
	Question    string
	Tier        lms.Tier
	Explanation explain.Explanation
}

// Hint is a generated hint. When generation fails Text is FallbackHint and
// Err holds the cause.
type Hint struct {
	Text      string    `json:"hint"`
	Intensity Intensity `json:"intensity"`
	Fallback  bool      `json:"fallback"`
	Err       error     `json:"-"`
}

// HintService generates scaffolded hints with an LLM.
type HintService struct {
	provider llm.Provider
	events   store.EventRepo
	cfg      Config
	logger   *slog.Logger
}

// NewHintService creates a hint service. provider may be nil, in which case
// every hint is the fallback. events may be nil to skip recording.
func NewHintService(provider llm.Provider, events store.EventRepo, cfg Config, logger *slog.Logger) *HintService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HintService{provider: provider, events: events, cfg: cfg, logger: logger}
}

type hintOutput struct {
	Hint string `json:"hint"`
}

// Generate returns a hint for in. It never fails; see Hint.
func (s *HintService) Generate(ctx context.Context, in HintInput) Hint {
	intensity := SelectIntensity(in.Tier)

	text, err := s.generate(ctx, in, intensity)
	if err != nil {
		s.logger.Warn("hint generation failed", "learner", in.LearnerID, "unit", in.UnitID, "error", err)
		return Hint{Text: FallbackHint, Intensity: intensity, Fallback: true, Err: err}
	}

	if s.events != nil {
		data := store.HintEventData{
			LearnerID:    in.LearnerID,
			UnitID:       in.UnitID,
			Tier:         string(in.Tier),
			Intensity:    int(intensity),
			QuestionText: in.Question,
			HintText:     text,
		}
		if err := s.events.AppendHintEvent(ctx, data); err != nil {
			s.logger.Warn("failed to record hint event", "error", err)
		}
	}
	return Hint{Text: text, Intensity: intensity}
}

func (s *HintService) generate(ctx context.Context, in HintInput, intensity Intensity) (string, error) {
	if s.provider == nil {
		return "", errors.New("no LLM provider configured")
	}
	if strings.TrimSpace(in.Question) == "" {
		return "", errors.New("empty question")
	}

	ctx = llm.WithLearner(llm.WithPurpose(ctx, llm.PurposeHint), in.LearnerID)

	words := s.cfg.WordBudget[intensity]
	if words == 0 {
		words = DefaultConfig().WordBudget[Moderate]
	}

	req := llm.Request{
		System: hintSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildHintUserMessage(in, intensity, words)},
		},
		Schema:      HintSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("hint generation: %w", err)
	}

	var out hintOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("parse hint response: %w", err)
	}
	text := strings.TrimSpace(out.Hint)
	if text == "" {
		return "", errors.New("empty hint in response")
	}
	return text, nil
}
