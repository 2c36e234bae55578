package predict

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/abhisek/xscaffold/internal/explain"
	"github.com/abhisek/xscaffold/internal/features"
	"github.com/abhisek/xscaffold/internal/lms"
	"github.com/abhisek/xscaffold/internal/store"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type backendFunc func(ctx context.Context, v features.Vector) (*ModelOutput, error)

func (f backendFunc) Predict(ctx context.Context, v features.Vector) (*ModelOutput, error) {
	return f(ctx, v)
}

func failingBackend() Backend {
	return backendFunc(func(context.Context, features.Vector) (*ModelOutput, error) {
		return nil, &ErrModelUnavailable{Err: errors.New("connection refused")}
	})
}

func fixedBackend(out *ModelOutput) Backend {
	return backendFunc(func(context.Context, features.Vector) (*ModelOutput, error) {
		return out, nil
	})
}

func scenarioOne() features.Vector {
	return features.Vector{
		ScorePercentage:       72.5,
		HardQuestionAccuracy:  65,
		HintUsagePercentage:   20,
		AvgConfidence:         3.8,
		AnswerChangesRate:     0.3,
		TabSwitchesRate:       0.8,
		AvgTimePerQuestion:    85,
		ReviewPercentage:      40,
		AvgFirstActionLatency: 4.5,
		ClicksPerQuestion:     4.2,
		PerformanceTrend:      8,
	}
}

func TestPredict_FallbackWhenModelUnavailable(t *testing.T) {
	g := NewGateway(failingBackend(), nil, DefaultConfig(), discard)
	res := g.Predict(context.Background(), scenarioOne())

	cls := res.Classification
	if cls.Source != store.SourceFallback {
		t.Fatalf("expected FALLBACK, got %s", cls.Source)
	}
	if cls.LMS != 67.31 {
		t.Fatalf("expected LMS 67.31, got %v", cls.LMS)
	}
	if cls.Tier != lms.TierProficient {
		t.Fatalf("expected proficient, got %s", cls.Tier)
	}
	if cls.Confidence < lms.MinFallbackConfidence || cls.Confidence > lms.MaxFallbackConfidence {
		t.Fatalf("fallback confidence %v out of range", cls.Confidence)
	}
	if res.Explanation.Mode != explain.ModeHeuristic {
		t.Fatalf("expected heuristic explanation, got %s", res.Explanation.Mode)
	}

	var unavailable *ErrModelUnavailable
	if !errors.As(res.ModelErr, &unavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", res.ModelErr)
	}
	want := []State{StateNotStarted, StateCallingModel, StateModelUnavailable, StateResolved}
	if !reflect.DeepEqual(res.States, want) {
		t.Fatalf("states = %v, want %v", res.States, want)
	}
}

func TestPredict_FallbackIsDeterministic(t *testing.T) {
	g := NewGateway(failingBackend(), nil, DefaultConfig(), discard)
	a := g.Predict(context.Background(), scenarioOne())
	b := g.Predict(context.Background(), scenarioOne())

	if a.Classification != b.Classification {
		t.Fatalf("classification differs: %+v vs %+v", a.Classification, b.Classification)
	}
	if !reflect.DeepEqual(a.Explanation, b.Explanation) {
		t.Fatalf("explanation differs:\n%+v\n%+v", a.Explanation, b.Explanation)
	}
	if a.RequestID == b.RequestID {
		t.Fatal("request IDs should be unique per prediction")
	}
}

func TestPredict_AtRiskScenario(t *testing.T) {
	g := NewGateway(nil, nil, DefaultConfig(), discard)
	res := g.Predict(context.Background(), features.Vector{
		ScorePercentage:      30,
		HardQuestionAccuracy: 50,
		HintUsagePercentage:  80,
		AvgConfidence:        1.5,
		AnswerChangesRate:    0.5,
		TabSwitchesRate:      1,
	})
	if res.Classification.Tier != lms.TierAtRisk {
		t.Fatalf("expected at_risk, got %s (%v)", res.Classification.Tier, res.Classification.LMS)
	}
	want := []State{StateNotStarted, StateModelUnavailable, StateResolved}
	if !reflect.DeepEqual(res.States, want) {
		t.Fatalf("states = %v, want %v", res.States, want)
	}
}

func TestPredict_ModelProjection(t *testing.T) {
	g := NewGateway(fixedBackend(&ModelOutput{Level: 3, Confidence: 0.9}), nil, DefaultConfig(), discard)
	res := g.Predict(context.Background(), scenarioOne())

	cls := res.Classification
	if cls.Source != store.SourceModel {
		t.Fatalf("expected MODEL, got %s (err %v)", cls.Source, res.ModelErr)
	}
	if cls.Tier != lms.TierAdvanced || cls.LMS != 92.8 || cls.Confidence != 0.9 {
		t.Fatalf("unexpected classification: %+v", cls)
	}
	// No explanation from the model: rules explain the features instead.
	if res.Explanation.Mode != explain.ModeHeuristic {
		t.Fatalf("expected heuristic explanation, got %s", res.Explanation.Mode)
	}
	want := []State{StateNotStarted, StateCallingModel, StateModelSuccess, StateResolved}
	if !reflect.DeepEqual(res.States, want) {
		t.Fatalf("states = %v, want %v", res.States, want)
	}
}

func TestPredict_ModelExplanationModes(t *testing.T) {
	tests := []struct {
		name string
		out  *ModelOutput
		want explain.Mode
	}{
		{
			name: "contributions",
			out: &ModelOutput{Level: 2, Confidence: 0.7, Contributions: map[string]float64{
				features.ScorePercentage: 0.3, features.TabSwitchesRate: -0.1,
			}},
			want: explain.ModeContributions,
		},
		{
			name: "summary",
			out: &ModelOutput{Level: 1, Confidence: 0.6,
				TopPositive: []string{features.ReviewPercentage}, NaturalLanguage: "Careful reviewer."},
			want: explain.ModeSummary,
		},
		{
			name: "narrative only",
			out:  &ModelOutput{Level: 1, Confidence: 0.6, NaturalLanguage: "Learner relies heavily on hints."},
			want: explain.ModeSummary,
		},
		{
			name: "blank narrative",
			out:  &ModelOutput{Level: 1, Confidence: 0.6, NaturalLanguage: "  "},
			want: explain.ModeHeuristic,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGateway(fixedBackend(tt.out), nil, DefaultConfig(), discard)
			res := g.Predict(context.Background(), scenarioOne())
			if res.Classification.Source != store.SourceModel {
				t.Fatalf("expected MODEL source, got %s", res.Classification.Source)
			}
			if res.Explanation.Mode != tt.want {
				t.Fatalf("mode = %s, want %s", res.Explanation.Mode, tt.want)
			}
		})
	}
}

func TestPredict_TimeoutAbandonsStuckBackend(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	stuck := backendFunc(func(context.Context, features.Vector) (*ModelOutput, error) {
		<-release // ignores ctx
		return &ModelOutput{Level: 3, Confidence: 0.9}, nil
	})

	cfg := DefaultConfig()
	cfg.PredictTimeout = 50 * time.Millisecond
	g := NewGateway(stuck, nil, cfg, discard)

	start := time.Now()
	res := g.Predict(context.Background(), scenarioOne())
	elapsed := time.Since(start)

	if elapsed > time.Second {
		t.Fatalf("predict took %v, want about %v", elapsed, cfg.PredictTimeout)
	}
	if res.Classification.Source != store.SourceFallback {
		t.Fatalf("expected FALLBACK, got %s", res.Classification.Source)
	}
	var unavailable *ErrModelUnavailable
	if !errors.As(res.ModelErr, &unavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", res.ModelErr)
	}
	if !errors.Is(res.ModelErr, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", res.ModelErr)
	}
	want := []State{StateNotStarted, StateCallingModel, StateModelUnavailable, StateResolved}
	if !reflect.DeepEqual(res.States, want) {
		t.Fatalf("states = %v, want %v", res.States, want)
	}
}

func TestPredict_TimeoutReachesBackend(t *testing.T) {
	var deadline time.Time
	backend := backendFunc(func(ctx context.Context, _ features.Vector) (*ModelOutput, error) {
		deadline, _ = ctx.Deadline()
		return &ModelOutput{Level: 2, Confidence: 0.5}, nil
	})
	g := NewGateway(backend, nil, DefaultConfig(), discard)

	start := time.Now()
	res := g.Predict(context.Background(), scenarioOne())
	if res.Classification.Source != store.SourceModel {
		t.Fatalf("expected MODEL, got %s", res.Classification.Source)
	}
	if deadline.IsZero() || deadline.Sub(start) > DefaultConfig().PredictTimeout+time.Second {
		t.Fatalf("backend deadline %v not bounded by the predict timeout", deadline)
	}
}

func TestPredict_KeepsModelNarrative(t *testing.T) {
	out := &ModelOutput{Level: 1, Confidence: 0.6, NaturalLanguage: "Learner relies heavily on hints."}
	g := NewGateway(fixedBackend(out), nil, DefaultConfig(), discard)

	res := g.Predict(context.Background(), scenarioOne())
	if res.Explanation.Narrative != out.NaturalLanguage {
		t.Fatalf("narrative = %q, want the model's %q", res.Explanation.Narrative, out.NaturalLanguage)
	}
	if len(res.Explanation.Positive) != 0 || len(res.Explanation.Negative) != 0 {
		t.Fatalf("expected no factors from a narrative-only reply, got %+v", res.Explanation)
	}
}

func TestPredict_NeverFails(t *testing.T) {
	tests := map[string]Backend{
		"level out of range": fixedBackend(&ModelOutput{Level: 7, Confidence: 0.9}),
		"nil output":         fixedBackend(nil),
		"panic": backendFunc(func(context.Context, features.Vector) (*ModelOutput, error) {
			panic("boom")
		}),
		"cancelled context": backendFunc(func(ctx context.Context, _ features.Vector) (*ModelOutput, error) {
			<-ctx.Done()
			return nil, &ErrModelUnavailable{Err: ctx.Err()}
		}),
	}
	for name, backend := range tests {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			g := NewGateway(backend, nil, DefaultConfig(), discard)
			res := g.Predict(ctx, scenarioOne())
			if res.Classification.Source != store.SourceFallback {
				t.Fatalf("expected FALLBACK, got %s", res.Classification.Source)
			}
			if res.ModelErr == nil {
				t.Fatal("expected the model error to be recorded")
			}
		})
	}
}

func TestStateString(t *testing.T) {
	if StateModelUnavailable.String() != "MODEL_UNAVAILABLE" {
		t.Fatalf("got %q", StateModelUnavailable.String())
	}
	if State(42).String() != "State(42)" {
		t.Fatalf("got %q", State(42).String())
	}
}
