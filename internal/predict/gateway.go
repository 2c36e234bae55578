package predict

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/abhisek/xscaffold/internal/explain"
	"github.com/abhisek/xscaffold/internal/features"
	"github.com/abhisek/xscaffold/internal/lms"
	"github.com/abhisek/xscaffold/internal/store"
)

// State is a step of a single prediction.
type State int

const (
	StateNotStarted State = iota
	StateCallingModel
	StateModelSuccess
	StateModelUnavailable
	StateResolved
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NOT_STARTED"
	case StateCallingModel:
		return "CALLING_MODEL"
	case StateModelSuccess:
		return "MODEL_SUCCESS"
	case StateModelUnavailable:
		return "MODEL_UNAVAILABLE"
	case StateResolved:
		return "RESOLVED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Classification is the resolved score and tier for one feature vector.
type Classification struct {
	LMS        float64      `json:"lms_score"`
	Tier       lms.Tier     `json:"tier"`
	Confidence float64      `json:"confidence"`
	Source     store.Source `json:"source"`
}

// Result is the outcome of Gateway.Predict.
type Result struct {
	RequestID      string              `json:"request_id"`
	Classification Classification      `json:"classification"`
	Explanation    explain.Explanation `json:"explanation"`

	// Model is the raw model output on the model path.
	Model *ModelOutput `json:"model,omitempty"`
	// ModelErr is why the model path was abandoned, nil on the model path.
	ModelErr error `json:"-"`
	// States lists the states visited, in order.
	States []State `json:"-"`
}

// Gateway resolves feature vectors into classifications, preferring the
// external model and falling back to the LMS formula.
type Gateway struct {
	backend Backend
	repo    store.ClassificationRepo
	cfg     Config
	logger  *slog.Logger
}

// NewGateway creates a Gateway. A nil backend always takes the fallback
// path. repo is only needed by Submit and Recompute. A nil logger uses
// slog.Default().
func NewGateway(backend Backend, repo store.ClassificationRepo, cfg Config, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{backend: backend, repo: repo, cfg: cfg, logger: logger}
}

// Predict classifies v. It never fails: any model error, timeout or bad
// payload resolves through the deterministic fallback with Source FALLBACK.
func (g *Gateway) Predict(ctx context.Context, v features.Vector) Result {
	res := Result{
		RequestID: uuid.NewString(),
		States:    []State{StateNotStarted},
	}
	log := g.logger.With("request_id", res.RequestID)

	if g.backend == nil {
		res.ModelErr = &ErrModelUnavailable{Err: errors.New("no prediction backend configured")}
	} else {
		res.States = append(res.States, StateCallingModel)
		out, err := g.callModel(ctx, v)
		if err == nil {
			var cls Classification
			cls, err = classifyModel(out)
			if err == nil {
				res.States = append(res.States, StateModelSuccess, StateResolved)
				res.Classification = cls
				res.Model = out
				res.Explanation = explainModel(out, v)
				log.Info("model prediction",
					"level", out.Level,
					"confidence", out.Confidence,
					"lms", cls.LMS,
					"tier", cls.Tier,
					"explanation", res.Explanation.Mode)
				return res
			}
		}
		res.ModelErr = err
		log.Warn("model prediction failed, using fallback", "error", err)
	}

	res.States = append(res.States, StateModelUnavailable, StateResolved)
	res.Classification, res.Explanation = Fallback(v)
	log.Info("fallback prediction",
		"lms", res.Classification.LMS,
		"tier", res.Classification.Tier,
		"confidence", res.Classification.Confidence)
	return res
}

// callModel runs the backend under cfg.PredictTimeout and turns a panic into
// an error. A backend that ignores its context is abandoned when the deadline
// passes; its goroutine finishes into a buffered channel.
func (g *Gateway) callModel(ctx context.Context, v features.Vector) (*ModelOutput, error) {
	if g.cfg.PredictTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.PredictTimeout)
		defer cancel()
	}

	type reply struct {
		out *ModelOutput
		err error
	}
	done := make(chan reply, 1)
	go func() {
		var r reply
		defer func() {
			if p := recover(); p != nil {
				r = reply{err: fmt.Errorf("prediction backend panicked: %v", p)}
			}
			done <- r
		}()
		r.out, r.err = g.backend.Predict(ctx, v)
	}()

	select {
	case r := <-done:
		if r.err == nil && r.out == nil {
			r.err = &ErrMalformedResponse{Err: errors.New("empty model output")}
		}
		return r.out, r.err
	case <-ctx.Done():
		return nil, &ErrModelUnavailable{Err: fmt.Errorf("prediction timed out: %w", ctx.Err())}
	}
}

func classifyModel(out *ModelOutput) (Classification, error) {
	tier, ok := lms.TierFromLevel(out.Level)
	if !ok {
		return Classification{}, &ErrMalformedResponse{Err: fmt.Errorf("mastery level %d out of range", out.Level)}
	}
	return Classification{
		LMS:        lms.ProjectLevel(tier, out.Confidence),
		Tier:       tier,
		Confidence: out.Confidence,
		Source:     store.SourceModel,
	}, nil
}

func explainModel(out *ModelOutput, v features.Vector) explain.Explanation {
	if ev := out.Evidence(); ev != nil {
		return explain.Synthesize(ev)
	}
	return explain.Synthesize(explain.Heuristic{Features: v})
}

// Fallback is the model-free classification of v: the LMS formula rounded to
// two decimals, its tier, an estimated confidence and the rule-based
// explanation.
func Fallback(v features.Vector) (Classification, explain.Explanation) {
	score := lms.Round(lms.Compute(v), 2)
	return Classification{
			LMS:        score,
			Tier:       lms.Classify(score),
			Confidence: lms.EstimateConfidence(v),
			Source:     store.SourceFallback,
		},
		explain.Synthesize(explain.Heuristic{Features: v})
}
