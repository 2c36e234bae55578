package predict

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/xscaffold/internal/features"
	"github.com/abhisek/xscaffold/internal/store"
)

// Submission is a completed attempt to classify and record.
type Submission struct {
	LearnerID string
	UnitID    string
	Features  features.Vector
}

// Outcome is a recorded submission.
type Outcome struct {
	Result
	Attempt int `json:"attempt"`
	// AttemptsLeft is -1 when attempts are unlimited.
	AttemptsLeft int `json:"attempts_left"`
}

// Submit classifies a submission and persists it as the learner's next
// attempt. Persistence errors are returned; a result is never reported
// without being saved.
func (g *Gateway) Submit(ctx context.Context, sub Submission) (*Outcome, error) {
	if g.repo == nil {
		return nil, errors.New("submit: no classification repository configured")
	}
	if sub.LearnerID == "" || sub.UnitID == "" {
		return nil, errors.New("submit: learner and unit IDs are required")
	}

	last, err := g.nextAttempt(ctx, sub)
	if err != nil {
		return nil, err
	}

	res := g.Predict(ctx, sub.Features)

	// A concurrent submission can take the attempt number between the
	// lookup and the save; re-read it and try again.
	for tries := 1; ; tries++ {
		attempt := last + 1
		err := g.repo.Save(ctx, record(sub.LearnerID, sub.UnitID, attempt, sub.Features, res))
		if err == nil {
			left := -1
			if g.cfg.MaxAttempts > 0 {
				left = g.cfg.MaxAttempts - attempt
			}
			return &Outcome{Result: res, Attempt: attempt, AttemptsLeft: left}, nil
		}
		if !errors.Is(err, store.ErrAttemptConflict) || tries >= maxSaveTries {
			return nil, fmt.Errorf("submit: %w", err)
		}
		g.logger.Warn("attempt taken concurrently, retrying",
			"learner", sub.LearnerID, "unit", sub.UnitID, "attempt", attempt)
		if last, err = g.nextAttempt(ctx, sub); err != nil {
			return nil, err
		}
	}
}

const maxSaveTries = 3

// nextAttempt returns the last recorded attempt, or ErrMaxAttempts when no
// attempts are left.
func (g *Gateway) nextAttempt(ctx context.Context, sub Submission) (int, error) {
	last, err := g.repo.LastAttempt(ctx, sub.LearnerID, sub.UnitID)
	if err != nil {
		return 0, fmt.Errorf("submit: %w", err)
	}
	if g.cfg.MaxAttempts > 0 && last >= g.cfg.MaxAttempts {
		return 0, fmt.Errorf("%s/%s: %d of %d used: %w",
			sub.LearnerID, sub.UnitID, last, g.cfg.MaxAttempts, ErrMaxAttempts)
	}
	return last, nil
}

// RecomputeSummary counts what Recompute did.
type RecomputeSummary struct {
	Total    int
	Model    int
	Fallback int
	Changed  int // tier differs from the stored one
	Failed   int
}

// Recompute re-runs every stored latest classification through Predict and
// overwrites it in place. The attempt archive is left untouched. An empty
// learnerID recomputes every learner.
func (g *Gateway) Recompute(ctx context.Context, learnerID string, opts store.QueryOpts) (RecomputeSummary, error) {
	var sum RecomputeSummary
	if g.repo == nil {
		return sum, errors.New("recompute: no classification repository configured")
	}

	recs, err := g.repo.ListLatest(ctx, learnerID, opts)
	if err != nil {
		return sum, fmt.Errorf("recompute: %w", err)
	}

	for _, old := range recs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Total++

		res := g.Predict(ctx, old.Features)
		if res.Classification.Source == store.SourceModel {
			sum.Model++
		} else {
			sum.Fallback++
		}
		if res.Classification.Tier != old.Tier {
			sum.Changed++
		}

		rec := record(old.LearnerID, old.UnitID, old.Attempt, old.Features, res)
		if err := g.repo.UpdateLatest(ctx, rec); err != nil {
			sum.Failed++
			g.logger.Error("recompute failed", "learner", old.LearnerID, "unit", old.UnitID, "error", err)
		}
	}
	return sum, nil
}

func record(learnerID, unitID string, attempt int, v features.Vector, res Result) store.ClassificationRecord {
	return store.ClassificationRecord{
		LearnerID:   learnerID,
		UnitID:      unitID,
		Attempt:     attempt,
		RequestID:   res.RequestID,
		LMS:         res.Classification.LMS,
		Tier:        res.Classification.Tier,
		Confidence:  res.Classification.Confidence,
		Source:      res.Classification.Source,
		Features:    v,
		Explanation: res.Explanation,
	}
}
