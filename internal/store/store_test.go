package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/abhisek/xscaffold/internal/explain"
	"github.com/abhisek/xscaffold/internal/features"
	"github.com/abhisek/xscaffold/internal/lms"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil database handle")
	}
	if s.Dialect() != "sqlite3" {
		t.Fatalf("expected sqlite3 dialect, got %q", s.Dialect())
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func sampleRecord(attempt int, score float64) ClassificationRecord {
	v := features.Vector{
		ScorePercentage:       score,
		HardQuestionAccuracy:  50,
		HintUsagePercentage:   10,
		AvgConfidence:         3,
		AvgTimePerQuestion:    60,
		AvgFirstActionLatency: 3,
		ClicksPerQuestion:     4,
	}
	value := lms.Compute(v)
	return ClassificationRecord{
		LearnerID:   "learner-1",
		UnitID:      "unit-7",
		Attempt:     attempt,
		RequestID:   fmt.Sprintf("req-%d", attempt),
		LMS:         lms.Round(value, 2),
		Tier:        lms.Classify(value),
		Confidence:  0.8,
		Source:      SourceFallback,
		Features:    v,
		Explanation: explain.Synthesize(explain.Heuristic{Features: v}),
	}
}

func TestClassificationSaveAndLatest(t *testing.T) {
	repo := openTestStore(t).ClassificationRepo()
	ctx := context.Background()

	rec, err := repo.Latest(ctx, "learner-1", "unit-7")
	if err != nil {
		t.Fatalf("latest (empty): %v", err)
	}
	if rec != nil {
		t.Fatal("expected nil record when none exist")
	}

	first := sampleRecord(1, 40)
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	second := sampleRecord(2, 90)
	second.Source = SourceModel
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	rec, err = repo.Latest(ctx, "learner-1", "unit-7")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if rec == nil {
		t.Fatal("expected a latest record")
	}
	if rec.Attempt != 2 || rec.Source != SourceModel || rec.LMS != second.LMS {
		t.Fatalf("latest not overwritten: %+v", rec)
	}
	if rec.Features != second.Features {
		t.Fatalf("features round trip: got %+v", rec.Features)
	}
	if rec.Explanation.Narrative != second.Explanation.Narrative {
		t.Fatalf("narrative round trip: got %q", rec.Explanation.Narrative)
	}

	all, err := repo.ListLatest(ctx, "", QueryOpts{})
	if err != nil {
		t.Fatalf("list latest: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one latest record per (learner, unit), got %d", len(all))
	}
}

func TestClassificationHistory(t *testing.T) {
	repo := openTestStore(t).ClassificationRepo()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := repo.Save(ctx, sampleRecord(i, float64(40+10*i))); err != nil {
			t.Fatalf("save attempt %d: %v", i, err)
		}
	}

	hist, err := repo.History(ctx, "learner-1", "unit-7", QueryOpts{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(hist))
	}
	for i, want := range []int{3, 2, 1} {
		if hist[i].Attempt != want {
			t.Fatalf("history[%d].Attempt = %d, want %d", i, hist[i].Attempt, want)
		}
		if hist[i].ID == "" {
			t.Fatalf("history[%d] has no archive ID", i)
		}
	}

	limited, err := repo.History(ctx, "learner-1", "unit-7", QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("limited history: %v", err)
	}
	if len(limited) != 1 || limited[0].Attempt != 3 {
		t.Fatalf("expected newest attempt only, got %+v", limited)
	}

	last, err := repo.LastAttempt(ctx, "learner-1", "unit-7")
	if err != nil {
		t.Fatalf("last attempt: %v", err)
	}
	if last != 3 {
		t.Fatalf("expected last attempt 3, got %d", last)
	}

	none, err := repo.LastAttempt(ctx, "learner-2", "unit-7")
	if err != nil {
		t.Fatalf("last attempt (empty): %v", err)
	}
	if none != 0 {
		t.Fatalf("expected 0 for unknown learner, got %d", none)
	}
}

func TestClassificationDuplicateAttemptRollsBack(t *testing.T) {
	repo := openTestStore(t).ClassificationRepo()
	ctx := context.Background()

	if err := repo.Save(ctx, sampleRecord(1, 40)); err != nil {
		t.Fatalf("save: %v", err)
	}
	dup := sampleRecord(1, 95)
	if err := repo.Save(ctx, dup); !errors.Is(err, ErrAttemptConflict) {
		t.Fatalf("expected ErrAttemptConflict, got %v", err)
	}
	if err := repo.Save(ctx, sampleRecord(0, 95)); !errors.Is(err, ErrAttemptConflict) {
		t.Fatalf("expected ErrAttemptConflict for an older attempt, got %v", err)
	}

	rec, err := repo.Latest(ctx, "learner-1", "unit-7")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if rec.Features.ScorePercentage != 40 {
		t.Fatalf("latest record changed by a failed save: score %v", rec.Features.ScorePercentage)
	}
}

func TestClassificationUpdateLatest(t *testing.T) {
	repo := openTestStore(t).ClassificationRepo()
	ctx := context.Background()

	err := repo.UpdateLatest(ctx, sampleRecord(1, 40))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.Save(ctx, sampleRecord(1, 40)); err != nil {
		t.Fatalf("save: %v", err)
	}
	upd := sampleRecord(1, 40)
	upd.Source = SourceModel
	upd.LMS = 50
	if err := repo.UpdateLatest(ctx, upd); err != nil {
		t.Fatalf("update latest: %v", err)
	}

	rec, _ := repo.Latest(ctx, "learner-1", "unit-7")
	if rec.Source != SourceModel || rec.LMS != 50 {
		t.Fatalf("update not applied: %+v", rec)
	}
	hist, _ := repo.History(ctx, "learner-1", "unit-7", QueryOpts{})
	if len(hist) != 1 || hist[0].Source != SourceFallback {
		t.Fatalf("archive must not change on update: %+v", hist)
	}
}

func TestLLMEvents(t *testing.T) {
	repo := openTestStore(t).EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "mock", Model: "m1", Purpose: "hint", InputTokens: 10, OutputTokens: 5, LatencyMs: 100, Success: true, RequestBody: "[user]\nq"},
		{Provider: "mock", Model: "m1", Purpose: "hint", InputTokens: 20, OutputTokens: 15, LatencyMs: 300, Success: true},
		{Provider: "mock", Model: "m2", Purpose: "insights", LatencyMs: 50, ErrorMessage: "boom"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 || got[0].Purpose != "insights" {
		t.Fatalf("expected newest two events, got %+v", got)
	}

	e, err := repo.GetLLMEvent(ctx, got[1].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil || e.InputTokens != 20 {
		t.Fatalf("unexpected event: %+v", e)
	}
	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing event, got %+v, %v", missing, err)
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 || byPurpose[0].Purpose != "hint" {
		t.Fatalf("unexpected purpose usage: %+v", byPurpose)
	}
	if byPurpose[0].Calls != 2 || byPurpose[0].InputTokens != 30 || byPurpose[0].AvgLatencyMs != 200 {
		t.Fatalf("unexpected hint usage: %+v", byPurpose[0])
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 1 || byModel[0].Model != "m1" || byModel[0].OutputTokens != 20 {
		t.Fatalf("failed calls should be excluded from model usage: %+v", byModel)
	}
}

func TestHintEvents(t *testing.T) {
	repo := openTestStore(t).EventRepo()
	ctx := context.Background()

	for _, unit := range []string{"u1", "u2"} {
		err := repo.AppendHintEvent(ctx, HintEventData{
			LearnerID:    "l1",
			UnitID:       unit,
			Tier:         "developing",
			Intensity:    2,
			QuestionText: "What is 2+2?",
			HintText:     "Count on your fingers.",
		})
		if err != nil {
			t.Fatalf("append hint: %v", err)
		}
	}

	all, err := repo.QueryHintEvents(ctx, "l1", "", QueryOpts{})
	if err != nil {
		t.Fatalf("query hints: %v", err)
	}
	if len(all) != 2 || all[0].UnitID != "u2" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	one, err := repo.QueryHintEvents(ctx, "l1", "u1", QueryOpts{})
	if err != nil {
		t.Fatalf("query hints by unit: %v", err)
	}
	if len(one) != 1 || one[0].Intensity != 2 {
		t.Fatalf("unexpected hints: %+v", one)
	}
}

func TestEnsureDirSkipsNonPaths(t *testing.T) {
	for _, dsn := range []string{"postgres://u@h/db", "file::memory:?cache=shared"} {
		if err := EnsureDir(dsn); err != nil {
			t.Errorf("EnsureDir(%q): %v", dsn, err)
		}
	}
}
