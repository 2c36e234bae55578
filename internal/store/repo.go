package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/xscaffold/internal/explain"
	"github.com/abhisek/xscaffold/internal/features"
	"github.com/abhisek/xscaffold/internal/lms"
)

// ErrNotFound is returned by updates that target a missing record.
var ErrNotFound = errors.New("record not found")

// ErrAttemptConflict is returned by Save when the attempt number is already
// archived for the (learner, unit), typically by a concurrent submission.
var ErrAttemptConflict = errors.New("attempt already recorded")

// QueryOpts configures queries with filtering and pagination.
type QueryOpts struct {
	Limit int       // max results (0 = unlimited)
	From  time.Time // timestamp >= From
	To    time.Time // timestamp <= To
}

// Source records which path produced a classification.
type Source string

const (
	SourceModel    Source = "MODEL"
	SourceFallback Source = "FALLBACK"
)

// ClassificationRecord is one resolved classification for a learner's
// attempt at a unit, with the explanation that accompanied it.
type ClassificationRecord struct {
	// ID is the archive record ID. It is empty on latest records.
	ID          string
	LearnerID   string
	UnitID      string
	Attempt     int
	RequestID   string
	LMS         float64
	Tier        lms.Tier
	Confidence  float64
	Source      Source
	Features    features.Vector
	Explanation explain.Explanation
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ClassificationRepo persists classifications: one latest record per
// (learner, unit) plus an append-only per-attempt archive.
type ClassificationRepo interface {
	// Save upserts the latest record for (learner, unit) and appends the
	// archive record in a single transaction. It returns ErrAttemptConflict
	// if rec.Attempt is not newer than every archived attempt.
	Save(ctx context.Context, rec ClassificationRecord) error

	// Latest returns the latest record for (learner, unit), or nil if none.
	Latest(ctx context.Context, learnerID, unitID string) (*ClassificationRecord, error)

	// UpdateLatest overwrites the latest record without touching the
	// archive. Returns ErrNotFound if there is no latest record.
	UpdateLatest(ctx context.Context, rec ClassificationRecord) error

	// ListLatest returns latest records, most recently updated first. An
	// empty learnerID lists every learner.
	ListLatest(ctx context.Context, learnerID string, opts QueryOpts) ([]ClassificationRecord, error)

	// History returns archived attempts for (learner, unit), newest first.
	History(ctx context.Context, learnerID, unitID string, opts QueryOpts) ([]ClassificationRecord, error)

	// LastAttempt returns the highest archived attempt number, or 0.
	LastAttempt(ctx context.Context, learnerID, unitID string) (int, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMPurposeUsage aggregates token usage for one request purpose.
type LLMPurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates token usage for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// HintEventData captures a generated hint.
type HintEventData struct {
	LearnerID    string
	UnitID       string
	Tier         string
	Intensity    int
	QuestionText string
	HintText     string
}

// HintEvent is a stored hint event.
type HintEvent struct {
	ID        int
	Timestamp time.Time
	HintEventData
}

// EventRepo provides append and query access to events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns a single LLM event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageByPurpose aggregates usage grouped by purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMPurposeUsage, error)

	// LLMUsageByModel aggregates usage grouped by model.
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)

	// AppendHintEvent records a generated hint.
	AppendHintEvent(ctx context.Context, data HintEventData) error

	// QueryHintEvents returns hint events for a learner, newest first. An
	// empty unitID matches every unit.
	QueryHintEvents(ctx context.Context, learnerID, unitID string, opts QueryOpts) ([]HintEvent, error)
}
