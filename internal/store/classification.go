package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/xscaffold/internal/lms"
)

// classificationRepo implements ClassificationRepo with ent's SQL builders.
type classificationRepo struct {
	db      *sql.DB
	dialect string
}

// payloadColumns are written identically to the latest and archive tables.
var payloadColumns = []string{
	"attempt", "request_id", "lms_score", "tier", "confidence", "source", "features", "explanation",
}

var latestColumns = append(append([]string{"id", "learner_id", "unit_id"}, payloadColumns...), "created_at", "updated_at")

var attemptColumns = append(append([]string{"id", "learner_id", "unit_id"}, payloadColumns...), "created_at")

func (r *classificationRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.dialect)
}

func (r *classificationRepo) Save(ctx context.Context, rec ClassificationRecord) error {
	payload, err := encodePayload(rec)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	upsert, upsertArgs := r.builder().Insert(classificationsTable).
		Columns(append(append([]string{"learner_id", "unit_id"}, payloadColumns...), "created_at", "updated_at")...).
		Values(append(append([]any{rec.LearnerID, rec.UnitID}, payload...), rec.CreatedAt, now)...).
		OnConflict(
			entsql.ConflictColumns("learner_id", "unit_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				for _, c := range payloadColumns {
					u.SetExcluded(c)
				}
				u.SetExcluded("updated_at")
			}),
		).
		Query()

	archive, archiveArgs := r.builder().Insert(attemptsTable).
		Columns(attemptColumns...).
		Values(append(append([]any{rec.ID, rec.LearnerID, rec.UnitID}, payload...), rec.CreatedAt)...).
		Query()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	last, err := r.lastAttempt(ctx, tx, rec.LearnerID, rec.UnitID)
	if err != nil {
		tx.Rollback()
		return err
	}
	if last >= rec.Attempt {
		tx.Rollback()
		return attemptConflict(rec, last)
	}
	if _, err := tx.ExecContext(ctx, upsert, upsertArgs...); err != nil {
		tx.Rollback()
		return fmt.Errorf("upsert latest classification: %w", err)
	}
	if _, err := tx.ExecContext(ctx, archive, archiveArgs...); err != nil {
		tx.Rollback()
		// A concurrent Save may have taken the attempt after our check.
		if last, lerr := r.lastAttempt(ctx, r.db, rec.LearnerID, rec.UnitID); lerr == nil && last >= rec.Attempt {
			return attemptConflict(rec, last)
		}
		return fmt.Errorf("append classification attempt: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit classification: %w", err)
	}
	return nil
}

func (r *classificationRepo) Latest(ctx context.Context, learnerID, unitID string) (*ClassificationRecord, error) {
	query, args := r.builder().Select(latestColumns...).
		From(entsql.Table(classificationsTable)).
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			entsql.EQ("unit_id", unitID),
		)).
		Limit(1).
		Query()

	rec, err := scanLatest(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest classification: %w", err)
	}
	return rec, nil
}

func (r *classificationRepo) UpdateLatest(ctx context.Context, rec ClassificationRecord) error {
	payload, err := encodePayload(rec)
	if err != nil {
		return err
	}

	upd := r.builder().Update(classificationsTable)
	for i, c := range payloadColumns {
		upd.Set(c, payload[i])
	}
	query, args := upd.
		Set("updated_at", time.Now().UTC()).
		Where(entsql.And(
			entsql.EQ("learner_id", rec.LearnerID),
			entsql.EQ("unit_id", rec.UnitID),
		)).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update latest classification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update latest classification: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("latest classification %s/%s: %w", rec.LearnerID, rec.UnitID, ErrNotFound)
	}
	return nil
}

func (r *classificationRepo) ListLatest(ctx context.Context, learnerID string, opts QueryOpts) ([]ClassificationRecord, error) {
	var preds []*entsql.Predicate
	if learnerID != "" {
		preds = append(preds, entsql.EQ("learner_id", learnerID))
	}
	preds = append(preds, timeRange("updated_at", opts)...)

	sel := r.builder().Select(latestColumns...).
		From(entsql.Table(classificationsTable)).
		OrderBy(entsql.Desc("updated_at"), entsql.Desc("id"))
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query latest classifications: %w", err)
	}
	defer rows.Close()

	var out []ClassificationRecord
	for rows.Next() {
		rec, err := scanLatest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan latest classification: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *classificationRepo) History(ctx context.Context, learnerID, unitID string, opts QueryOpts) ([]ClassificationRecord, error) {
	preds := append([]*entsql.Predicate{
		entsql.EQ("learner_id", learnerID),
		entsql.EQ("unit_id", unitID),
	}, timeRange("created_at", opts)...)

	sel := r.builder().Select(attemptColumns...).
		From(entsql.Table(attemptsTable)).
		Where(entsql.And(preds...)).
		OrderBy(entsql.Desc("attempt"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query classification history: %w", err)
	}
	defer rows.Close()

	var out []ClassificationRecord
	for rows.Next() {
		rec, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan classification attempt: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *classificationRepo) LastAttempt(ctx context.Context, learnerID, unitID string) (int, error) {
	return r.lastAttempt(ctx, r.db, learnerID, unitID)
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *classificationRepo) lastAttempt(ctx context.Context, q rowQuerier, learnerID, unitID string) (int, error) {
	query, args := r.builder().Select(entsql.Max("attempt")).
		From(entsql.Table(attemptsTable)).
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			entsql.EQ("unit_id", unitID),
		)).
		Query()

	var last sql.NullInt64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&last); err != nil {
		return 0, fmt.Errorf("query last attempt: %w", err)
	}
	return int(last.Int64), nil
}

func attemptConflict(rec ClassificationRecord, last int) error {
	return fmt.Errorf("%s/%s attempt %d (last recorded %d): %w",
		rec.LearnerID, rec.UnitID, rec.Attempt, last, ErrAttemptConflict)
}

// encodePayload returns values in payloadColumns order.
func encodePayload(rec ClassificationRecord) ([]any, error) {
	feat, err := json.Marshal(rec.Features)
	if err != nil {
		return nil, fmt.Errorf("marshal features: %w", err)
	}
	expl, err := json.Marshal(rec.Explanation)
	if err != nil {
		return nil, fmt.Errorf("marshal explanation: %w", err)
	}
	return []any{
		rec.Attempt,
		rec.RequestID,
		rec.LMS,
		string(rec.Tier),
		rec.Confidence,
		string(rec.Source),
		string(feat),
		string(expl),
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLatest(row rowScanner) (*ClassificationRecord, error) {
	var (
		rec        ClassificationRecord
		id         int64
		tier, src  string
		feat, expl []byte
	)
	err := row.Scan(&id, &rec.LearnerID, &rec.UnitID,
		&rec.Attempt, &rec.RequestID, &rec.LMS, &tier, &rec.Confidence, &src, &feat, &expl,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return decodePayload(&rec, tier, src, feat, expl)
}

func scanAttempt(row rowScanner) (*ClassificationRecord, error) {
	var (
		rec        ClassificationRecord
		tier, src  string
		feat, expl []byte
	)
	err := row.Scan(&rec.ID, &rec.LearnerID, &rec.UnitID,
		&rec.Attempt, &rec.RequestID, &rec.LMS, &tier, &rec.Confidence, &src, &feat, &expl,
		&rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	rec.UpdatedAt = rec.CreatedAt
	return decodePayload(&rec, tier, src, feat, expl)
}

func decodePayload(rec *ClassificationRecord, tier, src string, feat, expl []byte) (*ClassificationRecord, error) {
	rec.Tier = lms.Tier(tier)
	rec.Source = Source(src)
	if err := json.Unmarshal(feat, &rec.Features); err != nil {
		return nil, fmt.Errorf("unmarshal features: %w", err)
	}
	if err := json.Unmarshal(expl, &rec.Explanation); err != nil {
		return nil, fmt.Errorf("unmarshal explanation: %w", err)
	}
	return rec, nil
}

func timeRange(col string, opts QueryOpts) []*entsql.Predicate {
	var preds []*entsql.Predicate
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE(col, opts.From))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE(col, opts.To))
	}
	return preds
}
