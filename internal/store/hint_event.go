package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var hintEventColumns = []string{
	"id", "timestamp", "learner_id", "unit_id", "tier", "intensity", "question_text", "hint_text",
}

func (r *eventRepo) AppendHintEvent(ctx context.Context, data HintEventData) error {
	query, args := entsql.Dialect(r.dialect).Insert(hintEventsTable).
		Columns(hintEventColumns[1:]...).
		Values(
			time.Now().UTC(),
			data.LearnerID,
			data.UnitID,
			data.Tier,
			data.Intensity,
			data.QuestionText,
			data.HintText,
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save hint event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryHintEvents(ctx context.Context, learnerID, unitID string, opts QueryOpts) ([]HintEvent, error) {
	preds := []*entsql.Predicate{entsql.EQ("learner_id", learnerID)}
	if unitID != "" {
		preds = append(preds, entsql.EQ("unit_id", unitID))
	}
	preds = append(preds, timeRange("timestamp", opts)...)

	sel := entsql.Dialect(r.dialect).Select(hintEventColumns...).
		From(entsql.Table(hintEventsTable)).
		Where(entsql.And(preds...)).
		OrderBy(entsql.Desc("id"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query hint events: %w", err)
	}
	defer rows.Close()

	var out []HintEvent
	for rows.Next() {
		var e HintEvent
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.LearnerID, &e.UnitID, &e.Tier,
			&e.Intensity, &e.QuestionText, &e.HintText); err != nil {
			return nil, fmt.Errorf("scan hint event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
