package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ClassificationAttempt is the append-only archive of every submission.
type ClassificationAttempt struct {
	ent.Schema
}

func (ClassificationAttempt) Mixin() []ent.Mixin {
	return []ent.Mixin{ClassificationMixin{}}
}

func (ClassificationAttempt) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			MaxLen(36).
			Immutable().
			Comment("UUID of the archived attempt"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

func (ClassificationAttempt) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("learner_id", "unit_id", "attempt").
			Unique(),
	}
}
