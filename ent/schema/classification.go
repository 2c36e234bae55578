package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Classification is the latest classification per (learner, unit). Each
// submission overwrites it.
type Classification struct {
	ent.Schema
}

func (Classification) Mixin() []ent.Mixin {
	return []ent.Mixin{ClassificationMixin{}}
}

func (Classification) Fields() []ent.Field {
	return []ent.Field{
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}

func (Classification) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("learner_id", "unit_id").
			Unique(),
	}
}
