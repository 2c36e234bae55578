package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// HintEvent records that a scaffolded hint was shown to the learner.
type HintEvent struct {
	ent.Schema
}

func (HintEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (HintEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("learner_id"),
		field.String("unit_id"),
		field.String("tier"),
		field.Int("intensity").
			Comment("Scaffolding intensity, 1 (light) to 3 (intensive)"),
		field.Text("question_text"),
		field.Text("hint_text"),
	}
}

func (HintEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("learner_id", "unit_id"),
	}
}
