package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/mixin"
)

// Tier and source values as stored. They mirror lms.Tier and store.Source.
var (
	TierValues   = []string{"at_risk", "developing", "proficient", "advanced"}
	SourceValues = []string{"MODEL", "FALLBACK"}
)

// ClassificationMixin holds the fields written identically to the latest
// classification and to every archived attempt.
type ClassificationMixin struct {
	mixin.Schema
}

func (ClassificationMixin) Fields() []ent.Field {
	return []ent.Field{
		field.String("learner_id").NotEmpty(),
		field.String("unit_id").NotEmpty(),
		field.Int("attempt").
			Positive().
			Comment("1-based attempt number per (learner, unit)"),
		field.String("request_id").
			Comment("Gateway request that produced the classification"),
		field.Float("lms_score").
			Range(0, 100),
		field.Enum("tier").
			Values(TierValues...),
		field.Float("confidence").
			Range(0, 1),
		field.Enum("source").
			Values(SourceValues...).
			Comment("Which path produced the classification"),
		field.JSON("features", map[string]float64{}).
			Comment("The eleven behavioral features as submitted"),
		field.JSON("explanation", map[string]any{}).
			Comment("Synthesized explanation: factors, narrative, contributions"),
	}
}
