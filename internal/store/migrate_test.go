package store

import (
	"reflect"
	"testing"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/abhisek/xscaffold/ent/schema"
	"github.com/abhisek/xscaffold/internal/lms"
)

func tableByName(t *testing.T, name string) *schema.Table {
	t.Helper()
	tables, err := Tables()
	if err != nil {
		t.Fatalf("tables: %v", err)
	}
	for _, tbl := range tables {
		if tbl.Name == name {
			return tbl
		}
	}
	t.Fatalf("no table %q", name)
	return nil
}

func columnNames(tbl *schema.Table) []string {
	names := make([]string, len(tbl.Columns))
	for i, c := range tbl.Columns {
		names[i] = c.Name
	}
	return names
}

func TestTablesFromSchema(t *testing.T) {
	latest := tableByName(t, classificationsTable)
	if got := columnNames(latest); !reflect.DeepEqual(got, latestColumns) {
		t.Fatalf("classifications columns = %v, want %v", got, latestColumns)
	}
	if id := latest.PrimaryKey[0]; id.Name != "id" || !id.Increment || id.Type != field.TypeInt {
		t.Fatalf("expected auto-increment int id, got %+v", id)
	}
	if ix := latest.Indexes[0]; ix.Name != "classification_learner_id_unit_id" || !ix.Unique || len(ix.Columns) != 2 {
		t.Fatalf("unexpected latest index: %+v", ix)
	}

	attempts := tableByName(t, attemptsTable)
	if got := columnNames(attempts); !reflect.DeepEqual(got, attemptColumns) {
		t.Fatalf("attempt columns = %v, want %v", got, attemptColumns)
	}
	if id := attempts.PrimaryKey[0]; id.Type != field.TypeString || id.Size != 36 || id.Increment {
		t.Fatalf("expected uuid string id, got %+v", id)
	}
	if ix := attempts.Indexes[0]; ix.Name != "classificationattempt_learner_id_unit_id_attempt" || !ix.Unique {
		t.Fatalf("unexpected attempt index: %+v", ix)
	}

	if got := columnNames(tableByName(t, llmRequestEventsTable)); !reflect.DeepEqual(got, llmEventColumns) {
		t.Fatalf("llm event columns = %v, want %v", got, llmEventColumns)
	}
	if got := columnNames(tableByName(t, hintEventsTable)); !reflect.DeepEqual(got, hintEventColumns) {
		t.Fatalf("hint event columns = %v, want %v", got, hintEventColumns)
	}
}

func TestSchemaEnumsMatchDomain(t *testing.T) {
	var tiers []string
	for _, tier := range lms.Tiers {
		tiers = append(tiers, string(tier))
	}
	if !reflect.DeepEqual(entschema.TierValues, tiers) {
		t.Fatalf("schema tiers %v, domain tiers %v", entschema.TierValues, tiers)
	}
	sources := []string{string(SourceModel), string(SourceFallback)}
	if !reflect.DeepEqual(entschema.SourceValues, sources) {
		t.Fatalf("schema sources %v, domain sources %v", entschema.SourceValues, sources)
	}

	for _, c := range tableByName(t, classificationsTable).Columns {
		if c.Name == "tier" && !reflect.DeepEqual(c.Enums, tiers) {
			t.Fatalf("tier column enums = %v", c.Enums)
		}
	}
}
