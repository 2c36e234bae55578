package store

import (
	"fmt"
	"reflect"
	"strings"

	"entgo.io/ent"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/abhisek/xscaffold/ent/schema"
)

const (
	classificationsTable  = "classifications"
	attemptsTable         = "classification_attempts"
	llmRequestEventsTable = "llm_request_events"
	hintEventsTable       = "hint_events"
)

// entities maps each table to the ent schema that declares it.
var entities = []struct {
	table  string
	schema ent.Interface
}{
	{classificationsTable, entschema.Classification{}},
	{attemptsTable, entschema.ClassificationAttempt{}},
	{llmRequestEventsTable, entschema.LLMRequestEvent{}},
	{hintEventsTable, entschema.HintEvent{}},
}

// Tables builds the migration tables from the ent schema definitions.
func Tables() ([]*schema.Table, error) {
	tables := make([]*schema.Table, 0, len(entities))
	for _, e := range entities {
		t, err := tableOf(e.table, e.schema)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// tableOf converts an ent schema into a migration table: mixin fields first,
// then the schema's own, behind an auto-increment "id" unless the schema
// declares one. Index names follow ent's <type>_<fields> convention.
func tableOf(name string, s ent.Interface) (*schema.Table, error) {
	var (
		fields  []ent.Field
		indexes []ent.Index
	)
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, s.Fields()...)
	indexes = append(indexes, s.Indexes()...)

	t := &schema.Table{Name: name}
	byName := make(map[string]*schema.Column, len(fields))
	var id *schema.Column
	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("table %s: field %s: %w", name, d.Name, d.Err)
		}
		col := &schema.Column{
			Name:     d.Name,
			Type:     d.Info.Type,
			Size:     int64(d.Size),
			Unique:   d.Unique,
			Nullable: d.Optional,
			Comment:  d.Comment,
		}
		if d.StorageKey != "" {
			col.Name = d.StorageKey
		}
		for _, e := range d.Enums {
			col.Enums = append(col.Enums, e.V)
		}
		if col.Name == "id" {
			id = col
			continue
		}
		t.Columns = append(t.Columns, col)
		byName[col.Name] = col
	}
	if id == nil {
		id = &schema.Column{Name: "id", Type: field.TypeInt, Increment: true}
	}
	t.Columns = append([]*schema.Column{id}, t.Columns...)
	t.PrimaryKey = []*schema.Column{id}

	prefix := strings.ToLower(reflect.TypeOf(s).Name())
	for _, ix := range indexes {
		d := ix.Descriptor()
		idx := &schema.Index{Name: d.StorageKey, Unique: d.Unique}
		if idx.Name == "" {
			idx.Name = prefix + "_" + strings.Join(d.Fields, "_")
		}
		for _, fn := range d.Fields {
			col, ok := byName[fn]
			if !ok {
				return nil, fmt.Errorf("table %s: index %s: unknown field %q", name, idx.Name, fn)
			}
			idx.Columns = append(idx.Columns, col)
		}
		t.Indexes = append(t.Indexes, idx)
	}
	return t, nil
}
