package scaffold

import "github.com/abhisek/xscaffold/internal/llm"

// HintSchema defines the JSON schema for hint generation.
var HintSchema = &llm.Schema{
	Name:        "scaffolded-hint",
	Description: "A supportive hint for an exam question that does not reveal the answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"hint": map[string]any{
				"type":        "string",
				"description": "The hint as plain text, no markdown or special characters",
			},
		},
		"required":             []any{"hint"},
		"additionalProperties": false,
	},
}
