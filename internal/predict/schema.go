package predict

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const predictResponseSchemaURL = "schema://predict-response.json"

// predictResponseSchema is the accepted shape of a /predict response.
const predictResponseSchema = `{
  "type": "object",
  "required": ["prediction"],
  "properties": {
    "prediction": {
      "type": "object",
      "required": ["mastery_level", "confidence"],
      "properties": {
        "mastery_level": {"type": "integer", "minimum": 0, "maximum": 3},
        "mastery_level_name": {"type": "string"},
        "confidence": {"type": "number", "minimum": 0, "maximum": 1},
        "probabilities": {
          "type": "object",
          "additionalProperties": {"type": "number"}
        }
      }
    },
    "explanation": {
      "type": "object",
      "properties": {
        "contributions": {
          "type": "object",
          "additionalProperties": {
            "type": "object",
            "required": ["value"],
            "properties": {"value": {"type": "number"}}
          }
        },
        "top_positive": {"type": "array", "items": {"type": "string"}},
        "top_negative": {"type": "array", "items": {"type": "string"}},
        "natural_language": {"type": "string"}
      }
    }
  }
}`

var compiledPredictSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(predictResponseSchema))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(predictResponseSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile(predictResponseSchemaURL)
})

// validatePredictResponse checks raw against the /predict response schema.
func validatePredictResponse(raw []byte) error {
	schema, err := compiledPredictSchema()
	if err != nil {
		return fmt.Errorf("compile response schema: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(string(raw)))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
