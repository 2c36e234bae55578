package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/abhisek/xscaffold/internal/features"
)

type answerInput struct {
	Correct    bool `json:"correct"`
	Difficulty int  `json:"difficulty"`
}

// readFeatures builds a feature vector from a JSON document and key=value
// overrides. The document is either a flat feature map or an attempt of the
// form {"answers": [...], "telemetry": {...}}, which is scored with
// features.Extract. Overrides are applied last.
func readFeatures(path string, stdin io.Reader, overrides []string) (features.Vector, error) {
	values := map[string]float64{}

	if path != "" {
		raw, err := readInput(path, stdin)
		if err != nil {
			return features.Vector{}, err
		}
		if !gjson.ValidBytes(raw) {
			return features.Vector{}, fmt.Errorf("%s: invalid JSON", path)
		}

		doc := gjson.ParseBytes(raw)
		if answers := doc.Get("answers"); answers.Exists() {
			v, err := extractAttempt(answers, doc.Get("telemetry"))
			if err != nil {
				return features.Vector{}, fmt.Errorf("%s: %w", path, err)
			}
			values = v.Map()
		} else if err := json.Unmarshal(raw, &values); err != nil {
			return features.Vector{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	for _, kv := range overrides {
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			return features.Vector{}, fmt.Errorf("invalid feature %q: want name=value", kv)
		}
		key = strings.ReplaceAll(strings.TrimSpace(key), "-", "_")
		x, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return features.Vector{}, fmt.Errorf("invalid value for %s: %w", key, err)
		}
		values[key] = x
	}

	return features.FromMap(values)
}

func extractAttempt(answers, telemetry gjson.Result) (features.Vector, error) {
	var in []answerInput
	if err := json.Unmarshal([]byte(answers.Raw), &in); err != nil {
		return features.Vector{}, fmt.Errorf("answers: %w", err)
	}
	list := make([]features.Answer, len(in))
	for i, a := range in {
		list[i] = features.Answer{Correct: a.Correct, Difficulty: a.Difficulty}
	}

	t := features.Telemetry{}
	var bad error
	telemetry.ForEach(func(k, v gjson.Result) bool {
		if v.Type != gjson.Number {
			bad = fmt.Errorf("telemetry %s: not a number", k.String())
			return false
		}
		t[k.String()] = v.Float()
		return true
	})
	if bad != nil {
		return features.Vector{}, bad
	}
	return features.Extract(list, t), nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read features: %w", err)
	}
	return raw, nil
}
