package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"cv-backend/internal/llm"
)

// validateOutput checks raw backend output against schema and returns the
// decoded fields. String fields are trimmed; list fields lose blank items.
func validateOutput(schema llm.Schema, raw json.RawMessage) (map[string]any, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, errors.New("empty output")
	}
	res, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema.JSONSchema()),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("output is not valid JSON: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode output: %w", err)
	}
	out := make(map[string]any, len(schema.Fields))
	for _, f := range schema.Fields {
		switch f.Kind {
		case llm.KindStringList:
			items, _ := decoded[f.Name].([]any)
			cleaned := make([]string, 0, len(items))
			for _, item := range items {
				s, _ := item.(string)
				if s = strings.TrimSpace(s); s != "" {
					cleaned = append(cleaned, s)
				}
			}
			if len(cleaned) == 0 {
				return nil, fmt.Errorf("field %s has no non-blank items", f.Name)
			}
			out[f.Name] = cleaned
		default:
			s, _ := decoded[f.Name].(string)
			if s = strings.TrimSpace(s); s == "" {
				return nil, fmt.Errorf("field %s is blank", f.Name)
			}
			out[f.Name] = s
		}
	}
	return out, nil
}
