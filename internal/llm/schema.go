package llm

// Kind is the JSON type of an output field.
type Kind string

const (
	KindString     Kind = "string"
	KindStringList Kind = "string_list"
)

// Field is one required property of an output object.
type Field struct {
	Name        string
	Description string
	Kind        Kind
}

// Schema declares the JSON object a backend must return. Every field is
// required and must be non-empty.
type Schema struct {
	Name        string
	Description string
	Fields      []Field
}

// FieldNames returns the field names in declaration order.
func (s Schema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// JSONSchema renders the schema as a JSON Schema document.
func (s Schema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		props[f.Name] = f.jsonSchema()
	}
	out := map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             s.FieldNames(),
		"additionalProperties": false,
	}
	if s.Description != "" {
		out["description"] = s.Description
	}
	return out
}

func (f Field) jsonSchema() map[string]any {
	var out map[string]any
	switch f.Kind {
	case KindStringList:
		out = map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "string"},
			"minItems": 1,
		}
	default:
		out = map[string]any{
			"type":      "string",
			"minLength": 1,
		}
	}
	if f.Description != "" {
		out["description"] = f.Description
	}
	return out
}
