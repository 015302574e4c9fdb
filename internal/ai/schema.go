package ai

import "google.golang.org/genai"

// questionSetSchema is the JSON Schema for the generated question payload.
// It is the single source of truth: validated against with jsonschema after
// the call, and converted to a genai.Schema for structured output before it.
var questionSetSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"mcqs": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question":    map[string]any{"type": "string"},
					"options":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"answer":      map[string]any{"type": "string"},
					"explanation": map[string]any{"type": "string"},
				},
				"required": []any{"question", "options", "answer"},
			},
		},
		"fill_blanks": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question":    map[string]any{"type": "string"},
					"answer":      map[string]any{"type": "string"},
					"explanation": map[string]any{"type": "string"},
				},
				"required": []any{"question", "answer"},
			},
		},
		"true_false": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question":    map[string]any{"type": "string"},
					"answer":      map[string]any{"type": "boolean"},
					"explanation": map[string]any{"type": "string"},
				},
				"required": []any{"question", "answer"},
			},
		},
		"short_answers": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question":      map[string]any{"type": "string"},
					"sample_answer": map[string]any{"type": "string"},
					"points":        map[string]any{"type": "integer"},
				},
				"required": []any{"question"},
			},
		},
		"long_answers": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question":      map[string]any{"type": "string"},
					"sample_answer": map[string]any{"type": "string"},
					"points":        map[string]any{"type": "integer"},
				},
				"required": []any{"question"},
			},
		},
	},
}

// buildGenaiSchema converts a JSON Schema definition map to a genai.Schema.
func buildGenaiSchema(def map[string]any) *genai.Schema {
	schema := &genai.Schema{}

	if t, ok := def["type"].(string); ok {
		schema.Type = mapGenaiType(t)
	}
	if desc, ok := def["description"].(string); ok {
		schema.Description = desc
	}

	if props, ok := def["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema)
		for k, v := range props {
			if propDef, ok := v.(map[string]any); ok {
				schema.Properties[k] = buildGenaiSchema(propDef)
			}
		}
	}

	if req, ok := def["required"].([]any); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}

	if items, ok := def["items"].(map[string]any); ok {
		schema.Items = buildGenaiSchema(items)
	}

	return schema
}

func mapGenaiType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}
