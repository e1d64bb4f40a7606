package gemini

import (
	"fmt"

	"google.golang.org/genai"
)

// ToSchema converts a JSON-schema map (the form the OpenAI client takes) into the
// Gemini schema subset. additionalProperties has no counterpart and is dropped.
func ToSchema(m map[string]any) (*genai.Schema, error) {
	if m == nil {
		return nil, nil
	}
	s := &genai.Schema{}
	switch t, _ := m["type"].(string); t {
	case "object":
		s.Type = genai.TypeObject
	case "array":
		s.Type = genai.TypeArray
	case "string":
		s.Type = genai.TypeString
	case "integer":
		s.Type = genai.TypeInteger
	case "number":
		s.Type = genai.TypeNumber
	case "boolean":
		s.Type = genai.TypeBoolean
	default:
		return nil, fmt.Errorf("unsupported schema type %q", t)
	}
	if d, ok := m["description"].(string); ok {
		s.Description = d
	}
	if enum, ok := m["enum"].([]string); ok {
		s.Enum = enum
	}
	if props, ok := m["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			pm, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("property %s: not an object", name)
			}
			ps, err := ToSchema(pm)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", name, err)
			}
			s.Properties[name] = ps
		}
	}
	if req, ok := m["required"].([]string); ok {
		s.Required = append([]string(nil), req...)
		// stable output key order
		s.PropertyOrdering = append([]string(nil), req...)
	}
	if items, ok := m["items"].(map[string]any); ok {
		is, err := ToSchema(items)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		s.Items = is
	}
	return s, nil
}
