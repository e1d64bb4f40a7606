package model

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Decode converts a structured-output object (as returned by an LLM client) into a unit.
func Decode(obj map[string]any) (*CurriculumUnit, error) {
	if obj == nil {
		return nil, fmt.Errorf("empty extraction result")
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("re-encode extraction result: %w", err)
	}
	return DecodeJSON(raw)
}

// DecodeJSON parses a unit and validates it.
func DecodeJSON(raw []byte) (*CurriculumUnit, error) {
	var u CurriculumUnit
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode curriculum unit: %w", err)
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return &u, nil
}

// DecodeYAML parses a hand-written unit file and validates it.
func DecodeYAML(raw []byte) (*CurriculumUnit, error) {
	var u CurriculumUnit
	if err := yaml.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode curriculum unit: %w", err)
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return &u, nil
}
