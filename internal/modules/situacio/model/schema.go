package model

import "sort"

// SchemaName identifies the extraction schema to structured-output providers.
const SchemaName = "curriculum_unit"

// Strict structured output wants every property required and no extras, so optional
// text is expressed as an empty string rather than an absent key.

func stringSchema(description string) map[string]any {
	s := map[string]any{"type": "string"}
	if description != "" {
		s["description"] = description
	}
	return s
}

func objectSchema(props map[string]any) map[string]any {
	required := make([]string, 0, len(props))
	for k := range props {
		required = append(required, k)
	}
	sort.Strings(required)
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func arraySchema(items map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": items}
}

func PhaseSchema() map[string]any {
	return objectSchema(map[string]any{
		"description":    stringSchema("What the students do in this phase."),
		"timeAllocation": stringSchema("Sessions or hours, e.g. \"2 sessions\". Empty if not stated."),
	})
}

// UnitSchema is the JSON schema the extraction model must fill.
func UnitSchema() map[string]any {
	return objectSchema(map[string]any{
		"identification": objectSchema(map[string]any{
			"title":       stringSchema("Title of the learning situation."),
			"level":       stringSchema("Course or cycle, e.g. \"5è de primària\"."),
			"subjectArea": stringSchema("Main subject area."),
		}),
		"description": objectSchema(map[string]any{
			"contextAndChallenge":     stringSchema("Context and the challenge posed to students."),
			"transversalCompetencies": stringSchema("Transversal competencies worked on."),
		}),
		"curricularSpecification": objectSchema(map[string]any{
			"specificCompetencies": arraySchema(objectSchema(map[string]any{
				"description": stringSchema("Competency text without any CE code prefix."),
				"subjectArea": stringSchema(""),
			})),
			"objectives":         arraySchema(stringSchema("")),
			"evaluationCriteria": arraySchema(stringSchema("")),
			"knowledgeItems": arraySchema(objectSchema(map[string]any{
				"content":     stringSchema(""),
				"subjectArea": stringSchema(""),
			})),
		}),
		"development": objectSchema(map[string]any{
			"methodologicalStrategies": stringSchema(""),
			"activities": objectSchema(map[string]any{
				"initial":     PhaseSchema(),
				"development": PhaseSchema(),
				"structuring": PhaseSchema(),
				"application": PhaseSchema(),
			}),
		}),
		"supportMeasures": objectSchema(map[string]any{
			"vectorsDescription": stringSchema(""),
			"universalSupports":  stringSchema(""),
			"additionalSupports": arraySchema(objectSchema(map[string]any{
				"studentLabel": stringSchema("Anonymised student label."),
				"measure":      stringSchema(""),
			})),
		}),
	})
}
