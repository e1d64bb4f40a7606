// Package situaciotest holds shared fixtures for curriculum-unit tests.
package situaciotest

import "github.com/yungbote/situacio-backend/internal/modules/situacio/model"

// Unit returns a fully populated unit. Competency 2 carries a foreign "CE.2." prefix.
func Unit() *model.CurriculumUnit {
	return &model.CurriculumUnit{
		Identification: model.Identification{
			Title:       "Unitat: Egipte 5è!",
			Level:       "5è de Primària",
			SubjectArea: "Coneixement del Medi",
		},
		Description: model.Description{
			ContextAndChallenge:     "L'alumnat descobreix com vivien els antics egipcis i prepara una exposició per a les famílies.",
			TransversalCompetencies: "Competència digital i competència personal, social i d'aprendre a aprendre.",
		},
		CurricularSpecification: model.CurricularSpecification{
			SpecificCompetencies: []model.Competency{
				{Description: "Identificar les característiques de les civilitzacions antigues", SubjectArea: "Medi"},
				{Description: "CE.2. Interpretar fonts històriques diverses", SubjectArea: "Medi"},
				{Description: "Comunicar oralment els aprenentatges", SubjectArea: "Llengua"},
			},
			Objectives: []string{
				"Situar l'antic Egipte en el temps i l'espai",
				"Descriure la piràmide social egípcia",
			},
			EvaluationCriteria: []string{
				"1.1. Localitza l'antic Egipte en un mapa",
				"Explica la funció del riu Nil",
			},
			KnowledgeItems: []model.KnowledgeItem{
				{Content: "El riu Nil i l'agricultura", SubjectArea: "Medi"},
				{Content: "L'escriptura jeroglífica", SubjectArea: "Llengua"},
			},
		},
		Development: model.Development{
			MethodologicalStrategies: "Treball cooperatiu per racons i aprenentatge basat en projectes.",
			Activities: model.Activities{
				Initial:     model.Phase{Description: "Pluja d'idees sobre què sabem d'Egipte.", TimeAllocation: "1 sessió"},
				Development: model.Phase{Description: "Investigació en grups sobre la vida quotidiana.", TimeAllocation: "4 sessions"},
				Structuring: model.Phase{Description: "Mapa conceptual col·lectiu.", TimeAllocation: "2 sessions"},
				Application: model.Phase{Description: "Exposició oberta a les famílies.", TimeAllocation: "1 sessió"},
			},
		},
		SupportMeasures: model.SupportMeasures{
			VectorsDescription: "Perspectiva de gènere i sostenibilitat.",
			UniversalSupports:  "Materials amb suport visual i lectura fàcil.",
			AdditionalSupports: []model.AdditionalSupport{
				{StudentLabel: "Alumne A", Measure: "Pictogrames i temps addicional"},
			},
		},
	}
}

// UnitWithoutSupports returns Unit with an empty additional-supports sequence.
func UnitWithoutSupports() *model.CurriculumUnit {
	u := Unit()
	u.SupportMeasures.AdditionalSupports = nil
	return u
}
