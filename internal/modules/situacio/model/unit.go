// Package model defines the curriculum unit ("Situació d'Aprenentatge") produced by
// extraction and consumed read-only by every renderer.
package model

// CurriculumUnit is immutable once produced. Sessions replace it wholesale.
type CurriculumUnit struct {
	Identification          Identification          `json:"identification" yaml:"identification"`
	Description             Description             `json:"description" yaml:"description"`
	CurricularSpecification CurricularSpecification `json:"curricularSpecification" yaml:"curricularSpecification"`
	Development             Development             `json:"development" yaml:"development"`
	SupportMeasures         SupportMeasures         `json:"supportMeasures" yaml:"supportMeasures"`
}

type Identification struct {
	Title       string `json:"title" yaml:"title"`
	Level       string `json:"level" yaml:"level"`
	SubjectArea string `json:"subjectArea" yaml:"subjectArea"`
}

type Description struct {
	ContextAndChallenge     string `json:"contextAndChallenge" yaml:"contextAndChallenge"`
	TransversalCompetencies string `json:"transversalCompetencies" yaml:"transversalCompetencies"`
}

// CurricularSpecification holds ordered sequences; display numbering comes from position.
type CurricularSpecification struct {
	SpecificCompetencies []Competency    `json:"specificCompetencies" yaml:"specificCompetencies"`
	Objectives           []string        `json:"objectives" yaml:"objectives"`
	EvaluationCriteria   []string        `json:"evaluationCriteria" yaml:"evaluationCriteria"`
	KnowledgeItems       []KnowledgeItem `json:"knowledgeItems" yaml:"knowledgeItems"`
}

type Competency struct {
	Description string `json:"description" yaml:"description"`
	SubjectArea string `json:"subjectArea" yaml:"subjectArea"`
}

type KnowledgeItem struct {
	Content     string `json:"content" yaml:"content"`
	SubjectArea string `json:"subjectArea" yaml:"subjectArea"`
}

type Development struct {
	MethodologicalStrategies string     `json:"methodologicalStrategies" yaml:"methodologicalStrategies"`
	Activities               Activities `json:"activities" yaml:"activities"`
}

// Activities is a closed set of four phases. It is never iterated as an open sequence.
type Activities struct {
	Initial     Phase `json:"initial" yaml:"initial"`
	Development Phase `json:"development" yaml:"development"`
	Structuring Phase `json:"structuring" yaml:"structuring"`
	Application Phase `json:"application" yaml:"application"`
}

type Phase struct {
	Description    string `json:"description" yaml:"description"`
	TimeAllocation string `json:"timeAllocation" yaml:"timeAllocation"`
}

type SupportMeasures struct {
	VectorsDescription string              `json:"vectorsDescription" yaml:"vectorsDescription"`
	UniversalSupports  string              `json:"universalSupports" yaml:"universalSupports"`
	AdditionalSupports []AdditionalSupport `json:"additionalSupports" yaml:"additionalSupports"`
}

type AdditionalSupport struct {
	StudentLabel string `json:"studentLabel" yaml:"studentLabel"`
	Measure      string `json:"measure" yaml:"measure"`
}
