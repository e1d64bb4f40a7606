package derive

// FilePrefix starts every export file name.
const FilePrefix = "SA"

// NoDataLabel fills both cells of the additional-supports placeholder row.
const NoDataLabel = "No s'han definit"

// Labels is the shared label catalog. Renderers never hardcode their own headings.
var Labels = struct {
	DocumentTitle      string
	CoverFootnote      string
	Identification     string
	Title              string
	Level              string
	SubjectArea        string
	Description        string
	ContextChallenge   string
	Competencies       string
	Code               string
	CompetencyText     string
	Transversal        string
	Objectives         string
	Criteria           string
	Knowledge          string
	KnowledgeContent   string
	Methodology        string
	Activities         string
	Phase              string
	ActivityText       string
	TimeAllocation     string
	SupportMeasures    string
	Vectors            string
	UniversalSupports  string
	AdditionalSupports string
	Student            string
	Measure            string
}{
	DocumentTitle:      "Situació d'Aprenentatge",
	CoverFootnote:      "Document elaborat d'acord amb el marc curricular vigent.",
	Identification:     "Identificació",
	Title:              "Títol",
	Level:              "Nivell",
	SubjectArea:        "Àrea o matèria",
	Description:        "Descripció",
	ContextChallenge:   "Context i repte",
	Competencies:       "Competències específiques",
	Code:               "Codi",
	CompetencyText:     "Competència",
	Transversal:        "Competències transversals",
	Objectives:         "Objectius d'aprenentatge",
	Criteria:           "Criteris d'avaluació",
	Knowledge:          "Sabers",
	KnowledgeContent:   "Saber",
	Methodology:        "Estratègies metodològiques",
	Activities:         "Activitats",
	Phase:              "Fase",
	ActivityText:       "Descripció de l'activitat",
	TimeAllocation:     "Temporització",
	SupportMeasures:    "Mesures i suports",
	Vectors:            "Vectors",
	UniversalSupports:  "Suports universals (DUA)",
	AdditionalSupports: "Suports addicionals",
	Student:            "Alumne/a",
	Measure:            "Mesura",
}

// PhaseNames is the fixed display order of the activity phases.
var PhaseNames = [4]string{"Inicial", "Desenvolupament", "Estructuració", "Aplicació"}
