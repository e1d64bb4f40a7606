package derive

import "github.com/yungbote/situacio-backend/internal/modules/situacio/model"

// View is the derived view model: everything a renderer prints, resolved once per pass.
type View struct {
	Title       string
	Level       string
	SubjectArea string

	ContextAndChallenge     string
	TransversalCompetencies string

	Competencies []CompetencyRow
	Objectives   []string
	Criteria     []string
	Knowledge    []KnowledgeRow

	Methodology string
	Phases      [4]PhaseRow

	VectorsDescription string
	UniversalSupports  string
	AdditionalSupports []SupportRow

	Slug string
}

type CompetencyRow struct {
	Code        string
	Text        string
	SubjectArea string
}

type KnowledgeRow struct {
	Text        string
	SubjectArea string
}

type PhaseRow struct {
	Name           string
	Description    string
	TimeAllocation string
}

// Build derives the view. It never mutates u.
func Build(u *model.CurriculumUnit) View {
	if u == nil {
		return View{AdditionalSupports: ResolveAdditionalSupports(nil)}
	}
	cs := u.CurricularSpecification

	comps := make([]CompetencyRow, 0, len(cs.SpecificCompetencies))
	for i, c := range cs.SpecificCompetencies {
		cc := NormalizeCompetencyCode(c.Description, i)
		comps = append(comps, CompetencyRow{Code: cc.Code, Text: cc.Text, SubjectArea: c.SubjectArea})
	}

	criteria := make([]string, 0, len(cs.EvaluationCriteria))
	for i, c := range cs.EvaluationCriteria {
		criteria = append(criteria, NumberCriterion(c, i))
	}

	contents := make([]string, 0, len(cs.KnowledgeItems))
	for _, k := range cs.KnowledgeItems {
		contents = append(contents, k.Content)
	}
	numbered := NumberedList(contents)
	knowledge := make([]KnowledgeRow, 0, len(numbered))
	for i, text := range numbered {
		knowledge = append(knowledge, KnowledgeRow{Text: text, SubjectArea: cs.KnowledgeItems[i].SubjectArea})
	}

	act := u.Development.Activities
	phases := [4]PhaseRow{
		{Name: PhaseNames[0], Description: act.Initial.Description, TimeAllocation: act.Initial.TimeAllocation},
		{Name: PhaseNames[1], Description: act.Development.Description, TimeAllocation: act.Development.TimeAllocation},
		{Name: PhaseNames[2], Description: act.Structuring.Description, TimeAllocation: act.Structuring.TimeAllocation},
		{Name: PhaseNames[3], Description: act.Application.Description, TimeAllocation: act.Application.TimeAllocation},
	}

	return View{
		Title:                   u.Identification.Title,
		Level:                   u.Identification.Level,
		SubjectArea:             u.Identification.SubjectArea,
		ContextAndChallenge:     u.Description.ContextAndChallenge,
		TransversalCompetencies: u.Description.TransversalCompetencies,
		Competencies:            comps,
		Objectives:              NumberedList(cs.Objectives),
		Criteria:                criteria,
		Knowledge:               knowledge,
		Methodology:             u.Development.MethodologicalStrategies,
		Phases:                  phases,
		VectorsDescription:      u.SupportMeasures.VectorsDescription,
		UniversalSupports:       u.SupportMeasures.UniversalSupports,
		AdditionalSupports:      ResolveAdditionalSupports(u.SupportMeasures.AdditionalSupports),
		Slug:                    FilenameSlug(u.Identification.Title),
	}
}

// CompetencyCodes lists the codes in display order.
func (v View) CompetencyCodes() []string {
	out := make([]string, 0, len(v.Competencies))
	for _, c := range v.Competencies {
		out = append(out, c.Code)
	}
	return out
}
