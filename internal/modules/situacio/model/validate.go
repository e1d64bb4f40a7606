package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidUnit is wrapped by every Validate failure.
var ErrInvalidUnit = errors.New("invalid curriculum unit")

// Validate enforces the upstream contract. Empty competency, objective, criteria and
// knowledge sequences are tolerated here (see Warnings); renderers handle them.
func (u *CurriculumUnit) Validate() error {
	if u == nil {
		return fmt.Errorf("%w: nil", ErrInvalidUnit)
	}
	var problems []string
	if strings.TrimSpace(u.Identification.Title) == "" {
		problems = append(problems, "identification.title is empty")
	}
	for _, p := range u.Development.Activities.named() {
		if strings.TrimSpace(p.phase.Description) == "" {
			problems = append(problems, "development.activities."+p.key+".description is empty")
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidUnit, strings.Join(problems, "; "))
	}
	return nil
}

// Warnings lists sequences the extraction contract expects to be non-empty.
func (u *CurriculumUnit) Warnings() []string {
	if u == nil {
		return nil
	}
	var out []string
	cs := u.CurricularSpecification
	if len(cs.SpecificCompetencies) == 0 {
		out = append(out, "no specific competencies")
	}
	if len(cs.Objectives) == 0 {
		out = append(out, "no objectives")
	}
	if len(cs.EvaluationCriteria) == 0 {
		out = append(out, "no evaluation criteria")
	}
	if len(cs.KnowledgeItems) == 0 {
		out = append(out, "no knowledge items")
	}
	return out
}

type namedPhase struct {
	key   string
	phase Phase
}

// named returns the phases in display order.
func (a Activities) named() [4]namedPhase {
	return [4]namedPhase{
		{key: "initial", phase: a.Initial},
		{key: "development", phase: a.Development},
		{key: "structuring", phase: a.Structuring},
		{key: "application", phase: a.Application},
	}
}
