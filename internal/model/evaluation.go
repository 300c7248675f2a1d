package model

import "time"

// EvaluationRecord is one evaluator's rubric scoring of one team/project
// pairing. An evaluator holds at most one record per pairing; a
// resubmission overwrites the previous one.
type EvaluationRecord struct {
	ID          string            `json:"evaluation_id"`
	TeamID      string            `json:"team_id" validate:"required"`
	ProjectID   string            `json:"project_id" validate:"required"`
	RubricID    string            `json:"rubric_id" validate:"required"`
	EvaluatorID string            `json:"evaluator_id"`
	Scores      []*CriterionScore `json:"scores" validate:"required,min=1,dive"`
	Comments    string            `json:"comments"`
	CreatedAt   *time.Time        `json:"created_at,omitempty"`
}

type CriterionScore struct {
	CriterionID string `json:"criterion_id" validate:"required"`
	Score       int    `json:"score" validate:"min=0"`
}

// Total is the record's unweighted sum of criterion scores.
func (e *EvaluationRecord) Total() int {
	total := 0
	for _, s := range e.Scores {
		total += s.Score
	}
	return total
}
