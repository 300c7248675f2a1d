package model

// TeamResult is a derived aggregate, recomputed on every read and never
// persisted. Only teams with at least one evaluation are materialized.
type TeamResult struct {
	TeamID      string              `json:"team_id"`
	TeamName    string              `json:"team_name"`
	ProjectName string              `json:"project_name,omitempty"`
	Records     []*EvaluationRecord `json:"records"`
	Totals      []int               `json:"totals"`
	Mean        float64             `json:"mean"`
}

// TieGroup is a set of teams whose mean scores collide after rounding
// to two decimal places.
type TieGroup struct {
	Mean  float64  `json:"mean"`
	Teams []string `json:"team_ids"`
}

type Leaderboard struct {
	Results  []*TeamResult `json:"results"`
	TopThree []*TeamResult `json:"top_three"`
	Ties     []*TieGroup   `json:"ties"`
}
