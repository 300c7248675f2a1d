package model

import "time"

type Team struct {
	ID          string     `json:"team_id"`
	Name        string     `json:"team_name"`
	MemberCount int        `json:"member_count"`
	ProjectID   string     `json:"project_id,omitempty"`
	Members     []*Member  `json:"members"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

type Member struct {
	ProfileID   string `json:"profile_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

type AssignmentStatus string

const (
	AssignmentStatusAssigned        AssignmentStatus = "assigned"
	AssignmentStatusAlreadyAssigned AssignmentStatus = "already_assigned"
	AssignmentStatusNotEligible     AssignmentStatus = "not_eligible"
)

// AssignmentResult is the outcome of one resolver call. TeamID is set
// for both assigned and already_assigned.
type AssignmentResult struct {
	Status AssignmentStatus `json:"status"`
	TeamID string           `json:"team_id,omitempty"`
}
