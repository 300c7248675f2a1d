package model

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
)

type StudentProfile struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email"`
	Role        Role       `json:"role"`
	TeamID      string     `json:"team_id,omitempty"`
	GroupName   string     `json:"group_name,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}
