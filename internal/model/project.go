package model

import "time"

type Project struct {
	ID          string     `json:"project_id"`
	Name        string     `json:"project_name" validate:"required"`
	Description string     `json:"description"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

type Activity struct {
	ID        string     `json:"activity_id"`
	Title     string     `json:"title" validate:"required"`
	Location  string     `json:"location"`
	StartsAt  time.Time  `json:"starts_at" validate:"required"`
	EndsAt    time.Time  `json:"ends_at" validate:"required"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}
