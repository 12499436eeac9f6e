package model

import "time"

// ProjectManager is a consultant who can be assigned to projects. ID equals
// the PM's user id.
type ProjectManager struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required"`
	Email       string    `json:"email" validate:"required,email"`
	Phone       string    `json:"phone,omitempty"`
	Specialties []string  `json:"specialties"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Transient: count of non-cancelled, non-completed projects
	ActiveProjects int `json:"active_projects"`
}

// ProjectManagerPatch holds fields that can be updated on a PM.
type ProjectManagerPatch struct {
	Name        *string  `json:"name"`
	Email       *string  `json:"email" validate:"omitempty,email"`
	Phone       *string  `json:"phone"`
	Specialties []string `json:"specialties"`
	Available   *bool    `json:"available"`
}
