package model

import "time"

// StageEvent is one row of a project's stage audit trail.
type StageEvent struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	FromStep  int       `json:"from_step"`
	ToStep    int       `json:"to_step"`
	Kind      string    `json:"kind"`
	ActorID   string    `json:"actor_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
