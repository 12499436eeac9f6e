package model

import "time"

// SenderRole identifies who wrote a chat message.
type SenderRole string

const (
	SenderCustomer SenderRole = "customer"
	SenderPM       SenderRole = "pm"
	SenderSystem   SenderRole = "system"
)

// Message is an append-only chat row scoped to a project.
type Message struct {
	ID            string     `json:"id"`
	ProjectID     string     `json:"project_id"`
	SenderID      string     `json:"sender_id,omitempty"`
	SenderRole    SenderRole `json:"sender_role"`
	Body          string     `json:"body"`
	AttachmentURL string     `json:"attachment_url,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
