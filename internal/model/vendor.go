package model

import "time"

// Vendor is a partner company a PM may attach to a checklist item.
type Vendor struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required"`
	Category    string    `json:"category" validate:"required"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty" validate:"omitempty,email"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
