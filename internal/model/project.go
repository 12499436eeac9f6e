package model

import "time"

// StoreFloor is the floor a store sits on.
type StoreFloor string

const (
	FloorBasement StoreFloor = "basement"
	FloorGround   StoreFloor = "ground"
	FloorUpper    StoreFloor = "upper"
)

// Valid reports whether f is a known floor.
func (f StoreFloor) Valid() bool {
	switch f {
	case FloorBasement, FloorGround, FloorUpper:
		return true
	}
	return false
}

// ProjectStatus is derived from the current stage (see stage.StatusFor),
// except for CANCELLED which is set explicitly.
type ProjectStatus string

const (
	StatusPMAssigned ProjectStatus = "PM_ASSIGNED"
	StatusInProgress ProjectStatus = "IN_PROGRESS"
	StatusCompleted  ProjectStatus = "COMPLETED"
	StatusCancelled  ProjectStatus = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusPMAssigned, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Project is a customer's store-opening engagement. Rows exist only from
// stage 7 onward; stages 1 to 6 live on the client.
type Project struct {
	ID               string              `json:"id"`
	CustomerID       string              `json:"customer_id"`
	PMID             string              `json:"pm_id"`
	BusinessCategory string              `json:"business_category"`
	LocationDistrict string              `json:"location_district"`
	LocationDong     string              `json:"location_dong,omitempty"`
	StoreSize        float64             `json:"store_size"`
	StoreFloor       StoreFloor          `json:"store_floor"`
	EstimatedCosts   []CostEstimateGroup `json:"estimated_costs"`
	EstimatedTotal   int64               `json:"estimated_total"`
	CurrentStep      int                 `json:"current_step"`
	PMApprovedStep   int                 `json:"pm_approved_step"`
	Status           ProjectStatus       `json:"status"`
	Checklist        []ChecklistItem     `json:"checklist"`
	Version          int64               `json:"version"`
	CancelledAt      *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// IsParticipant reports whether the actor may read this project.
func (p *Project) IsParticipant(a Actor) bool {
	if a.IsAdmin() {
		return true
	}
	return a.UserID != "" && (a.UserID == p.CustomerID || a.UserID == p.PMID)
}

// IsManagedBy reports whether the actor may drive the delivery stages.
func (p *Project) IsManagedBy(a Actor) bool {
	if a.IsAdmin() {
		return true
	}
	return a.Role == RolePM && a.UserID == p.PMID
}

// ProjectFilter narrows the admin oversight listing.
type ProjectFilter struct {
	Status ProjectStatus
	PMID   string
	Limit  int
	Offset int
}

// OnboardingAnswers are the customer's stage 1 to 6 answers, held client-side
// until project creation.
type OnboardingAnswers struct {
	BusinessCategory string          `json:"business_category"`
	LocationDistrict string          `json:"location_district"`
	LocationDong     string          `json:"location_dong,omitempty"`
	StoreSize        float64         `json:"store_size"`
	StoreFloor       StoreFloor      `json:"store_floor"`
	Checklist        []ChecklistItem `json:"checklist,omitempty"`
}
