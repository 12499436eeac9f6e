package model

// ChecklistStatus is the self-assessment or PM status of a checklist item.
type ChecklistStatus string

const (
	ChecklistDone      ChecklistStatus = "done"
	ChecklistWorry     ChecklistStatus = "worry"
	ChecklistUnchecked ChecklistStatus = "unchecked"
)

// Valid reports whether s is a known status.
func (s ChecklistStatus) Valid() bool {
	switch s {
	case ChecklistDone, ChecklistWorry, ChecklistUnchecked:
		return true
	}
	return false
}

// ChecklistItem is a milestone item embedded in a project.
type ChecklistItem struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Category      string          `json:"category,omitempty"`
	Status        ChecklistStatus `json:"status"`
	Comment       string          `json:"comment,omitempty"`
	EstimatedCost *int64          `json:"estimated_cost,omitempty"`
	VendorID      string          `json:"vendor_id,omitempty"`
	// Custom marks items a PM added; only those may be deleted.
	Custom        bool            `json:"custom,omitempty"`
}

// ChecklistPatch holds the editable fields of an item. Nil fields are left
// unchanged.
type ChecklistPatch struct {
	Status        *ChecklistStatus `json:"status"`
	Comment       *string          `json:"comment"`
	EstimatedCost *int64           `json:"estimated_cost"`
	VendorID      *string          `json:"vendor_id"`
}
