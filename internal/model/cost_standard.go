package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommonCategory is the business category sentinel for rows that apply to
// every category.
const CommonCategory = "공통"

// CostUnit determines how a cost standard scales with the store.
type CostUnit string

const (
	UnitFlat     CostUnit = "flat"
	UnitPerArea  CostUnit = "perArea"
	UnitPerMonth CostUnit = "perMonth"
)

// Valid reports whether u is a known unit.
func (u CostUnit) Valid() bool {
	switch u {
	case UnitFlat, UnitPerArea, UnitPerMonth:
		return true
	}
	return false
}

// CostStandard is an admin-maintained reference price range.
type CostStandard struct {
	ID               string          `json:"id"`
	BusinessCategory string          `json:"business_category" validate:"required"`
	LocationDistrict string          `json:"location_district" validate:"required"`
	CostType         string          `json:"cost_type" validate:"required"`
	CostName         string          `json:"cost_name" validate:"required"`
	Unit             CostUnit        `json:"unit" validate:"required,oneof=flat perArea perMonth"`
	MinPrice         decimal.Decimal `json:"min_price"`
	MaxPrice         decimal.Decimal `json:"max_price"`
	AvgPrice         decimal.Decimal `json:"avg_price"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// CostStandardFilter narrows admin listings. Empty fields match everything.
type CostStandardFilter struct {
	BusinessCategory string
	LocationDistrict string
}

// CostRange is a min/max/avg triple in whole currency units.
type CostRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
	Avg int64 `json:"avg"`
}

// CostEstimateLine is one computed line of an estimate.
type CostEstimateLine struct {
	Name string `json:"name"`
	CostRange
}

// CostEstimateGroup collects the lines that share a cost type.
type CostEstimateGroup struct {
	Category string             `json:"category"`
	Items    []CostEstimateLine `json:"items"`
	Subtotal CostRange          `json:"subtotal"`
}

// CostEstimate is the full estimate shown to the customer.
// Total.Avg is the grand total frozen on the project.
type CostEstimate struct {
	Groups []CostEstimateGroup `json:"groups"`
	Total  CostRange           `json:"total"`
}
