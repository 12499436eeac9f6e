// Package estimate computes store-opening cost estimates from reference cost
// standards. It is pure: callers fetch the standards and validate the request.
package estimate

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/model"
)

// ErrUnavailable is returned when no cost standard matches the request.
var ErrUnavailable = errors.New("estimate unavailable: no matching cost standards")

// Request holds the store attributes an estimate depends on.
type Request struct {
	BusinessCategory string           `json:"business_category" validate:"required"`
	LocationDistrict string           `json:"location_district" validate:"required"`
	StoreSize        float64          `json:"store_size" validate:"gt=0"`
	StoreFloor       model.StoreFloor `json:"store_floor" validate:"required,oneof=basement ground upper"`
}

var floorFactors = map[model.StoreFloor]decimal.Decimal{
	model.FloorBasement: decimal.RequireFromString("0.7"),
	model.FloorGround:   decimal.NewFromInt(1),
	model.FloorUpper:    decimal.RequireFromString("0.8"),
}

// FloorFactor returns the discount applied to floor-sensitive cost types.
// Unknown floors get no discount.
func FloorFactor(f model.StoreFloor) decimal.Decimal {
	if v, ok := floorFactors[f]; ok {
		return v
	}
	return decimal.NewFromInt(1)
}

// floor-sensitive cost types, by identifier and by Korean label
var floorSensitive = map[string]bool{
	"deposit":      true,
	"key_money":    true,
	"monthly_rent": true,
	"보증금":          true,
	"권리금":          true,
	"월세":           true,
	"임대료":          true,
}

// IsFloorSensitive reports whether the floor discount applies to costType.
func IsFloorSensitive(costType string) bool {
	return floorSensitive[strings.ToLower(strings.TrimSpace(costType))]
}

// Match returns the standards that apply to a category and district, in
// input order: the category itself or the common sentinel, exact district.
func Match(standards []model.CostStandard, category, district string) []model.CostStandard {
	var out []model.CostStandard
	for _, s := range standards {
		if s.LocationDistrict != district {
			continue
		}
		if s.BusinessCategory != category && s.BusinessCategory != model.CommonCategory {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Line computes a single estimate line for a standard.
func Line(s model.CostStandard, size decimal.Decimal, floor model.StoreFloor) model.CostEstimateLine {
	mult := decimal.NewFromInt(1)
	if s.Unit == model.UnitPerArea {
		mult = size
	}
	if IsFloorSensitive(s.CostType) {
		mult = mult.Mul(FloorFactor(floor))
	}
	return model.CostEstimateLine{
		Name: s.CostName,
		CostRange: model.CostRange{
			Min: s.MinPrice.Mul(mult).Round(0).IntPart(),
			Max: s.MaxPrice.Mul(mult).Round(0).IntPart(),
			Avg: s.AvgPrice.Mul(mult).Round(0).IntPart(),
		},
	}
}

// Compute groups the matched lines by cost type in first-seen order. Lines
// are rounded before subtotals are summed.
func Compute(standards []model.CostStandard, req Request) []model.CostEstimateGroup {
	matched := Match(standards, req.BusinessCategory, req.LocationDistrict)
	size := decimal.NewFromFloat(req.StoreSize)

	var groups []model.CostEstimateGroup
	index := make(map[string]int)
	for _, s := range matched {
		line := Line(s, size, req.StoreFloor)
		i, ok := index[s.CostType]
		if !ok {
			i = len(groups)
			index[s.CostType] = i
			groups = append(groups, model.CostEstimateGroup{Category: s.CostType})
		}
		g := &groups[i]
		g.Items = append(g.Items, line)
		g.Subtotal.Min += line.Min
		g.Subtotal.Max += line.Max
		g.Subtotal.Avg += line.Avg
	}
	return groups
}

// Total sums the group subtotals. Total.Avg is the grand total.
func Total(groups []model.CostEstimateGroup) model.CostRange {
	var t model.CostRange
	for _, g := range groups {
		t.Min += g.Subtotal.Min
		t.Max += g.Subtotal.Max
		t.Avg += g.Subtotal.Avg
	}
	return t
}

// Estimate computes the grouped estimate and its total. An empty match is
// ErrUnavailable, never a zero-cost result.
func Estimate(standards []model.CostStandard, req Request) (model.CostEstimate, error) {
	groups := Compute(standards, req)
	if len(groups) == 0 {
		return model.CostEstimate{}, ErrUnavailable
	}
	return model.CostEstimate{Groups: groups, Total: Total(groups)}, nil
}
