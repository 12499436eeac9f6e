package estimate

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func std(category, district, costType, name string, unit model.CostUnit, min, max, avg int64) model.CostStandard {
	return model.CostStandard{
		BusinessCategory: category,
		LocationDistrict: district,
		CostType:         costType,
		CostName:         name,
		Unit:             unit,
		MinPrice:         decimal.NewFromInt(min),
		MaxPrice:         decimal.NewFromInt(max),
		AvgPrice:         decimal.NewFromInt(avg),
	}
}

func fixture() []model.CostStandard {
	return []model.CostStandard{
		std(model.CommonCategory, "Gangnam", "deposit", "Deposit", model.UnitPerArea, 300, 800, 550),
		std("cafe", "Gangnam", "construction", "Interior", model.UnitPerArea, 150, 400, 275),
		std("restaurant", "Gangnam", "construction", "Kitchen", model.UnitPerArea, 500, 900, 700),
		std("cafe", "Mapo", "construction", "Interior", model.UnitPerArea, 100, 200, 150),
		std(model.CommonCategory, "Gangnam", "permit", "Business registration", model.UnitFlat, 10, 30, 20),
	}
}

func TestEstimate_CafeGangnamGround(t *testing.T) {
	got, err := Estimate(fixture(), Request{
		BusinessCategory: "cafe",
		LocationDistrict: "Gangnam",
		StoreSize:        15,
		StoreFloor:       model.FloorGround,
	})
	require.NoError(t, err)
	require.Len(t, got.Groups, 3)

	assert.Equal(t, "deposit", got.Groups[0].Category)
	assert.Equal(t, model.CostRange{Min: 4500, Max: 12000, Avg: 8250}, got.Groups[0].Subtotal)

	assert.Equal(t, "construction", got.Groups[1].Category)
	assert.Equal(t, model.CostRange{Min: 2250, Max: 6000, Avg: 4125}, got.Groups[1].Subtotal)

	assert.Equal(t, "permit", got.Groups[2].Category)
	assert.Equal(t, model.CostRange{Min: 10, Max: 30, Avg: 20}, got.Groups[2].Subtotal)

	assert.Equal(t, int64(8250+4125+20), got.Total.Avg)
}

func TestEstimate_BasementDiscountsOnlyRentTypes(t *testing.T) {
	got, err := Estimate(fixture(), Request{
		BusinessCategory: "cafe",
		LocationDistrict: "Gangnam",
		StoreSize:        15,
		StoreFloor:       model.FloorBasement,
	})
	require.NoError(t, err)

	assert.Equal(t, model.CostRange{Min: 3150, Max: 8400, Avg: 5775}, got.Groups[0].Subtotal)
	// construction is not floor sensitive
	assert.Equal(t, model.CostRange{Min: 2250, Max: 6000, Avg: 4125}, got.Groups[1].Subtotal)
}

func TestEstimate_UpperFloor(t *testing.T) {
	got, err := Estimate(fixture(), Request{
		BusinessCategory: "cafe",
		LocationDistrict: "Gangnam",
		StoreSize:        15,
		StoreFloor:       model.FloorUpper,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), got.Groups[0].Subtotal.Min)
	assert.Equal(t, int64(9600), got.Groups[0].Subtotal.Max)
}

func TestEstimate_FlatIgnoresSize(t *testing.T) {
	for _, size := range []float64{1, 15, 300} {
		got, err := Estimate(fixture(), Request{
			BusinessCategory: "restaurant",
			LocationDistrict: "Gangnam",
			StoreSize:        size,
			StoreFloor:       model.FloorGround,
		})
		require.NoError(t, err)
		var permit *model.CostEstimateGroup
		for i := range got.Groups {
			if got.Groups[i].Category == "permit" {
				permit = &got.Groups[i]
			}
		}
		require.NotNil(t, permit)
		assert.Equal(t, model.CostRange{Min: 10, Max: 30, Avg: 20}, permit.Subtotal, "size %v", size)
	}
}

func TestEstimate_UnknownDistrictIsUnavailable(t *testing.T) {
	_, err := Estimate(fixture(), Request{
		BusinessCategory: "cafe",
		LocationDistrict: "Jongno",
		StoreSize:        15,
		StoreFloor:       model.FloorGround,
	})
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestEstimate_CommonRowsForUnknownCategory(t *testing.T) {
	got, err := Estimate(fixture(), Request{
		BusinessCategory: "bookstore",
		LocationDistrict: "Gangnam",
		StoreSize:        10,
		StoreFloor:       model.FloorGround,
	})
	require.NoError(t, err)
	require.Len(t, got.Groups, 2)
	assert.Equal(t, "deposit", got.Groups[0].Category)
	assert.Equal(t, "permit", got.Groups[1].Category)
}

func TestCompute_LinesRoundBeforeSubtotal(t *testing.T) {
	standards := []model.CostStandard{
		std(model.CommonCategory, "Mapo", "deposit", "A", model.UnitPerArea, 1, 1, 1),
		std(model.CommonCategory, "Mapo", "deposit", "B", model.UnitPerArea, 1, 1, 1),
	}
	// 1 * 0.5 * 0.7 = 0.35 rounds to 0 per line, so the subtotal is 0 not 1
	groups := Compute(standards, Request{
		BusinessCategory: "cafe",
		LocationDistrict: "Mapo",
		StoreSize:        0.5,
		StoreFloor:       model.FloorBasement,
	})
	require.Len(t, groups, 1)
	assert.Equal(t, int64(0), groups[0].Subtotal.Avg)
	require.Len(t, groups[0].Items, 2)
}

func TestCompute_HalfRoundsUp(t *testing.T) {
	standards := []model.CostStandard{
		std(model.CommonCategory, "Mapo", "construction", "A", model.UnitPerArea, 1, 3, 5),
	}
	groups := Compute(standards, Request{
		BusinessCategory: "cafe",
		LocationDistrict: "Mapo",
		StoreSize:        2.5,
		StoreFloor:       model.FloorGround,
	})
	require.Len(t, groups, 1)
	assert.Equal(t, model.CostRange{Min: 3, Max: 8, Avg: 13}, groups[0].Items[0].CostRange)
}

func TestEstimate_TotalOrdering(t *testing.T) {
	for _, floor := range []model.StoreFloor{model.FloorBasement, model.FloorGround, model.FloorUpper} {
		got, err := Estimate(fixture(), Request{
			BusinessCategory: "cafe",
			LocationDistrict: "Gangnam",
			StoreSize:        33.3,
			StoreFloor:       floor,
		})
		require.NoError(t, err)
		assert.LessOrEqual(t, got.Total.Min, got.Total.Avg)
		assert.LessOrEqual(t, got.Total.Avg, got.Total.Max)
	}
}

func TestEstimate_Deterministic(t *testing.T) {
	req := Request{BusinessCategory: "cafe", LocationDistrict: "Gangnam", StoreSize: 21.7, StoreFloor: model.FloorUpper}
	a, err := Estimate(fixture(), req)
	require.NoError(t, err)
	b, err := Estimate(fixture(), req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestIsFloorSensitive(t *testing.T) {
	assert.True(t, IsFloorSensitive("deposit"))
	assert.True(t, IsFloorSensitive("Key_Money"))
	assert.True(t, IsFloorSensitive("월세"))
	assert.False(t, IsFloorSensitive("construction"))
}

func TestFloorFactor_Unknown(t *testing.T) {
	assert.True(t, FloorFactor("rooftop").Equal(decimal.NewFromInt(1)))
}
