package stage

import (
	"errors"
	"testing"

	"github.com/storefront/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanLeaveOnboarding(t *testing.T) {
	empty := model.OnboardingAnswers{}
	tests := []struct {
		name    string
		step    int
		answers model.OnboardingAnswers
		wantErr error
	}{
		{"category missing", 1, empty, ErrOnboardingIncomplete},
		{"category set", 1, model.OnboardingAnswers{BusinessCategory: "cafe"}, nil},
		{"district missing", 2, empty, ErrOnboardingIncomplete},
		{"district set", 2, model.OnboardingAnswers{LocationDistrict: "Mapo"}, nil},
		{"market analysis free", 3, empty, nil},
		{"size zero", 4, empty, ErrOnboardingIncomplete},
		{"size negative", 4, model.OnboardingAnswers{StoreSize: -3}, ErrOnboardingIncomplete},
		{"size set", 4, model.OnboardingAnswers{StoreSize: 12}, nil},
		{"bad floor", 4, model.OnboardingAnswers{StoreSize: 12, StoreFloor: "roof"}, ErrOnboardingIncomplete},
		{"checklist free", 5, empty, nil},
		{"estimate free", 6, empty, nil},
		{"delivery stage", 7, empty, ErrInvalidStage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanLeaveOnboarding(tt.step, tt.answers)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestNextOnboardingStep(t *testing.T) {
	complete := model.OnboardingAnswers{
		BusinessCategory: "cafe",
		LocationDistrict: "Mapo",
		StoreSize:        20,
		StoreFloor:       model.FloorGround,
	}
	next, err := NextOnboardingStep(3, complete)
	require.NoError(t, err)
	assert.Equal(t, 4, next)

	next, err = NextOnboardingStep(6, complete)
	require.NoError(t, err)
	assert.Equal(t, FirstDelivery, next)

	partial := complete
	partial.StoreFloor = ""
	next, err = NextOnboardingStep(6, partial)
	assert.True(t, errors.Is(err, ErrOnboardingIncomplete))
	assert.Equal(t, 6, next)
}

func TestValidateComplete(t *testing.T) {
	err := ValidateComplete(model.OnboardingAnswers{BusinessCategory: "cafe", LocationDistrict: "Mapo", StoreFloor: model.FloorUpper})
	assert.True(t, errors.Is(err, ErrOnboardingIncomplete))
}
