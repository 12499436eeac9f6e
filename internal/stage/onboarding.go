package stage

import (
	"errors"
	"fmt"

	"github.com/storefront/backend/internal/model"
)

// ErrOnboardingIncomplete is returned when the customer tries to leave an
// onboarding stage without the answer it requires.
var ErrOnboardingIncomplete = errors.New("onboarding incomplete")

// CanLeaveOnboarding checks the precondition for leaving step.
func CanLeaveOnboarding(step int, a model.OnboardingAnswers) error {
	switch step {
	case 1:
		if a.BusinessCategory == "" {
			return fmt.Errorf("%w: business category is required", ErrOnboardingIncomplete)
		}
	case 2:
		if a.LocationDistrict == "" {
			return fmt.Errorf("%w: location district is required", ErrOnboardingIncomplete)
		}
	case 4:
		if a.StoreSize <= 0 {
			return fmt.Errorf("%w: store size must be positive", ErrOnboardingIncomplete)
		}
		if a.StoreFloor != "" && !a.StoreFloor.Valid() {
			return fmt.Errorf("%w: unknown store floor %q", ErrOnboardingIncomplete, a.StoreFloor)
		}
	case 3, 5, 6:
	default:
		return fmt.Errorf("%w: %d is not an onboarding stage", ErrInvalidStage, step)
	}
	return nil
}

// NextOnboardingStep returns the stage after step. Leaving stage 6 means
// project creation, so it returns FirstDelivery once every answer is present.
func NextOnboardingStep(step int, a model.OnboardingAnswers) (int, error) {
	if err := CanLeaveOnboarding(step, a); err != nil {
		return step, err
	}
	if step == LastOnboarding {
		if err := ValidateComplete(a); err != nil {
			return step, err
		}
		return FirstDelivery, nil
	}
	return step + 1, nil
}

// ValidateComplete checks every onboarding precondition at once, as needed
// before a project is created.
func ValidateComplete(a model.OnboardingAnswers) error {
	for step := First; step <= LastOnboarding; step++ {
		if err := CanLeaveOnboarding(step, a); err != nil {
			return err
		}
	}
	if !a.StoreFloor.Valid() {
		return fmt.Errorf("%w: store floor is required", ErrOnboardingIncomplete)
	}
	return nil
}
