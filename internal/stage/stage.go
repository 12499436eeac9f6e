// Package stage implements the twelve-stage project lifecycle. Stages 1 to 6
// are the customer's onboarding, 7 to 12 are driven by the assigned PM.
package stage

import (
	"errors"
	"fmt"
	"time"

	"github.com/storefront/backend/internal/model"
)

const (
	First          = 1
	LastOnboarding = 6
	FirstDelivery  = 7
	Completion     = 11
	Last           = 12
)

var (
	ErrInvalidStage     = errors.New("invalid stage")
	ErrProjectCancelled = errors.New("project is cancelled")
)

// IsDelivery reports whether step belongs to the PM-driven range.
func IsDelivery(step int) bool {
	return step >= FirstDelivery && step <= Last
}

// StatusFor derives the project status from the current step.
func StatusFor(step int) model.ProjectStatus {
	switch {
	case step >= Completion:
		return model.StatusCompleted
	case step >= FirstDelivery:
		return model.StatusInProgress
	default:
		return model.StatusPMAssigned
	}
}

// Kind names a transition.
type Kind string

const (
	KindCreate  Kind = "create"
	KindAdvance Kind = "advance"
	KindJump    Kind = "jump"
	KindCancel  Kind = "cancel"
)

// Transition is a requested change to a project's stage.
type Transition struct {
	Kind   Kind
	Target int
}

func Advance() Transition          { return Transition{Kind: KindAdvance} }
func JumpTo(target int) Transition { return Transition{Kind: KindJump, Target: target} }
func Cancel() Transition           { return Transition{Kind: KindCancel} }

// Result is the outcome of applying a transition.
type Result struct {
	Kind    Kind
	From    int
	To      int
	Status  model.ProjectStatus
	Changed bool
}

// Apply validates t against the project's current state. It does not
// mutate p; use Result.ApplyTo.
func Apply(p *model.Project, t Transition) (Result, error) {
	if p.Status == model.StatusCancelled {
		return Result{}, ErrProjectCancelled
	}
	from := p.CurrentStep
	if !IsDelivery(from) {
		return Result{}, fmt.Errorf("%w: project at stage %d", ErrInvalidStage, from)
	}
	r := Result{Kind: t.Kind, From: from}

	switch t.Kind {
	case KindAdvance:
		if from == Last {
			r.To, r.Status = from, p.Status
			return r, nil
		}
		r.To = from + 1
	case KindJump:
		if !IsDelivery(t.Target) {
			return Result{}, fmt.Errorf("%w: %d is outside %d-%d", ErrInvalidStage, t.Target, FirstDelivery, Last)
		}
		// Jumping to the current stage confirms it; a no-op once confirmed.
		if t.Target == from && p.PMApprovedStep == from && p.Status == StatusFor(from) {
			r.To, r.Status = from, p.Status
			return r, nil
		}
		r.To = t.Target
	case KindCancel:
		r.To = from
		r.Status = model.StatusCancelled
		r.Changed = true
		return r, nil
	default:
		return Result{}, fmt.Errorf("%w: unknown transition %q", ErrInvalidStage, t.Kind)
	}

	r.Status = StatusFor(r.To)
	r.Changed = true
	return r, nil
}

// ApplyTo writes a changed result onto p. The approval watermark follows
// every PM-driven stage change.
func (r Result) ApplyTo(p *model.Project, now time.Time) {
	if !r.Changed {
		return
	}
	p.Status = r.Status
	if r.Kind == KindCancel {
		p.CancelledAt = &now
		return
	}
	p.CurrentStep = r.To
	p.PMApprovedStep = r.To
}
