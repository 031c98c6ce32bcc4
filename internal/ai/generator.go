package ai

import (
	"context"

	"fitcoach/coach-app/internal/domain"
)

// PlanRequest carries everything the model needs to build a schedule.
// Exactly one of Adaptive or Goal is set, matching PlanType.
type PlanRequest struct {
	Profile  domain.Profile
	Adaptive *domain.AdaptiveProfile
	Goal     *domain.GoalProgram
	PlanType domain.PlanType
	Days     int
}

// PlanGenerator produces a structured multi-day plan from intake data.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, req PlanRequest) (*domain.PlanStructure, error)
}
