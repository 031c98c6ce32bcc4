package ai

import (
	"testing"

	"fitcoach/coach-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPlanPrompt_Adaptive(t *testing.T) {
	req := PlanRequest{
		Profile: domain.Profile{
			Gender:          "female",
			Age:             34,
			CurrentWeightKg: 68,
		},
		Adaptive: &domain.AdaptiveProfile{
			AffectedLimbs: "left leg",
			Purposes:      []string{"mobility", "strength"},
		},
		PlanType: domain.PlanAdaptive,
		Days:     14,
	}

	prompt, err := BuildPlanPrompt(req)
	require.NoError(t, err)
	assert.Contains(t, prompt, "14-day")
	assert.Contains(t, prompt, "left leg")
	assert.Contains(t, prompt, "mobility, strength")
	assert.Contains(t, prompt, `"day": <int starting at 1>`)
}

func TestBuildPlanPrompt_GoalBased(t *testing.T) {
	req := PlanRequest{
		Profile: domain.Profile{Age: 28},
		Goal: &domain.GoalProgram{
			PrimaryGoal:        "weight_loss",
			WorkoutDaysPerWeek: 4,
			HasGymAccess:       true,
		},
		PlanType: domain.PlanGoalBased,
	}

	prompt, err := BuildPlanPrompt(req)
	require.NoError(t, err)
	assert.Contains(t, prompt, "weight_loss")
	assert.Contains(t, prompt, "Workout days per week: 4")
	assert.Contains(t, prompt, "gym access")
}

func TestBuildPlanPrompt_MissingProgram(t *testing.T) {
	_, err := BuildPlanPrompt(PlanRequest{PlanType: domain.PlanAdaptive})
	assert.Error(t, err)

	_, err = BuildPlanPrompt(PlanRequest{PlanType: domain.PlanGoalBased})
	assert.Error(t, err)
}

func TestParsePlanResponse(t *testing.T) {
	raw := "```json\n" + `{
		"overview": {"totalDays": 2, "activeDays": 1, "restDays": 1},
		"days": [
			{"day": 1, "type": "workout", "workout": {"exercises": [
				{"name": "Push-ups", "setsReps": "3x10"}
			]}},
			{"day": 2, "type": "rest", "nutrition": {"totalCalories": 1800}}
		]
	}` + "\n```"

	plan, err := ParsePlanResponse(raw)
	require.NoError(t, err)
	require.Len(t, plan.Days, 2)
	assert.Equal(t, domain.DayWorkout, plan.Days[0].Type)
	assert.Equal(t, "Push-ups", plan.Days[0].Workout.Exercises[0].Name)
	assert.Equal(t, domain.DayRest, plan.Days[1].Type)
	assert.Equal(t, 1800, plan.Days[1].Nutrition.TotalCalories)
}

func TestParsePlanResponse_Invalid(t *testing.T) {
	_, err := ParsePlanResponse("not json at all")
	assert.Error(t, err)

	_, err = ParsePlanResponse(`{"overview": {}, "days": []}`)
	assert.Error(t, err)
}
