package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0, Percentage(5, 0))
	assert.Equal(t, 0, Percentage(0, 10))
	assert.Equal(t, 100, Percentage(10, 10))
	assert.Equal(t, 67, Percentage(2, 3))
	assert.Equal(t, 33, Percentage(1, 3))
	assert.Equal(t, 50, Percentage(1, 2))
}

func workoutDayProgress(total, completed, skipped int) *DayProgress {
	return &DayProgress{
		DayType: DayWorkout,
		ExerciseProgress: ExerciseProgress{
			TotalExercises:     total,
			CompletedExercises: completed,
			SkippedExercises:   skipped,
			PendingExercises:   total - completed - skipped,
		},
		NutritionProgress: NutritionProgress{
			TotalMeals:   4,
			PendingMeals: 4,
		},
	}
}

func TestRecompute_WorkoutDayPartial(t *testing.T) {
	// 3 exercises: 1 completed, 1 skipped, 1 pending.
	p := workoutDayProgress(3, 1, 1)
	p.Recompute()

	assert.Equal(t, 67, p.ExerciseProgress.CompletionPercentage)
	assert.False(t, p.OverallProgress.IsExerciseComplete)
	assert.False(t, p.OverallProgress.IsDayComplete)
	assert.Equal(t, 3, p.ExerciseProgress.CompletedExercises+
		p.ExerciseProgress.SkippedExercises+p.ExerciseProgress.PendingExercises)
	assert.False(t, p.LastUpdated.IsZero())
}

func TestRecompute_SkipCountsAsDone(t *testing.T) {
	// Skipping every exercise resolves the day's exercise axis.
	p := workoutDayProgress(4, 0, 4)
	p.Recompute()

	assert.True(t, p.OverallProgress.IsExerciseComplete)
	assert.Equal(t, 100, p.ExerciseProgress.CompletionPercentage)
}

func TestRecompute_WorkoutDayNoExercises(t *testing.T) {
	// A workout day with zero planned exercises never reads as complete.
	p := workoutDayProgress(0, 0, 0)
	p.Recompute()

	assert.False(t, p.OverallProgress.IsExerciseComplete)
	assert.Equal(t, 0, p.ExerciseProgress.CompletionPercentage)
}

func TestRecompute_RestDayAutoComplete(t *testing.T) {
	p := &DayProgress{
		DayType: DayRest,
		NutritionProgress: NutritionProgress{
			TotalMeals:   4,
			PendingMeals: 4,
		},
	}
	p.Recompute()

	assert.True(t, p.OverallProgress.IsExerciseComplete)
	assert.Equal(t, 100, p.ExerciseProgress.CompletionPercentage)
	// Nutrition still pending, so the day is not complete.
	assert.False(t, p.OverallProgress.IsDayComplete)
	// 50/50 weighting holds on rest days too.
	assert.Equal(t, 50, p.OverallProgress.CompletionPercentage)
}

func TestRecompute_FullDayComplete(t *testing.T) {
	p := workoutDayProgress(2, 2, 0)
	p.NutritionProgress.CompletedMeals = 3
	p.NutritionProgress.SkippedMeals = 1
	p.NutritionProgress.PendingMeals = 0
	p.NutritionProgress.TargetCalories = 2000
	p.NutritionProgress.ConsumedCalories = 1500
	p.Recompute()

	assert.True(t, p.OverallProgress.IsExerciseComplete)
	assert.True(t, p.OverallProgress.IsNutritionComplete)
	assert.True(t, p.OverallProgress.IsDayComplete)
	assert.Equal(t, 100, p.OverallProgress.CompletionPercentage)
	assert.Equal(t, 75, p.NutritionProgress.CaloriesPercentage)
}

func TestRecompute_Idempotent(t *testing.T) {
	p := workoutDayProgress(3, 1, 1)
	p.Recompute()
	first := *p
	p.Recompute()

	// Everything except the timestamp is stable across recomputes.
	p.LastUpdated = first.LastUpdated
	require.Equal(t, first, *p)
}
