package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fitcoach/coach-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Five-day fixture: workout days 1, 3, 5 with three exercises each, rest
// days 2 and 4. Every day targets 2000 kcal over four meals.
func testPlan() *domain.FitnessPlan {
	nutrition := func() *domain.PlanNutrition {
		return &domain.PlanNutrition{
			Breakfast:     domain.PlanMeal{Description: "Oatmeal", Calories: 400},
			Lunch:         domain.PlanMeal{Description: "Chicken salad", Calories: 700},
			Dinner:        domain.PlanMeal{Description: "Salmon and rice", Calories: 600},
			Snack:         domain.PlanMeal{Description: "Greek yogurt", Calories: 300},
			TotalCalories: 2000,
		}
	}
	workout := func() *domain.PlanWorkout {
		return &domain.PlanWorkout{
			Focus: "full body",
			Exercises: []domain.PlanExercise{
				{Name: "Squats", SetsReps: "3x12"},
				{Name: "Push-ups", SetsReps: "3x10"},
				{Name: "Plank", SetsReps: "3x45s"},
			},
		}
	}

	plan := &domain.FitnessPlan{
		ID:          primitive.NewObjectID(),
		GeneratedAt: time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC),
	}
	for day := 1; day <= 5; day++ {
		planDay := domain.PlanDay{Day: day, Nutrition: nutrition()}
		if day%2 == 1 {
			planDay.Type = domain.DayWorkout
			planDay.Workout = workout()
		} else {
			planDay.Type = domain.DayRest
		}
		plan.Plan.Days = append(plan.Plan.Days, planDay)
	}
	plan.Plan.Overview = domain.PlanOverview{TotalDays: 5, ActiveDays: 3, RestDays: 2}
	return plan
}

type progressFixture struct {
	service   ProgressService
	user      *domain.User
	plan      *domain.FitnessPlan
	logs      *fakeLogRepo
	nutrition *fakeNutritionRepo
	progress  *fakeProgressRepo
}

func newProgressFixture(t *testing.T) *progressFixture {
	t.Helper()

	planRepo := newFakePlanRepo()
	plan := testPlan()
	planRepo.plans[plan.ID] = plan

	logs := &fakeLogRepo{}
	nutrition := newFakeNutritionRepo()
	progress := newFakeProgressRepo()

	planID := plan.ID
	user := &domain.User{ID: primitive.NewObjectID(), FitnessPlanID: &planID}

	return &progressFixture{
		service:   NewProgressService(planRepo, logs, nutrition, progress),
		user:      user,
		plan:      plan,
		logs:      logs,
		nutrition: nutrition,
		progress:  progress,
	}
}

func (f *progressFixture) addLog(day, exercise int, status domain.Status) {
	entry := &domain.ExerciseLog{
		UserID:         f.user.ID,
		DayNumber:      day,
		ExerciseNumber: exercise,
		Date:           time.Now().UTC(),
		Status:         status,
	}
	if status == domain.StatusCompleted {
		entry.ActualSets = 3
		entry.ActualReps = 12
	} else {
		entry.SkipReason = "tired"
	}
	_, _ = f.logs.Create(context.Background(), entry)
}

func TestGetDayProgress_RebuildsAndPersistsOnEveryRead(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	snap, err := f.service.GetDayProgress(ctx, f.user, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, f.progress.upserts)
	assert.Equal(t, domain.DayWorkout, snap.DayType)
	assert.Equal(t, 3, snap.ExerciseProgress.TotalExercises)
	assert.Equal(t, 3, snap.ExerciseProgress.PendingExercises)
	assert.Equal(t, 4, snap.NutritionProgress.TotalMeals)
	assert.Equal(t, 4, snap.NutritionProgress.PendingMeals)
	assert.Equal(t, 2000, snap.NutritionProgress.TargetCalories)
	assert.Equal(t, 0, snap.OverallProgress.CompletionPercentage)

	// A log written straight to the store, bypassing any refresh, shows
	// up on the next read: reads never serve the stored document as-is.
	f.addLog(1, 1, domain.StatusCompleted)
	snap, err = f.service.GetDayProgress(ctx, f.user, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, f.progress.upserts)
	assert.Equal(t, 1, snap.ExerciseProgress.CompletedExercises)
	assert.Equal(t, 2, snap.ExerciseProgress.PendingExercises)

	stored, err := f.progress.GetByDay(ctx, f.user.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ExerciseProgress.CompletedExercises)
}

func TestRefreshDay_CountsPartition(t *testing.T) {
	f := newProgressFixture(t)
	f.addLog(1, 1, domain.StatusCompleted)
	f.addLog(1, 2, domain.StatusSkipped)

	snap, err := f.service.RefreshDay(context.Background(), f.user, 1)
	require.NoError(t, err)

	ep := snap.ExerciseProgress
	assert.Equal(t, ep.TotalExercises, ep.CompletedExercises+ep.SkippedExercises+ep.PendingExercises)
	assert.Equal(t, 1, ep.CompletedExercises)
	assert.Equal(t, 1, ep.SkippedExercises)
	assert.Equal(t, 1, ep.PendingExercises)
	// 2 of 3 resolved: skipping counts toward completion.
	assert.Equal(t, 67, ep.CompletionPercentage)
	assert.False(t, snap.OverallProgress.IsExerciseComplete)

	// Slot detail mirrors the plan and the logs.
	require.Len(t, ep.Exercises, 3)
	assert.Equal(t, "Squats", ep.Exercises[0].ExerciseName)
	assert.Equal(t, domain.StatusCompleted, ep.Exercises[0].Status)
	assert.Equal(t, domain.StatusSkipped, ep.Exercises[1].Status)
	assert.Equal(t, "tired", ep.Exercises[1].SkipReason)
	assert.Equal(t, domain.StatusPending, ep.Exercises[2].Status)
}

func TestRefreshDay_LatestLogPerSlotWins(t *testing.T) {
	f := newProgressFixture(t)
	f.addLog(1, 1, domain.StatusCompleted)
	f.addLog(1, 1, domain.StatusSkipped) // relog of the same slot

	snap, err := f.service.RefreshDay(context.Background(), f.user, 1)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusSkipped, snap.ExerciseProgress.Exercises[0].Status)
	assert.Equal(t, 0, snap.ExerciseProgress.CompletedExercises)
	assert.Equal(t, 1, snap.ExerciseProgress.SkippedExercises)
}

func TestRefreshDay_IgnoresOutOfRangeLogs(t *testing.T) {
	f := newProgressFixture(t)
	f.addLog(1, 9, domain.StatusCompleted) // slot 9 does not exist on day 1

	snap, err := f.service.RefreshDay(context.Background(), f.user, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.ExerciseProgress.CompletedExercises)
	assert.Equal(t, 3, snap.ExerciseProgress.PendingExercises)
}

func TestRefreshDay_RestDay(t *testing.T) {
	f := newProgressFixture(t)

	snap, err := f.service.RefreshDay(context.Background(), f.user, 2)
	require.NoError(t, err)

	assert.Equal(t, domain.DayRest, snap.DayType)
	assert.Equal(t, 0, snap.ExerciseProgress.TotalExercises)
	assert.True(t, snap.OverallProgress.IsExerciseComplete)
	assert.Equal(t, 100, snap.ExerciseProgress.CompletionPercentage)
	assert.False(t, snap.OverallProgress.IsDayComplete)
	assert.Equal(t, 50, snap.OverallProgress.CompletionPercentage)
}

func TestRefreshDay_NutritionFromLog(t *testing.T) {
	f := newProgressFixture(t)

	now := time.Now().UTC()
	_ = f.nutrition.Upsert(context.Background(), &domain.NutritionLog{
		UserID:        f.user.ID,
		Day:           1,
		Date:          now,
		TotalCalories: 2000,
		Meals: domain.Meals{
			Breakfast: domain.MealEntry{Calories: 400, Status: domain.StatusCompleted, CompletedAt: &now},
			Lunch:     domain.MealEntry{Calories: 700, Status: domain.StatusCompleted, CompletedAt: &now},
			Dinner:    domain.MealEntry{Status: domain.StatusSkipped, SkipReason: "ate out"},
			Snack:     domain.MealEntry{Status: domain.StatusPending},
		},
		ConsumedCalories: 1100,
	})

	snap, err := f.service.RefreshDay(context.Background(), f.user, 1)
	require.NoError(t, err)

	np := snap.NutritionProgress
	assert.Equal(t, 2, np.CompletedMeals)
	assert.Equal(t, 1, np.SkippedMeals)
	assert.Equal(t, 1, np.PendingMeals)
	assert.Equal(t, 75, np.CompletionPercentage)
	assert.Equal(t, 1100, np.ConsumedCalories)
	assert.Equal(t, 55, np.CaloriesPercentage)
	assert.Equal(t, "ate out", np.Meals.Dinner.SkipReason)
	assert.False(t, snap.OverallProgress.IsNutritionComplete)
}

func TestRefreshDay_FullDayComplete(t *testing.T) {
	f := newProgressFixture(t)
	for slot := 1; slot <= 3; slot++ {
		f.addLog(1, slot, domain.StatusCompleted)
	}
	now := time.Now().UTC()
	_ = f.nutrition.Upsert(context.Background(), &domain.NutritionLog{
		UserID:        f.user.ID,
		Day:           1,
		Date:          now,
		TotalCalories: 2000,
		Meals: domain.Meals{
			Breakfast: domain.MealEntry{Calories: 400, Status: domain.StatusCompleted, CompletedAt: &now},
			Lunch:     domain.MealEntry{Calories: 700, Status: domain.StatusCompleted, CompletedAt: &now},
			Dinner:    domain.MealEntry{Calories: 600, Status: domain.StatusCompleted, CompletedAt: &now},
			Snack:     domain.MealEntry{Status: domain.StatusSkipped, SkipReason: "full"},
		},
		ConsumedCalories: 1700,
	})

	snap, err := f.service.RefreshDay(context.Background(), f.user, 1)
	require.NoError(t, err)

	assert.True(t, snap.OverallProgress.IsExerciseComplete)
	assert.True(t, snap.OverallProgress.IsNutritionComplete)
	assert.True(t, snap.OverallProgress.IsDayComplete)
	assert.Equal(t, 100, snap.OverallProgress.CompletionPercentage)
}

func TestRefreshDay_IdempotentAndMonotonic(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()
	f.addLog(1, 1, domain.StatusCompleted)

	first, err := f.service.RefreshDay(ctx, f.user, 1)
	require.NoError(t, err)
	second, err := f.service.RefreshDay(ctx, f.user, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ExerciseProgress, second.ExerciseProgress)
	assert.Equal(t, first.OverallProgress, second.OverallProgress)

	// Resolving more slots never lowers the percentage.
	f.addLog(1, 2, domain.StatusSkipped)
	third, err := f.service.RefreshDay(ctx, f.user, 1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t,
		third.ExerciseProgress.CompletionPercentage,
		second.ExerciseProgress.CompletionPercentage)
}

func TestRefreshDay_Errors(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	_, err := f.service.RefreshDay(ctx, f.user, 99)
	assert.ErrorIs(t, err, ErrDayNotInPlan)

	noPlanUser := &domain.User{ID: primitive.NewObjectID()}
	_, err = f.service.RefreshDay(ctx, noPlanUser, 1)
	assert.ErrorIs(t, err, ErrNoPlanAssigned)

	danglingID := primitive.NewObjectID()
	danglingUser := &domain.User{ID: primitive.NewObjectID(), FitnessPlanID: &danglingID}
	_, err = f.service.RefreshDay(ctx, danglingUser, 1)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestGetCurrentProgress(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	_, err := f.service.GetCurrentProgress(ctx, f.user)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	_, err = f.service.RefreshDay(ctx, f.user, 1)
	require.NoError(t, err)
	_, err = f.service.RefreshDay(ctx, f.user, 3)
	require.NoError(t, err)

	current, err := f.service.GetCurrentProgress(ctx, f.user)
	require.NoError(t, err)
	assert.Equal(t, 3, current.Day)
}

func TestGetRangeProgress_SkipsFailingDays(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	for day := 1; day <= 5; day++ {
		_, err := f.service.RefreshDay(ctx, f.user, day)
		require.NoError(t, err)
	}
	// Day 3's snapshot write blows up; the range must carry on without it.
	f.progress.failDays = map[int]error{3: errors.New("boom")}

	summary, err := f.service.GetRangeProgress(ctx, f.user, 1, 5)
	require.NoError(t, err)

	assert.Equal(t, 5, summary.DaysRequested)
	assert.Equal(t, 4, summary.DaysReturned)
	require.Len(t, summary.Days, 4)
	for _, day := range summary.Days {
		assert.NotEqual(t, 3, day.Day)
	}
}

func TestGetRangeProgress_Validation(t *testing.T) {
	f := newProgressFixture(t)

	_, err := f.service.GetRangeProgress(context.Background(), f.user, 0, 5)
	assert.ErrorIs(t, err, ErrInvalidDayRange)

	_, err = f.service.GetRangeProgress(context.Background(), f.user, 4, 2)
	assert.ErrorIs(t, err, ErrInvalidDayRange)

	noPlanUser := &domain.User{ID: primitive.NewObjectID()}
	_, err = f.service.GetRangeProgress(context.Background(), noPlanUser, 1, 5)
	assert.ErrorIs(t, err, ErrNoPlanAssigned)
}

func TestGetWeeklyProgress(t *testing.T) {
	f := newProgressFixture(t)
	f.addLog(1, 1, domain.StatusCompleted)
	f.addLog(1, 2, domain.StatusSkipped)

	// Week 1 spans days 1..7 but the plan ends at day 5; the two
	// out-of-plan days are skipped, not fatal.
	summary, err := f.service.GetWeeklyProgress(context.Background(), f.user, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Week)
	assert.Equal(t, 1, summary.StartDay)
	assert.Equal(t, 7, summary.EndDay)
	assert.Equal(t, 7, summary.DaysRequested)
	assert.Equal(t, 5, summary.DaysReturned)

	// Exercise axis summed over the 3 workout days (3 slots each).
	es := summary.ExerciseStats
	assert.Equal(t, 9, es.TotalExercises)
	assert.Equal(t, 1, es.CompletedExercises)
	assert.Equal(t, 1, es.SkippedExercises)
	assert.Equal(t, 7, es.PendingExercises)
	assert.Equal(t, 2, es.Done)
	// round(100 * 2/9)
	assert.Equal(t, 22, es.CompletionRate)

	// Nutrition axis summed over all 5 returned days, nothing logged.
	ns := summary.NutritionStats
	assert.Equal(t, 20, ns.TotalMeals)
	assert.Equal(t, 20, ns.PendingMeals)
	assert.Equal(t, 0, ns.Done)
	assert.Equal(t, 0, ns.CompletionRate)
	assert.Equal(t, 10000, ns.TargetCalories)
	assert.Equal(t, 0, ns.ConsumedCalories)
	assert.Equal(t, 0, ns.CalorieCompletionRate)

	_, err = f.service.GetWeeklyProgress(context.Background(), f.user, 0)
	assert.ErrorIs(t, err, ErrInvalidDayRange)
}

func TestGetOverallProgress(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	empty, err := f.service.GetOverallProgress(ctx, f.user)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalDaysTracked)
	assert.Empty(t, empty.RecentDays)
	// The plan's shape is reported even before any day is tracked.
	assert.Equal(t, ProgramInfo{TotalDays: 5, ActiveDays: 3, RestDays: 2}, empty.ProgramInfo)
	assert.Equal(t, 0, empty.OverallCompletionPercentage)

	noPlanUser := &domain.User{ID: primitive.NewObjectID()}
	_, err = f.service.GetOverallProgress(ctx, noPlanUser)
	assert.ErrorIs(t, err, ErrNoPlanAssigned)

	// Day 1 fully logged, day 2 rest day untouched.
	for slot := 1; slot <= 3; slot++ {
		f.addLog(1, slot, domain.StatusCompleted)
	}
	now := time.Now().UTC()
	_ = f.nutrition.Upsert(ctx, &domain.NutritionLog{
		UserID: f.user.ID, Day: 1, Date: now, TotalCalories: 2000,
		Meals: domain.Meals{
			Breakfast: domain.MealEntry{Calories: 400, Status: domain.StatusCompleted, CompletedAt: &now},
			Lunch:     domain.MealEntry{Calories: 700, Status: domain.StatusCompleted, CompletedAt: &now},
			Dinner:    domain.MealEntry{Calories: 600, Status: domain.StatusCompleted, CompletedAt: &now},
			Snack:     domain.MealEntry{Calories: 300, Status: domain.StatusCompleted, CompletedAt: &now},
		},
		ConsumedCalories: 2000,
	})
	_, err = f.service.RefreshDay(ctx, f.user, 1)
	require.NoError(t, err)
	_, err = f.service.RefreshDay(ctx, f.user, 2)
	require.NoError(t, err)

	summary, err := f.service.GetOverallProgress(ctx, f.user)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalDaysTracked)
	assert.Equal(t, 1, summary.DaysCompleted)
	assert.Equal(t, 2, summary.CurrentDay)
	// 1 complete day of a 5-day plan: round(100 * 1/5).
	assert.Equal(t, 20, summary.OverallCompletionPercentage)
	// Day 1 at 100%, day 2 at 50% (rest day, meals pending).
	assert.Equal(t, 75, summary.AverageCompletion)
	// 2000 kcal over 2 tracked days.
	assert.Equal(t, 1000, summary.AvgDailyCalories)

	// Exercise axis: day 1's three slots, all completed; day 2 is rest.
	assert.Equal(t, 3, summary.ExerciseStats.TotalExercises)
	assert.Equal(t, 3, summary.ExerciseStats.CompletedExercises)
	assert.Equal(t, 3, summary.ExerciseStats.Done)
	assert.Equal(t, 100, summary.ExerciseStats.CompletionRate)

	// Nutrition axis: day 1 fully eaten, day 2 untouched.
	ns := summary.NutritionStats
	assert.Equal(t, 8, ns.TotalMeals)
	assert.Equal(t, 4, ns.CompletedMeals)
	assert.Equal(t, 4, ns.PendingMeals)
	assert.Equal(t, 50, ns.CompletionRate)
	assert.Equal(t, 4000, ns.TargetCalories)
	assert.Equal(t, 2000, ns.ConsumedCalories)
	assert.Equal(t, 50, ns.CalorieCompletionRate)

	assert.Len(t, summary.RecentDays, 2)
}

func TestGetOverallProgress_RecentDaysCap(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	// Seed nine snapshots directly; only the last seven come back.
	for day := 1; day <= 9; day++ {
		require.NoError(t, f.progress.Upsert(ctx, &domain.DayProgress{
			UserID: f.user.ID,
			Day:    day,
		}))
	}

	summary, err := f.service.GetOverallProgress(ctx, f.user)
	require.NoError(t, err)
	require.Len(t, summary.RecentDays, 7)
	assert.Equal(t, 3, summary.RecentDays[0].Day)
	assert.Equal(t, 9, summary.RecentDays[6].Day)
	assert.Equal(t, 9, summary.CurrentDay)
}

func TestDeleteDayProgress(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	err := f.service.DeleteDayProgress(ctx, f.user, 1)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	_, err = f.service.RefreshDay(ctx, f.user, 1)
	require.NoError(t, err)
	require.NoError(t, f.service.DeleteDayProgress(ctx, f.user, 1))

	_, err = f.progress.GetByDay(ctx, f.user.ID, 1)
	assert.Error(t, err)
}
