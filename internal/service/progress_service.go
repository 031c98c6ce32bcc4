package service

import (
	"context"
	"errors"
	"math"
	"time"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/repository"

	log "github.com/sirupsen/logrus"
)

// --- Error Definitions ---
var (
	ErrDayNotInPlan     = errors.New("day not found in plan")
	ErrSnapshotNotFound = errors.New("progress snapshot not found")
	ErrInvalidDayRange  = errors.New("invalid day range")
)

// ExerciseStats sums the exercise axis over a set of day snapshots. Done
// counts completed plus skipped slots; the rate is done-based.
type ExerciseStats struct {
	TotalExercises     int `json:"totalExercises"`
	CompletedExercises int `json:"completedExercises"`
	SkippedExercises   int `json:"skippedExercises"`
	PendingExercises   int `json:"pendingExercises"`
	Done               int `json:"done"`
	CompletionRate     int `json:"completionRate"`
}

func (s *ExerciseStats) add(p domain.ExerciseProgress) {
	s.TotalExercises += p.TotalExercises
	s.CompletedExercises += p.CompletedExercises
	s.SkippedExercises += p.SkippedExercises
	s.PendingExercises += p.PendingExercises
}

func (s *ExerciseStats) finalize() {
	s.Done = s.CompletedExercises + s.SkippedExercises
	s.CompletionRate = domain.Percentage(s.Done, s.TotalExercises)
}

// NutritionStats sums the nutrition axis over a set of day snapshots.
type NutritionStats struct {
	TotalMeals            int `json:"totalMeals"`
	CompletedMeals        int `json:"completedMeals"`
	SkippedMeals          int `json:"skippedMeals"`
	PendingMeals          int `json:"pendingMeals"`
	Done                  int `json:"done"`
	CompletionRate        int `json:"completionRate"`
	TargetCalories        int `json:"targetCalories"`
	ConsumedCalories      int `json:"consumedCalories"`
	CalorieCompletionRate int `json:"calorieCompletionRate"`
}

func (s *NutritionStats) add(p domain.NutritionProgress) {
	s.TotalMeals += p.TotalMeals
	s.CompletedMeals += p.CompletedMeals
	s.SkippedMeals += p.SkippedMeals
	s.PendingMeals += p.PendingMeals
	s.TargetCalories += p.TargetCalories
	s.ConsumedCalories += p.ConsumedCalories
}

func (s *NutritionStats) finalize() {
	s.Done = s.CompletedMeals + s.SkippedMeals
	s.CompletionRate = domain.Percentage(s.Done, s.TotalMeals)
	s.CalorieCompletionRate = domain.Percentage(s.ConsumedCalories, s.TargetCalories)
}

// RangeSummary aggregates snapshots over a span of plan days. Days whose
// snapshot could not be produced are skipped and only counted in
// DaysRequested, so one broken day never sinks the whole range.
type RangeSummary struct {
	StartDay          int                  `json:"startDay"`
	EndDay            int                  `json:"endDay"`
	DaysRequested     int                  `json:"daysRequested"`
	DaysReturned      int                  `json:"daysReturned"`
	DaysCompleted     int                  `json:"daysCompleted"`
	AverageCompletion int                  `json:"averageCompletion"`
	ExerciseStats     ExerciseStats        `json:"exerciseStats"`
	NutritionStats    NutritionStats       `json:"nutritionStats"`
	Days              []domain.DayProgress `json:"days"`
}

// WeeklySummary is a RangeSummary pinned to one 7-day plan week.
type WeeklySummary struct {
	Week int `json:"week"`
	RangeSummary
}

// ProgramInfo describes the shape of the assigned plan.
type ProgramInfo struct {
	TotalDays  int `json:"totalDays"`
	ActiveDays int `json:"activeDays"`
	RestDays   int `json:"restDays"`
}

// OverallSummary aggregates every snapshot the user has against the
// assigned plan.
type OverallSummary struct {
	ProgramInfo                 ProgramInfo          `json:"programInfo"`
	TotalDaysTracked            int                  `json:"totalDaysTracked"`
	DaysCompleted               int                  `json:"daysCompleted"`
	CurrentDay                  int                  `json:"currentDay"`
	OverallCompletionPercentage int                  `json:"overallCompletionPercentage"`
	AverageCompletion           int                  `json:"averageCompletion"`
	AvgDailyCalories            int                  `json:"avgDailyCalories"`
	ExerciseStats               ExerciseStats        `json:"exerciseStats"`
	NutritionStats              NutritionStats       `json:"nutritionStats"`
	RecentDays                  []domain.DayProgress `json:"recentDays"`
}

// ProgressService reconciles the plan's targets with the user's logs into
// per-day snapshots and aggregates over them.
type ProgressService interface {
	GetDayProgress(ctx context.Context, user *domain.User, day int) (*domain.DayProgress, error)
	GetCurrentProgress(ctx context.Context, user *domain.User) (*domain.DayProgress, error)
	RefreshDay(ctx context.Context, user *domain.User, day int) (*domain.DayProgress, error)
	GetRangeProgress(ctx context.Context, user *domain.User, startDay, endDay int) (*RangeSummary, error)
	GetWeeklyProgress(ctx context.Context, user *domain.User, week int) (*WeeklySummary, error)
	GetOverallProgress(ctx context.Context, user *domain.User) (*OverallSummary, error)
	DeleteDayProgress(ctx context.Context, user *domain.User, day int) error
}

type progressService struct {
	planRepo      repository.FitnessPlanRepository
	logRepo       repository.ExerciseLogRepository
	nutritionRepo repository.NutritionRepository
	progressRepo  repository.DayProgressRepository
}

// NewProgressService creates a new instance of progressService.
func NewProgressService(
	planRepo repository.FitnessPlanRepository,
	logRepo repository.ExerciseLogRepository,
	nutritionRepo repository.NutritionRepository,
	progressRepo repository.DayProgressRepository,
) ProgressService {
	return &progressService{
		planRepo:      planRepo,
		logRepo:       logRepo,
		nutritionRepo: nutritionRepo,
		progressRepo:  progressRepo,
	}
}

// GetDayProgress rebuilds the day's snapshot from the plan and the logs
// on every read, then persists it. Reads never serve a stored document
// as-is: a refresh that failed after a log write must not pin stale data.
func (s *progressService) GetDayProgress(ctx context.Context, user *domain.User, day int) (*domain.DayProgress, error) {
	return s.RefreshDay(ctx, user, day)
}

// GetCurrentProgress returns the most recent snapshot the user has.
func (s *progressService) GetCurrentProgress(ctx context.Context, user *domain.User) (*domain.DayProgress, error) {
	snapshot, err := s.progressRepo.GetLatestByUser(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	return snapshot, nil
}

// RefreshDay rebuilds one day's snapshot from the plan and the logs, then
// upserts it. Safe to call concurrently: the snapshot is fully derived, so
// racing writers converge on equivalent documents.
func (s *progressService) RefreshDay(ctx context.Context, user *domain.User, day int) (*domain.DayProgress, error) {
	if day < 1 {
		return nil, ErrDayNotInPlan
	}

	plan, err := s.planForUser(ctx, user)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.buildDay(ctx, user, plan, day)
	if err != nil {
		return nil, err
	}
	if err := s.progressRepo.Upsert(ctx, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// GetRangeProgress summarizes a span of plan days. Individual day failures
// are logged and skipped.
func (s *progressService) GetRangeProgress(ctx context.Context, user *domain.User, startDay, endDay int) (*RangeSummary, error) {
	if startDay < 1 || endDay < startDay {
		return nil, ErrInvalidDayRange
	}

	// A missing plan fails the whole request; per-day errors do not.
	if _, err := s.planForUser(ctx, user); err != nil {
		return nil, err
	}

	summary := &RangeSummary{
		StartDay:      startDay,
		EndDay:        endDay,
		DaysRequested: endDay - startDay + 1,
		Days:          make([]domain.DayProgress, 0, endDay-startDay+1),
	}

	percentageSum := 0
	for day := startDay; day <= endDay; day++ {
		snapshot, err := s.GetDayProgress(ctx, user, day)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"userId": user.ID.Hex(),
				"day":    day,
			}).Warn("skipping day in progress range")
			continue
		}
		summary.Days = append(summary.Days, *snapshot)
		percentageSum += snapshot.OverallProgress.CompletionPercentage
		summary.ExerciseStats.add(snapshot.ExerciseProgress)
		summary.NutritionStats.add(snapshot.NutritionProgress)
		if snapshot.OverallProgress.IsDayComplete {
			summary.DaysCompleted++
		}
	}

	summary.DaysReturned = len(summary.Days)
	if summary.DaysReturned > 0 {
		summary.AverageCompletion = int(math.Round(float64(percentageSum) / float64(summary.DaysReturned)))
	}
	summary.ExerciseStats.finalize()
	summary.NutritionStats.finalize()
	return summary, nil
}

// GetWeeklyProgress summarizes plan week w, covering days (w-1)*7+1 .. w*7.
func (s *progressService) GetWeeklyProgress(ctx context.Context, user *domain.User, week int) (*WeeklySummary, error) {
	if week < 1 {
		return nil, ErrInvalidDayRange
	}
	startDay := (week-1)*7 + 1

	rangeSummary, err := s.GetRangeProgress(ctx, user, startDay, startDay+6)
	if err != nil {
		return nil, err
	}
	return &WeeklySummary{Week: week, RangeSummary: *rangeSummary}, nil
}

// GetOverallProgress aggregates every snapshot against the assigned plan,
// with the last 7 tracked days echoed back for the dashboard.
func (s *progressService) GetOverallProgress(ctx context.Context, user *domain.User) (*OverallSummary, error) {
	plan, err := s.planForUser(ctx, user)
	if err != nil {
		return nil, err
	}

	summary := &OverallSummary{RecentDays: []domain.DayProgress{}}
	summary.ProgramInfo.TotalDays = len(plan.Plan.Days)
	for _, d := range plan.Plan.Days {
		if d.Type == domain.DayRest {
			summary.ProgramInfo.RestDays++
		} else {
			summary.ProgramInfo.ActiveDays++
		}
	}

	snapshots, err := s.progressRepo.GetAllByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	summary.TotalDaysTracked = len(snapshots)
	if len(snapshots) == 0 {
		return summary, nil
	}

	percentageSum := 0
	caloriesSum := 0
	for _, snap := range snapshots {
		percentageSum += snap.OverallProgress.CompletionPercentage
		caloriesSum += snap.NutritionProgress.ConsumedCalories
		summary.ExerciseStats.add(snap.ExerciseProgress)
		summary.NutritionStats.add(snap.NutritionProgress)
		if snap.OverallProgress.IsDayComplete {
			summary.DaysCompleted++
		}
		if snap.Day > summary.CurrentDay {
			summary.CurrentDay = snap.Day
		}
	}

	summary.ExerciseStats.finalize()
	summary.NutritionStats.finalize()
	summary.OverallCompletionPercentage = domain.Percentage(summary.DaysCompleted, summary.ProgramInfo.TotalDays)
	summary.AverageCompletion = int(math.Round(float64(percentageSum) / float64(len(snapshots))))
	summary.AvgDailyCalories = int(math.Round(float64(caloriesSum) / float64(len(snapshots))))

	recent := snapshots
	if len(recent) > 7 {
		recent = recent[len(recent)-7:]
	}
	summary.RecentDays = recent
	return summary, nil
}

// DeleteDayProgress removes one day's snapshot.
func (s *progressService) DeleteDayProgress(ctx context.Context, user *domain.User, day int) error {
	err := s.progressRepo.Delete(ctx, user.ID, day)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSnapshotNotFound
	}
	return err
}

func (s *progressService) planForUser(ctx context.Context, user *domain.User) (*domain.FitnessPlan, error) {
	if user.FitnessPlanID == nil {
		return nil, ErrNoPlanAssigned
	}
	plan, err := s.planRepo.GetByID(ctx, *user.FitnessPlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// buildDay derives one day's snapshot: plan targets crossed with the
// latest exercise log per slot and the day's nutrition log.
func (s *progressService) buildDay(ctx context.Context, user *domain.User, plan *domain.FitnessPlan, day int) (*domain.DayProgress, error) {
	planDay := plan.Day(day)
	if planDay == nil {
		return nil, ErrDayNotInPlan
	}

	snapshot := &domain.DayProgress{
		UserID:        user.ID,
		FitnessPlanID: plan.ID,
		Day:           day,
		Date:          planDayDate(plan, day),
		DayType:       planDay.Type,
	}

	if err := s.fillExerciseAxis(ctx, user, planDay, snapshot); err != nil {
		return nil, err
	}
	if err := s.fillNutritionAxis(ctx, user, planDay, snapshot); err != nil {
		return nil, err
	}

	snapshot.Recompute()
	return snapshot, nil
}

func (s *progressService) fillExerciseAxis(ctx context.Context, user *domain.User, planDay *domain.PlanDay, snapshot *domain.DayProgress) error {
	if planDay.Type != domain.DayWorkout || planDay.Workout == nil {
		return nil
	}

	slots := make([]domain.ExerciseSlot, len(planDay.Workout.Exercises))
	for i, ex := range planDay.Workout.Exercises {
		slots[i] = domain.ExerciseSlot{
			ExerciseNumber: i + 1,
			ExerciseName:   ex.Name,
			TargetSetsReps: ex.SetsReps,
			Status:         domain.StatusPending,
		}
	}

	// Newest first, so the first log seen per slot is the authoritative one.
	logs, err := s.logRepo.FindByDay(ctx, user.ID, snapshot.Day)
	if err != nil {
		return err
	}
	seen := make(map[int]bool, len(slots))
	for i := range logs {
		entry := &logs[i]
		idx := entry.ExerciseNumber - 1
		if idx < 0 || idx >= len(slots) || seen[entry.ExerciseNumber] {
			continue
		}
		seen[entry.ExerciseNumber] = true
		slots[idx].Status = entry.Status
		slots[idx].ActualSets = entry.ActualSets
		slots[idx].ActualReps = entry.ActualReps
		slots[idx].SkipReason = entry.SkipReason
		logID := entry.ID
		slots[idx].LogID = &logID
	}

	progress := &snapshot.ExerciseProgress
	progress.TotalExercises = len(slots)
	progress.Exercises = slots
	for _, slot := range slots {
		switch slot.Status {
		case domain.StatusCompleted:
			progress.CompletedExercises++
		case domain.StatusSkipped:
			progress.SkippedExercises++
		default:
			progress.PendingExercises++
		}
	}
	return nil
}

func (s *progressService) fillNutritionAxis(ctx context.Context, user *domain.User, planDay *domain.PlanDay, snapshot *domain.DayProgress) error {
	progress := &snapshot.NutritionProgress
	progress.TotalMeals = len(domain.MealTypes)

	if planDay.Nutrition != nil {
		progress.TargetCalories = planDay.Nutrition.TotalCalories
	}

	nutritionLog, err := s.nutritionRepo.GetByDay(ctx, user.ID, snapshot.Day)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	for _, mealType := range domain.MealTypes {
		slot := progress.Meals.Slot(mealType)
		slot.Status = domain.StatusPending
		if planDay.Nutrition != nil {
			target := planDay.Nutrition.Meal(mealType)
			slot.TargetDescription = target.Description
			slot.TargetCalories = target.Calories
		}
		if nutritionLog != nil {
			entry := nutritionLog.Meals.Slot(mealType)
			if entry.Status != "" {
				slot.Status = entry.Status
			}
			slot.ActualDescription = entry.Description
			slot.ActualCalories = entry.Calories
			slot.SkipReason = entry.SkipReason
			slot.CompletedAt = entry.CompletedAt
		}

		switch slot.Status {
		case domain.StatusCompleted:
			progress.CompletedMeals++
		case domain.StatusSkipped:
			progress.SkippedMeals++
		default:
			progress.PendingMeals++
		}
	}

	if nutritionLog != nil {
		progress.ConsumedCalories = nutritionLog.ConsumedCalories
		if nutritionLog.TotalCalories > 0 {
			progress.TargetCalories = nutritionLog.TotalCalories
		}
	}
	return nil
}

// planDayDate maps a plan day number onto a calendar date, anchored at the
// generation date.
func planDayDate(plan *domain.FitnessPlan, day int) time.Time {
	start := plan.GeneratedAt.UTC().Truncate(24 * time.Hour)
	return start.AddDate(0, 0, day-1)
}
