package service

import (
	"context"
	"errors"
	"time"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/repository"

	log "github.com/sirupsen/logrus"
)

// --- Error Definitions ---
var (
	ErrInvalidMealType   = errors.New("invalid meal type")
	ErrInvalidMealStatus = errors.New("meal status must be completed or skipped")
	ErrNutritionNotFound = errors.New("nutrition log not found")
)

// MealUpdate carries one meal action for a plan day.
type MealUpdate struct {
	Day         int
	Meal        domain.MealType
	Status      domain.Status
	Description string
	Calories    int
	SkipReason  string
}

// NutritionService maintains the single per-day nutrition document and
// keeps the day's progress snapshot in sync.
type NutritionService interface {
	UpdateMeal(ctx context.Context, user *domain.User, update MealUpdate) (*domain.NutritionLog, error)
	GetByDay(ctx context.Context, user *domain.User, day int) (*domain.NutritionLog, error)
	GetByDateRange(ctx context.Context, user *domain.User, start, end time.Time) ([]domain.NutritionLog, error)
}

type nutritionService struct {
	nutritionRepo repository.NutritionRepository
	planRepo      repository.FitnessPlanRepository
	progress      ProgressService
}

// NewNutritionService creates a new instance of nutritionService.
func NewNutritionService(
	nutritionRepo repository.NutritionRepository,
	planRepo repository.FitnessPlanRepository,
	progress ProgressService,
) NutritionService {
	return &nutritionService{
		nutritionRepo: nutritionRepo,
		planRepo:      planRepo,
		progress:      progress,
	}
}

// UpdateMeal records one meal outcome. The day's document is created from
// the plan targets on first touch; consumed calories are rederived before
// every persist.
func (s *nutritionService) UpdateMeal(ctx context.Context, user *domain.User, update MealUpdate) (*domain.NutritionLog, error) {
	if !domain.ValidMealType(update.Meal) {
		return nil, ErrInvalidMealType
	}
	if update.Status != domain.StatusCompleted && update.Status != domain.StatusSkipped {
		return nil, ErrInvalidMealStatus
	}

	planDay, err := s.planDay(ctx, user, update.Day)
	if err != nil {
		return nil, err
	}

	nutritionLog, err := s.nutritionRepo.GetByDay(ctx, user.ID, update.Day)
	if errors.Is(err, repository.ErrNotFound) {
		nutritionLog = s.seedFromPlan(user, planDay, update.Day)
	} else if err != nil {
		return nil, err
	}

	entry := nutritionLog.Meals.Slot(update.Meal)
	entry.Status = update.Status
	entry.SkipReason = update.SkipReason
	if update.Status == domain.StatusCompleted {
		entry.SkipReason = ""
		if update.Description != "" {
			entry.Description = update.Description
		}
		if update.Calories > 0 {
			entry.Calories = update.Calories
		}
		now := time.Now().UTC()
		entry.CompletedAt = &now
	} else {
		entry.CompletedAt = nil
	}

	nutritionLog.RecomputeConsumedCalories()

	if err := s.nutritionRepo.Upsert(ctx, nutritionLog); err != nil {
		return nil, err
	}

	if _, err := s.progress.RefreshDay(ctx, user, update.Day); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"userId": user.ID.Hex(),
			"day":    update.Day,
		}).Warn("progress refresh after meal update failed")
	}
	return nutritionLog, nil
}

// GetByDay returns the day's nutrition document, falling back to the plan
// targets when nothing has been logged yet.
func (s *nutritionService) GetByDay(ctx context.Context, user *domain.User, day int) (*domain.NutritionLog, error) {
	nutritionLog, err := s.nutritionRepo.GetByDay(ctx, user.ID, day)
	if err == nil {
		return nutritionLog, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	planDay, err := s.planDay(ctx, user, day)
	if err != nil {
		return nil, err
	}
	return s.seedFromPlan(user, planDay, day), nil
}

// GetByDateRange lists the user's nutrition documents between two dates.
func (s *nutritionService) GetByDateRange(ctx context.Context, user *domain.User, start, end time.Time) ([]domain.NutritionLog, error) {
	return s.nutritionRepo.GetByDateRange(ctx, user.ID, start, end)
}

func (s *nutritionService) planDay(ctx context.Context, user *domain.User, day int) (*domain.PlanDay, error) {
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
	planDay := plan.Day(day)
	if planDay == nil {
		return nil, ErrDayNotInPlan
	}
	return planDay, nil
}

// seedFromPlan builds a fresh all-pending nutrition document from the plan
// day's meal targets.
func (s *nutritionService) seedFromPlan(user *domain.User, planDay *domain.PlanDay, day int) *domain.NutritionLog {
	nutritionLog := &domain.NutritionLog{
		UserID:    user.ID,
		Day:       day,
		Date:      time.Now().UTC(),
		IsRestDay: planDay.Type == domain.DayRest,
	}

	if planDay.Nutrition != nil {
		nutritionLog.TotalCalories = planDay.Nutrition.TotalCalories
		nutritionLog.Explanation = planDay.Nutrition.Explanation
		for _, mealType := range domain.MealTypes {
			target := planDay.Nutrition.Meal(mealType)
			entry := nutritionLog.Meals.Slot(mealType)
			entry.Description = target.Description
			entry.Calories = target.Calories
			entry.Status = domain.StatusPending
		}
	} else {
		for _, mealType := range domain.MealTypes {
			nutritionLog.Meals.Slot(mealType).Status = domain.StatusPending
		}
	}
	return nutritionLog
}
