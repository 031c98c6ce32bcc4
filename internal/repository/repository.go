package repository

import (
	"context"
	"time"

	"fitcoach/coach-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByProfileKey(ctx context.Context, profileKey string) (*domain.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	SetFitnessPlan(ctx context.Context, userID, planID primitive.ObjectID) error
	UnsetFitnessPlanByPlanID(ctx context.Context, planID primitive.ObjectID) error
	SetSubscription(ctx context.Context, userID primitive.ObjectID, subscriptionID *primitive.ObjectID, status domain.SubscriptionStatus) error
	Search(ctx context.Context, term string, page, limit int) ([]domain.User, int64, error)
	DeleteByEmail(ctx context.Context, email string) error
}

// ProfileRepository defines the interface for intake profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// AdaptiveProfileRepository defines the interface for adaptive intake programs.
type AdaptiveProfileRepository interface {
	Create(ctx context.Context, ap *domain.AdaptiveProfile) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.AdaptiveProfile, error)
	Update(ctx context.Context, ap *domain.AdaptiveProfile) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// GoalProgramRepository defines the interface for goal-based intake programs.
type GoalProgramRepository interface {
	Create(ctx context.Context, gp *domain.GoalProgram) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.GoalProgram, error)
	Update(ctx context.Context, gp *domain.GoalProgram) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// FitnessPlanRepository defines the interface for generated plans.
type FitnessPlanRepository interface {
	Create(ctx context.Context, plan *domain.FitnessPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.FitnessPlan, error)
	GetLatestByProfileID(ctx context.Context, profileID primitive.ObjectID) (*domain.FitnessPlan, error)
	GetAll(ctx context.Context) ([]domain.FitnessPlan, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByProfileID(ctx context.Context, profileID primitive.ObjectID) error
}

// ExerciseLogFilter narrows ExerciseLogRepository.Find.
type ExerciseLogFilter struct {
	DayNumber      int // 0 means any
	ExerciseNumber int // 0 means any
	Status         domain.Status
	StartDate      *time.Time
	EndDate        *time.Time
}

// DailyLogStats is one day's bucket from the completion aggregation.
type DailyLogStats struct {
	Date      time.Time `bson:"date"`
	Total     int       `bson:"totalExercises"`
	Completed int       `bson:"completed"`
	Skipped   int       `bson:"skipped"`
}

// ExerciseLogRepository defines the interface for exercise log entries.
type ExerciseLogRepository interface {
	Create(ctx context.Context, log *domain.ExerciseLog) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id, userID primitive.ObjectID) (*domain.ExerciseLog, error)
	Find(ctx context.Context, userID primitive.ObjectID, filter ExerciseLogFilter) ([]domain.ExerciseLog, error)
	FindByDay(ctx context.Context, userID primitive.ObjectID, dayNumber int) ([]domain.ExerciseLog, error)
	Update(ctx context.Context, log *domain.ExerciseLog) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
	DailyCompletionStats(ctx context.Context, userID primitive.ObjectID, start, end time.Time) ([]DailyLogStats, error)
}

// MonthlyNutritionStats is one month's bucket from the nutrition aggregation.
type MonthlyNutritionStats struct {
	Year                    int     `bson:"year" json:"year"`
	Month                   int     `bson:"month" json:"month"`
	AverageTargetCalories   float64 `bson:"averageTargetCalories" json:"averageTargetCalories"`
	AverageConsumedCalories float64 `bson:"averageConsumedCalories" json:"averageConsumedCalories"`
	DaysCount               int     `bson:"daysCount" json:"daysCount"`
	CompletionRate          float64 `bson:"completionRate" json:"completionRate"`
}

// NutritionRepository defines the interface for per-day nutrition logs.
type NutritionRepository interface {
	Upsert(ctx context.Context, log *domain.NutritionLog) error
	GetByDay(ctx context.Context, userID primitive.ObjectID, day int) (*domain.NutritionLog, error)
	GetByDateRange(ctx context.Context, userID primitive.ObjectID, start, end time.Time) ([]domain.NutritionLog, error)
	MonthlyStats(ctx context.Context, userID primitive.ObjectID, start, end time.Time) ([]MonthlyNutritionStats, error)
}

// DayProgressRepository defines the interface for progress snapshots.
type DayProgressRepository interface {
	GetByDay(ctx context.Context, userID primitive.ObjectID, day int) (*domain.DayProgress, error)
	Upsert(ctx context.Context, progress *domain.DayProgress) error
	GetAllByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.DayProgress, error)
	GetLatestByUser(ctx context.Context, userID primitive.ObjectID) (*domain.DayProgress, error)
	Delete(ctx context.Context, userID primitive.ObjectID, day int) error
}

// PackageRepository defines the interface for subscription packages.
type PackageRepository interface {
	Create(ctx context.Context, pkg *domain.Package) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Package, error)
	GetActive(ctx context.Context) ([]domain.Package, error)
	Update(ctx context.Context, pkg *domain.Package) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// SubscriptionRepository defines the interface for purchased subscriptions.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Subscription, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*domain.Subscription, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Subscription, error)
	GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Subscription, error)
	Update(ctx context.Context, sub *domain.Subscription) error
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

// VideoRepository defines the interface for exercise video metadata.
type VideoRepository interface {
	Create(ctx context.Context, video *domain.ExerciseVideo) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseVideo, error)
	GetByExerciseName(ctx context.Context, name string) (*domain.ExerciseVideo, error)
	GetActive(ctx context.Context) ([]domain.ExerciseVideo, error)
	Update(ctx context.Context, video *domain.ExerciseVideo) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
