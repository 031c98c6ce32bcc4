package service

import (
	"context"
	"errors"
	"time"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrLogNotFound        = errors.New("exercise log not found")
	ErrInvalidLogStatus   = errors.New("log status must be completed or skipped")
	ErrMissingActuals     = errors.New("completed logs require actual sets and reps")
	ErrMissingSkipReason  = errors.New("skipped logs require a reason")
	ErrExerciseOutOfRange = errors.New("exercise number is outside the plan day")
)

// ExerciseLogInput carries one logging action against a plan slot.
type ExerciseLogInput struct {
	DayNumber      int
	ExerciseNumber int
	Status         domain.Status
	ActualSets     int
	ActualReps     int
	SkipReason     string
}

// ExerciseLogService records exercise outcomes against the assigned plan
// and keeps the day's progress snapshot in sync.
type ExerciseLogService interface {
	LogExercise(ctx context.Context, user *domain.User, input ExerciseLogInput) (*domain.ExerciseLog, error)
	UpdateLog(ctx context.Context, user *domain.User, logID primitive.ObjectID, input ExerciseLogInput) (*domain.ExerciseLog, error)
	DeleteLog(ctx context.Context, user *domain.User, logID primitive.ObjectID) error
	GetLogs(ctx context.Context, user *domain.User, filter repository.ExerciseLogFilter) ([]domain.ExerciseLog, error)
}

type exerciseLogService struct {
	logRepo  repository.ExerciseLogRepository
	planRepo repository.FitnessPlanRepository
	progress ProgressService
}

// NewExerciseLogService creates a new instance of exerciseLogService.
func NewExerciseLogService(
	logRepo repository.ExerciseLogRepository,
	planRepo repository.FitnessPlanRepository,
	progress ProgressService,
) ExerciseLogService {
	return &exerciseLogService{
		logRepo:  logRepo,
		planRepo: planRepo,
		progress: progress,
	}
}

// LogExercise validates the action against the plan and records it. The
// day's snapshot is refreshed afterwards; a refresh failure does not fail
// the write, since the snapshot is recomputable on next read.
func (s *exerciseLogService) LogExercise(ctx context.Context, user *domain.User, input ExerciseLogInput) (*domain.ExerciseLog, error) {
	if err := validateLogInput(input); err != nil {
		return nil, err
	}

	planDay, err := s.planDay(ctx, user, input.DayNumber)
	if err != nil {
		return nil, err
	}
	exercise, err := planExerciseAt(planDay, input.ExerciseNumber)
	if err != nil {
		return nil, err
	}

	entry := &domain.ExerciseLog{
		UserID:         user.ID,
		DayNumber:      input.DayNumber,
		ExerciseNumber: input.ExerciseNumber,
		Date:           time.Now().UTC(),
		ExerciseName:   exercise.Name,
		TargetSetsReps: exercise.SetsReps,
		Status:         input.Status,
		ActualSets:     input.ActualSets,
		ActualReps:     input.ActualReps,
		SkipReason:     input.SkipReason,
	}

	logID, err := s.logRepo.Create(ctx, entry)
	if err != nil {
		return nil, err
	}
	entry.ID = logID

	s.refresh(ctx, user, input.DayNumber)
	return entry, nil
}

// UpdateLog rewrites the status and actuals of an existing log entry.
func (s *exerciseLogService) UpdateLog(ctx context.Context, user *domain.User, logID primitive.ObjectID, input ExerciseLogInput) (*domain.ExerciseLog, error) {
	if err := validateStatusFields(input); err != nil {
		return nil, err
	}

	entry, err := s.logRepo.GetByID(ctx, logID, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, err
	}

	entry.Status = input.Status
	entry.ActualSets = input.ActualSets
	entry.ActualReps = input.ActualReps
	entry.SkipReason = input.SkipReason
	entry.Date = time.Now().UTC()

	if err := s.logRepo.Update(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, err
	}

	s.refresh(ctx, user, entry.DayNumber)
	return entry, nil
}

// DeleteLog removes a log entry and refreshes the affected day.
func (s *exerciseLogService) DeleteLog(ctx context.Context, user *domain.User, logID primitive.ObjectID) error {
	entry, err := s.logRepo.GetByID(ctx, logID, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLogNotFound
		}
		return err
	}

	if err := s.logRepo.Delete(ctx, logID, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLogNotFound
		}
		return err
	}

	s.refresh(ctx, user, entry.DayNumber)
	return nil
}

// GetLogs lists the user's log entries.
func (s *exerciseLogService) GetLogs(ctx context.Context, user *domain.User, filter repository.ExerciseLogFilter) ([]domain.ExerciseLog, error) {
	return s.logRepo.Find(ctx, user.ID, filter)
}

func (s *exerciseLogService) planDay(ctx context.Context, user *domain.User, dayNumber int) (*domain.PlanDay, error) {
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
	planDay := plan.Day(dayNumber)
	if planDay == nil {
		return nil, ErrDayNotInPlan
	}
	return planDay, nil
}

func (s *exerciseLogService) refresh(ctx context.Context, user *domain.User, dayNumber int) {
	if _, err := s.progress.RefreshDay(ctx, user, dayNumber); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"userId": user.ID.Hex(),
			"day":    dayNumber,
		}).Warn("progress refresh after log write failed")
	}
}

func planExerciseAt(planDay *domain.PlanDay, exerciseNumber int) (*domain.PlanExercise, error) {
	if planDay.Type != domain.DayWorkout || planDay.Workout == nil {
		return nil, ErrExerciseOutOfRange
	}
	idx := exerciseNumber - 1
	if idx < 0 || idx >= len(planDay.Workout.Exercises) {
		return nil, ErrExerciseOutOfRange
	}
	return &planDay.Workout.Exercises[idx], nil
}

func validateLogInput(input ExerciseLogInput) error {
	if input.DayNumber < 1 || input.ExerciseNumber < 1 {
		return ErrExerciseOutOfRange
	}
	return validateStatusFields(input)
}

func validateStatusFields(input ExerciseLogInput) error {
	switch input.Status {
	case domain.StatusCompleted:
		if input.ActualSets < 1 || input.ActualReps < 1 {
			return ErrMissingActuals
		}
	case domain.StatusSkipped:
		if input.SkipReason == "" {
			return ErrMissingSkipReason
		}
	default:
		return ErrInvalidLogStatus
	}
	return nil
}
