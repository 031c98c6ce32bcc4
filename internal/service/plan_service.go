package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"fitcoach/coach-app/internal/ai"
	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound    = errors.New("fitness plan not found")
	ErrNoPlanAssigned  = errors.New("user has no fitness plan assigned")
	ErrPlanGeneration  = errors.New("plan generation failed")
	ErrNoIntakeProgram = errors.New("profile has no completed intake program to generate from")
)

// PlanService generates and serves fitness plans.
type PlanService interface {
	GeneratePlan(ctx context.Context, user *domain.User, days int) (*domain.FitnessPlan, error)
	GetCurrentPlan(ctx context.Context, user *domain.User) (*domain.FitnessPlan, error)
	GetPlanByID(ctx context.Context, planID primitive.ObjectID) (*domain.FitnessPlan, error)
	GetAllPlans(ctx context.Context) ([]domain.FitnessPlan, error)
	AssignPlan(ctx context.Context, user *domain.User, planID primitive.ObjectID) (*domain.FitnessPlan, error)
	DeletePlan(ctx context.Context, planID primitive.ObjectID) error
	GetExerciseCatalogue(ctx context.Context) ([]CatalogueExercise, error)
}

// CatalogueExercise is one unique exercise collected across all plans.
type CatalogueExercise struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Steps       []string `json:"steps,omitempty"`
	Tips        []string `json:"tips,omitempty"`
}

type planService struct {
	userRepo     repository.UserRepository
	profileRepo  repository.ProfileRepository
	adaptiveRepo repository.AdaptiveProfileRepository
	goalRepo     repository.GoalProgramRepository
	planRepo     repository.FitnessPlanRepository
	generator    ai.PlanGenerator
}

// NewPlanService creates a new instance of planService.
func NewPlanService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	adaptiveRepo repository.AdaptiveProfileRepository,
	goalRepo repository.GoalProgramRepository,
	planRepo repository.FitnessPlanRepository,
	generator ai.PlanGenerator,
) PlanService {
	return &planService{
		userRepo:     userRepo,
		profileRepo:  profileRepo,
		adaptiveRepo: adaptiveRepo,
		goalRepo:     goalRepo,
		planRepo:     planRepo,
		generator:    generator,
	}
}

// GeneratePlan builds a new plan from the profile's intake program. Older
// plans for the same profile are dropped so exactly one plan survives, and
// the user record is pointed at it.
func (s *planService) GeneratePlan(ctx context.Context, user *domain.User, days int) (*domain.FitnessPlan, error) {
	if user.ProfileKey == "" {
		return nil, ErrProfileNotFound
	}
	profileID, err := primitive.ObjectIDFromHex(user.ProfileKey)
	if err != nil {
		return nil, ErrProfileNotFound
	}
	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	req := ai.PlanRequest{Profile: *profile, Days: days}
	var programSnapshot bson.M

	switch {
	case profile.AdaptiveProfile != nil:
		adaptive, err := s.adaptiveRepo.GetByID(ctx, *profile.AdaptiveProfile)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrNoIntakeProgram
			}
			return nil, err
		}
		if !adaptive.IsComplete {
			return nil, ErrNoIntakeProgram
		}
		req.Adaptive = adaptive
		req.PlanType = domain.PlanAdaptive
		programSnapshot = bson.M{
			"affectedLimbs": adaptive.AffectedLimbs,
			"purposes":      adaptive.Purposes,
		}
	case profile.GoalProgram != nil:
		goal, err := s.goalRepo.GetByID(ctx, *profile.GoalProgram)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrNoIntakeProgram
			}
			return nil, err
		}
		req.Goal = goal
		req.PlanType = domain.PlanGoalBased
		programSnapshot = bson.M{
			"primaryGoal":     goal.PrimaryGoal,
			"selectedWorkout": goal.SelectedWorkout,
			"metadata":        goal.Metadata,
		}
	default:
		return nil, ErrNoIntakeProgram
	}

	structure, err := s.generator.GeneratePlan(ctx, req)
	if err != nil {
		log.WithError(err).WithField("userId", user.ID.Hex()).Error("plan generation failed")
		return nil, ErrPlanGeneration
	}

	// Only the newest plan is kept per profile.
	if err := s.planRepo.DeleteByProfileID(ctx, profileID); err != nil {
		return nil, err
	}

	plan := &domain.FitnessPlan{
		ProfileID:   profileID,
		Plan:        *structure,
		PlanType:    req.PlanType,
		GeneratedAt: time.Now().UTC(),
		ProfileSnapshot: domain.ProfileSnapshot{
			Gender:          profile.Gender,
			Age:             profile.Age,
			HeightCm:        profile.HeightCm,
			CurrentWeightKg: profile.CurrentWeightKg,
			TargetWeightKg:  profile.TargetWeightKg,
			Commitment:      profile.Commitment,
			WorkoutDays:     profile.WorkoutDays,
		},
		ProgramSnapshot: programSnapshot,
	}

	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = planID

	if err := s.userRepo.SetFitnessPlan(ctx, user.ID, planID); err != nil {
		return nil, err
	}
	user.FitnessPlanID = &planID

	log.WithFields(log.Fields{
		"userId":   user.ID.Hex(),
		"planId":   planID.Hex(),
		"planType": plan.PlanType,
		"days":     len(plan.Plan.Days),
	}).Info("fitness plan generated")

	return plan, nil
}

// GetCurrentPlan returns the plan the user is assigned to.
func (s *planService) GetCurrentPlan(ctx context.Context, user *domain.User) (*domain.FitnessPlan, error) {
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

// GetPlanByID returns any stored plan.
func (s *planService) GetPlanByID(ctx context.Context, planID primitive.ObjectID) (*domain.FitnessPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// GetAllPlans returns every stored plan, newest first.
func (s *planService) GetAllPlans(ctx context.Context) ([]domain.FitnessPlan, error) {
	return s.planRepo.GetAll(ctx)
}

// AssignPlan points the user at an existing plan, e.g. one generated
// before the account was created.
func (s *planService) AssignPlan(ctx context.Context, user *domain.User, planID primitive.ObjectID) (*domain.FitnessPlan, error) {
	plan, err := s.GetPlanByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetFitnessPlan(ctx, user.ID, planID); err != nil {
		return nil, err
	}
	user.FitnessPlanID = &planID
	return plan, nil
}

// GetExerciseCatalogue collects the unique exercises across every stored
// plan, sorted by name. Uniqueness is by case-insensitive name; the first
// occurrence wins.
func (s *planService) GetExerciseCatalogue(ctx context.Context) ([]CatalogueExercise, error) {
	plans, err := s.planRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	out := []CatalogueExercise{}
	for _, plan := range plans {
		for _, day := range plan.Plan.Days {
			if day.Workout == nil {
				continue
			}
			for _, ex := range day.Workout.Exercises {
				key := strings.ToLower(strings.TrimSpace(ex.Name))
				if key == "" || seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, CatalogueExercise{
					Name:        ex.Name,
					Description: ex.Description,
					Steps:       ex.Steps,
					Tips:        ex.Tips,
				})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeletePlan removes a plan and clears the reference from any user still
// assigned to it.
func (s *planService) DeletePlan(ctx context.Context, planID primitive.ObjectID) error {
	if err := s.planRepo.Delete(ctx, planID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	return s.userRepo.UnsetFitnessPlanByPlanID(ctx, planID)
}
