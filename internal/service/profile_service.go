package service

import (
	"context"
	"errors"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrProgramNotFound    = errors.New("intake program not found")
	ErrProgramConflict    = errors.New("profile already has the other program type")
	ErrProfileIncomplete  = errors.New("intake program is incomplete")
	ErrNoProgramOnProfile = errors.New("profile has no intake program")
	ErrProfileKeyTaken    = errors.New("profile is already linked to another account")
)

// ProfileUpdate carries the writable physical profile fields. Nil pointers
// leave the stored value untouched.
type ProfileUpdate struct {
	Gender          *string
	Age             *int
	HeightCm        *float64
	IsMetricHeight  *bool
	CurrentWeightKg *float64
	TargetWeightKg  *float64
	Commitment      *string
	WorkoutDays     []string
}

// ProfileService manages intake profiles and their single attached program.
type ProfileService interface {
	GetOrCreateProfile(ctx context.Context, user *domain.User) (*domain.Profile, error)
	GetProfile(ctx context.Context, user *domain.User) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, user *domain.User, update ProfileUpdate) (*domain.Profile, error)
	LinkProfile(ctx context.Context, user *domain.User, profileKey string) (*domain.Profile, error)

	UpsertAdaptiveProfile(ctx context.Context, user *domain.User, affectedLimbs string, purposes []string) (*domain.AdaptiveProfile, error)
	GetAdaptiveProfile(ctx context.Context, user *domain.User) (*domain.AdaptiveProfile, error)
	UpsertGoalProgram(ctx context.Context, user *domain.User, program *domain.GoalProgram) (*domain.GoalProgram, error)
	GetGoalProgram(ctx context.Context, user *domain.User) (*domain.GoalProgram, error)
}

type profileService struct {
	userRepo     repository.UserRepository
	profileRepo  repository.ProfileRepository
	adaptiveRepo repository.AdaptiveProfileRepository
	goalRepo     repository.GoalProgramRepository
}

// NewProfileService creates a new instance of profileService.
func NewProfileService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	adaptiveRepo repository.AdaptiveProfileRepository,
	goalRepo repository.GoalProgramRepository,
) ProfileService {
	return &profileService{
		userRepo:     userRepo,
		profileRepo:  profileRepo,
		adaptiveRepo: adaptiveRepo,
		goalRepo:     goalRepo,
	}
}

// GetOrCreateProfile returns the user's profile, creating an empty one on
// first access. The profile document ID is stored as the user's profileKey.
func (s *profileService) GetOrCreateProfile(ctx context.Context, user *domain.User) (*domain.Profile, error) {
	if user.ProfileKey != "" {
		if id, err := primitive.ObjectIDFromHex(user.ProfileKey); err == nil {
			profile, err := s.profileRepo.GetByID(ctx, id)
			if err == nil {
				return profile, nil
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
		}
	}

	profile := &domain.Profile{IsMetricHeight: true}
	profileID, err := s.profileRepo.Create(ctx, profile)
	if err != nil {
		return nil, err
	}

	user.ProfileKey = profileID.Hex()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return profile, nil
}

// GetProfile returns the user's profile without creating one.
func (s *profileService) GetProfile(ctx context.Context, user *domain.User) (*domain.Profile, error) {
	if user.ProfileKey == "" {
		return nil, ErrProfileNotFound
	}
	id, err := primitive.ObjectIDFromHex(user.ProfileKey)
	if err != nil {
		return nil, ErrProfileNotFound
	}
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

// UpdateProfile applies partial changes to the physical profile.
func (s *profileService) UpdateProfile(ctx context.Context, user *domain.User, update ProfileUpdate) (*domain.Profile, error) {
	profile, err := s.GetOrCreateProfile(ctx, user)
	if err != nil {
		return nil, err
	}

	if update.Gender != nil {
		profile.Gender = *update.Gender
	}
	if update.Age != nil {
		profile.Age = *update.Age
	}
	if update.HeightCm != nil {
		profile.HeightCm = *update.HeightCm
	}
	if update.IsMetricHeight != nil {
		profile.IsMetricHeight = *update.IsMetricHeight
	}
	if update.CurrentWeightKg != nil {
		profile.CurrentWeightKg = *update.CurrentWeightKg
	}
	if update.TargetWeightKg != nil {
		profile.TargetWeightKg = *update.TargetWeightKg
	}
	if update.Commitment != nil {
		profile.Commitment = *update.Commitment
	}
	if update.WorkoutDays != nil {
		profile.WorkoutDays = update.WorkoutDays
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// LinkProfile attaches an existing intake profile to the account, replacing
// the provisional key issued at signup. Profiles filled in before signup
// (anonymous intake) are claimed this way.
func (s *profileService) LinkProfile(ctx context.Context, user *domain.User, profileKey string) (*domain.Profile, error) {
	id, err := primitive.ObjectIDFromHex(profileKey)
	if err != nil {
		return nil, ErrProfileNotFound
	}
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	holder, err := s.userRepo.GetByProfileKey(ctx, profileKey)
	if err == nil && holder.ID != user.ID {
		return nil, ErrProfileKeyTaken
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user.ProfileKey = profileKey
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpsertAdaptiveProfile creates or updates the adaptive program attached to
// the user's profile. A profile with a goal-based program cannot also take
// an adaptive one.
func (s *profileService) UpsertAdaptiveProfile(ctx context.Context, user *domain.User, affectedLimbs string, purposes []string) (*domain.AdaptiveProfile, error) {
	profile, err := s.GetOrCreateProfile(ctx, user)
	if err != nil {
		return nil, err
	}
	if profile.GoalProgram != nil {
		return nil, ErrProgramConflict
	}

	if profile.AdaptiveProfile != nil {
		existing, err := s.adaptiveRepo.GetByID(ctx, *profile.AdaptiveProfile)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			existing.AffectedLimbs = affectedLimbs
			existing.Purposes = purposes
			existing.CalculateCompletion()
			if err := s.adaptiveRepo.Update(ctx, existing); err != nil {
				return nil, err
			}
			return existing, nil
		}
	}

	ap := &domain.AdaptiveProfile{
		AffectedLimbs: affectedLimbs,
		Purposes:      purposes,
	}
	ap.CalculateCompletion()

	apID, err := s.adaptiveRepo.Create(ctx, ap)
	if err != nil {
		return nil, err
	}

	profile.AdaptiveProfile = &apID
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return ap, nil
}

// GetAdaptiveProfile returns the adaptive program of the user's profile.
func (s *profileService) GetAdaptiveProfile(ctx context.Context, user *domain.User) (*domain.AdaptiveProfile, error) {
	profile, err := s.GetProfile(ctx, user)
	if err != nil {
		return nil, err
	}
	if profile.AdaptiveProfile == nil {
		return nil, ErrProgramNotFound
	}
	ap, err := s.adaptiveRepo.GetByID(ctx, *profile.AdaptiveProfile)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	return ap, nil
}

// UpsertGoalProgram creates or updates the goal-based program attached to
// the user's profile, rederiving its completion metadata.
func (s *profileService) UpsertGoalProgram(ctx context.Context, user *domain.User, program *domain.GoalProgram) (*domain.GoalProgram, error) {
	profile, err := s.GetOrCreateProfile(ctx, user)
	if err != nil {
		return nil, err
	}
	if profile.AdaptiveProfile != nil {
		return nil, ErrProgramConflict
	}

	program.CalculateMetadata()

	if profile.GoalProgram != nil {
		program.ID = *profile.GoalProgram
		if err := s.goalRepo.Update(ctx, program); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrProgramNotFound
			}
			return nil, err
		}
		return program, nil
	}

	gpID, err := s.goalRepo.Create(ctx, program)
	if err != nil {
		return nil, err
	}

	profile.GoalProgram = &gpID
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return program, nil
}

// GetGoalProgram returns the goal-based program of the user's profile.
func (s *profileService) GetGoalProgram(ctx context.Context, user *domain.User) (*domain.GoalProgram, error) {
	profile, err := s.GetProfile(ctx, user)
	if err != nil {
		return nil, err
	}
	if profile.GoalProgram == nil {
		return nil, ErrProgramNotFound
	}
	gp, err := s.goalRepo.GetByID(ctx, *profile.GoalProgram)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	return gp, nil
}
