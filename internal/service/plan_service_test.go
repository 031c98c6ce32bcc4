package service

import (
	"context"
	"testing"

	"fitcoach/coach-app/internal/ai"
	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeProfileRepo struct {
	profiles map[primitive.ObjectID]*domain.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[primitive.ObjectID]*domain.Profile)}
}

func (f *fakeProfileRepo) Create(_ context.Context, profile *domain.Profile) (primitive.ObjectID, error) {
	profile.ID = primitive.NewObjectID()
	f.profiles[profile.ID] = profile
	return profile.ID, nil
}

func (f *fakeProfileRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Profile, error) {
	profile, ok := f.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return profile, nil
}

func (f *fakeProfileRepo) Update(_ context.Context, profile *domain.Profile) error {
	if _, ok := f.profiles[profile.ID]; !ok {
		return repository.ErrNotFound
	}
	f.profiles[profile.ID] = profile
	return nil
}

func (f *fakeProfileRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(f.profiles, id)
	return nil
}

type fakeAdaptiveRepo struct {
	programs map[primitive.ObjectID]*domain.AdaptiveProfile
}

func newFakeAdaptiveRepo() *fakeAdaptiveRepo {
	return &fakeAdaptiveRepo{programs: make(map[primitive.ObjectID]*domain.AdaptiveProfile)}
}

func (f *fakeAdaptiveRepo) Create(_ context.Context, ap *domain.AdaptiveProfile) (primitive.ObjectID, error) {
	ap.ID = primitive.NewObjectID()
	f.programs[ap.ID] = ap
	return ap.ID, nil
}

func (f *fakeAdaptiveRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.AdaptiveProfile, error) {
	ap, ok := f.programs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return ap, nil
}

func (f *fakeAdaptiveRepo) Update(_ context.Context, ap *domain.AdaptiveProfile) error {
	if _, ok := f.programs[ap.ID]; !ok {
		return repository.ErrNotFound
	}
	f.programs[ap.ID] = ap
	return nil
}

func (f *fakeAdaptiveRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(f.programs, id)
	return nil
}

type fakeGoalRepo struct {
	programs map[primitive.ObjectID]*domain.GoalProgram
}

func newFakeGoalRepo() *fakeGoalRepo {
	return &fakeGoalRepo{programs: make(map[primitive.ObjectID]*domain.GoalProgram)}
}

func (f *fakeGoalRepo) Create(_ context.Context, gp *domain.GoalProgram) (primitive.ObjectID, error) {
	gp.ID = primitive.NewObjectID()
	f.programs[gp.ID] = gp
	return gp.ID, nil
}

func (f *fakeGoalRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.GoalProgram, error) {
	gp, ok := f.programs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return gp, nil
}

func (f *fakeGoalRepo) Update(_ context.Context, gp *domain.GoalProgram) error {
	if _, ok := f.programs[gp.ID]; !ok {
		return repository.ErrNotFound
	}
	f.programs[gp.ID] = gp
	return nil
}

func (f *fakeGoalRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(f.programs, id)
	return nil
}

type stubGenerator struct {
	structure *domain.PlanStructure
	err       error
	lastReq   ai.PlanRequest
}

func (g *stubGenerator) GeneratePlan(_ context.Context, req ai.PlanRequest) (*domain.PlanStructure, error) {
	g.lastReq = req
	return g.structure, g.err
}

type planFixture struct {
	service   PlanService
	users     *fakeUserRepo
	profiles  *fakeProfileRepo
	adaptive  *fakeAdaptiveRepo
	plans     *fakePlanRepo
	generator *stubGenerator
	user      *domain.User
	profile   *domain.Profile
}

func newPlanFixture(t *testing.T) *planFixture {
	t.Helper()

	users := newFakeUserRepo()
	profiles := newFakeProfileRepo()
	adaptive := newFakeAdaptiveRepo()
	goals := newFakeGoalRepo()
	plans := newFakePlanRepo()
	generator := &stubGenerator{structure: &testPlan().Plan}

	profile := &domain.Profile{Gender: "female", Age: 31, CurrentWeightKg: 64}
	_, err := profiles.Create(context.Background(), profile)
	require.NoError(t, err)

	user := &domain.User{Email: "a@b.com", ProfileKey: profile.ID.Hex()}
	_, err = users.Create(context.Background(), user)
	require.NoError(t, err)

	return &planFixture{
		service:   NewPlanService(users, profiles, adaptive, goals, plans, generator),
		users:     users,
		profiles:  profiles,
		adaptive:  adaptive,
		plans:     plans,
		generator: generator,
		user:      user,
		profile:   profile,
	}
}

func (f *planFixture) attachAdaptive(t *testing.T, complete bool) *domain.AdaptiveProfile {
	t.Helper()
	ap := &domain.AdaptiveProfile{AffectedLimbs: "left knee", Purposes: []string{"mobility"}, IsComplete: complete}
	id, err := f.adaptive.Create(context.Background(), ap)
	require.NoError(t, err)
	f.profile.AdaptiveProfile = &id
	return ap
}

func TestGeneratePlan(t *testing.T) {
	f := newPlanFixture(t)
	f.attachAdaptive(t, true)

	plan, err := f.service.GeneratePlan(context.Background(), f.user, 5)
	require.NoError(t, err)

	assert.Equal(t, domain.PlanAdaptive, plan.PlanType)
	assert.Equal(t, f.profile.ID, plan.ProfileID)
	assert.Len(t, plan.Plan.Days, 5)
	assert.Equal(t, "left knee", plan.ProgramSnapshot["affectedLimbs"])
	assert.Equal(t, "female", plan.ProfileSnapshot.Gender)

	// Request carried the program and requested length.
	assert.Equal(t, 5, f.generator.lastReq.Days)
	require.NotNil(t, f.generator.lastReq.Adaptive)

	// User now points at the plan.
	require.NotNil(t, f.user.FitnessPlanID)
	assert.Equal(t, plan.ID, *f.user.FitnessPlanID)
}

func TestGeneratePlan_ReplacesOldPlan(t *testing.T) {
	f := newPlanFixture(t)
	f.attachAdaptive(t, true)
	ctx := context.Background()

	old, err := f.service.GeneratePlan(ctx, f.user, 5)
	require.NoError(t, err)

	fresh, err := f.service.GeneratePlan(ctx, f.user, 5)
	require.NoError(t, err)

	assert.NotEqual(t, old.ID, fresh.ID)
	_, err = f.plans.GetByID(ctx, old.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGeneratePlan_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("no intake program", func(t *testing.T) {
		f := newPlanFixture(t)
		_, err := f.service.GeneratePlan(ctx, f.user, 5)
		assert.ErrorIs(t, err, ErrNoIntakeProgram)
	})

	t.Run("incomplete adaptive program", func(t *testing.T) {
		f := newPlanFixture(t)
		f.attachAdaptive(t, false)
		_, err := f.service.GeneratePlan(ctx, f.user, 5)
		assert.ErrorIs(t, err, ErrNoIntakeProgram)
	})

	t.Run("generator failure", func(t *testing.T) {
		f := newPlanFixture(t)
		f.attachAdaptive(t, true)
		f.generator.structure = nil
		f.generator.err = assert.AnError
		_, err := f.service.GeneratePlan(ctx, f.user, 5)
		assert.ErrorIs(t, err, ErrPlanGeneration)
	})

	t.Run("no profile", func(t *testing.T) {
		f := newPlanFixture(t)
		orphan := &domain.User{ID: primitive.NewObjectID()}
		f.users.users[orphan.ID] = orphan
		_, err := f.service.GeneratePlan(ctx, orphan, 5)
		assert.ErrorIs(t, err, ErrProfileNotFound)
	})
}

func TestAssignPlan(t *testing.T) {
	f := newPlanFixture(t)
	ctx := context.Background()

	plan := testPlan()
	f.plans.plans[plan.ID] = plan

	assigned, err := f.service.AssignPlan(ctx, f.user, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, assigned.ID)
	require.NotNil(t, f.user.FitnessPlanID)
	assert.Equal(t, plan.ID, *f.user.FitnessPlanID)

	_, err = f.service.AssignPlan(ctx, f.user, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestGetExerciseCatalogue(t *testing.T) {
	f := newPlanFixture(t)
	ctx := context.Background()

	// Two plans sharing the same workout template still yield each
	// exercise once.
	for i := 0; i < 2; i++ {
		plan := testPlan()
		f.plans.plans[plan.ID] = plan
	}

	catalogue, err := f.service.GetExerciseCatalogue(ctx)
	require.NoError(t, err)
	require.Len(t, catalogue, 3)
	assert.Equal(t, "Plank", catalogue[0].Name)
	assert.Equal(t, "Push-ups", catalogue[1].Name)
	assert.Equal(t, "Squats", catalogue[2].Name)
}

func TestDeletePlan_UnassignsUsers(t *testing.T) {
	f := newPlanFixture(t)
	f.attachAdaptive(t, true)
	ctx := context.Background()

	plan, err := f.service.GeneratePlan(ctx, f.user, 5)
	require.NoError(t, err)

	require.NoError(t, f.service.DeletePlan(ctx, plan.ID))
	assert.Nil(t, f.user.FitnessPlanID)

	assert.ErrorIs(t, f.service.DeletePlan(ctx, plan.ID), ErrPlanNotFound)
}
