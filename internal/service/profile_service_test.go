package service

import (
	"context"
	"testing"

	"fitcoach/coach-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type profileFixture struct {
	service  ProfileService
	users    *fakeUserRepo
	profiles *fakeProfileRepo
	user     *domain.User
}

func newProfileFixture(t *testing.T) *profileFixture {
	t.Helper()

	users := newFakeUserRepo()
	user := &domain.User{Email: "a@b.com"}
	_, err := users.Create(context.Background(), user)
	require.NoError(t, err)

	profiles := newFakeProfileRepo()
	return &profileFixture{
		service:  NewProfileService(users, profiles, newFakeAdaptiveRepo(), newFakeGoalRepo()),
		users:    users,
		profiles: profiles,
		user:     user,
	}
}

func TestGetOrCreateProfile(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	created, err := f.service.GetOrCreateProfile(ctx, f.user)
	require.NoError(t, err)
	assert.Equal(t, created.ID.Hex(), f.user.ProfileKey)
	assert.True(t, created.IsMetricHeight)

	again, err := f.service.GetOrCreateProfile(ctx, f.user)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
}

func TestLinkProfile(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	anonymous := &domain.Profile{Gender: "male", Age: 44}
	_, err := f.profiles.Create(ctx, anonymous)
	require.NoError(t, err)

	linked, err := f.service.LinkProfile(ctx, f.user, anonymous.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, anonymous.ID, linked.ID)
	assert.Equal(t, anonymous.ID.Hex(), f.user.ProfileKey)

	t.Run("already claimed by another account", func(t *testing.T) {
		other := &domain.User{Email: "c@d.com"}
		_, err := f.users.Create(ctx, other)
		require.NoError(t, err)

		_, err = f.service.LinkProfile(ctx, other, anonymous.ID.Hex())
		assert.ErrorIs(t, err, ErrProfileKeyTaken)
	})

	t.Run("relinking my own profile is a no-op", func(t *testing.T) {
		_, err := f.service.LinkProfile(ctx, f.user, anonymous.ID.Hex())
		assert.NoError(t, err)
	})

	t.Run("unknown profile", func(t *testing.T) {
		_, err := f.service.LinkProfile(ctx, f.user, primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, ErrProfileNotFound)

		_, err = f.service.LinkProfile(ctx, f.user, "not-a-hex-id")
		assert.ErrorIs(t, err, ErrProfileNotFound)
	})
}

func TestUpsertAdaptiveProfile(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	ap, err := f.service.UpsertAdaptiveProfile(ctx, f.user, "left knee", []string{"mobility", "strength"})
	require.NoError(t, err)
	assert.True(t, ap.IsComplete)
	assert.Equal(t, 100, ap.CompletionPercentage)

	// Second write updates in place.
	updated, err := f.service.UpsertAdaptiveProfile(ctx, f.user, "right shoulder", []string{"mobility"})
	require.NoError(t, err)
	assert.Equal(t, ap.ID, updated.ID)
	assert.Equal(t, "right shoulder", updated.AffectedLimbs)
}

func TestProgramConflict(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	_, err := f.service.UpsertAdaptiveProfile(ctx, f.user, "left knee", []string{"mobility"})
	require.NoError(t, err)

	_, err = f.service.UpsertGoalProgram(ctx, f.user, &domain.GoalProgram{PrimaryGoal: "lose weight"})
	assert.ErrorIs(t, err, ErrProgramConflict)
}
