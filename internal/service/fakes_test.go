package service

import (
	"context"
	"time"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository doubles. Only the methods the services under test
// reach are fully implemented; the rest answer ErrNotFound.

type fakePlanRepo struct {
	plans map[primitive.ObjectID]*domain.FitnessPlan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[primitive.ObjectID]*domain.FitnessPlan)}
}

func (f *fakePlanRepo) Create(_ context.Context, plan *domain.FitnessPlan) (primitive.ObjectID, error) {
	plan.ID = primitive.NewObjectID()
	if plan.GeneratedAt.IsZero() {
		plan.GeneratedAt = time.Now().UTC()
	}
	f.plans[plan.ID] = plan
	return plan.ID, nil
}

func (f *fakePlanRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.FitnessPlan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return plan, nil
}

func (f *fakePlanRepo) GetLatestByProfileID(_ context.Context, profileID primitive.ObjectID) (*domain.FitnessPlan, error) {
	for _, plan := range f.plans {
		if plan.ProfileID == profileID {
			return plan, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePlanRepo) GetAll(_ context.Context) ([]domain.FitnessPlan, error) {
	out := make([]domain.FitnessPlan, 0, len(f.plans))
	for _, plan := range f.plans {
		out = append(out, *plan)
	}
	return out, nil
}

func (f *fakePlanRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.plans[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.plans, id)
	return nil
}

func (f *fakePlanRepo) DeleteByProfileID(_ context.Context, profileID primitive.ObjectID) error {
	for id, plan := range f.plans {
		if plan.ProfileID == profileID {
			delete(f.plans, id)
		}
	}
	return nil
}

type fakeLogRepo struct {
	logs []domain.ExerciseLog
}

func (f *fakeLogRepo) Create(_ context.Context, entry *domain.ExerciseLog) (primitive.ObjectID, error) {
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now().UTC()
	f.logs = append(f.logs, *entry)
	return entry.ID, nil
}

func (f *fakeLogRepo) GetByID(_ context.Context, id, userID primitive.ObjectID) (*domain.ExerciseLog, error) {
	for i := range f.logs {
		if f.logs[i].ID == id && f.logs[i].UserID == userID {
			entry := f.logs[i]
			return &entry, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeLogRepo) Find(_ context.Context, userID primitive.ObjectID, filter repository.ExerciseLogFilter) ([]domain.ExerciseLog, error) {
	var out []domain.ExerciseLog
	for _, entry := range f.logs {
		if entry.UserID != userID {
			continue
		}
		if filter.DayNumber > 0 && entry.DayNumber != filter.DayNumber {
			continue
		}
		if filter.ExerciseNumber > 0 && entry.ExerciseNumber != filter.ExerciseNumber {
			continue
		}
		if filter.Status != "" && entry.Status != filter.Status {
			continue
		}
		if filter.StartDate != nil && entry.Date.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && entry.Date.After(*filter.EndDate) {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

// FindByDay returns newest-created first, like the mongo implementation.
func (f *fakeLogRepo) FindByDay(_ context.Context, userID primitive.ObjectID, dayNumber int) ([]domain.ExerciseLog, error) {
	var out []domain.ExerciseLog
	for i := len(f.logs) - 1; i >= 0; i-- {
		if f.logs[i].UserID == userID && f.logs[i].DayNumber == dayNumber {
			out = append(out, f.logs[i])
		}
	}
	return out, nil
}

func (f *fakeLogRepo) Update(_ context.Context, entry *domain.ExerciseLog) error {
	for i := range f.logs {
		if f.logs[i].ID == entry.ID && f.logs[i].UserID == entry.UserID {
			f.logs[i] = *entry
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeLogRepo) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	for i := range f.logs {
		if f.logs[i].ID == id && f.logs[i].UserID == userID {
			f.logs = append(f.logs[:i], f.logs[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeLogRepo) DailyCompletionStats(_ context.Context, userID primitive.ObjectID, start, end time.Time) ([]repository.DailyLogStats, error) {
	buckets := make(map[string]*repository.DailyLogStats)
	var order []string
	for _, entry := range f.logs {
		if entry.UserID != userID || entry.Date.Before(start) || entry.Date.After(end) {
			continue
		}
		day := entry.Date.UTC().Truncate(24 * time.Hour)
		key := day.Format("2006-01-02")
		b, ok := buckets[key]
		if !ok {
			b = &repository.DailyLogStats{Date: day}
			buckets[key] = b
			order = append(order, key)
		}
		b.Total++
		switch entry.Status {
		case domain.StatusCompleted:
			b.Completed++
		case domain.StatusSkipped:
			b.Skipped++
		}
	}
	out := make([]repository.DailyLogStats, 0, len(order))
	for _, key := range order {
		out = append(out, *buckets[key])
	}
	return out, nil
}

type fakeNutritionRepo struct {
	logs map[int]*domain.NutritionLog // keyed by day, single-user tests
}

func newFakeNutritionRepo() *fakeNutritionRepo {
	return &fakeNutritionRepo{logs: make(map[int]*domain.NutritionLog)}
}

func (f *fakeNutritionRepo) Upsert(_ context.Context, entry *domain.NutritionLog) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	stored := *entry
	f.logs[entry.Day] = &stored
	return nil
}

func (f *fakeNutritionRepo) GetByDay(_ context.Context, _ primitive.ObjectID, day int) (*domain.NutritionLog, error) {
	entry, ok := f.logs[day]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *entry
	return &out, nil
}

func (f *fakeNutritionRepo) GetByDateRange(_ context.Context, _ primitive.ObjectID, start, end time.Time) ([]domain.NutritionLog, error) {
	var out []domain.NutritionLog
	for _, entry := range f.logs {
		if !entry.Date.Before(start) && !entry.Date.After(end) {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (f *fakeNutritionRepo) MonthlyStats(_ context.Context, _ primitive.ObjectID, _, _ time.Time) ([]repository.MonthlyNutritionStats, error) {
	return nil, nil
}

type fakeProgressRepo struct {
	snapshots map[int]*domain.DayProgress
	upserts   int
	failDays  map[int]error // injects per-day repo failures
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{snapshots: make(map[int]*domain.DayProgress)}
}

func (f *fakeProgressRepo) GetByDay(_ context.Context, _ primitive.ObjectID, day int) (*domain.DayProgress, error) {
	if err, ok := f.failDays[day]; ok {
		return nil, err
	}
	snap, ok := f.snapshots[day]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *snap
	return &out, nil
}

func (f *fakeProgressRepo) Upsert(_ context.Context, snap *domain.DayProgress) error {
	if err, ok := f.failDays[snap.Day]; ok {
		return err
	}
	f.upserts++
	if snap.ID.IsZero() {
		snap.ID = primitive.NewObjectID()
	}
	stored := *snap
	f.snapshots[snap.Day] = &stored
	return nil
}

func (f *fakeProgressRepo) GetAllByUser(_ context.Context, _ primitive.ObjectID) ([]domain.DayProgress, error) {
	out := make([]domain.DayProgress, 0, len(f.snapshots))
	for day := 1; day <= 1000; day++ {
		if snap, ok := f.snapshots[day]; ok {
			out = append(out, *snap)
		}
	}
	return out, nil
}

func (f *fakeProgressRepo) GetLatestByUser(_ context.Context, _ primitive.ObjectID) (*domain.DayProgress, error) {
	var latest *domain.DayProgress
	for _, snap := range f.snapshots {
		if latest == nil || snap.Day > latest.Day {
			latest = snap
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	out := *latest
	return &out, nil
}

func (f *fakeProgressRepo) Delete(_ context.Context, _ primitive.ObjectID, day int) error {
	if _, ok := f.snapshots[day]; !ok {
		return repository.ErrNotFound
	}
	delete(f.snapshots, day)
	return nil
}

type fakeVideoRepo struct {
	videos map[primitive.ObjectID]*domain.ExerciseVideo
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: make(map[primitive.ObjectID]*domain.ExerciseVideo)}
}

func (f *fakeVideoRepo) Create(_ context.Context, video *domain.ExerciseVideo) (primitive.ObjectID, error) {
	for _, existing := range f.videos {
		if existing.ExerciseName == video.ExerciseName {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	video.ID = primitive.NewObjectID()
	video.CreatedAt = time.Now().UTC()
	stored := *video
	f.videos[video.ID] = &stored
	return video.ID, nil
}

func (f *fakeVideoRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ExerciseVideo, error) {
	video, ok := f.videos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *video
	return &out, nil
}

func (f *fakeVideoRepo) GetByExerciseName(_ context.Context, name string) (*domain.ExerciseVideo, error) {
	for _, video := range f.videos {
		if video.ExerciseName == name {
			out := *video
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeVideoRepo) GetActive(_ context.Context) ([]domain.ExerciseVideo, error) {
	var out []domain.ExerciseVideo
	for _, video := range f.videos {
		if video.IsActive {
			out = append(out, *video)
		}
	}
	return out, nil
}

func (f *fakeVideoRepo) Update(_ context.Context, video *domain.ExerciseVideo) error {
	if _, ok := f.videos[video.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *video
	f.videos[video.ID] = &stored
	return nil
}

func (f *fakeVideoRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.videos[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.videos, id)
	return nil
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, u := range f.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	f.users[user.ID] = user
	return user.ID, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByProfileKey(_ context.Context, profileKey string) (*domain.User, error) {
	for _, user := range f.users {
		if user.ProfileKey == profileKey {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByGoogleID(_ context.Context, googleID string) (*domain.User, error) {
	for _, user := range f.users {
		if user.GoogleID == googleID {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) SetFitnessPlan(_ context.Context, userID, planID primitive.ObjectID) error {
	user, ok := f.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.FitnessPlanID = &planID
	return nil
}

func (f *fakeUserRepo) UnsetFitnessPlanByPlanID(_ context.Context, planID primitive.ObjectID) error {
	for _, user := range f.users {
		if user.FitnessPlanID != nil && *user.FitnessPlanID == planID {
			user.FitnessPlanID = nil
		}
	}
	return nil
}

func (f *fakeUserRepo) SetSubscription(_ context.Context, userID primitive.ObjectID, subscriptionID *primitive.ObjectID, status domain.SubscriptionStatus) error {
	user, ok := f.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.CurrentSubscription = subscriptionID
	user.SubscriptionStatus = status
	return nil
}

func (f *fakeUserRepo) Search(_ context.Context, _ string, _, _ int) ([]domain.User, int64, error) {
	return nil, 0, nil
}

func (f *fakeUserRepo) DeleteByEmail(_ context.Context, email string) error {
	for id, user := range f.users {
		if user.Email == email {
			delete(f.users, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakePackageRepo struct {
	packages map[primitive.ObjectID]*domain.Package
}

func newFakePackageRepo() *fakePackageRepo {
	return &fakePackageRepo{packages: make(map[primitive.ObjectID]*domain.Package)}
}

func (f *fakePackageRepo) Create(_ context.Context, pkg *domain.Package) (primitive.ObjectID, error) {
	pkg.ID = primitive.NewObjectID()
	f.packages[pkg.ID] = pkg
	return pkg.ID, nil
}

func (f *fakePackageRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Package, error) {
	pkg, ok := f.packages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return pkg, nil
}

func (f *fakePackageRepo) GetActive(_ context.Context) ([]domain.Package, error) {
	var out []domain.Package
	for _, pkg := range f.packages {
		if pkg.IsActive {
			out = append(out, *pkg)
		}
	}
	return out, nil
}

func (f *fakePackageRepo) Update(_ context.Context, pkg *domain.Package) error {
	if _, ok := f.packages[pkg.ID]; !ok {
		return repository.ErrNotFound
	}
	f.packages[pkg.ID] = pkg
	return nil
}

func (f *fakePackageRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.packages[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.packages, id)
	return nil
}

type fakeSubscriptionRepo struct {
	subs map[primitive.ObjectID]*domain.Subscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[primitive.ObjectID]*domain.Subscription)}
}

func (f *fakeSubscriptionRepo) Create(_ context.Context, sub *domain.Subscription) (primitive.ObjectID, error) {
	for _, existing := range f.subs {
		if existing.TransactionID == sub.TransactionID {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	sub.ID = primitive.NewObjectID()
	f.subs[sub.ID] = sub
	return sub.ID, nil
}

func (f *fakeSubscriptionRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Subscription, error) {
	sub, ok := f.subs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return sub, nil
}

func (f *fakeSubscriptionRepo) GetByTransactionID(_ context.Context, transactionID string) (*domain.Subscription, error) {
	for _, sub := range f.subs {
		if sub.TransactionID == transactionID {
			return sub, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSubscriptionRepo) GetByUser(_ context.Context, userID primitive.ObjectID) ([]domain.Subscription, error) {
	var out []domain.Subscription
	for _, sub := range f.subs {
		if sub.UserID == userID {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeSubscriptionRepo) GetActiveByUser(_ context.Context, userID primitive.ObjectID) (*domain.Subscription, error) {
	for _, sub := range f.subs {
		if sub.UserID == userID && sub.IsActive() {
			return sub, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSubscriptionRepo) Update(_ context.Context, sub *domain.Subscription) error {
	if _, ok := f.subs[sub.ID]; !ok {
		return repository.ErrNotFound
	}
	f.subs[sub.ID] = sub
	return nil
}

func (f *fakeSubscriptionRepo) ExpireOverdue(_ context.Context, now time.Time) (int64, error) {
	var count int64
	for _, sub := range f.subs {
		if sub.Status == domain.SubscriptionActive && !sub.ExpiryDate.After(now) {
			sub.Status = domain.SubscriptionExpired
			count++
		}
	}
	return count, nil
}
