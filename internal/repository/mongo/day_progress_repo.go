package mongo

import (
	"context"
	"errors"
	"time"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const dayProgressCollectionName = "day_progress"

// mongoDayProgressRepository implements repository.DayProgressRepository using MongoDB.
type mongoDayProgressRepository struct {
	collection *mongo.Collection
}

// NewMongoDayProgressRepository creates a new instance of mongoDayProgressRepository.
func NewMongoDayProgressRepository(db *mongo.Database) repository.DayProgressRepository {
	return &mongoDayProgressRepository{
		collection: db.Collection(dayProgressCollectionName),
	}
}

// GetByDay retrieves the snapshot for one (userId, day) pair.
func (r *mongoDayProgressRepository) GetByDay(ctx context.Context, userID primitive.ObjectID, day int) (*domain.DayProgress, error) {
	var progress domain.DayProgress
	filter := bson.M{"userId": userID, "day": day}

	err := r.collection.FindOne(ctx, filter).Decode(&progress)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &progress, nil
}

// Upsert writes the snapshot keyed by (userId, day). The unique compound
// index turns concurrent refreshes into last-writer-wins on one document.
func (r *mongoDayProgressRepository) Upsert(ctx context.Context, progress *domain.DayProgress) error {
	now := time.Now().UTC()
	progress.UpdatedAt = now

	filter := bson.M{"userId": progress.UserID, "day": progress.Day}
	update := bson.M{
		"$set": bson.M{
			"fitnessPlanId":     progress.FitnessPlanID,
			"date":              progress.Date,
			"dayType":           progress.DayType,
			"exerciseProgress":  progress.ExerciseProgress,
			"nutritionProgress": progress.NutritionProgress,
			"overallProgress":   progress.OverallProgress,
			"lastUpdated":       progress.LastUpdated,
			"updatedAt":         progress.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"userId":    progress.UserID,
			"day":       progress.Day,
			"createdAt": now,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return err
	}
	if result.UpsertedID != nil {
		if id, ok := result.UpsertedID.(primitive.ObjectID); ok {
			progress.ID = id
		}
	}
	return nil
}

// GetAllByUser retrieves every snapshot for a user, ordered by day.
func (r *mongoDayProgressRepository) GetAllByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.DayProgress, error) {
	filter := bson.M{"userId": userID}
	opts := options.Find().SetSort(bson.D{{Key: "day", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var snapshots []domain.DayProgress
	if err = cursor.All(ctx, &snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// GetLatestByUser retrieves the snapshot with the highest day number.
func (r *mongoDayProgressRepository) GetLatestByUser(ctx context.Context, userID primitive.ObjectID) (*domain.DayProgress, error) {
	var progress domain.DayProgress
	filter := bson.M{"userId": userID}
	opts := options.FindOne().SetSort(bson.D{{Key: "day", Value: -1}})

	err := r.collection.FindOne(ctx, filter, opts).Decode(&progress)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &progress, nil
}

// Delete removes the snapshot for one (userId, day) pair.
func (r *mongoDayProgressRepository) Delete(ctx context.Context, userID primitive.ObjectID, day int) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID, "day": day})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureDayProgressIndexes creates necessary indexes for the day_progress collection.
// Call this once during application startup.
func EnsureDayProgressIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One snapshot per user per plan day.
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "day", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
