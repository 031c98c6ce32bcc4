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

const exerciseLogCollectionName = "exercise_logs"

// mongoExerciseLogRepository implements repository.ExerciseLogRepository using MongoDB.
type mongoExerciseLogRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseLogRepository creates a new instance of mongoExerciseLogRepository.
func NewMongoExerciseLogRepository(db *mongo.Database) repository.ExerciseLogRepository {
	return &mongoExerciseLogRepository{
		collection: db.Collection(exerciseLogCollectionName),
	}
}

// Create inserts a new log entry.
func (r *mongoExerciseLogRepository) Create(ctx context.Context, log *domain.ExerciseLog) (primitive.ObjectID, error) {
	log.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	log.CreatedAt = now
	log.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, log)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves one log entry scoped to its owner.
func (r *mongoExerciseLogRepository) GetByID(ctx context.Context, id, userID primitive.ObjectID) (*domain.ExerciseLog, error) {
	var log domain.ExerciseLog
	filter := bson.M{"_id": id, "userId": userID}

	err := r.collection.FindOne(ctx, filter).Decode(&log)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// Find retrieves a user's log entries matching the filter, newest first.
func (r *mongoExerciseLogRepository) Find(ctx context.Context, userID primitive.ObjectID, filter repository.ExerciseLogFilter) ([]domain.ExerciseLog, error) {
	query := bson.M{"userId": userID}
	if filter.DayNumber > 0 {
		query["dayNumber"] = filter.DayNumber
	}
	if filter.ExerciseNumber > 0 {
		query["exerciseNumber"] = filter.ExerciseNumber
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.StartDate != nil || filter.EndDate != nil {
		dateRange := bson.M{}
		if filter.StartDate != nil {
			dateRange["$gte"] = *filter.StartDate
		}
		if filter.EndDate != nil {
			dateRange["$lte"] = *filter.EndDate
		}
		query["date"] = dateRange
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []domain.ExerciseLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// FindByDay retrieves every log for one plan day, newest first, so the
// first entry seen per exerciseNumber is the authoritative one.
func (r *mongoExerciseLogRepository) FindByDay(ctx context.Context, userID primitive.ObjectID, dayNumber int) ([]domain.ExerciseLog, error) {
	filter := bson.M{"userId": userID, "dayNumber": dayNumber}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []domain.ExerciseLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// Update replaces the mutable fields of an existing log entry.
func (r *mongoExerciseLogRepository) Update(ctx context.Context, log *domain.ExerciseLog) error {
	log.UpdatedAt = time.Now().UTC()

	filter := bson.M{"_id": log.ID, "userId": log.UserID}
	update := bson.M{"$set": bson.M{
		"status":     log.Status,
		"actualSets": log.ActualSets,
		"actualReps": log.ActualReps,
		"skipReason": log.SkipReason,
		"date":       log.Date,
		"updatedAt":  log.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes one log entry scoped to its owner.
func (r *mongoExerciseLogRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DailyCompletionStats groups a user's logs by calendar date and counts
// completed vs skipped entries per day.
func (r *mongoExerciseLogRepository) DailyCompletionStats(ctx context.Context, userID primitive.ObjectID, start, end time.Time) ([]repository.DailyLogStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"userId": userID,
			"date":   bson.M{"$gte": start, "$lte": end},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$date"}},
			"date":           bson.M{"$min": "$date"},
			"totalExercises": bson.M{"$sum": 1},
			"completed": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", domain.StatusCompleted}}, 1, 0},
			}},
			"skipped": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", domain.StatusSkipped}}, 1, 0},
			}},
		}}},
		{{Key: "$sort", Value: bson.M{"date": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stats []repository.DailyLogStats
	if err = cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// EnsureExerciseLogIndexes creates necessary indexes for the exercise_logs collection.
func EnsureExerciseLogIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "dayNumber", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
