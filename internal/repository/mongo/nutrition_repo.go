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

const nutritionCollectionName = "nutrition_logs"

// mongoNutritionRepository implements repository.NutritionRepository using MongoDB.
type mongoNutritionRepository struct {
	collection *mongo.Collection
}

// NewMongoNutritionRepository creates a new instance of mongoNutritionRepository.
func NewMongoNutritionRepository(db *mongo.Database) repository.NutritionRepository {
	return &mongoNutritionRepository{
		collection: db.Collection(nutritionCollectionName),
	}
}

// Upsert writes the single nutrition document for (userId, day).
func (r *mongoNutritionRepository) Upsert(ctx context.Context, log *domain.NutritionLog) error {
	now := time.Now().UTC()
	log.UpdatedAt = now

	filter := bson.M{"userId": log.UserID, "day": log.Day}
	update := bson.M{
		"$set": bson.M{
			"date":             log.Date,
			"totalCalories":    log.TotalCalories,
			"meals":            log.Meals,
			"explanation":      log.Explanation,
			"consumedCalories": log.ConsumedCalories,
			"isRestDay":        log.IsRestDay,
			"updatedAt":        log.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"userId":    log.UserID,
			"day":       log.Day,
			"createdAt": now,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return err
	}
	if result.UpsertedID != nil {
		if id, ok := result.UpsertedID.(primitive.ObjectID); ok {
			log.ID = id
		}
	}
	return nil
}

// GetByDay retrieves the nutrition log for one (userId, day) pair.
func (r *mongoNutritionRepository) GetByDay(ctx context.Context, userID primitive.ObjectID, day int) (*domain.NutritionLog, error) {
	var log domain.NutritionLog
	filter := bson.M{"userId": userID, "day": day}

	err := r.collection.FindOne(ctx, filter).Decode(&log)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// GetByDateRange retrieves a user's nutrition logs between two dates, ordered by date.
func (r *mongoNutritionRepository) GetByDateRange(ctx context.Context, userID primitive.ObjectID, start, end time.Time) ([]domain.NutritionLog, error) {
	filter := bson.M{
		"userId": userID,
		"date":   bson.M{"$gte": start, "$lte": end},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []domain.NutritionLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// MonthlyStats groups a user's nutrition logs by calendar month with
// average target/consumed calories and the share of days fully consumed.
func (r *mongoNutritionRepository) MonthlyStats(ctx context.Context, userID primitive.ObjectID, start, end time.Time) ([]repository.MonthlyNutritionStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"userId": userID,
			"date":   bson.M{"$gte": start, "$lte": end},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": "$date"},
				"month": bson.M{"$month": "$date"},
			},
			"averageTargetCalories":   bson.M{"$avg": "$totalCalories"},
			"averageConsumedCalories": bson.M{"$avg": "$consumedCalories"},
			"daysCount":               bson.M{"$sum": 1},
			"daysMet": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$gte": bson.A{"$consumedCalories", "$totalCalories"}}, 1, 0},
			}},
		}}},
		{{Key: "$project", Value: bson.M{
			"year":                    "$_id.year",
			"month":                   "$_id.month",
			"averageTargetCalories":   1,
			"averageConsumedCalories": 1,
			"daysCount":               1,
			"completionRate": bson.M{"$multiply": bson.A{
				bson.M{"$divide": bson.A{"$daysMet", "$daysCount"}}, 100,
			}},
		}}},
		{{Key: "$sort", Value: bson.M{"year": 1, "month": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stats []repository.MonthlyNutritionStats
	if err = cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// EnsureNutritionIndexes creates necessary indexes for the nutrition_logs collection.
func EnsureNutritionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One nutrition document per user per plan day.
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "day", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
