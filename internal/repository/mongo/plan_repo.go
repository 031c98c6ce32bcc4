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

const planCollectionName = "fitness_plans"

// mongoFitnessPlanRepository implements repository.FitnessPlanRepository using MongoDB.
type mongoFitnessPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoFitnessPlanRepository creates a new instance of mongoFitnessPlanRepository.
func NewMongoFitnessPlanRepository(db *mongo.Database) repository.FitnessPlanRepository {
	return &mongoFitnessPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// Create inserts a newly generated plan.
func (r *mongoFitnessPlanRepository) Create(ctx context.Context, plan *domain.FitnessPlan) (primitive.ObjectID, error) {
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	if plan.GeneratedAt.IsZero() {
		plan.GeneratedAt = now
	}

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a plan by its ObjectID.
func (r *mongoFitnessPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.FitnessPlan, error) {
	var plan domain.FitnessPlan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetLatestByProfileID retrieves the most recently generated plan for a profile.
func (r *mongoFitnessPlanRepository) GetLatestByProfileID(ctx context.Context, profileID primitive.ObjectID) (*domain.FitnessPlan, error) {
	var plan domain.FitnessPlan
	opts := options.FindOne().SetSort(bson.D{{Key: "generatedAt", Value: -1}})

	err := r.collection.FindOne(ctx, bson.M{"profileId": profileID}, opts).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetAll retrieves every stored plan, newest first.
func (r *mongoFitnessPlanRepository) GetAll(ctx context.Context) ([]domain.FitnessPlan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "generatedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var plans []domain.FitnessPlan
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// Delete removes a plan by ObjectID.
func (r *mongoFitnessPlanRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByProfileID removes every plan generated for a profile. Used when
// regenerating so only the newest plan survives.
func (r *mongoFitnessPlanRepository) DeleteByProfileID(ctx context.Context, profileID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"profileId": profileID})
	return err
}

// EnsurePlanIndexes creates necessary indexes for the fitness_plans collection.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "profileId", Value: 1}, {Key: "generatedAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
