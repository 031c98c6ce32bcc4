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
)

const (
	adaptiveProfileCollectionName = "adaptive_profiles"
	goalProgramCollectionName     = "goal_programs"
)

// mongoAdaptiveProfileRepository implements repository.AdaptiveProfileRepository.
type mongoAdaptiveProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoAdaptiveProfileRepository creates a new instance of mongoAdaptiveProfileRepository.
func NewMongoAdaptiveProfileRepository(db *mongo.Database) repository.AdaptiveProfileRepository {
	return &mongoAdaptiveProfileRepository{
		collection: db.Collection(adaptiveProfileCollectionName),
	}
}

func (r *mongoAdaptiveProfileRepository) Create(ctx context.Context, ap *domain.AdaptiveProfile) (primitive.ObjectID, error) {
	ap.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	ap.CreatedAt = now
	ap.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, ap)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoAdaptiveProfileRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.AdaptiveProfile, error) {
	var ap domain.AdaptiveProfile
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ap)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &ap, nil
}

func (r *mongoAdaptiveProfileRepository) Update(ctx context.Context, ap *domain.AdaptiveProfile) error {
	ap.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": ap.ID}, ap)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoAdaptiveProfileRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// mongoGoalProgramRepository implements repository.GoalProgramRepository.
type mongoGoalProgramRepository struct {
	collection *mongo.Collection
}

// NewMongoGoalProgramRepository creates a new instance of mongoGoalProgramRepository.
func NewMongoGoalProgramRepository(db *mongo.Database) repository.GoalProgramRepository {
	return &mongoGoalProgramRepository{
		collection: db.Collection(goalProgramCollectionName),
	}
}

func (r *mongoGoalProgramRepository) Create(ctx context.Context, gp *domain.GoalProgram) (primitive.ObjectID, error) {
	gp.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	gp.CreatedAt = now
	gp.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, gp)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoGoalProgramRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.GoalProgram, error) {
	var gp domain.GoalProgram
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&gp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &gp, nil
}

func (r *mongoGoalProgramRepository) Update(ctx context.Context, gp *domain.GoalProgram) error {
	gp.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": gp.ID}, gp)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoGoalProgramRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
