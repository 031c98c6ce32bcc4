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

const videoCollectionName = "exercise_videos"

// mongoVideoRepository implements repository.VideoRepository using MongoDB.
type mongoVideoRepository struct {
	collection *mongo.Collection
}

// NewMongoVideoRepository creates a new instance of mongoVideoRepository.
func NewMongoVideoRepository(db *mongo.Database) repository.VideoRepository {
	return &mongoVideoRepository{
		collection: db.Collection(videoCollectionName),
	}
}

// Create inserts new video metadata.
func (r *mongoVideoRepository) Create(ctx context.Context, video *domain.ExerciseVideo) (primitive.ObjectID, error) {
	video.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	video.CreatedAt = now
	video.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, video)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves video metadata by ObjectID.
func (r *mongoVideoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseVideo, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByExerciseName retrieves the video registered for an exercise name.
func (r *mongoVideoRepository) GetByExerciseName(ctx context.Context, name string) (*domain.ExerciseVideo, error) {
	return r.findOne(ctx, bson.M{"exerciseName": name})
}

func (r *mongoVideoRepository) findOne(ctx context.Context, filter bson.M) (*domain.ExerciseVideo, error) {
	var video domain.ExerciseVideo
	err := r.collection.FindOne(ctx, filter).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &video, nil
}

// GetActive retrieves all active videos sorted by exercise name.
func (r *mongoVideoRepository) GetActive(ctx context.Context) ([]domain.ExerciseVideo, error) {
	opts := options.Find().SetSort(bson.D{{Key: "exerciseName", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var videos []domain.ExerciseVideo
	if err = cursor.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// Update replaces the full video metadata document.
func (r *mongoVideoRepository) Update(ctx context.Context, video *domain.ExerciseVideo) error {
	video.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": video.ID}, video)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes video metadata by ObjectID.
func (r *mongoVideoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureVideoIndexes creates necessary indexes for the exercise_videos collection.
func EnsureVideoIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "exerciseName", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
