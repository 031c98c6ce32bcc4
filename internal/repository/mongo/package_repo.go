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

const packageCollectionName = "packages"

// mongoPackageRepository implements repository.PackageRepository using MongoDB.
type mongoPackageRepository struct {
	collection *mongo.Collection
}

// NewMongoPackageRepository creates a new instance of mongoPackageRepository.
func NewMongoPackageRepository(db *mongo.Database) repository.PackageRepository {
	return &mongoPackageRepository{
		collection: db.Collection(packageCollectionName),
	}
}

// Create inserts a new package.
func (r *mongoPackageRepository) Create(ctx context.Context, pkg *domain.Package) (primitive.ObjectID, error) {
	pkg.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	pkg.CreatedAt = now
	pkg.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, pkg)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a package by ObjectID.
func (r *mongoPackageRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Package, error) {
	var pkg domain.Package
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&pkg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &pkg, nil
}

// GetActive retrieves the purchasable packages, popular first then cheapest.
func (r *mongoPackageRepository) GetActive(ctx context.Context) ([]domain.Package, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "isPopular", Value: -1},
		{Key: "price", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var packages []domain.Package
	if err = cursor.All(ctx, &packages); err != nil {
		return nil, err
	}
	return packages, nil
}

// Update replaces the full package document.
func (r *mongoPackageRepository) Update(ctx context.Context, pkg *domain.Package) error {
	pkg.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": pkg.ID}, pkg)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a package by ObjectID.
func (r *mongoPackageRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
