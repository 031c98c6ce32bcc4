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

const subscriptionCollectionName = "subscriptions"

// mongoSubscriptionRepository implements repository.SubscriptionRepository using MongoDB.
type mongoSubscriptionRepository struct {
	collection *mongo.Collection
}

// NewMongoSubscriptionRepository creates a new instance of mongoSubscriptionRepository.
func NewMongoSubscriptionRepository(db *mongo.Database) repository.SubscriptionRepository {
	return &mongoSubscriptionRepository{
		collection: db.Collection(subscriptionCollectionName),
	}
}

// Create inserts a new subscription. The unique transactionId index makes
// webhook retries idempotent at the storage layer.
func (r *mongoSubscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) (primitive.ObjectID, error) {
	sub.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, sub)
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

// GetByID retrieves a subscription by ObjectID.
func (r *mongoSubscriptionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Subscription, error) {
	return r.findOne(ctx, bson.M{"_id": id}, nil)
}

// GetByTransactionID retrieves a subscription by its gateway transaction ID.
func (r *mongoSubscriptionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Subscription, error) {
	return r.findOne(ctx, bson.M{"transactionId": transactionID}, nil)
}

// GetActiveByUser retrieves the user's current active subscription, if any.
func (r *mongoSubscriptionRepository) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Subscription, error) {
	filter := bson.M{
		"user":       userID,
		"status":     domain.SubscriptionActive,
		"expiryDate": bson.M{"$gt": time.Now().UTC()},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "expiryDate", Value: -1}})
	return r.findOne(ctx, filter, opts)
}

func (r *mongoSubscriptionRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*domain.Subscription, error) {
	var sub domain.Subscription
	var err error
	if opts != nil {
		err = r.collection.FindOne(ctx, filter, opts).Decode(&sub)
	} else {
		err = r.collection.FindOne(ctx, filter).Decode(&sub)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// GetByUser retrieves a user's full subscription history, newest first.
func (r *mongoSubscriptionRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Subscription, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []domain.Subscription
	if err = cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// Update replaces the mutable fields of a subscription.
func (r *mongoSubscriptionRepository) Update(ctx context.Context, sub *domain.Subscription) error {
	sub.UpdatedAt = time.Now().UTC()

	filter := bson.M{"_id": sub.ID}
	update := bson.M{"$set": bson.M{
		"status":     sub.Status,
		"expiryDate": sub.ExpiryDate,
		"amountPaid": sub.AmountPaid,
		"updatedAt":  sub.UpdatedAt,
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

// ExpireOverdue flips every active subscription past its expiry date to
// expired and returns how many were flipped.
func (r *mongoSubscriptionRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"status":     domain.SubscriptionActive,
		"expiryDate": bson.M{"$lte": now},
	}
	update := bson.M{"$set": bson.M{
		"status":    domain.SubscriptionExpired,
		"updatedAt": now,
	}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// EnsureSubscriptionIndexes creates necessary indexes for the subscriptions collection.
func EnsureSubscriptionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "transactionId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "expiryDate", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
