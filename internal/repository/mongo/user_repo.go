package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userCollectionName = "users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
// It expects a connected *mongo.Database instance.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" {
		return primitive.NilObjectID, errors.New("user email is required")
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
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

// GetByID retrieves a user by their MongoDB ObjectID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail retrieves a user by their email address (stored lowercased).
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByProfileKey retrieves the user owning the given intake profile.
func (r *mongoUserRepository) GetByProfileKey(ctx context.Context, profileKey string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"profileKey": profileKey})
}

// GetByGoogleID retrieves a user by their Google subject identifier.
func (r *mongoUserRepository) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"googleId": googleID})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Update replaces the mutable fields of an existing user document.
func (r *mongoUserRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()

	filter := bson.M{"_id": user.ID}
	update := bson.M{"$set": bson.M{
		"email":               user.Email,
		"profileKey":          user.ProfileKey,
		"fitnessPlanId":       user.FitnessPlanID,
		"remarks":             user.Remarks,
		"isVerified":          user.IsVerified,
		"subscriptionStatus":  user.SubscriptionStatus,
		"currentSubscription": user.CurrentSubscription,
		"googleId":            user.GoogleID,
		"googleProfile":       user.GoogleProfile,
		"authProvider":        user.AuthProvider,
		"updatedAt":           user.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
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

// SetFitnessPlan points the user at a newly generated plan.
func (r *mongoUserRepository) SetFitnessPlan(ctx context.Context, userID, planID primitive.ObjectID) error {
	filter := bson.M{"_id": userID}
	update := bson.M{"$set": bson.M{
		"fitnessPlanId": planID,
		"updatedAt":     time.Now().UTC(),
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

// UnsetFitnessPlanByPlanID clears the plan reference from every user still
// pointing at a deleted plan.
func (r *mongoUserRepository) UnsetFitnessPlanByPlanID(ctx context.Context, planID primitive.ObjectID) error {
	filter := bson.M{"fitnessPlanId": planID}
	update := bson.M{
		"$unset": bson.M{"fitnessPlanId": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	}

	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

// SetSubscription updates the user's current subscription reference and status.
func (r *mongoUserRepository) SetSubscription(ctx context.Context, userID primitive.ObjectID, subscriptionID *primitive.ObjectID, status domain.SubscriptionStatus) error {
	set := bson.M{
		"subscriptionStatus": status,
		"updatedAt":          time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if subscriptionID != nil {
		set["currentSubscription"] = *subscriptionID
	} else {
		update["$unset"] = bson.M{"currentSubscription": ""}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Search finds users by email or profile key substring, paginated.
func (r *mongoUserRepository) Search(ctx context.Context, term string, page, limit int) ([]domain.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := bson.M{}
	if term != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
		filter = bson.M{"$or": bson.A{
			bson.M{"email": pattern},
			bson.M{"profileKey": pattern},
		}}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var users []domain.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// DeleteByEmail removes a user account by email.
func (r *mongoUserRepository) DeleteByEmail(ctx context.Context, email string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureUserIndexes creates necessary indexes for the users collection.
// Call this once during application startup.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "profileKey", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "googleId", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
