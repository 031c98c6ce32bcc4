package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthProvider distinguishes how the account was created.
type AuthProvider string

const (
	ProviderEmail  AuthProvider = "email"
	ProviderGoogle AuthProvider = "google"
)

// SubscriptionStatus tracks the user's billing state.
type SubscriptionStatus string

const (
	SubscriptionFree      SubscriptionStatus = "free"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionPending   SubscriptionStatus = "pending"
)

// GoogleProfile stores the identity details returned by Google sign-in.
type GoogleProfile struct {
	Name          string `bson:"name,omitempty" json:"name,omitempty"`
	FirebaseUID   string `bson:"firebaseUid,omitempty" json:"firebaseUid,omitempty"`
	EmailVerified bool   `bson:"emailVerified" json:"emailVerified"`
}

// User is an account in the system. Login is passwordless: either a
// short-lived email verification code or a verified Google ID token.
type User struct {
	ID                  primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Email               string              `bson:"email" json:"email"` // unique, lowercased
	ProfileKey          string              `bson:"profileKey,omitempty" json:"profileKey,omitempty"`
	FitnessPlanID       *primitive.ObjectID `bson:"fitnessPlanId,omitempty" json:"fitnessPlanId,omitempty"`
	Remarks             string              `bson:"remarks,omitempty" json:"remarks,omitempty"`
	IsVerified          bool                `bson:"isVerified" json:"isVerified"`
	SubscriptionStatus  SubscriptionStatus  `bson:"subscriptionStatus" json:"subscriptionStatus"`
	CurrentSubscription *primitive.ObjectID `bson:"currentSubscription,omitempty" json:"currentSubscription,omitempty"`
	GoogleID            string              `bson:"googleId,omitempty" json:"-"`
	GoogleProfile       *GoogleProfile      `bson:"googleProfile,omitempty" json:"googleProfile,omitempty"`
	AuthProvider        AuthProvider        `bson:"authProvider" json:"authProvider"`
	CreatedAt           time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsPaidUser() bool {
	return u.SubscriptionStatus == SubscriptionActive
}
