package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseLog records one logging action against a planned exercise slot.
// A user may log the same (day, exerciseNumber) several times on different
// dates; the progress aggregator picks the most recent entry per slot.
// Status is completed or skipped only — a slot with no log is pending.
type ExerciseLog struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	DayNumber      int                `bson:"dayNumber" json:"dayNumber"`           // >= 1
	ExerciseNumber int                `bson:"exerciseNumber" json:"exerciseNumber"` // >= 1, position in the plan day
	Date           time.Time          `bson:"date" json:"date"`
	ExerciseName   string             `bson:"exerciseName" json:"exerciseName"`
	TargetSetsReps string             `bson:"targetSetsReps" json:"targetSetsReps"`
	Status         Status             `bson:"status" json:"status"`
	ActualSets     int                `bson:"actualSets,omitempty" json:"actualSets,omitempty"` // required iff completed
	ActualReps     int                `bson:"actualReps,omitempty" json:"actualReps,omitempty"` // required iff completed
	SkipReason     string             `bson:"skipReason,omitempty" json:"skipReason,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
