package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseVideo stores metadata for one demonstration video, keyed by the
// exercise name used in generated plans (one video per exercise). The
// bytes live in object storage; ObjectKey/ThumbnailKey locate them.
type ExerciseVideo struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ExerciseName string              `bson:"exerciseName" json:"exerciseName"` // unique
	ObjectKey    string              `bson:"objectKey" json:"-"`
	ContentType  string              `bson:"contentType" json:"contentType"`
	Size         int64               `bson:"size" json:"size"`
	ThumbnailKey string              `bson:"thumbnailKey,omitempty" json:"-"`
	Duration     int                 `bson:"duration,omitempty" json:"duration,omitempty"` // seconds
	Description  string              `bson:"description,omitempty" json:"description,omitempty"`
	UploadedBy   *primitive.ObjectID `bson:"uploadedBy,omitempty" json:"uploadedBy,omitempty"`
	IsActive     bool                `bson:"isActive" json:"isActive"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}
