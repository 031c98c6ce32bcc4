package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile holds the user's physical intake data. A profile references at
// most one intake program: adaptive (limitation-based) or goal-based.
type Profile struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Gender          string              `bson:"gender,omitempty" json:"gender,omitempty"`
	Age             int                 `bson:"age,omitempty" json:"age,omitempty"`
	HeightCm        float64             `bson:"heightCm,omitempty" json:"heightCm,omitempty"`
	IsMetricHeight  bool                `bson:"isMetricHeight" json:"isMetricHeight"`
	CurrentWeightKg float64             `bson:"currentWeightKg,omitempty" json:"currentWeightKg,omitempty"`
	TargetWeightKg  float64             `bson:"targetWeightKg,omitempty" json:"targetWeightKg,omitempty"`
	Commitment      string              `bson:"commitment,omitempty" json:"commitment,omitempty"`
	WorkoutDays     []string            `bson:"workoutDays,omitempty" json:"workoutDays,omitempty"`
	AdaptiveProfile *primitive.ObjectID `bson:"adaptiveProfile,omitempty" json:"adaptiveProfile,omitempty"`
	GoalProgram     *primitive.ObjectID `bson:"goalBasedProgram,omitempty" json:"goalBasedProgram,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// HasBothPrograms reports the invalid state where both program references
// are set; writes must reject it.
func (p *Profile) HasBothPrograms() bool {
	return p.AdaptiveProfile != nil && p.GoalProgram != nil
}

// AdaptiveProfile is the limitation-based intake program: which limbs are
// affected and what the user wants to achieve.
type AdaptiveProfile struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AffectedLimbs        string             `bson:"affectedLimbs" json:"affectedLimbs"`
	Purposes             []string           `bson:"purposes" json:"purposes"`
	IsComplete           bool               `bson:"isComplete" json:"isComplete"`
	CompletionPercentage int                `bson:"completionPercentage" json:"completionPercentage"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CalculateCompletion rederives the completion metadata from the two
// required intake steps. Called by the write path before persisting.
func (a *AdaptiveProfile) CalculateCompletion() {
	steps := 0
	if a.AffectedLimbs != "" {
		steps++
	}
	if len(a.Purposes) > 0 {
		steps++
	}
	a.CompletionPercentage = steps * 100 / 2
	a.IsComplete = a.CompletionPercentage == 100
}
