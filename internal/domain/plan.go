package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanType identifies which intake program the plan was generated from.
type PlanType string

const (
	PlanAdaptive  PlanType = "adaptive"
	PlanGoalBased PlanType = "goalBased"
)

// DayType marks a plan day as a training day or a recovery day.
type DayType string

const (
	DayWorkout DayType = "workout"
	DayRest    DayType = "rest"
)

// PlanExercise is a single target exercise inside a plan day.
type PlanExercise struct {
	Name        string   `bson:"name" json:"name"`
	Description string   `bson:"description,omitempty" json:"description,omitempty"`
	Steps       []string `bson:"steps,omitempty" json:"steps,omitempty"`
	SetsReps    string   `bson:"setsReps" json:"setsReps"`
	Tips        []string `bson:"tips,omitempty" json:"tips,omitempty"`
}

// Routine is a short timed block (warmup/cooldown).
type Routine struct {
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Duration    string `bson:"duration,omitempty" json:"duration,omitempty"`
}

// PlanWorkout describes the training content of a workout day.
type PlanWorkout struct {
	Focus          string         `bson:"focus,omitempty" json:"focus,omitempty"`
	CaloriesBurned int            `bson:"caloriesBurned,omitempty" json:"caloriesBurned,omitempty"`
	Intensity      string         `bson:"intensity,omitempty" json:"intensity,omitempty"`
	Warmup         Routine        `bson:"warmup,omitempty" json:"warmup,omitempty"`
	Exercises      []PlanExercise `bson:"exercises" json:"exercises"`
	Cooldown       Routine        `bson:"cooldown,omitempty" json:"cooldown,omitempty"`
}

// PlanMeal is the nutrition target for one meal slot.
type PlanMeal struct {
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Calories    int    `bson:"calories,omitempty" json:"calories,omitempty"`
}

// PlanNutrition holds the four meal targets for a day.
type PlanNutrition struct {
	Breakfast     PlanMeal `bson:"breakfast" json:"breakfast"`
	Lunch         PlanMeal `bson:"lunch" json:"lunch"`
	Dinner        PlanMeal `bson:"dinner" json:"dinner"`
	Snack         PlanMeal `bson:"snack" json:"snack"`
	TotalCalories int      `bson:"totalCalories,omitempty" json:"totalCalories,omitempty"`
	Explanation   string   `bson:"explanation,omitempty" json:"explanation,omitempty"`
}

// Meal returns the target for the given slot.
func (n *PlanNutrition) Meal(t MealType) PlanMeal {
	switch t {
	case MealBreakfast:
		return n.Breakfast
	case MealLunch:
		return n.Lunch
	case MealDinner:
		return n.Dinner
	default:
		return n.Snack
	}
}

// PlanDay is one day of the generated schedule. Immutable once generated;
// the progress aggregator only reads it.
type PlanDay struct {
	Day       int            `bson:"day" json:"day"`
	Type      DayType        `bson:"type" json:"type"`
	Workout   *PlanWorkout   `bson:"workout,omitempty" json:"workout,omitempty"`
	Nutrition *PlanNutrition `bson:"nutrition,omitempty" json:"nutrition,omitempty"`
}

// PlanOverview summarizes the whole schedule.
type PlanOverview struct {
	TotalDays                     int `bson:"totalDays" json:"totalDays"`
	ActiveDays                    int `bson:"activeDays" json:"activeDays"`
	RestDays                      int `bson:"restDays" json:"restDays"`
	EstimatedWeeklyCaloriesBurned int `bson:"estimatedWeeklyCaloriesBurned,omitempty" json:"estimatedWeeklyCaloriesBurned,omitempty"`
}

// PlanStructure is the AI-generated plan body.
type PlanStructure struct {
	Overview    PlanOverview `bson:"overview" json:"overview"`
	Days        []PlanDay    `bson:"days" json:"days"`
	SafetyNotes []string     `bson:"safetyNotes,omitempty" json:"safetyNotes,omitempty"`
}

// ProfileSnapshot captures the profile values the plan was generated from.
type ProfileSnapshot struct {
	Gender          string   `bson:"gender,omitempty" json:"gender,omitempty"`
	Age             int      `bson:"age,omitempty" json:"age,omitempty"`
	HeightCm        float64  `bson:"heightCm,omitempty" json:"heightCm,omitempty"`
	CurrentWeightKg float64  `bson:"currentWeightKg,omitempty" json:"currentWeightKg,omitempty"`
	TargetWeightKg  float64  `bson:"targetWeightKg,omitempty" json:"targetWeightKg,omitempty"`
	Commitment      string   `bson:"commitment,omitempty" json:"commitment,omitempty"`
	WorkoutDays     []string `bson:"workoutDays,omitempty" json:"workoutDays,omitempty"`
}

// FitnessPlan is the persisted multi-day plan for a profile.
type FitnessPlan struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProfileID       primitive.ObjectID `bson:"profileId" json:"profileId"`
	Plan            PlanStructure      `bson:"plan" json:"plan"`
	PlanType        PlanType           `bson:"planType" json:"planType"`
	GeneratedAt     time.Time          `bson:"generatedAt" json:"generatedAt"`
	ProfileSnapshot ProfileSnapshot    `bson:"profileSnapshot,omitempty" json:"profileSnapshot,omitempty"`
	ProgramSnapshot bson.M             `bson:"programSnapshot,omitempty" json:"programSnapshot,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Day returns the plan day with the given number, or nil if the number
// is outside the plan.
func (p *FitnessPlan) Day(n int) *PlanDay {
	for i := range p.Plan.Days {
		if p.Plan.Days[i].Day == n {
			return &p.Plan.Days[i]
		}
	}
	return nil
}
