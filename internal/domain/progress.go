package domain

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseSlot mirrors one planned exercise augmented with its live status.
type ExerciseSlot struct {
	ExerciseNumber int                 `bson:"exerciseNumber" json:"exerciseNumber"`
	ExerciseName   string              `bson:"exerciseName" json:"exerciseName"`
	TargetSetsReps string              `bson:"targetSetsReps" json:"targetSetsReps"`
	Status         Status              `bson:"status" json:"status"`
	ActualSets     int                 `bson:"actualSets,omitempty" json:"actualSets,omitempty"`
	ActualReps     int                 `bson:"actualReps,omitempty" json:"actualReps,omitempty"`
	SkipReason     string              `bson:"skipReason,omitempty" json:"skipReason,omitempty"`
	LogID          *primitive.ObjectID `bson:"logId,omitempty" json:"logId,omitempty"`
}

// ExerciseProgress aggregates the exercise axis of a day.
type ExerciseProgress struct {
	TotalExercises       int            `bson:"totalExercises" json:"totalExercises"`
	CompletedExercises   int            `bson:"completedExercises" json:"completedExercises"`
	SkippedExercises     int            `bson:"skippedExercises" json:"skippedExercises"`
	PendingExercises     int            `bson:"pendingExercises" json:"pendingExercises"`
	CompletionPercentage int            `bson:"completionPercentage" json:"completionPercentage"`
	Exercises            []ExerciseSlot `bson:"exercises,omitempty" json:"exercises,omitempty"`
}

// MealSlot mirrors one planned meal augmented with its live status.
type MealSlot struct {
	TargetDescription string     `bson:"targetDescription,omitempty" json:"targetDescription,omitempty"`
	TargetCalories    int        `bson:"targetCalories,omitempty" json:"targetCalories,omitempty"`
	Status            Status     `bson:"status" json:"status"`
	ActualDescription string     `bson:"actualDescription,omitempty" json:"actualDescription,omitempty"`
	ActualCalories    int        `bson:"actualCalories,omitempty" json:"actualCalories,omitempty"`
	SkipReason        string     `bson:"skipReason,omitempty" json:"skipReason,omitempty"`
	CompletedAt       *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// MealSlots holds the four tracked meal slots of a day.
type MealSlots struct {
	Breakfast MealSlot `bson:"breakfast" json:"breakfast"`
	Lunch     MealSlot `bson:"lunch" json:"lunch"`
	Dinner    MealSlot `bson:"dinner" json:"dinner"`
	Snack     MealSlot `bson:"snack" json:"snack"`
}

// Slot returns a pointer to the slot for the given meal type.
func (m *MealSlots) Slot(t MealType) *MealSlot {
	switch t {
	case MealBreakfast:
		return &m.Breakfast
	case MealLunch:
		return &m.Lunch
	case MealDinner:
		return &m.Dinner
	default:
		return &m.Snack
	}
}

// NutritionProgress aggregates the nutrition axis of a day. TotalMeals is
// always 4 (breakfast, lunch, dinner, snack).
type NutritionProgress struct {
	TotalMeals           int       `bson:"totalMeals" json:"totalMeals"`
	CompletedMeals       int       `bson:"completedMeals" json:"completedMeals"`
	SkippedMeals         int       `bson:"skippedMeals" json:"skippedMeals"`
	PendingMeals         int       `bson:"pendingMeals" json:"pendingMeals"`
	CompletionPercentage int       `bson:"completionPercentage" json:"completionPercentage"`
	TargetCalories       int       `bson:"targetCalories" json:"targetCalories"`
	ConsumedCalories     int       `bson:"consumedCalories" json:"consumedCalories"`
	CaloriesPercentage   int       `bson:"caloriesPercentage" json:"caloriesPercentage"`
	Meals                MealSlots `bson:"meals" json:"meals"`
}

// OverallProgress combines both axes into day-level completion flags.
type OverallProgress struct {
	IsExerciseComplete   bool `bson:"isExerciseComplete" json:"isExerciseComplete"`
	IsNutritionComplete  bool `bson:"isNutritionComplete" json:"isNutritionComplete"`
	IsDayComplete        bool `bson:"isDayComplete" json:"isDayComplete"`
	CompletionPercentage int  `bson:"completionPercentage" json:"completionPercentage"`
}

// DayProgress is the denormalized per-day snapshot reconciling the plan's
// targets with the user's exercise and nutrition logs. One document per
// (userId, day), enforced by a unique compound index; fully derived and
// idempotently recomputable, so concurrent refreshes may safely race on
// the upsert (last writer wins).
type DayProgress struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID            primitive.ObjectID `bson:"userId" json:"userId"`
	FitnessPlanID     primitive.ObjectID `bson:"fitnessPlanId" json:"fitnessPlanId"`
	Day               int                `bson:"day" json:"day"`
	Date              time.Time          `bson:"date" json:"date"`
	DayType           DayType            `bson:"dayType" json:"dayType"`
	ExerciseProgress  ExerciseProgress   `bson:"exerciseProgress" json:"exerciseProgress"`
	NutritionProgress NutritionProgress  `bson:"nutritionProgress" json:"nutritionProgress"`
	OverallProgress   OverallProgress    `bson:"overallProgress" json:"overallProgress"`
	LastUpdated       time.Time          `bson:"lastUpdated" json:"lastUpdated"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Percentage returns round(100 * part / total), 0 when total is not positive.
func Percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// Recompute rederives every counter and flag from the slot statuses.
// Invariants on return:
//   - completed + skipped + pending == total, on both axes
//   - a slot counts toward completion once it is completed OR skipped
//   - a rest day's exercise axis is complete at 100% regardless of logs
//   - overall percentage is the 50/50 mean of the two axes, rest day or not
func (p *DayProgress) Recompute() {
	if p.DayType == DayWorkout {
		done := p.ExerciseProgress.CompletedExercises + p.ExerciseProgress.SkippedExercises
		p.ExerciseProgress.CompletionPercentage = Percentage(done, p.ExerciseProgress.TotalExercises)
		p.OverallProgress.IsExerciseComplete =
			p.ExerciseProgress.PendingExercises == 0 && p.ExerciseProgress.TotalExercises > 0
	} else {
		p.OverallProgress.IsExerciseComplete = true
		p.ExerciseProgress.CompletionPercentage = 100
	}

	doneMeals := p.NutritionProgress.CompletedMeals + p.NutritionProgress.SkippedMeals
	p.NutritionProgress.CompletionPercentage = Percentage(doneMeals, p.NutritionProgress.TotalMeals)
	p.NutritionProgress.CaloriesPercentage = Percentage(p.NutritionProgress.ConsumedCalories, p.NutritionProgress.TargetCalories)
	p.OverallProgress.IsNutritionComplete = p.NutritionProgress.PendingMeals == 0

	p.OverallProgress.IsDayComplete =
		p.OverallProgress.IsExerciseComplete && p.OverallProgress.IsNutritionComplete

	p.OverallProgress.CompletionPercentage = int(math.Round(
		float64(p.ExerciseProgress.CompletionPercentage+p.NutritionProgress.CompletionPercentage) / 2))

	p.LastUpdated = time.Now().UTC()
}
