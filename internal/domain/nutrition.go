package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MealType names one of the four daily meal slots.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// MealTypes lists the slots in canonical order.
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

// ValidMealType reports whether t names a real slot.
func ValidMealType(t MealType) bool {
	switch t {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

// MealEntry is the logged state of one meal slot.
type MealEntry struct {
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	Calories    int        `bson:"calories,omitempty" json:"calories,omitempty"`
	Status      Status     `bson:"status" json:"status"`
	SkipReason  string     `bson:"skipReason,omitempty" json:"skipReason,omitempty"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// Meals holds the four slots of a day's nutrition log.
type Meals struct {
	Breakfast MealEntry `bson:"breakfast" json:"breakfast"`
	Lunch     MealEntry `bson:"lunch" json:"lunch"`
	Dinner    MealEntry `bson:"dinner" json:"dinner"`
	Snack     MealEntry `bson:"snack" json:"snack"`
}

// Slot returns a pointer to the entry for the given meal type.
func (m *Meals) Slot(t MealType) *MealEntry {
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

// NutritionLog is the single per-user per-day nutrition document.
type NutritionLog struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID `bson:"userId" json:"userId"`
	Day              int                `bson:"day" json:"day"`
	Date             time.Time          `bson:"date" json:"date"`
	TotalCalories    int                `bson:"totalCalories" json:"totalCalories"` // daily target
	Meals            Meals              `bson:"meals" json:"meals"`
	Explanation      string             `bson:"explanation,omitempty" json:"explanation,omitempty"`
	ConsumedCalories int                `bson:"consumedCalories" json:"consumedCalories"`
	IsRestDay        bool               `bson:"isRestDay" json:"isRestDay"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RecomputeConsumedCalories rederives ConsumedCalories as the sum of
// calories over completed meals. The write path must call this before
// persisting so the stored value never drifts from the meal slots.
func (n *NutritionLog) RecomputeConsumedCalories() {
	total := 0
	for _, t := range MealTypes {
		meal := n.Meals.Slot(t)
		if meal.Status == StatusCompleted {
			total += meal.Calories
		}
	}
	n.ConsumedCalories = total
}
