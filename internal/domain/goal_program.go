package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GoalProgramMetadata is derived bookkeeping about questionnaire completeness.
type GoalProgramMetadata struct {
	ProfileComplete      bool     `bson:"profileComplete" json:"profileComplete"`
	CompletionPercentage int      `bson:"completionPercentage" json:"completionPercentage"`
	FilledFieldsCount    int      `bson:"filledFieldsCount" json:"filledFieldsCount"`
	MissingFields        []string `bson:"missingFields,omitempty" json:"missingFields,omitempty"`
}

// GoalProgram is the goal-based intake questionnaire. Every field is
// optional; Metadata tracks how much of it has been answered.
type GoalProgram struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	SelectedWorkout string `bson:"selectedWorkout,omitempty" json:"selectedWorkout,omitempty"`

	CurrentBodyType string   `bson:"currentBodyType,omitempty" json:"currentBodyType,omitempty"`
	GoalBodyType    string   `bson:"goalBodyType,omitempty" json:"goalBodyType,omitempty"`
	TargetAreas     []string `bson:"targetAreas,omitempty" json:"targetAreas,omitempty"`

	HealthSatisfactionStatus string   `bson:"healthSatisfactionStatus,omitempty" json:"healthSatisfactionStatus,omitempty"`
	ExerciseMotivations      []string `bson:"exerciseMotivations,omitempty" json:"exerciseMotivations,omitempty"`

	FitnessLevel          int    `bson:"fitnessLevel,omitempty" json:"fitnessLevel,omitempty"` // 1..10
	PushupsCapability     string `bson:"pushupsCapability,omitempty" json:"pushupsCapability,omitempty"`
	SedentaryLifestyle    bool   `bson:"sedentaryLifestyle" json:"sedentaryLifestyle"`
	WalkingDuration       string `bson:"walkingDuration,omitempty" json:"walkingDuration,omitempty"`
	SleepDuration         string `bson:"sleepDuration,omitempty" json:"sleepDuration,omitempty"`
	WaterIntake           string `bson:"waterIntake,omitempty" json:"waterIntake,omitempty"`
	MealFeelings          string `bson:"mealFeelings,omitempty" json:"mealFeelings,omitempty"`
	DietaryType           string `bson:"dietaryType,omitempty" json:"dietaryType,omitempty"`
	OrganizationLevel     string `bson:"organizationLevel,omitempty" json:"organizationLevel,omitempty"`
	Habits                []string `bson:"habits,omitempty" json:"habits,omitempty"`
	EquipmentAvailability string   `bson:"equipmentAvailability,omitempty" json:"equipmentAvailability,omitempty"`

	WorkoutDaysPerWeek     int `bson:"workoutDaysPerWeek,omitempty" json:"workoutDaysPerWeek,omitempty"`         // 1..7
	WorkoutDurationMinutes int `bson:"workoutDurationMinutes,omitempty" json:"workoutDurationMinutes,omitempty"` // 10..300

	PrimaryGoal       string   `bson:"primaryGoal,omitempty" json:"primaryGoal,omitempty"`
	FitnessExperience string   `bson:"fitnessExperience,omitempty" json:"fitnessExperience,omitempty"`
	WorkoutHistory    string   `bson:"workoutHistory,omitempty" json:"workoutHistory,omitempty"`
	HealthConditions  []string `bson:"healthConditions,omitempty" json:"healthConditions,omitempty"`
	Injuries          []string `bson:"injuries,omitempty" json:"injuries,omitempty"`

	DietaryPreference  string   `bson:"dietaryPreference,omitempty" json:"dietaryPreference,omitempty"`
	HasGymAccess       bool     `bson:"hasGymAccess" json:"hasGymAccess"`
	AvailableEquipment []string `bson:"availableEquipment,omitempty" json:"availableEquipment,omitempty"`

	Metadata  GoalProgramMetadata `bson:"metadata" json:"metadata"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// goalProgramFields pairs each questionnaire field with an emptiness check
// so completion metadata derives from one place.
func (g *GoalProgram) goalProgramFields() []struct {
	name   string
	filled bool
} {
	return []struct {
		name   string
		filled bool
	}{
		{"selectedWorkout", g.SelectedWorkout != ""},
		{"currentBodyType", g.CurrentBodyType != ""},
		{"goalBodyType", g.GoalBodyType != ""},
		{"targetAreas", len(g.TargetAreas) > 0},
		{"healthSatisfactionStatus", g.HealthSatisfactionStatus != ""},
		{"exerciseMotivations", len(g.ExerciseMotivations) > 0},
		{"fitnessLevel", g.FitnessLevel > 0},
		{"pushupsCapability", g.PushupsCapability != ""},
		{"walkingDuration", g.WalkingDuration != ""},
		{"sleepDuration", g.SleepDuration != ""},
		{"waterIntake", g.WaterIntake != ""},
		{"mealFeelings", g.MealFeelings != ""},
		{"dietaryType", g.DietaryType != ""},
		{"organizationLevel", g.OrganizationLevel != ""},
		{"habits", len(g.Habits) > 0},
		{"equipmentAvailability", g.EquipmentAvailability != ""},
		{"workoutDaysPerWeek", g.WorkoutDaysPerWeek > 0},
		{"workoutDurationMinutes", g.WorkoutDurationMinutes > 0},
		{"primaryGoal", g.PrimaryGoal != ""},
		{"fitnessExperience", g.FitnessExperience != ""},
	}
}

// CalculateMetadata rederives the completion metadata from the
// questionnaire fields. Called by the write path before persisting.
func (g *GoalProgram) CalculateMetadata() {
	fields := g.goalProgramFields()
	filled := 0
	missing := make([]string, 0)
	for _, f := range fields {
		if f.filled {
			filled++
		} else {
			missing = append(missing, f.name)
		}
	}
	g.Metadata.FilledFieldsCount = filled
	g.Metadata.MissingFields = missing
	g.Metadata.CompletionPercentage = Percentage(filled, len(fields))
	g.Metadata.ProfileComplete = filled == len(fields)
}
