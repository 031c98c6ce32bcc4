package ai

import (
	"fmt"
	"strings"

	"fitcoach/coach-app/internal/domain"
)

const defaultPlanDays = 30

// BuildPlanPrompt renders the generation prompt for a request. It fails
// when the request names a program type without the matching program data.
func BuildPlanPrompt(req PlanRequest) (string, error) {
	days := req.Days
	if days <= 0 {
		days = defaultPlanDays
	}

	var b strings.Builder
	b.WriteString("You are an experienced fitness and nutrition coach. ")
	fmt.Fprintf(&b, "Create a personalized %d-day fitness and nutrition plan for the following client.\n\n", days)

	writeProfile(&b, req.Profile)

	switch req.PlanType {
	case domain.PlanAdaptive:
		if req.Adaptive == nil {
			return "", fmt.Errorf("adaptive plan requested without adaptive program data")
		}
		writeAdaptive(&b, req.Adaptive)
	case domain.PlanGoalBased:
		if req.Goal == nil {
			return "", fmt.Errorf("goal-based plan requested without goal program data")
		}
		writeGoal(&b, req.Goal)
	default:
		return "", fmt.Errorf("unknown plan type %q", req.PlanType)
	}

	writeOutputContract(&b, days)
	return b.String(), nil
}

func writeProfile(b *strings.Builder, p domain.Profile) {
	b.WriteString("Client profile:\n")
	if p.Gender != "" {
		fmt.Fprintf(b, "- Gender: %s\n", p.Gender)
	}
	if p.Age > 0 {
		fmt.Fprintf(b, "- Age: %d\n", p.Age)
	}
	if p.HeightCm > 0 {
		fmt.Fprintf(b, "- Height: %.0f cm\n", p.HeightCm)
	}
	if p.CurrentWeightKg > 0 {
		fmt.Fprintf(b, "- Current weight: %.1f kg\n", p.CurrentWeightKg)
	}
	if p.TargetWeightKg > 0 {
		fmt.Fprintf(b, "- Target weight: %.1f kg\n", p.TargetWeightKg)
	}
	if p.Commitment != "" {
		fmt.Fprintf(b, "- Commitment level: %s\n", p.Commitment)
	}
	if len(p.WorkoutDays) > 0 {
		fmt.Fprintf(b, "- Preferred workout days: %s\n", strings.Join(p.WorkoutDays, ", "))
	}
	b.WriteString("\n")
}

func writeAdaptive(b *strings.Builder, a *domain.AdaptiveProfile) {
	b.WriteString("This is an adaptive training client with physical limitations. ")
	b.WriteString("Every exercise must be safe and achievable given the limitations below. ")
	b.WriteString("Prefer seated, supported and low-impact variations where needed.\n")
	fmt.Fprintf(b, "- Affected limbs: %s\n", a.AffectedLimbs)
	if len(a.Purposes) > 0 {
		fmt.Fprintf(b, "- Training purposes: %s\n", strings.Join(a.Purposes, ", "))
	}
	b.WriteString("\n")
}

func writeGoal(b *strings.Builder, g *domain.GoalProgram) {
	b.WriteString("Goal-based program details:\n")
	add := func(label, value string) {
		if value != "" {
			fmt.Fprintf(b, "- %s: %s\n", label, value)
		}
	}
	addList := func(label string, values []string) {
		if len(values) > 0 {
			fmt.Fprintf(b, "- %s: %s\n", label, strings.Join(values, ", "))
		}
	}

	add("Selected workout style", g.SelectedWorkout)
	add("Current body type", g.CurrentBodyType)
	add("Goal body type", g.GoalBodyType)
	addList("Target areas", g.TargetAreas)
	add("Primary goal", g.PrimaryGoal)
	add("Fitness experience", g.FitnessExperience)
	if g.FitnessLevel > 0 {
		fmt.Fprintf(b, "- Fitness level: %d/10\n", g.FitnessLevel)
	}
	add("Pushups capability", g.PushupsCapability)
	if g.SedentaryLifestyle {
		b.WriteString("- Lifestyle: mostly sedentary\n")
	}
	add("Walking per day", g.WalkingDuration)
	add("Sleep", g.SleepDuration)
	add("Water intake", g.WaterIntake)
	add("Dietary type", g.DietaryType)
	add("Dietary preference", g.DietaryPreference)
	addList("Health conditions", g.HealthConditions)
	addList("Injuries", g.Injuries)
	addList("Habits to address", g.Habits)
	if g.WorkoutDaysPerWeek > 0 {
		fmt.Fprintf(b, "- Workout days per week: %d\n", g.WorkoutDaysPerWeek)
	}
	if g.WorkoutDurationMinutes > 0 {
		fmt.Fprintf(b, "- Workout duration: %d minutes\n", g.WorkoutDurationMinutes)
	}
	if g.HasGymAccess {
		b.WriteString("- Has gym access\n")
	}
	addList("Available equipment", g.AvailableEquipment)
	add("Equipment availability", g.EquipmentAvailability)
	b.WriteString("\n")
}

func writeOutputContract(b *strings.Builder, days int) {
	b.WriteString("Respond with JSON only, no markdown, matching exactly this shape:\n")
	b.WriteString(`{
  "overview": {
    "totalDays": <int>,
    "activeDays": <int>,
    "restDays": <int>,
    "estimatedWeeklyCaloriesBurned": <int>
  },
  "days": [
    {
      "day": <int starting at 1>,
      "type": "workout" | "rest",
      "workout": {
        "focus": <string>,
        "caloriesBurned": <int>,
        "intensity": "low" | "medium" | "high",
        "warmup": {"description": <string>, "duration": <string>},
        "exercises": [
          {
            "name": <string>,
            "description": <string>,
            "steps": [<string>],
            "setsReps": <string like "3x12">,
            "tips": [<string>]
          }
        ],
        "cooldown": {"description": <string>, "duration": <string>}
      },
      "nutrition": {
        "breakfast": {"description": <string>, "calories": <int>},
        "lunch": {"description": <string>, "calories": <int>},
        "dinner": {"description": <string>, "calories": <int>},
        "snack": {"description": <string>, "calories": <int>},
        "totalCalories": <int>,
        "explanation": <string>
      }
    }
  ],
  "safetyNotes": [<string>]
}
`)
	fmt.Fprintf(b, "\nRules: produce exactly %d days numbered 1..%d. ", days, days)
	b.WriteString("Rest days omit the workout object but always include nutrition. ")
	b.WriteString("Every day's nutrition must include all four meals with realistic calorie targets.")
}
