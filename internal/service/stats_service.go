package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/repository"
)

// ErrUnknownPeriod rejects summary periods outside the supported set.
var ErrUnknownPeriod = errors.New("unknown summary period")

// Named windows accepted by GetNutritionSummary.
const (
	PeriodWeek      = "week"
	PeriodMonth     = "month"
	PeriodSixMonths = "6months"
)

// ExerciseSummary totals a user's exercise logging over a date window.
type ExerciseSummary struct {
	TotalLogs      int `json:"totalLogs"`
	Completed      int `json:"completed"`
	Skipped        int `json:"skipped"`
	CompletionRate int `json:"completionRate"`
	DaysActive     int `json:"daysActive"`
}

// TimelinePoint is one calendar day on the completion timeline.
type TimelinePoint struct {
	Date      string `json:"date"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Skipped   int    `json:"skipped"`
}

// StreakInfo reports consecutive-day training streaks. A day counts toward
// a streak when at least one exercise was completed on it.
type StreakInfo struct {
	CurrentStreak int `json:"currentStreak"`
	LongestStreak int `json:"longestStreak"`
}

// TopExercise is one row of the most-logged exercises leaderboard.
type TopExercise struct {
	ExerciseName string `json:"exerciseName"`
	Count        int    `json:"count"`
	Completed    int    `json:"completed"`
}

// WeekdayActivity buckets logging by calendar weekday, Sunday first.
type WeekdayActivity struct {
	Weekday   string `json:"weekday"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
}

// ExerciseTimeline bundles the day-by-day completion view with the habit
// breakdowns derived from the same window.
type ExerciseTimeline struct {
	Timeline     []TimelinePoint   `json:"timeline"`
	Streaks      StreakInfo        `json:"streaks"`
	TopExercises []TopExercise     `json:"topExercises"`
	DayOfWeek    []WeekdayActivity `json:"dayOfWeek"`
}

// NutritionSummary totals nutrition logging over a named period.
type NutritionSummary struct {
	Period           string `json:"period"`
	DaysLogged       int    `json:"daysLogged"`
	TargetCalories   int    `json:"targetCalories"`
	ConsumedCalories int    `json:"consumedCalories"`
	AvgDailyCalories int    `json:"avgDailyCalories"`
	DaysTargetMet    int    `json:"daysTargetMet"`
	CompletedMeals   int    `json:"completedMeals"`
	SkippedMeals     int    `json:"skippedMeals"`
	CompletionRate   int    `json:"completionRate"`
}

// NutritionCalendarDay is one entry of the calorie calendar.
type NutritionCalendarDay struct {
	Day              int       `json:"day"`
	Date             time.Time `json:"date"`
	TargetCalories   int       `json:"targetCalories"`
	ConsumedCalories int       `json:"consumedCalories"`
	IsRestDay        bool      `json:"isRestDay"`
	TargetMet        bool      `json:"targetMet"`
}

// StatsService derives reporting views from the raw logs, independent of
// the per-day snapshots.
type StatsService interface {
	GetExerciseSummary(ctx context.Context, user *domain.User, start, end time.Time) (*ExerciseSummary, error)
	GetCompletionTimeline(ctx context.Context, user *domain.User, start, end time.Time) (*ExerciseTimeline, error)
	GetNutritionSummary(ctx context.Context, user *domain.User, period string) (*NutritionSummary, error)
	GetNutritionMonthly(ctx context.Context, user *domain.User, start, end time.Time) ([]repository.MonthlyNutritionStats, error)
	GetNutritionCalendar(ctx context.Context, user *domain.User, start, end time.Time) ([]NutritionCalendarDay, error)
}

type statsService struct {
	logRepo       repository.ExerciseLogRepository
	nutritionRepo repository.NutritionRepository
	now           func() time.Time
}

// NewStatsService creates a new instance of statsService.
func NewStatsService(logRepo repository.ExerciseLogRepository, nutritionRepo repository.NutritionRepository) StatsService {
	return &statsService{
		logRepo:       logRepo,
		nutritionRepo: nutritionRepo,
		now:           time.Now,
	}
}

// GetExerciseSummary totals the daily aggregation buckets over the window.
func (s *statsService) GetExerciseSummary(ctx context.Context, user *domain.User, start, end time.Time) (*ExerciseSummary, error) {
	buckets, err := s.logRepo.DailyCompletionStats(ctx, user.ID, start, end)
	if err != nil {
		return nil, err
	}

	summary := &ExerciseSummary{DaysActive: len(buckets)}
	for _, b := range buckets {
		summary.TotalLogs += b.Total
		summary.Completed += b.Completed
		summary.Skipped += b.Skipped
	}
	summary.CompletionRate = domain.Percentage(summary.Completed, summary.TotalLogs)
	return summary, nil
}

// GetCompletionTimeline returns one point per active calendar day, the
// streaks derived from them, the five most-logged exercises and the
// weekday activity spread.
func (s *statsService) GetCompletionTimeline(ctx context.Context, user *domain.User, start, end time.Time) (*ExerciseTimeline, error) {
	buckets, err := s.logRepo.DailyCompletionStats(ctx, user.ID, start, end)
	if err != nil {
		return nil, err
	}

	report := &ExerciseTimeline{
		Timeline:     make([]TimelinePoint, len(buckets)),
		TopExercises: []TopExercise{},
	}
	trainedDays := make([]time.Time, 0, len(buckets))
	for i, b := range buckets {
		day := b.Date.UTC().Truncate(24 * time.Hour)
		report.Timeline[i] = TimelinePoint{
			Date:      day.Format("2006-01-02"),
			Total:     b.Total,
			Completed: b.Completed,
			Skipped:   b.Skipped,
		}
		if b.Completed > 0 {
			trainedDays = append(trainedDays, day)
		}
	}
	report.Streaks = *computeStreaks(trainedDays, s.now().UTC().Truncate(24*time.Hour))

	logs, err := s.logRepo.Find(ctx, user.ID, repository.ExerciseLogFilter{
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		return nil, err
	}

	weekdays := make([]WeekdayActivity, 7)
	for i := range weekdays {
		weekdays[i].Weekday = time.Weekday(i).String()
	}
	byName := make(map[string]*TopExercise)
	for i := range logs {
		entry := &logs[i]
		bucket := &weekdays[int(entry.Date.UTC().Weekday())]
		bucket.Total++
		if entry.Status == domain.StatusCompleted {
			bucket.Completed++
		}

		if entry.ExerciseName == "" {
			continue
		}
		top, ok := byName[entry.ExerciseName]
		if !ok {
			top = &TopExercise{ExerciseName: entry.ExerciseName}
			byName[entry.ExerciseName] = top
		}
		top.Count++
		if entry.Status == domain.StatusCompleted {
			top.Completed++
		}
	}
	report.DayOfWeek = weekdays

	for _, top := range byName {
		report.TopExercises = append(report.TopExercises, *top)
	}
	sort.Slice(report.TopExercises, func(i, j int) bool {
		a, b := report.TopExercises[i], report.TopExercises[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.ExerciseName < b.ExerciseName
	})
	if len(report.TopExercises) > 5 {
		report.TopExercises = report.TopExercises[:5]
	}
	return report, nil
}

// GetNutritionSummary totals the nutrition logs over a named window
// ending today.
func (s *statsService) GetNutritionSummary(ctx context.Context, user *domain.User, period string) (*NutritionSummary, error) {
	var days int
	switch period {
	case PeriodWeek:
		days = 7
	case PeriodMonth:
		days = 30
	case PeriodSixMonths:
		days = 183
	default:
		return nil, ErrUnknownPeriod
	}

	end := s.now().UTC()
	start := end.AddDate(0, 0, -days)
	logs, err := s.nutritionRepo.GetByDateRange(ctx, user.ID, start, end)
	if err != nil {
		return nil, err
	}

	summary := &NutritionSummary{Period: period, DaysLogged: len(logs)}
	totalMeals := 0
	for i := range logs {
		l := &logs[i]
		summary.TargetCalories += l.TotalCalories
		summary.ConsumedCalories += l.ConsumedCalories
		if l.TotalCalories > 0 && l.ConsumedCalories >= l.TotalCalories {
			summary.DaysTargetMet++
		}
		for _, mealType := range domain.MealTypes {
			totalMeals++
			switch l.Meals.Slot(mealType).Status {
			case domain.StatusCompleted:
				summary.CompletedMeals++
			case domain.StatusSkipped:
				summary.SkippedMeals++
			}
		}
	}
	summary.CompletionRate = domain.Percentage(summary.CompletedMeals+summary.SkippedMeals, totalMeals)
	if len(logs) > 0 {
		summary.AvgDailyCalories = int(math.Round(float64(summary.ConsumedCalories) / float64(len(logs))))
	}
	return summary, nil
}

// computeStreaks expects days sorted ascending and deduplicated. The
// current streak only counts if it reaches today or yesterday.
func computeStreaks(days []time.Time, today time.Time) *StreakInfo {
	info := &StreakInfo{}
	if len(days) == 0 {
		return info
	}

	run := 1
	info.LongestStreak = 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > info.LongestStreak {
			info.LongestStreak = run
		}
	}

	last := days[len(days)-1]
	if today.Sub(last) <= 24*time.Hour {
		info.CurrentStreak = run
	}
	return info
}

// GetNutritionMonthly returns the month-by-month nutrition aggregation.
func (s *statsService) GetNutritionMonthly(ctx context.Context, user *domain.User, start, end time.Time) ([]repository.MonthlyNutritionStats, error) {
	return s.nutritionRepo.MonthlyStats(ctx, user.ID, start, end)
}

// GetNutritionCalendar flattens the window's nutrition logs into calendar
// entries for the client's calorie view.
func (s *statsService) GetNutritionCalendar(ctx context.Context, user *domain.User, start, end time.Time) ([]NutritionCalendarDay, error) {
	logs, err := s.nutritionRepo.GetByDateRange(ctx, user.ID, start, end)
	if err != nil {
		return nil, err
	}

	calendar := make([]NutritionCalendarDay, len(logs))
	for i, l := range logs {
		calendar[i] = NutritionCalendarDay{
			Day:              l.Day,
			Date:             l.Date,
			TargetCalories:   l.TotalCalories,
			ConsumedCalories: l.ConsumedCalories,
			IsRestDay:        l.IsRestDay,
			TargetMet:        l.TotalCalories > 0 && l.ConsumedCalories >= l.TotalCalories,
		}
	}
	return calendar, nil
}
