package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/repository"
	"fitcoach/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// TrackingHandler serves exercise and nutrition logging.
type TrackingHandler struct {
	logService       service.ExerciseLogService
	nutritionService service.NutritionService
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(logService service.ExerciseLogService, nutritionService service.NutritionService) *TrackingHandler {
	return &TrackingHandler{logService: logService, nutritionService: nutritionService}
}

// --- Request Structs ---

type LogExerciseRequest struct {
	DayNumber      int           `json:"dayNumber" binding:"required,min=1"`
	ExerciseNumber int           `json:"exerciseNumber" binding:"required,min=1"`
	Status         domain.Status `json:"status" binding:"required,oneof=completed skipped"`
	ActualSets     int           `json:"actualSets" binding:"omitempty,min=1"`
	ActualReps     int           `json:"actualReps" binding:"omitempty,min=1"`
	SkipReason     string        `json:"skipReason"`
}

type UpdateLogRequest struct {
	Status     domain.Status `json:"status" binding:"required,oneof=completed skipped"`
	ActualSets int           `json:"actualSets" binding:"omitempty,min=1"`
	ActualReps int           `json:"actualReps" binding:"omitempty,min=1"`
	SkipReason string        `json:"skipReason"`
}

type UpdateMealRequest struct {
	Day         int             `json:"day" binding:"required,min=1"`
	Meal        domain.MealType `json:"meal" binding:"required"`
	Status      domain.Status   `json:"status" binding:"required,oneof=completed skipped"`
	Description string          `json:"description"`
	Calories    int             `json:"calories" binding:"omitempty,min=0"`
	SkipReason  string          `json:"skipReason"`
}

// --- Exercise Log Handlers ---

// LogExercise records an outcome for one exercise of a plan day.
func (h *TrackingHandler) LogExercise(c *gin.Context) {
	var req LogExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	entry, err := h.logService.LogExercise(c.Request.Context(), user, service.ExerciseLogInput{
		DayNumber:      req.DayNumber,
		ExerciseNumber: req.ExerciseNumber,
		Status:         req.Status,
		ActualSets:     req.ActualSets,
		ActualReps:     req.ActualReps,
		SkipReason:     req.SkipReason,
	})
	if err != nil {
		abortLogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// UpdateLog rewrites an existing log entry.
func (h *TrackingHandler) UpdateLog(c *gin.Context) {
	logID, err := pathObjectID(c, "logId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid log ID")
		return
	}

	var req UpdateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	entry, err := h.logService.UpdateLog(c.Request.Context(), user, logID, service.ExerciseLogInput{
		Status:     req.Status,
		ActualSets: req.ActualSets,
		ActualReps: req.ActualReps,
		SkipReason: req.SkipReason,
	})
	if err != nil {
		abortLogError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteLog removes a log entry.
func (h *TrackingHandler) DeleteLog(c *gin.Context) {
	logID, err := pathObjectID(c, "logId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid log ID")
		return
	}

	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	if err := h.logService.DeleteLog(c.Request.Context(), user, logID); err != nil {
		abortLogError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "log deleted"})
}

// GetLogs lists log entries with optional day/exercise/status/date filters.
func (h *TrackingHandler) GetLogs(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	filter := repository.ExerciseLogFilter{
		DayNumber:      queryInt(c, "dayNumber", 0),
		ExerciseNumber: queryInt(c, "exerciseNumber", 0),
		Status:         domain.Status(c.Query("status")),
	}
	if start, ok := queryDate(c, "startDate"); ok {
		filter.StartDate = &start
	}
	if end, ok := queryDate(c, "endDate"); ok {
		filter.EndDate = &end
	}

	logs, err := h.logService.GetLogs(c.Request.Context(), user, filter)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list logs")
		return
	}
	if logs == nil {
		logs = []domain.ExerciseLog{}
	}
	c.JSON(http.StatusOK, logs)
}

// --- Nutrition Handlers ---

// UpdateMeal marks one meal slot of a plan day completed or skipped.
func (h *TrackingHandler) UpdateMeal(c *gin.Context) {
	var req UpdateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	entry, err := h.nutritionService.UpdateMeal(c.Request.Context(), user, service.MealUpdate{
		Day:         req.Day,
		Meal:        req.Meal,
		Status:      req.Status,
		Description: req.Description,
		Calories:    req.Calories,
		SkipReason:  req.SkipReason,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidMealType), errors.Is(err, service.ErrInvalidMealStatus):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNoPlanAssigned), errors.Is(err, service.ErrPlanNotFound),
			errors.Is(err, service.ErrDayNotInPlan):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update meal")
		}
		return
	}
	c.JSON(http.StatusOK, entry)
}

// GetNutritionByDay returns the nutrition document for one plan day,
// falling back to the plan's targets when nothing was logged yet.
func (h *TrackingHandler) GetNutritionByDay(c *gin.Context) {
	day, err := pathInt(c, "day")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid day number")
		return
	}

	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	entry, err := h.nutritionService.GetByDay(c.Request.Context(), user, day)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoPlanAssigned), errors.Is(err, service.ErrPlanNotFound),
			errors.Is(err, service.ErrDayNotInPlan):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to load nutrition")
		}
		return
	}
	c.JSON(http.StatusOK, entry)
}

// GetNutritionRange lists persisted nutrition documents in a date window.
func (h *TrackingHandler) GetNutritionRange(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	start, end, ok := dateWindow(c, 7)
	if !ok {
		return
	}

	logs, err := h.nutritionService.GetByDateRange(c.Request.Context(), user, start, end)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load nutrition logs")
		return
	}
	if logs == nil {
		logs = []domain.NutritionLog{}
	}
	c.JSON(http.StatusOK, logs)
}

// abortLogError maps exercise-log service errors to HTTP status codes.
func abortLogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidLogStatus), errors.Is(err, service.ErrMissingActuals),
		errors.Is(err, service.ErrMissingSkipReason), errors.Is(err, service.ErrExerciseOutOfRange):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrLogNotFound), errors.Is(err, service.ErrNoPlanAssigned),
		errors.Is(err, service.ErrPlanNotFound), errors.Is(err, service.ErrDayNotInPlan):
		abortWithError(c, http.StatusNotFound, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to process exercise log")
	}
}

// queryDate reads a yyyy-mm-dd query parameter.
func queryDate(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// dateWindow reads start/end query parameters, defaulting to the last
// defaultDays days. Responds 400 itself when start is after end.
func dateWindow(c *gin.Context, defaultDays int) (time.Time, time.Time, bool) {
	end, ok := queryDate(c, "end")
	if !ok {
		end = time.Now().UTC()
	}
	start, ok := queryDate(c, "start")
	if !ok {
		start = end.AddDate(0, 0, -defaultDays)
	}
	if start.After(end) {
		abortWithError(c, http.StatusBadRequest, "start must not be after end")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
