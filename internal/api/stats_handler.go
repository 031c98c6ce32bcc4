package api

import (
	"errors"
	"net/http"

	"fitcoach/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// StatsHandler serves the reporting views derived from raw logs.
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetExerciseSummary totals exercise logging over a date window
// (default: last 30 days).
func (h *StatsHandler) GetExerciseSummary(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	start, end, ok := dateWindow(c, 30)
	if !ok {
		return
	}

	summary, err := h.statsService.GetExerciseSummary(c.Request.Context(), user, start, end)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to build exercise summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetTimeline returns the day-by-day completion timeline plus streaks,
// top exercises and weekday activity.
func (h *StatsHandler) GetTimeline(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	start, end, ok := dateWindow(c, 30)
	if !ok {
		return
	}

	report, err := h.statsService.GetCompletionTimeline(c.Request.Context(), user, start, end)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to build timeline")
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetNutritionSummary totals nutrition logging over a named period
// (week, month or 6months; default week).
func (h *StatsHandler) GetNutritionSummary(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	period := c.DefaultQuery("period", service.PeriodWeek)
	summary, err := h.statsService.GetNutritionSummary(c.Request.Context(), user, period)
	if err != nil {
		if errors.Is(err, service.ErrUnknownPeriod) {
			abortWithError(c, http.StatusBadRequest, "Period must be week, month or 6months")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to build nutrition summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetNutritionMonthly returns the month-by-month nutrition aggregation
// (default: last 6 months).
func (h *StatsHandler) GetNutritionMonthly(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	start, end, ok := dateWindow(c, 183)
	if !ok {
		return
	}

	stats, err := h.statsService.GetNutritionMonthly(c.Request.Context(), user, start, end)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to build nutrition stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetNutritionCalendar returns the calorie calendar for a date window
// (default: last 30 days).
func (h *StatsHandler) GetNutritionCalendar(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	start, end, ok := dateWindow(c, 30)
	if !ok {
		return
	}

	calendar, err := h.statsService.GetNutritionCalendar(c.Request.Context(), user, start, end)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to build nutrition calendar")
		return
	}
	if calendar == nil {
		calendar = []service.NutritionCalendarDay{}
	}
	c.JSON(http.StatusOK, calendar)
}
