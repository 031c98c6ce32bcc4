package api

import (
	"errors"
	"net/http"

	"fitcoach/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ProgressHandler serves the per-day progress snapshots and the range,
// weekly and overall aggregations over them.
type ProgressHandler struct {
	progressService service.ProgressService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// GetDay returns the snapshot for one plan day, computing it on first
// access.
func (h *ProgressHandler) GetDay(c *gin.Context) {
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

	snap, err := h.progressService.GetDayProgress(c.Request.Context(), user, day)
	if err != nil {
		abortProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetCurrent returns the latest tracked day's snapshot.
func (h *ProgressHandler) GetCurrent(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	snap, err := h.progressService.GetCurrentProgress(c.Request.Context(), user)
	if err != nil {
		abortProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// RefreshDay recomputes one day's snapshot from the logs.
func (h *ProgressHandler) RefreshDay(c *gin.Context) {
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

	snap, err := h.progressService.RefreshDay(c.Request.Context(), user, day)
	if err != nil {
		abortProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetRange summarizes a span of plan days. Days that fail to resolve are
// skipped, not fatal.
func (h *ProgressHandler) GetRange(c *gin.Context) {
	startDay := queryInt(c, "startDay", 0)
	endDay := queryInt(c, "endDay", 0)

	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	summary, err := h.progressService.GetRangeProgress(c.Request.Context(), user, startDay, endDay)
	if err != nil {
		abortProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetWeek summarizes one 7-day plan week.
func (h *ProgressHandler) GetWeek(c *gin.Context) {
	week, err := pathInt(c, "week")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid week number")
		return
	}

	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	summary, err := h.progressService.GetWeeklyProgress(c.Request.Context(), user, week)
	if err != nil {
		abortProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetOverall aggregates every snapshot the user has.
func (h *ProgressHandler) GetOverall(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	summary, err := h.progressService.GetOverallProgress(c.Request.Context(), user)
	if err != nil {
		abortProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// DeleteDay removes one day's snapshot.
func (h *ProgressHandler) DeleteDay(c *gin.Context) {
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

	if err := h.progressService.DeleteDayProgress(c.Request.Context(), user, day); err != nil {
		abortProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "day progress deleted"})
}

// abortProgressError maps progress service errors to HTTP status codes.
func abortProgressError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDayRange):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNoPlanAssigned), errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrDayNotInPlan), errors.Is(err, service.ErrSnapshotNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to process progress")
	}
}
