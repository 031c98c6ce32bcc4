package api

import (
	"errors"
	"fmt"
	"net/http"

	"fitcoach/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanHandler serves fitness-plan generation and retrieval.
type PlanHandler struct {
	planService service.PlanService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

type GeneratePlanRequest struct {
	Days int `json:"days" binding:"omitempty,min=1,max=90"`
}

// GeneratePlan builds a new plan from the user's intake program. Any prior
// plan for the same profile is replaced.
func (h *PlanHandler) GeneratePlan(c *gin.Context) {
	var req GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	plan, err := h.planService.GeneratePlan(c.Request.Context(), user, req.Days)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound), errors.Is(err, service.ErrNoIntakeProgram):
			abortWithError(c, http.StatusPreconditionFailed, err.Error())
		case errors.Is(err, service.ErrPlanGeneration):
			abortWithError(c, http.StatusBadGateway, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to generate plan")
		}
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// GetCurrentPlan returns the plan the user is assigned to.
func (h *PlanHandler) GetCurrentPlan(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	plan, err := h.planService.GetCurrentPlan(c.Request.Context(), user)
	if err != nil {
		if errors.Is(err, service.ErrNoPlanAssigned) || errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load plan")
		}
		return
	}
	c.JSON(http.StatusOK, plan)
}

// GetPlanByID returns any stored plan.
func (h *PlanHandler) GetPlanByID(c *gin.Context) {
	planID, err := pathObjectID(c, "planId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID")
		return
	}

	plan, err := h.planService.GetPlanByID(c.Request.Context(), planID)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load plan")
		}
		return
	}
	c.JSON(http.StatusOK, plan)
}

// AssignPlan attaches an existing plan to the authenticated user.
func (h *PlanHandler) AssignPlan(c *gin.Context) {
	planID, err := pathObjectID(c, "planId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID")
		return
	}

	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	plan, err := h.planService.AssignPlan(c.Request.Context(), user, planID)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to assign plan")
		}
		return
	}
	c.JSON(http.StatusOK, plan)
}

// GetExerciseCatalogue lists the unique exercises across all plans.
func (h *PlanHandler) GetExerciseCatalogue(c *gin.Context) {
	catalogue, err := h.planService.GetExerciseCatalogue(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load exercise catalogue")
		return
	}
	c.JSON(http.StatusOK, gin.H{"exercises": catalogue})
}

// GetAllPlans lists every stored plan, newest first.
func (h *PlanHandler) GetAllPlans(c *gin.Context) {
	plans, err := h.planService.GetAllPlans(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list plans")
		return
	}
	c.JSON(http.StatusOK, plans)
}

// DeletePlan removes a plan and clears the reference from assigned users.
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	planID, err := pathObjectID(c, "planId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID")
		return
	}

	if err := h.planService.DeletePlan(c.Request.Context(), planID); err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete plan")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "plan deleted"})
}
