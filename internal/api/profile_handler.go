package api

import (
	"errors"
	"fmt"
	"net/http"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ProfileHandler serves the intake profile and its attached program.
type ProfileHandler struct {
	profileService service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// --- Request Structs ---

type UpdateProfileRequest struct {
	Gender          *string  `json:"gender"`
	Age             *int     `json:"age" binding:"omitempty,min=1,max=120"`
	HeightCm        *float64 `json:"heightCm" binding:"omitempty,gt=0"`
	IsMetricHeight  *bool    `json:"isMetricHeight"`
	CurrentWeightKg *float64 `json:"currentWeightKg" binding:"omitempty,gt=0"`
	TargetWeightKg  *float64 `json:"targetWeightKg" binding:"omitempty,gt=0"`
	Commitment      *string  `json:"commitment"`
	WorkoutDays     []string `json:"workoutDays"`
}

type AdaptiveProfileRequest struct {
	AffectedLimbs string   `json:"affectedLimbs" binding:"required"`
	Purposes      []string `json:"purposes" binding:"required,min=1"`
}

type LinkProfileRequest struct {
	ProfileKey string `json:"profileKey" binding:"required"`
}

// --- Handler Methods ---

// GetProfile returns the user's profile, creating an empty one on first
// access.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	profile, err := h.profileService.GetOrCreateProfile(c.Request.Context(), user)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile applies partial changes to the physical profile.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), user, service.ProfileUpdate{
		Gender:          req.Gender,
		Age:             req.Age,
		HeightCm:        req.HeightCm,
		IsMetricHeight:  req.IsMetricHeight,
		CurrentWeightKg: req.CurrentWeightKg,
		TargetWeightKg:  req.TargetWeightKg,
		Commitment:      req.Commitment,
		WorkoutDays:     req.WorkoutDays,
	})
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// LinkProfile claims an intake profile filled in before signup.
func (h *ProfileHandler) LinkProfile(c *gin.Context) {
	var req LinkProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	profile, err := h.profileService.LinkProfile(c.Request.Context(), user, req.ProfileKey)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrProfileKeyTaken):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to link profile")
		}
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpsertAdaptiveProfile creates or updates the adaptive intake program.
func (h *ProfileHandler) UpsertAdaptiveProfile(c *gin.Context) {
	var req AdaptiveProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	ap, err := h.profileService.UpsertAdaptiveProfile(c.Request.Context(), user, req.AffectedLimbs, req.Purposes)
	if err != nil {
		if errors.Is(err, service.ErrProgramConflict) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to save adaptive profile")
		}
		return
	}
	c.JSON(http.StatusOK, ap)
}

// GetAdaptiveProfile returns the adaptive intake program.
func (h *ProfileHandler) GetAdaptiveProfile(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	ap, err := h.profileService.GetAdaptiveProfile(c.Request.Context(), user)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) || errors.Is(err, service.ErrProgramNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load adaptive profile")
		}
		return
	}
	c.JSON(http.StatusOK, ap)
}

// UpsertGoalProgram creates or updates the goal-based intake program.
func (h *ProfileHandler) UpsertGoalProgram(c *gin.Context) {
	var program domain.GoalProgram
	if err := c.ShouldBindJSON(&program); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	saved, err := h.profileService.UpsertGoalProgram(c.Request.Context(), user, &program)
	if err != nil {
		if errors.Is(err, service.ErrProgramConflict) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to save goal program")
		}
		return
	}
	c.JSON(http.StatusOK, saved)
}

// GetGoalProgram returns the goal-based intake program.
func (h *ProfileHandler) GetGoalProgram(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	gp, err := h.profileService.GetGoalProgram(c.Request.Context(), user)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) || errors.Is(err, service.ErrProgramNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load goal program")
		}
		return
	}
	c.JSON(http.StatusOK, gp)
}
