package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type SignupInitiateRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Remarks string `json:"remarks"`
}

type CodeCompleteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=4"`
}

type LoginInitiateRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type GoogleSignInRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

type UpdateRemarksRequest struct {
	Remarks string `json:"remarks" binding:"required"`
}

// UserResponse excludes internal fields and converts ObjectIDs to strings.
type UserResponse struct {
	ID                 string                    `json:"id"`
	Email              string                    `json:"email"`
	ProfileKey         string                    `json:"profileKey,omitempty"`
	Remarks            string                    `json:"remarks,omitempty"`
	IsVerified         bool                      `json:"isVerified"`
	AuthProvider       domain.AuthProvider       `json:"authProvider"`
	SubscriptionStatus domain.SubscriptionStatus `json:"subscriptionStatus"`
	FitnessPlanID      *string                   `json:"fitnessPlanId,omitempty"`
	CreatedAt          time.Time                 `json:"createdAt"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type SearchUsersResponse struct {
	Users []UserResponse `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// --- Handler Methods ---

// SignupInitiate starts registration by emailing a verification code.
func (h *AuthHandler) SignupInitiate(c *gin.Context) {
	var req SignupInitiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.authService.SignupInitiate(c.Request.Context(), req.Email, req.Remarks); err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Could not start signup")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "verification code sent"})
}

// SignupComplete redeems the emailed code and creates the account.
func (h *AuthHandler) SignupComplete(c *gin.Context) {
	var req CodeCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	result, err := h.authService.SignupComplete(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCode):
			abortWithError(c, http.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrUserAlreadyExists):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Could not complete signup")
		}
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Token: result.Token,
		User:  MapUserToResponse(result.User),
	})
}

// LoginInitiate emails a verification code to an existing account.
func (h *AuthHandler) LoginInitiate(c *gin.Context) {
	var req LoginInitiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.authService.LoginInitiate(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Could not start login")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "verification code sent"})
}

// LoginComplete redeems the emailed code for a JWT.
func (h *AuthHandler) LoginComplete(c *gin.Context) {
	var req CodeCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	result, err := h.authService.LoginComplete(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCode):
			abortWithError(c, http.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Could not complete login")
		}
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token: result.Token,
		User:  MapUserToResponse(result.User),
	})
}

// GoogleSignIn verifies a Google ID token and signs the account in,
// creating it on first contact.
func (h *AuthHandler) GoogleSignIn(c *gin.Context) {
	var req GoogleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	result, err := h.authService.GoogleSignIn(c.Request.Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, service.ErrGoogleTokenFailed) {
			abortWithError(c, http.StatusUnauthorized, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Could not sign in with Google")
		}
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token: result.Token,
		User:  MapUserToResponse(result.User),
	})
}

// Me returns the authenticated user's account.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateRemarks replaces the free-form remarks on the account.
func (h *AuthHandler) UpdateRemarks(c *gin.Context) {
	var req UpdateRemarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	updated, err := h.authService.UpdateRemarks(c.Request.Context(), user.ID, req.Remarks)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to update remarks")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(updated))
}

// SearchUsers finds accounts by email or profile key substring.
func (h *AuthHandler) SearchUsers(c *gin.Context) {
	term := c.Query("q")
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)

	users, total, err := h.authService.SearchUsers(c.Request.Context(), term, page, limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to search users")
		return
	}

	resp := SearchUsersResponse{
		Users: make([]UserResponse, len(users)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for i := range users {
		resp.Users[i] = MapUserToResponse(&users[i])
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteUser removes an account by email.
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	email := c.Param("email")

	if err := h.authService.DeleteUserByEmail(c.Request.Context(), email); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete user")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}

	resp := UserResponse{
		ID:                 user.ID.Hex(),
		Email:              user.Email,
		ProfileKey:         user.ProfileKey,
		Remarks:            user.Remarks,
		IsVerified:         user.IsVerified,
		AuthProvider:       user.AuthProvider,
		SubscriptionStatus: user.SubscriptionStatus,
		CreatedAt:          user.CreatedAt,
	}
	if user.FitnessPlanID != nil {
		planIDHex := user.FitnessPlanID.Hex()
		resp.FitnessPlanID = &planIDHex
	}
	return resp
}
