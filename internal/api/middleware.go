package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Constants for context keys
const (
	ContextUserIDKey     = "userID"
	ContextProfileKeyKey = "profileKey"
	ContextUserKey       = "currentUser"
)

// jwtClaims defines the structure we expect in the JWT payload.
// Mirroring the structure used in authService.signIn.
type jwtClaims struct {
	UserID     string `json:"uid"`
	ProfileKey string `json:"profileKey,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		claims := &jwtClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, "Token has expired")
			} else {
				abortWithError(c, http.StatusUnauthorized, fmt.Sprintf("Invalid token: %v", err))
			}
			return
		}

		if !token.Valid || claims.UserID == "" {
			abortWithError(c, http.StatusUnauthorized, "Invalid token or missing claims")
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextProfileKeyKey, claims.ProfileKey)

		c.Next()
	}
}

// UserMiddleware resolves the authenticated user record and stores it in the
// context. Must run AFTER AuthMiddleware.
func UserMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDStr, err := getUserIDFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
			return
		}
		userID, err := primitive.ObjectIDFromHex(userIDStr)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token")
			return
		}

		user, err := authService.GetUser(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				abortWithError(c, http.StatusUnauthorized, "Account no longer exists")
			} else {
				abortWithError(c, http.StatusInternalServerError, "Failed to load account")
			}
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// Helper function to get User ID from context (used by handlers)
func getUserIDFromContext(c *gin.Context) (string, error) {
	idRaw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", errors.New("user ID not found in context")
	}
	idStr, ok := idRaw.(string)
	if !ok {
		return "", errors.New("invalid user ID type in context")
	}
	return idStr, nil
}

// currentUser returns the user record resolved by UserMiddleware.
func currentUser(c *gin.Context) (*domain.User, error) {
	userRaw, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, errors.New("user not found in context")
	}
	user, ok := userRaw.(*domain.User)
	if !ok {
		return nil, errors.New("invalid user type in context")
	}
	return user, nil
}
