package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "routes-test-secret"

// Stubs embed the service interface and override only what the test hits;
// anything else panics loudly.

type stubAuthService struct {
	service.AuthService
	user *domain.User
}

func (s *stubAuthService) GetUser(_ context.Context, userID primitive.ObjectID) (*domain.User, error) {
	if s.user == nil || s.user.ID != userID {
		return nil, service.ErrUserNotFound
	}
	return s.user, nil
}

type stubProgressService struct {
	service.ProgressService
	snap *domain.DayProgress
	err  error
}

func (s *stubProgressService) GetDayProgress(context.Context, *domain.User, int) (*domain.DayProgress, error) {
	return s.snap, s.err
}

type stubSubscriptionService struct {
	service.SubscriptionService
	sub      *domain.Subscription
	err      error
	gotUser  *domain.User
	gotInput service.PurchaseInput
}

func (s *stubSubscriptionService) Purchase(_ context.Context, user *domain.User, input service.PurchaseInput) (*domain.Subscription, error) {
	s.gotUser = user
	s.gotInput = input
	return s.sub, s.err
}

func testRouter(auth *stubAuthService, progress *stubProgressService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, testSecret, Services{Auth: auth, Progress: progress})
	return router
}

func signToken(t *testing.T, userID primitive.ObjectID, expiresIn time.Duration) string {
	t.Helper()
	claims := &jwtClaims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			Issuer:    "coach-app",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func doRequest(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func doJSONRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	router := testRouter(&stubAuthService{}, &stubProgressService{})

	rec := doRequest(router, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rec.Body.String())
}

func TestAuthMiddleware(t *testing.T) {
	user := &domain.User{ID: primitive.NewObjectID()}
	router := testRouter(&stubAuthService{user: user}, &stubProgressService{
		snap: &domain.DayProgress{Day: 3},
	})

	t.Run("missing header", func(t *testing.T) {
		rec := doRequest(router, http.MethodGet, "/api/v1/progress/days/3", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed token", func(t *testing.T) {
		rec := doRequest(router, http.MethodGet, "/api/v1/progress/days/3", "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, user.ID, -time.Hour)
		rec := doRequest(router, http.MethodGet, "/api/v1/progress/days/3", token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "expired")
	})

	t.Run("token for a deleted account", func(t *testing.T) {
		token := signToken(t, primitive.NewObjectID(), time.Hour)
		rec := doRequest(router, http.MethodGet, "/api/v1/progress/days/3", token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, user.ID, time.Hour)
		rec := doRequest(router, http.MethodGet, "/api/v1/progress/days/3", token)
		assert.Equal(t, http.StatusOK, rec.Code)

		var snap domain.DayProgress
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
		assert.Equal(t, 3, snap.Day)
	})
}

func TestPaymentWebhook(t *testing.T) {
	user := &domain.User{ID: primitive.NewObjectID()}
	auth := &stubAuthService{user: user}
	subs := &stubSubscriptionService{sub: &domain.Subscription{ID: primitive.NewObjectID(), UserID: user.ID}}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, testSecret, Services{Auth: auth, Subscription: subs})

	packageID := primitive.NewObjectID()
	webhookBody := func(userID string) string {
		return fmt.Sprintf(`{"userId":%q,"packageId":%q,"transactionId":"txn-1"}`, userID, packageID.Hex())
	}

	t.Run("settles without a session token", func(t *testing.T) {
		rec := doJSONRequest(router, http.MethodPost, "/api/v1/webhooks/payments", webhookBody(user.ID.Hex()))
		assert.Equal(t, http.StatusOK, rec.Code)

		require.NotNil(t, subs.gotUser)
		assert.Equal(t, user.ID, subs.gotUser.ID)
		assert.Equal(t, packageID, subs.gotInput.PackageID)
		assert.Equal(t, "txn-1", subs.gotInput.TransactionID)
		assert.Equal(t, domain.PayOther, subs.gotInput.PaymentMethod)
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := doJSONRequest(router, http.MethodPost, "/api/v1/webhooks/payments", webhookBody(primitive.NewObjectID().Hex()))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed user id", func(t *testing.T) {
		rec := doJSONRequest(router, http.MethodPost, "/api/v1/webhooks/payments", webhookBody("nope"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing transaction id", func(t *testing.T) {
		body := fmt.Sprintf(`{"userId":%q,"packageId":%q}`, user.ID.Hex(), packageID.Hex())
		rec := doJSONRequest(router, http.MethodPost, "/api/v1/webhooks/payments", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestProgressDayErrors(t *testing.T) {
	user := &domain.User{ID: primitive.NewObjectID()}
	auth := &stubAuthService{user: user}
	token := signToken(t, user.ID, time.Hour)

	t.Run("day outside plan", func(t *testing.T) {
		router := testRouter(auth, &stubProgressService{err: service.ErrDayNotInPlan})
		rec := doRequest(router, http.MethodGet, "/api/v1/progress/days/99", token)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("no plan assigned", func(t *testing.T) {
		router := testRouter(auth, &stubProgressService{err: service.ErrNoPlanAssigned})
		rec := doRequest(router, http.MethodGet, "/api/v1/progress/days/1", token)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-numeric day", func(t *testing.T) {
		router := testRouter(auth, &stubProgressService{})
		rec := doRequest(router, http.MethodGet, "/api/v1/progress/days/abc", token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
