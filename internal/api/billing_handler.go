package api

import (
	"errors"
	"fmt"
	"net/http"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BillingHandler serves packages, purchases and subscriptions.
type BillingHandler struct {
	authService         service.AuthService
	packageService      service.PackageService
	subscriptionService service.SubscriptionService
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(authService service.AuthService, packageService service.PackageService, subscriptionService service.SubscriptionService) *BillingHandler {
	return &BillingHandler{
		authService:         authService,
		packageService:      packageService,
		subscriptionService: subscriptionService,
	}
}

// --- Request Structs ---

type PackageRequest struct {
	Name           string                 `json:"name" binding:"required"`
	Description    string                 `json:"description"`
	Duration       domain.PackageDuration `json:"duration" binding:"required"`
	DurationInDays int                    `json:"durationInDays" binding:"required,min=1"`
	Price          float64                `json:"price" binding:"min=0"`
	Discount       float64                `json:"discount" binding:"omitempty,min=0,max=100"`
	Currency       string                 `json:"currency"`
	IsPopular      bool                   `json:"isPopular"`
	IsActive       bool                   `json:"isActive"`
}

type PurchaseRequest struct {
	PackageID     string               `json:"packageId" binding:"required"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod" binding:"required"`
	TransactionID string               `json:"transactionId" binding:"required"`
}

type PaymentWebhookRequest struct {
	UserID        string               `json:"userId" binding:"required"`
	PackageID     string               `json:"packageId" binding:"required"`
	TransactionID string               `json:"transactionId" binding:"required"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
}

// --- Package Handlers ---

// CreatePackage stores a new subscription package.
func (h *BillingHandler) CreatePackage(c *gin.Context) {
	var req PackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	pkg, err := h.packageService.CreatePackage(c.Request.Context(), packageFromRequest(req))
	if err != nil {
		if errors.Is(err, service.ErrInvalidPackage) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create package")
		}
		return
	}
	c.JSON(http.StatusCreated, pkg)
}

// ListPackages returns the active packages, popular first.
func (h *BillingHandler) ListPackages(c *gin.Context) {
	packages, err := h.packageService.ListActivePackages(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list packages")
		return
	}
	if packages == nil {
		packages = []domain.Package{}
	}
	c.JSON(http.StatusOK, packages)
}

// GetPackage returns one package.
func (h *BillingHandler) GetPackage(c *gin.Context) {
	id, err := pathObjectID(c, "packageId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid package ID")
		return
	}

	pkg, err := h.packageService.GetPackage(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPackageNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load package")
		}
		return
	}
	c.JSON(http.StatusOK, pkg)
}

// UpdatePackage rewrites a package.
func (h *BillingHandler) UpdatePackage(c *gin.Context) {
	id, err := pathObjectID(c, "packageId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid package ID")
		return
	}

	var req PackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	pkg := packageFromRequest(req)
	pkg.ID = id
	updated, err := h.packageService.UpdatePackage(c.Request.Context(), pkg)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPackage):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPackageNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update package")
		}
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeletePackage removes a package.
func (h *BillingHandler) DeletePackage(c *gin.Context) {
	id, err := pathObjectID(c, "packageId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid package ID")
		return
	}

	if err := h.packageService.DeletePackage(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrPackageNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete package")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "package deleted"})
}

// --- Subscription Handlers ---

// Purchase settles a payment into an active subscription. Safe to replay
// with the same transaction ID.
func (h *BillingHandler) Purchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	packageID, err := primitive.ObjectIDFromHex(req.PackageID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid package ID")
		return
	}

	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	sub, err := h.subscriptionService.Purchase(c.Request.Context(), user, service.PurchaseInput{
		PackageID:     packageID,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingTransactionID):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPackageNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrPaymentRejected):
			abortWithError(c, http.StatusPaymentRequired, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to process purchase")
		}
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// PaymentWebhook settles a gateway notification. Unlike Purchase it is not
// tied to an authenticated session: the gateway names the user in the
// payload and the transaction is verified against the gateway before any
// subscription is written. Replays return the existing subscription.
func (h *BillingHandler) PaymentWebhook(c *gin.Context) {
	var req PaymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID")
		return
	}
	packageID, err := primitive.ObjectIDFromHex(req.PackageID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid package ID")
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load user")
		}
		return
	}

	method := req.PaymentMethod
	if method == "" {
		method = domain.PayOther
	}
	sub, err := h.subscriptionService.Purchase(c.Request.Context(), user, service.PurchaseInput{
		PackageID:     packageID,
		PaymentMethod: method,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPackageNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrPaymentRejected):
			abortWithError(c, http.StatusPaymentRequired, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to process payment notification")
		}
		return
	}
	c.JSON(http.StatusOK, sub)
}

// GetActiveSubscription returns the user's current active subscription.
func (h *BillingHandler) GetActiveSubscription(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	sub, err := h.subscriptionService.GetActiveSubscription(c.Request.Context(), user)
	if err != nil {
		if errors.Is(err, service.ErrSubscriptionNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load subscription")
		}
		return
	}
	c.JSON(http.StatusOK, sub)
}

// GetSubscriptionHistory lists the user's purchases.
func (h *BillingHandler) GetSubscriptionHistory(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	subs, err := h.subscriptionService.GetHistory(c.Request.Context(), user)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load subscriptions")
		return
	}
	if subs == nil {
		subs = []domain.Subscription{}
	}
	c.JSON(http.StatusOK, subs)
}

// CancelSubscription cancels one of the user's subscriptions.
func (h *BillingHandler) CancelSubscription(c *gin.Context) {
	subID, err := pathObjectID(c, "subscriptionId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid subscription ID")
		return
	}

	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	if err := h.subscriptionService.CancelSubscription(c.Request.Context(), user, subID); err != nil {
		if errors.Is(err, service.ErrSubscriptionNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to cancel subscription")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "subscription cancelled"})
}

func packageFromRequest(req PackageRequest) *domain.Package {
	return &domain.Package{
		Name:           req.Name,
		Description:    req.Description,
		Duration:       req.Duration,
		DurationInDays: req.DurationInDays,
		Price:          req.Price,
		Discount:       req.Discount,
		Currency:       req.Currency,
		IsPopular:      req.IsPopular,
		IsActive:       req.IsActive,
	}
}
