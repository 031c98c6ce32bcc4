package service

import (
	"context"
	"errors"
	"time"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrPaymentRejected      = errors.New("payment was rejected by the gateway")
	ErrMissingTransactionID = errors.New("transaction id is required")
)

// PaymentConfirmation is what the gateway reports for a transaction.
type PaymentConfirmation struct {
	TransactionID    string
	PaymentGatewayID string
	AmountPaid       float64
	Currency         string
	Succeeded        bool
}

// PaymentGateway abstracts the payment provider. Verify is called with the
// transaction reference the client (or the provider's webhook) hands us.
type PaymentGateway interface {
	VerifyTransaction(ctx context.Context, transactionID string) (*PaymentConfirmation, error)
}

// PurchaseInput carries a purchase or webhook notification.
type PurchaseInput struct {
	PackageID     primitive.ObjectID
	PaymentMethod domain.PaymentMethod
	TransactionID string
}

// SubscriptionService handles purchases, webhook settlement and expiry.
type SubscriptionService interface {
	Purchase(ctx context.Context, user *domain.User, input PurchaseInput) (*domain.Subscription, error)
	GetActiveSubscription(ctx context.Context, user *domain.User) (*domain.Subscription, error)
	GetHistory(ctx context.Context, user *domain.User) ([]domain.Subscription, error)
	CancelSubscription(ctx context.Context, user *domain.User, subscriptionID primitive.ObjectID) error
	ExpireOverdue(ctx context.Context) (int64, error)
}

type subscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	packageRepo      repository.PackageRepository
	userRepo         repository.UserRepository
	gateway          PaymentGateway
}

// NewSubscriptionService creates a new instance of subscriptionService.
func NewSubscriptionService(
	subscriptionRepo repository.SubscriptionRepository,
	packageRepo repository.PackageRepository,
	userRepo repository.UserRepository,
	gateway PaymentGateway,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		packageRepo:      packageRepo,
		userRepo:         userRepo,
		gateway:          gateway,
	}
}

// Purchase settles a transaction into an active subscription. Replays of
// the same transaction ID return the already-created subscription, so
// webhook retries are idempotent. Purchasing while a subscription is still
// active renews it: the new period starts where the current one ends.
func (s *subscriptionService) Purchase(ctx context.Context, user *domain.User, input PurchaseInput) (*domain.Subscription, error) {
	if input.TransactionID == "" {
		return nil, ErrMissingTransactionID
	}

	existing, err := s.subscriptionRepo.GetByTransactionID(ctx, input.TransactionID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	pkg, err := s.packageRepo.GetByID(ctx, input.PackageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}

	confirmation, err := s.gateway.VerifyTransaction(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}
	if !confirmation.Succeeded {
		return nil, ErrPaymentRejected
	}

	now := time.Now().UTC()
	start := now
	if active, err := s.subscriptionRepo.GetActiveByUser(ctx, user.ID); err == nil && active.ExpiryDate.After(now) {
		start = active.ExpiryDate
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	sub := &domain.Subscription{
		UserID:           user.ID,
		PackageID:        pkg.ID,
		PaymentMethod:    input.PaymentMethod,
		TransactionID:    input.TransactionID,
		PackagePrice:     pkg.DiscountedPrice,
		AmountPaid:       confirmation.AmountPaid,
		Currency:         confirmation.Currency,
		Status:           domain.SubscriptionActive,
		StartDate:        start,
		ExpiryDate:       start.AddDate(0, 0, pkg.DurationInDays),
		PaymentGatewayID: confirmation.PaymentGatewayID,
	}

	subID, err := s.subscriptionRepo.Create(ctx, sub)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost the race against a concurrent replay of the same webhook.
			return s.subscriptionRepo.GetByTransactionID(ctx, input.TransactionID)
		}
		return nil, err
	}
	sub.ID = subID

	if err := s.userRepo.SetSubscription(ctx, user.ID, &subID, domain.SubscriptionActive); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"userId":        user.ID.Hex(),
		"packageId":     pkg.ID.Hex(),
		"transactionId": input.TransactionID,
	}).Info("subscription activated")

	return sub, nil
}

// GetActiveSubscription returns the user's current active subscription.
func (s *subscriptionService) GetActiveSubscription(ctx context.Context, user *domain.User) (*domain.Subscription, error) {
	sub, err := s.subscriptionRepo.GetActiveByUser(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return sub, nil
}

// GetHistory returns the user's purchase history.
func (s *subscriptionService) GetHistory(ctx context.Context, user *domain.User) ([]domain.Subscription, error) {
	return s.subscriptionRepo.GetByUser(ctx, user.ID)
}

// CancelSubscription marks a subscription cancelled and downgrades the user.
func (s *subscriptionService) CancelSubscription(ctx context.Context, user *domain.User, subscriptionID primitive.ObjectID) error {
	sub, err := s.subscriptionRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSubscriptionNotFound
		}
		return err
	}
	if sub.UserID != user.ID {
		return ErrSubscriptionNotFound
	}

	sub.Status = domain.SubscriptionCancelled
	if err := s.subscriptionRepo.Update(ctx, sub); err != nil {
		return err
	}
	return s.userRepo.SetSubscription(ctx, user.ID, nil, domain.SubscriptionCancelled)
}

// ExpireOverdue flips active subscriptions past their expiry to expired.
// Meant to be run periodically.
func (s *subscriptionService) ExpireOverdue(ctx context.Context) (int64, error) {
	count, err := s.subscriptionRepo.ExpireOverdue(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		log.WithField("count", count).Info("subscriptions expired")
	}
	return count, nil
}
