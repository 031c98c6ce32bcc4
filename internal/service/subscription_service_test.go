package service

import (
	"context"
	"testing"
	"time"

	"fitcoach/coach-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type recordingGateway struct {
	calls  int
	reject bool
}

func (g *recordingGateway) VerifyTransaction(_ context.Context, transactionID string) (*PaymentConfirmation, error) {
	g.calls++
	return &PaymentConfirmation{
		TransactionID:    transactionID,
		PaymentGatewayID: "gw-" + transactionID,
		AmountPaid:       9.99,
		Currency:         "USD",
		Succeeded:        !g.reject,
	}, nil
}

type subscriptionFixture struct {
	service SubscriptionService
	users   *fakeUserRepo
	gateway *recordingGateway
	user    *domain.User
	pkg     *domain.Package
}

func newSubscriptionFixture(t *testing.T) *subscriptionFixture {
	t.Helper()

	users := newFakeUserRepo()
	user := &domain.User{Email: "a@b.com", SubscriptionStatus: domain.SubscriptionFree}
	_, err := users.Create(context.Background(), user)
	require.NoError(t, err)

	packages := newFakePackageRepo()
	pkg := &domain.Package{
		Name:            "Monthly",
		Duration:        domain.DurationOneMonth,
		DurationInDays:  30,
		Price:           9.99,
		DiscountedPrice: 9.99,
		Currency:        "USD",
		IsActive:        true,
	}
	_, err = packages.Create(context.Background(), pkg)
	require.NoError(t, err)

	gateway := &recordingGateway{}
	return &subscriptionFixture{
		service: NewSubscriptionService(newFakeSubscriptionRepo(), packages, users, gateway),
		users:   users,
		gateway: gateway,
		user:    user,
		pkg:     pkg,
	}
}

func TestPurchase(t *testing.T) {
	f := newSubscriptionFixture(t)

	sub, err := f.service.Purchase(context.Background(), f.user, PurchaseInput{
		PackageID:     f.pkg.ID,
		PaymentMethod: domain.PayGooglePay,
		TransactionID: "txn-1",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.SubscriptionActive, sub.Status)
	assert.Equal(t, 9.99, sub.AmountPaid)
	assert.Equal(t, "gw-txn-1", sub.PaymentGatewayID)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), sub.ExpiryDate, time.Minute)

	// The user record was upgraded.
	assert.Equal(t, domain.SubscriptionActive, f.user.SubscriptionStatus)
	require.NotNil(t, f.user.CurrentSubscription)
	assert.Equal(t, sub.ID, *f.user.CurrentSubscription)
	assert.True(t, f.user.IsPaidUser())
}

func TestPurchase_ReplayIsIdempotent(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()

	input := PurchaseInput{
		PackageID:     f.pkg.ID,
		PaymentMethod: domain.PayCard,
		TransactionID: "txn-replay",
	}
	first, err := f.service.Purchase(ctx, f.user, input)
	require.NoError(t, err)

	// Webhook retry with the same transaction: same subscription back,
	// gateway not consulted again.
	second, err := f.service.Purchase(ctx, f.user, input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.gateway.calls)
}

func TestPurchase_RenewalExtendsCurrentPeriod(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()

	first, err := f.service.Purchase(ctx, f.user, PurchaseInput{
		PackageID:     f.pkg.ID,
		TransactionID: "txn-initial",
	})
	require.NoError(t, err)

	renewal, err := f.service.Purchase(ctx, f.user, PurchaseInput{
		PackageID:     f.pkg.ID,
		TransactionID: "txn-renewal",
	})
	require.NoError(t, err)

	// The renewal picks up where the running period ends.
	assert.Equal(t, first.ExpiryDate, renewal.StartDate)
	assert.Equal(t, first.ExpiryDate.AddDate(0, 0, 30), renewal.ExpiryDate)
	require.NotNil(t, f.user.CurrentSubscription)
	assert.Equal(t, renewal.ID, *f.user.CurrentSubscription)
}

func TestPurchase_Failures(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()

	_, err := f.service.Purchase(ctx, f.user, PurchaseInput{PackageID: f.pkg.ID})
	assert.ErrorIs(t, err, ErrMissingTransactionID)

	_, err = f.service.Purchase(ctx, f.user, PurchaseInput{
		PackageID:     primitive.NewObjectID(),
		TransactionID: "txn-2",
	})
	assert.ErrorIs(t, err, ErrPackageNotFound)

	f.gateway.reject = true
	_, err = f.service.Purchase(ctx, f.user, PurchaseInput{
		PackageID:     f.pkg.ID,
		TransactionID: "txn-3",
	})
	assert.ErrorIs(t, err, ErrPaymentRejected)
}

func TestCancelSubscription(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()

	sub, err := f.service.Purchase(ctx, f.user, PurchaseInput{
		PackageID:     f.pkg.ID,
		TransactionID: "txn-4",
	})
	require.NoError(t, err)

	// Someone else's subscription is invisible.
	stranger := &domain.User{ID: primitive.NewObjectID()}
	assert.ErrorIs(t, f.service.CancelSubscription(ctx, stranger, sub.ID), ErrSubscriptionNotFound)

	require.NoError(t, f.service.CancelSubscription(ctx, f.user, sub.ID))
	assert.Equal(t, domain.SubscriptionCancelled, f.user.SubscriptionStatus)
	assert.Nil(t, f.user.CurrentSubscription)

	_, err = f.service.GetActiveSubscription(ctx, f.user)
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
}

func TestExpireOverdue(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()

	sub, err := f.service.Purchase(ctx, f.user, PurchaseInput{
		PackageID:     f.pkg.ID,
		TransactionID: "txn-5",
	})
	require.NoError(t, err)

	sub.ExpiryDate = time.Now().Add(-time.Hour)

	count, err := f.service.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, domain.SubscriptionExpired, sub.Status)
}
