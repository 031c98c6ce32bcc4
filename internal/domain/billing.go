package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PackageDuration is the billing period of a package.
type PackageDuration string

const (
	DurationOneMonth    PackageDuration = "1_month"
	DurationThreeMonths PackageDuration = "3_months"
	DurationSixMonths   PackageDuration = "6_months"
	DurationOneYear     PackageDuration = "1_year"
	DurationCustom      PackageDuration = "custom"
)

// PackageFeature is one line item on a package's feature list.
type PackageFeature struct {
	Name        string `bson:"name" json:"name"`
	Included    bool   `bson:"included" json:"included"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
}

// Package is a purchasable subscription tier.
type Package struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name            string              `bson:"name" json:"name"`
	Description     string              `bson:"description,omitempty" json:"description,omitempty"`
	Duration        PackageDuration     `bson:"duration" json:"duration"`
	DurationInDays  int                 `bson:"durationInDays" json:"durationInDays"`
	Price           float64             `bson:"price" json:"price"`
	Currency        string              `bson:"currency" json:"currency"`
	Discount        float64             `bson:"discount" json:"discount"` // percent, 0..100
	DiscountedPrice float64             `bson:"discountedPrice" json:"discountedPrice"`
	Features        []PackageFeature    `bson:"features,omitempty" json:"features,omitempty"`
	IsActive        bool                `bson:"isActive" json:"isActive"`
	IsPopular       bool                `bson:"isPopular" json:"isPopular"`
	CreatedBy       *primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// ApplyDiscount rederives DiscountedPrice from Price and Discount.
// Called by the write path before persisting.
func (p *Package) ApplyDiscount() {
	if p.Discount > 0 {
		p.DiscountedPrice = p.Price * (1 - p.Discount/100)
	} else {
		p.DiscountedPrice = p.Price
	}
}

// PaymentMethod names how a subscription was paid for.
type PaymentMethod string

const (
	PayCard         PaymentMethod = "card"
	PayGooglePay    PaymentMethod = "google_pay"
	PayApplePay     PaymentMethod = "apple_pay"
	PayPayPal       PaymentMethod = "paypal"
	PayBankTransfer PaymentMethod = "bank_transfer"
	PayOther        PaymentMethod = "other"
)

// Subscription links a user to a purchased package for a period.
type Subscription struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID `bson:"user" json:"userId"`
	PackageID        primitive.ObjectID `bson:"package" json:"packageId"`
	PaymentMethod    PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	TransactionID    string             `bson:"transactionId" json:"transactionId"` // unique
	PackagePrice     float64            `bson:"packagePrice" json:"packagePrice"`
	AmountPaid       float64            `bson:"amountPaid" json:"amountPaid"`
	Currency         string             `bson:"currency" json:"currency"`
	Status           SubscriptionStatus `bson:"status" json:"status"`
	StartDate        time.Time          `bson:"startDate" json:"startDate"`
	ExpiryDate       time.Time          `bson:"expiryDate" json:"expiryDate"`
	IsTrial          bool               `bson:"isTrial" json:"isTrial"`
	PaymentGatewayID string             `bson:"paymentGatewayId,omitempty" json:"paymentGatewayId,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsActive reports whether the subscription is currently usable.
func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionActive && s.ExpiryDate.After(time.Now())
}

// RemainingDays returns whole days until expiry, 0 for inactive subscriptions.
func (s *Subscription) RemainingDays() int {
	if !s.IsActive() {
		return 0
	}
	d := time.Until(s.ExpiryDate)
	return int((d + 24*time.Hour - time.Nanosecond) / (24 * time.Hour))
}
