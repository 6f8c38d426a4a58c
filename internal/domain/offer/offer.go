// Package offer holds promotional coupons and the logic that distributes a
// coupon's discount across the per-seller portions of a checkout.
package offer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Kind enumerates the supported discount strategies.
type Kind string

const (
	// KindFlat subtracts a fixed amount from the cart.
	KindFlat Kind = "flat"
	// KindPercentage subtracts a percentage of the cart subtotal.
	KindPercentage Kind = "percentage"
)

var (
	// ErrNotFound is returned when no active offer matches a code.
	ErrNotFound = errors.New("offer not found")
	// ErrExpired is returned when an offer is past its expiry date.
	ErrExpired = errors.New("offer expired")
	// ErrInactive is returned when an offer has been deactivated.
	ErrInactive = errors.New("offer inactive")
	// ErrMinCartNotMet is returned when the cart is below the offer's minimum.
	ErrMinCartNotMet = errors.New("cart below offer minimum")
	// ErrNotApplicable is returned when no line in the checkout falls in the
	// offer's eligible categories.
	ErrNotApplicable = errors.New("coupon not applicable to any item")
)

// Offer is a redeemable coupon. Codes are unique case-insensitively; lookups
// always uppercase. An empty Categories list means the offer applies to the
// whole catalog.
type Offer struct {
	Code          string
	Tagline       string
	Kind          Kind
	Value         decimal.Decimal
	MinCartAmount decimal.Decimal
	ExpiryDate    *time.Time
	Categories    []string
	IsActive      bool
}

// Usage is one append-only redemption audit entry.
type Usage struct {
	BuyerID        string
	OriginalAmount decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalAmount    decimal.Decimal
	AppliedAt      time.Time
}

// Repository provides lookup and maintenance of offers. Usage rows are
// appended inside the checkout transaction via checkout.Store, not here.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Offer, error)
	// DeactivateExpired flips isActive off for every offer past its expiry
	// and returns how many were touched. Run periodically by internal/jobs.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

var hundred = decimal.NewFromInt(100)

// Validate checks that the offer can be newly applied to a cart with the
// given pre-shipping total. Orders that already reference a since-expired
// offer are unaffected; this gate applies at redemption time only.
func (o *Offer) Validate(now time.Time, cartTotal decimal.Decimal) error {
	if !o.IsActive {
		return ErrInactive
	}
	if o.ExpiryDate != nil && now.After(*o.ExpiryDate) {
		return ErrExpired
	}
	if cartTotal.LessThan(o.MinCartAmount) {
		return ErrMinCartNotMet
	}
	return nil
}

// Discount returns the total discount this offer grants on the given
// pre-shipping cart total, capped at the total itself.
func (o *Offer) Discount(cartTotal decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch o.Kind {
	case KindPercentage:
		d = cartTotal.Mul(o.Value).Div(hundred)
	default:
		d = o.Value
	}
	return decimal.Min(d, cartTotal).Round(2)
}

// AppliesTo reports whether a line in the given category is eligible.
func (o *Offer) AppliesTo(category string) bool {
	if len(o.Categories) == 0 {
		return true
	}
	for _, c := range o.Categories {
		if c == category {
			return true
		}
	}
	return false
}
