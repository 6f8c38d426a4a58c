// Package checkout turns one buyer cart into per-seller orders: it splits the
// cart by owning seller, prices shipping, allocates any coupon discount
// proportionally, computes each seller's financial snapshot, and persists the
// whole result as a single unit.
package checkout

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/shubhanshu-a32/katelog/internal/domain/analytics"
	"github.com/shubhanshu-a32/katelog/internal/domain/offer"
	"github.com/shubhanshu-a32/katelog/internal/domain/order"
)

// Sentinel errors for checkout validation.
var (
	ErrEmptyItems            = errors.New("items required")
	ErrDiscountWithoutCoupon = errors.New("discount requires a coupon code")
)

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// InsufficientStockError indicates a product cannot cover the requested
// quantity. Available is included for client display.
type InsufficientStockError struct {
	ProductID string
	Title     string
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %d available", e.Title, e.Available)
}

// ItemRequest is one cart entry as submitted by the buyer.
type ItemRequest struct {
	ProductID string
	Quantity  int
}

// Request holds the input for a checkout.
type Request struct {
	BuyerID     string
	Items       []ItemRequest
	Address     order.Address
	PaymentMode order.PaymentMode
	CouponCode  string
	// Discount optionally overrides the amount derived from the coupon.
	// It is only honoured together with a coupon code.
	Discount decimal.Decimal
}

// Result holds the orders and analytics records created by a checkout.
type Result struct {
	Orders  []order.Order
	Records []analytics.Record
}

// StockDecrement is one conditional stock mutation inside the checkout
// transaction.
type StockDecrement struct {
	ProductID string
	Quantity  int
}

// OfferUsage is the redemption audit entry appended when a coupon was used.
type OfferUsage struct {
	Code  string
	Usage offer.Usage
}

// Unit is everything one checkout persists. Store implementations must commit
// it atomically: all orders, records, decrements and the usage entry succeed
// together or nothing is written. A failed conditional decrement surfaces as
// InsufficientStockError and aborts the unit.
type Unit struct {
	Orders     []order.Order
	Records    []analytics.Record
	Decrements []StockDecrement
	Usage      *OfferUsage
}

// Store is the checkout transaction boundary.
type Store interface {
	CreateCheckout(ctx context.Context, unit *Unit) error
}
