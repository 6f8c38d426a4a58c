// Package order holds the order aggregate: one seller's fulfillment of a
// subset of a buyer's cart, plus the status machine governing its lifecycle.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// PaymentMode is how the buyer pays for the order.
type PaymentMode string

const (
	PaymentCOD    PaymentMode = "COD"
	PaymentOnline PaymentMode = "ONLINE"
)

// PaymentStatus tracks whether the order amount has been collected.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

// Line is one order line with catalog values snapshotted at checkout time,
// so later catalog edits never change what was sold.
type Line struct {
	ProductID         string          `json:"productId"`
	Quantity          int             `json:"quantity"`
	Price             decimal.Decimal `json:"price"`
	CommissionPercent decimal.Decimal `json:"commissionPercent"`
	Category          string          `json:"category"`
}

// Subtotal returns price * quantity for the line.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Address is the delivery address snapshot taken at checkout.
type Address struct {
	FullAddress string   `json:"fullAddress"`
	Mobile      string   `json:"mobile"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	Pincode     string   `json:"pincode"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
}

// Order is one seller's portion of a buyer checkout. A checkout spanning N
// distinct sellers produces exactly N orders, persisted as a unit.
type Order struct {
	ID                string
	BuyerID           string
	SellerID          string
	DeliveryPartnerID *string
	Items             []Line
	TotalAmount       decimal.Decimal
	ShippingCharge    decimal.Decimal
	DiscountAmount    decimal.Decimal
	CouponCode        *string
	DiscountRemark    *string
	Status            Status
	PaymentMode       PaymentMode
	PaymentStatus     PaymentStatus
	Address           Address
	CreatedAt         time.Time
}

// Page bounds list queries.
type Page struct {
	Limit  int
	Offset int
}

// BuyerStats is the aggregate a buyer sees on their dashboard.
type BuyerStats struct {
	TotalOrders int
	TotalSpent  decimal.Decimal
}

// Repository defines persistence operations for orders. Creation is not here:
// orders are only ever created through the checkout transaction
// (checkout.Store), never one at a time.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByBuyer(ctx context.Context, buyerID string, page Page) ([]Order, error)
	ListBySeller(ctx context.Context, sellerID string, page Page) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Order, error)
	// AssignPartner sets the delivery partner and status in one statement.
	AssignPartner(ctx context.Context, id, partnerID string, status Status) (*Order, error)
	// UnassignPartner clears the delivery partner and leaves status untouched.
	UnassignPartner(ctx context.Context, id string) (*Order, error)
	StatsByBuyer(ctx context.Context, buyerID string) (*BuyerStats, error)
}
