// Package analytics computes and records the financial snapshot taken for
// every created order: platform commission, delivery-partner fee and the
// seller's net earning.
package analytics

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/shubhanshu-a32/katelog/internal/domain/order"
)

// ErrNotFound is returned when a requested analytics record does not exist.
var ErrNotFound = errors.New("analytics record not found")

// SettlementStatus tracks whether a commission or fee has been paid out.
// It is independent of order status.
type SettlementStatus string

const (
	SettlementPending   SettlementStatus = "PENDING"
	SettlementCompleted SettlementStatus = "COMPLETED"
)

// Record is the per-order financial snapshot. Created alongside the order,
// mutated only through settlement-status updates.
type Record struct {
	ID       string
	OrderID  string
	SellerID string
	Financials
	PlatformCommissionStatus SettlementStatus
	DeliveryPartnerFeeStatus SettlementStatus
}

// Financials holds the amounts computed by ComputeFinancials.
type Financials struct {
	PlatformCommission decimal.Decimal
	// TotalCommissionPercentage is the straight sum of per-line commission
	// rates, not a weighted average. Downstream reporting was built on this
	// quirk, so it stays.
	TotalCommissionPercentage decimal.Decimal
	DeliveryPartnerFee        decimal.Decimal
	FinalTotal                decimal.Decimal
	SellerEarning             decimal.Decimal
}

// Recorder persists analytics records. The postgres implementation writes
// inside the checkout transaction so record and order commit together.
type Recorder interface {
	GetByID(ctx context.Context, id string) (*Record, error)
	ListBySeller(ctx context.Context, sellerID string) ([]Record, error)
	UpdateSettlement(ctx context.Context, id string, platform, deliveryFee *SettlementStatus) (*Record, error)
}

var partnerShare = decimal.NewFromFloat(0.8)

// ComputeFinancials derives the financial snapshot for one seller group.
// The discount must already be reflected in finalTotal before earnings are
// derived from it: sellerEarning = finalTotal - platformCommission - shipping.
func ComputeFinancials(lines []order.Line, shipping, discount decimal.Decimal) Financials {
	hundred := decimal.NewFromInt(100)

	commission := decimal.Zero
	percentSum := decimal.Zero
	subtotal := decimal.Zero
	for _, l := range lines {
		amount := l.Subtotal()
		subtotal = subtotal.Add(amount)
		commission = commission.Add(amount.Mul(l.CommissionPercent).Div(hundred))
		percentSum = percentSum.Add(l.CommissionPercent)
	}

	finalTotal := subtotal.Add(shipping).Sub(discount).Round(2)
	// Earnings come from the rounded commission, not the raw sum, so that
	// sellerEarning + platformCommission + shipping == finalTotal to the cent.
	platformCommission := commission.Round(2)

	return Financials{
		PlatformCommission:        platformCommission,
		TotalCommissionPercentage: percentSum,
		DeliveryPartnerFee:        shipping.Mul(partnerShare).Round(2),
		FinalTotal:                finalTotal,
		SellerEarning:             finalTotal.Sub(platformCommission).Sub(shipping),
	}
}
