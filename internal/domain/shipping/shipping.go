// Package shipping computes the shipping fee for a single seller group.
package shipping

import "github.com/shopspring/decimal"

// Policy computes the shipping fee for a seller group from its item count and
// pre-shipping subtotal. Implementations must be pure: the same inputs always
// produce the same fee.
type Policy interface {
	Fee(itemCount int, subtotal decimal.Decimal) decimal.Decimal
	Name() string
}

var (
	feeZero     = decimal.Zero
	feeLow      = decimal.NewFromInt(80)
	feeStandard = decimal.NewFromInt(100)

	bandLow  = decimal.NewFromInt(500)
	bandHigh = decimal.NewFromInt(2000)
)

// TieredPolicy is the reference fee table:
//
//	1 item,  subtotal < 500          -> 80
//	1 item,  500 <= subtotal <= 2000 -> 100
//	1 item,  subtotal > 2000         -> 0
//	>1 item, subtotal > 2000, >= 5   -> 0
//	>1 item, otherwise               -> 100
type TieredPolicy struct{}

func (TieredPolicy) Name() string { return "tiered" }

func (TieredPolicy) Fee(itemCount int, subtotal decimal.Decimal) decimal.Decimal {
	if itemCount == 1 {
		if subtotal.GreaterThan(bandHigh) {
			return feeZero
		}
		if subtotal.LessThan(bandLow) {
			return feeLow
		}
		return feeStandard
	}

	if subtotal.GreaterThan(bandHigh) && itemCount >= 5 {
		return feeZero
	}
	return feeStandard
}

// FreePolicy waives shipping entirely. Used for promotional windows.
type FreePolicy struct{}

func (FreePolicy) Name() string { return "free" }

func (FreePolicy) Fee(int, decimal.Decimal) decimal.Decimal { return feeZero }

// ByName returns the policy registered under name, defaulting to TieredPolicy
// for unrecognized values.
func ByName(name string) Policy {
	if name == "free" {
		return FreePolicy{}
	}
	return TieredPolicy{}
}
