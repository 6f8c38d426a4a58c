package offer

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// GroupView is the allocator's read-only view of one seller group.
type GroupView struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Lines    []LineView
}

// LineView is one order line as the allocator sees it.
type LineView struct {
	Category string
	Amount   decimal.Decimal
}

// Allocation is the discount assigned to one seller group.
type Allocation struct {
	Amount decimal.Decimal
	Remark string
}

// AllocateDiscount distributes totalDiscount across seller groups in
// proportion to each group's subtotal eligible under the offer's category
// restriction (the full subtotal when the offer is unrestricted).
//
// Each share is floored to a whole amount and then clamped so no seller is
// ever discounted past subtotal + shipping. Floor rounding can leave a
// residual fraction of the requested discount unallocated; the residual is
// dropped, never redistributed, so the sum of allocations never exceeds the
// requested discount.
//
// When the offer restricts categories and no group has an eligible line,
// ErrNotApplicable is returned rather than silently ignoring the coupon.
func AllocateDiscount(o *Offer, totalDiscount decimal.Decimal, groups []GroupView) ([]Allocation, error) {
	allocs := make([]Allocation, len(groups))
	if totalDiscount.LessThanOrEqual(decimal.Zero) {
		return allocs, nil
	}

	eligible := make([]decimal.Decimal, len(groups))
	globalEligible := decimal.Zero
	for i, g := range groups {
		e := eligibleSubtotal(o, g)
		eligible[i] = e
		globalEligible = globalEligible.Add(e)
	}

	if globalEligible.IsZero() {
		return nil, ErrNotApplicable
	}

	for i, g := range groups {
		if eligible[i].IsZero() {
			continue
		}
		share := totalDiscount.Mul(eligible[i]).Div(globalEligible).Floor()
		share = decimal.Min(share, g.Subtotal.Add(g.Shipping))
		if share.IsPositive() {
			allocs[i] = Allocation{
				Amount: share,
				Remark: fmt.Sprintf("Coupon %s applied", o.Code),
			}
		}
	}
	return allocs, nil
}

func eligibleSubtotal(o *Offer, g GroupView) decimal.Decimal {
	if len(o.Categories) == 0 {
		return g.Subtotal
	}
	sum := decimal.Zero
	for _, l := range g.Lines {
		if o.AppliesTo(l.Category) {
			sum = sum.Add(l.Amount)
		}
	}
	return sum
}
