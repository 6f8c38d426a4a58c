package offer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func group(subtotal, shipping int64, lines ...LineView) GroupView {
	return GroupView{Subtotal: d(subtotal), Shipping: d(shipping), Lines: lines}
}

func TestAllocateDiscount_Proportional(t *testing.T) {
	o := &Offer{Code: "SPLIT", IsActive: true}
	groups := []GroupView{
		group(300, 80, LineView{Category: "a", Amount: d(300)}),
		group(700, 100, LineView{Category: "b", Amount: d(700)}),
	}

	allocs, err := AllocateDiscount(o, d(100), groups)
	require.NoError(t, err)
	require.Len(t, allocs, 2)
	assert.True(t, allocs[0].Amount.Equal(d(30)), "got %s", allocs[0].Amount)
	assert.True(t, allocs[1].Amount.Equal(d(70)), "got %s", allocs[1].Amount)
	assert.Equal(t, "Coupon SPLIT applied", allocs[0].Remark)
	assert.Equal(t, "Coupon SPLIT applied", allocs[1].Remark)
}

func TestAllocateDiscount_FloorResidualDropped(t *testing.T) {
	o := &Offer{Code: "THIRDS", IsActive: true}
	groups := []GroupView{
		group(100, 0, LineView{Category: "a", Amount: d(100)}),
		group(200, 0, LineView{Category: "a", Amount: d(200)}),
	}

	allocs, err := AllocateDiscount(o, d(100), groups)
	require.NoError(t, err)

	// 33.33 -> 33, 66.66 -> 66. The residual 1 is dropped, never assigned.
	assert.True(t, allocs[0].Amount.Equal(d(33)), "got %s", allocs[0].Amount)
	assert.True(t, allocs[1].Amount.Equal(d(66)), "got %s", allocs[1].Amount)

	sum := allocs[0].Amount.Add(allocs[1].Amount)
	assert.True(t, sum.LessThanOrEqual(d(100)))
}

func TestAllocateDiscount_ClampToGroupTotal(t *testing.T) {
	o := &Offer{Code: "BIG", IsActive: true}
	groups := []GroupView{
		group(50, 80, LineView{Category: "a", Amount: d(50)}),
	}

	allocs, err := AllocateDiscount(o, d(500), groups)
	require.NoError(t, err)
	// Never more than subtotal + shipping.
	assert.True(t, allocs[0].Amount.Equal(d(130)), "got %s", allocs[0].Amount)
}

func TestAllocateDiscount_CategoryRestricted(t *testing.T) {
	o := &Offer{Code: "BOOKS10", IsActive: true, Categories: []string{"books"}}
	groups := []GroupView{
		group(400, 80,
			LineView{Category: "books", Amount: d(100)},
			LineView{Category: "toys", Amount: d(300)},
		),
		group(600, 100, LineView{Category: "toys", Amount: d(600)}),
	}

	allocs, err := AllocateDiscount(o, d(50), groups)
	require.NoError(t, err)
	// Only the first group has eligible lines, so it takes the whole discount.
	assert.True(t, allocs[0].Amount.Equal(d(50)), "got %s", allocs[0].Amount)
	assert.True(t, allocs[1].Amount.IsZero())
	assert.Empty(t, allocs[1].Remark)
}

func TestAllocateDiscount_NoEligibleLines(t *testing.T) {
	o := &Offer{Code: "BOOKS10", IsActive: true, Categories: []string{"books"}}
	groups := []GroupView{
		group(400, 80, LineView{Category: "toys", Amount: d(400)}),
	}

	_, err := AllocateDiscount(o, d(50), groups)
	require.ErrorIs(t, err, ErrNotApplicable)
}

func TestAllocateDiscount_ZeroDiscount(t *testing.T) {
	o := &Offer{Code: "NOOP", IsActive: true}
	groups := []GroupView{group(400, 80, LineView{Category: "a", Amount: d(400)})}

	allocs, err := AllocateDiscount(o, decimal.Zero, groups)
	require.NoError(t, err)
	assert.True(t, allocs[0].Amount.IsZero())
}
