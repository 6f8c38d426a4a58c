package offer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestOffer_Validate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name      string
		offer     Offer
		cartTotal decimal.Decimal
		wantErr   error
	}{
		{
			name:      "active unrestricted",
			offer:     Offer{Code: "SAVE50", IsActive: true},
			cartTotal: d(100),
		},
		{
			name:      "inactive",
			offer:     Offer{Code: "OLD", IsActive: false},
			cartTotal: d(100),
			wantErr:   ErrInactive,
		},
		{
			name:      "past expiry",
			offer:     Offer{Code: "GONE", IsActive: true, ExpiryDate: &past},
			cartTotal: d(100),
			wantErr:   ErrExpired,
		},
		{
			name:      "future expiry still valid",
			offer:     Offer{Code: "SOON", IsActive: true, ExpiryDate: &future},
			cartTotal: d(100),
		},
		{
			name:      "below minimum cart",
			offer:     Offer{Code: "MIN500", IsActive: true, MinCartAmount: d(500)},
			cartTotal: d(499),
			wantErr:   ErrMinCartNotMet,
		},
		{
			name:      "at minimum cart",
			offer:     Offer{Code: "MIN500", IsActive: true, MinCartAmount: d(500)},
			cartTotal: d(500),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.offer.Validate(now, tt.cartTotal)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestOffer_Discount(t *testing.T) {
	flat := Offer{Kind: KindFlat, Value: d(150)}
	assert.True(t, flat.Discount(d(1000)).Equal(d(150)))
	// Flat discount is capped at the cart total.
	assert.True(t, flat.Discount(d(100)).Equal(d(100)))

	pct := Offer{Kind: KindPercentage, Value: d(10)}
	assert.True(t, pct.Discount(d(1000)).Equal(d(100)))
	assert.True(t, pct.Discount(decimal.NewFromFloat(333.33)).Equal(decimal.NewFromFloat(33.33)))
}

func TestOffer_AppliesTo(t *testing.T) {
	unrestricted := Offer{}
	assert.True(t, unrestricted.AppliesTo("anything"))

	restricted := Offer{Categories: []string{"electronics", "books"}}
	assert.True(t, restricted.AppliesTo("books"))
	assert.False(t, restricted.AppliesTo("grocery"))
}
