package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input string
		want  Status
	}{
		{"PLACED", StatusPlaced},
		{"placed", StatusPlaced},
		{" Pending ", StatusPending},
		{"confirmed", StatusConfirmed},
		{"SHIPPED", StatusShipped},
		{"delivered", StatusDelivered},
		{"COMPLETED", StatusDelivered},
		{"completed", StatusDelivered},
		{"cancelled", StatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStatus_Invalid(t *testing.T) {
	for _, input := range []string{"", "RETURNED", "canceled"} {
		_, err := ParseStatus(input)
		var invalidErr *InvalidStatusError
		require.ErrorAs(t, err, &invalidErr, "input %q", input)
		assert.Equal(t, input, invalidErr.Input)
	}
}

func TestCanSet_Buyer(t *testing.T) {
	// The only buyer transition is cancelling a freshly placed order.
	require.NoError(t, CanSet(ActorBuyer, StatusPlaced, StatusCancelled))

	denied := []struct {
		from, to Status
	}{
		{StatusConfirmed, StatusCancelled},
		{StatusShipped, StatusCancelled},
		{StatusCancelled, StatusCancelled},
		{StatusPlaced, StatusDelivered},
		{StatusPlaced, StatusConfirmed},
	}
	for _, tt := range denied {
		err := CanSet(ActorBuyer, tt.from, tt.to)
		var utErr *UnauthorizedTransitionError
		require.ErrorAs(t, err, &utErr, "%s -> %s", tt.from, tt.to)
		assert.Equal(t, ActorBuyer, utErr.Actor)
	}
}

func TestCanSet_SellerAndAdmin(t *testing.T) {
	targets := []Status{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled}
	for _, actor := range []Actor{ActorSeller, ActorAdmin} {
		for _, to := range targets {
			assert.NoError(t, CanSet(actor, StatusPlaced, to), "%s -> %s", actor, to)
			// No monotonic progression: moving backwards is allowed too.
			assert.NoError(t, CanSet(actor, StatusDelivered, to), "%s backwards -> %s", actor, to)
		}
		// Nobody may reset an order to its initial state.
		assert.Error(t, CanSet(actor, StatusConfirmed, StatusPlaced))
	}
}
