package delivery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhanshu-a32/katelog/internal/domain/order"
	"github.com/shubhanshu-a32/katelog/internal/domain/user"
)

// --- Mock implementations ---

type mockOrderRepo struct {
	order *order.Order

	assignedPartner string
	assignedStatus  order.Status
	unassigned      bool
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	if m.order == nil || m.order.ID != id {
		return nil, order.ErrNotFound
	}
	cp := *m.order
	return &cp, nil
}

func (m *mockOrderRepo) AssignPartner(_ context.Context, id, partnerID string, status order.Status) (*order.Order, error) {
	m.assignedPartner = partnerID
	m.assignedStatus = status
	cp := *m.order
	cp.DeliveryPartnerID = &partnerID
	cp.Status = status
	return &cp, nil
}

func (m *mockOrderRepo) UnassignPartner(_ context.Context, id string) (*order.Order, error) {
	m.unassigned = true
	cp := *m.order
	cp.DeliveryPartnerID = nil
	return &cp, nil
}

func (m *mockOrderRepo) ListByBuyer(_ context.Context, _ string, _ order.Page) ([]order.Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) ListBySeller(_ context.Context, _ string, _ order.Page) ([]order.Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, _ string, _ order.Status) (*order.Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) StatsByBuyer(_ context.Context, _ string) (*order.BuyerStats, error) {
	return nil, nil
}

type mockUserRepo struct {
	byID map[string]*user.User
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

type mockNotifier struct {
	sent []Notification
	err  error
}

func (m *mockNotifier) Notify(_ context.Context, n Notification) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, n)
	return nil
}

// --- Helpers ---

func strPtr(s string) *string { return &s }

func fixture() (*mockOrderRepo, *mockUserRepo, *mockNotifier, *Service) {
	orders := &mockOrderRepo{order: &order.Order{
		ID:       "o1",
		SellerID: "s1",
		Status:   order.StatusPlaced,
		Address:  order.Address{FullAddress: "12 Main Rd", City: "Katni", Pincode: "483501"},
	}}
	users := &mockUserRepo{byID: map[string]*user.User{
		"s1": {ID: "s1", Name: "Shop One", Role: user.RoleSeller, Pincode: "483501", Address: "Bazaar Lane"},
		"dp": {ID: "dp", Name: "Partner", Mobile: "9999", Role: user.RoleDelivery, Pincode: "483501"},
	}}
	notifier := &mockNotifier{}
	return orders, users, notifier, NewService(orders, users, notifier)
}

// --- Tests ---

func TestAssign_Success(t *testing.T) {
	orders, _, notifier, svc := fixture()

	got, err := svc.Assign(context.Background(), "o1", strPtr("dp"))
	require.NoError(t, err)

	assert.Equal(t, "dp", orders.assignedPartner)
	assert.Equal(t, order.StatusConfirmed, orders.assignedStatus)
	require.NotNil(t, got.DeliveryPartnerID)
	assert.Equal(t, "dp", *got.DeliveryPartnerID)
	assert.Equal(t, order.StatusConfirmed, got.Status)

	// Pickup instructions for the partner, confirmation for the seller.
	require.Len(t, notifier.sent, 2)
	assert.Equal(t, "dp", notifier.sent[0].RecipientID)
	assert.Equal(t, "s1", notifier.sent[1].RecipientID)
}

func TestAssign_Unassign(t *testing.T) {
	orders, _, notifier, svc := fixture()
	orders.order.DeliveryPartnerID = strPtr("dp")
	orders.order.Status = order.StatusConfirmed

	got, err := svc.Assign(context.Background(), "o1", nil)
	require.NoError(t, err)

	assert.True(t, orders.unassigned)
	assert.Nil(t, got.DeliveryPartnerID)
	// Status is untouched on unassign.
	assert.Equal(t, order.StatusConfirmed, got.Status)
	assert.Empty(t, notifier.sent)
}

func TestAssign_OrderNotFound(t *testing.T) {
	_, _, _, svc := fixture()

	_, err := svc.Assign(context.Background(), "nope", strPtr("dp"))
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestAssign_UnknownPartner(t *testing.T) {
	_, _, _, svc := fixture()

	_, err := svc.Assign(context.Background(), "o1", strPtr("ghost"))
	require.ErrorIs(t, err, ErrPartnerNotFound)
}

func TestAssign_WrongRole(t *testing.T) {
	_, users, _, svc := fixture()
	users.byID["buyer"] = &user.User{ID: "buyer", Role: user.RoleBuyer, Pincode: "483501"}

	_, err := svc.Assign(context.Background(), "o1", strPtr("buyer"))
	require.ErrorIs(t, err, ErrInvalidPartner)
}

func TestAssign_PincodeMismatchLeavesOrderUntouched(t *testing.T) {
	orders, users, notifier, svc := fixture()
	users.byID["dp"].Pincode = "999999"

	_, err := svc.Assign(context.Background(), "o1", strPtr("dp"))

	var mismatch *PincodeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "483501", mismatch.SellerPincode)
	assert.Equal(t, "999999", mismatch.PartnerPincode)

	assert.Empty(t, orders.assignedPartner)
	assert.Empty(t, notifier.sent)
}

func TestAssign_SellerPincodeFromAddressFallback(t *testing.T) {
	orders, users, _, svc := fixture()
	users.byID["s1"].Pincode = ""
	users.byID["s1"].Address = "Shop 4, Bazaar Lane, Katni 483501 MP"

	_, err := svc.Assign(context.Background(), "o1", strPtr("dp"))
	require.NoError(t, err)
	assert.Equal(t, "dp", orders.assignedPartner)
}

func TestAssign_SellerPincodeUnknown(t *testing.T) {
	_, users, _, svc := fixture()
	users.byID["s1"].Pincode = ""
	users.byID["s1"].Address = "Shop 4, Bazaar Lane"

	_, err := svc.Assign(context.Background(), "o1", strPtr("dp"))
	require.ErrorIs(t, err, ErrSellerPincodeUnknown)
}

func TestAssign_PartnerPincodeUnknown(t *testing.T) {
	_, users, _, svc := fixture()
	users.byID["dp"].Pincode = "  "

	_, err := svc.Assign(context.Background(), "o1", strPtr("dp"))
	require.ErrorIs(t, err, ErrPartnerPincodeUnknown)
}

func TestAssign_NotificationFailureIsNonFatal(t *testing.T) {
	orders, _, notifier, svc := fixture()
	notifier.err = assert.AnError

	got, err := svc.Assign(context.Background(), "o1", strPtr("dp"))
	require.NoError(t, err)
	assert.Equal(t, "dp", orders.assignedPartner)
	require.NotNil(t, got.DeliveryPartnerID)
}
