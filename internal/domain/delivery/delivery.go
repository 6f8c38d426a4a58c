// Package delivery validates and records delivery-partner assignment.
// A partner may only serve an order when their pincode matches the seller's.
package delivery

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/shubhanshu-a32/katelog/internal/domain/order"
	"github.com/shubhanshu-a32/katelog/internal/domain/user"
)

var (
	// ErrPartnerNotFound is returned when no user exists for the partner id.
	ErrPartnerNotFound = errors.New("delivery partner not found")
	// ErrInvalidPartner is returned when the user is not a delivery-partner
	// account.
	ErrInvalidPartner = errors.New("invalid delivery partner")
	// ErrSellerPincodeUnknown is returned when the seller's pincode cannot be
	// resolved from their profile or address.
	ErrSellerPincodeUnknown = errors.New("seller pincode unknown")
	// ErrPartnerPincodeUnknown is returned when the partner profile has no
	// pincode.
	ErrPartnerPincodeUnknown = errors.New("delivery partner pincode unknown")
)

// PincodeMismatchError indicates the partner serves a different pincode than
// the seller. Both values are included for the operator's error message.
type PincodeMismatchError struct {
	SellerPincode  string
	PartnerPincode string
}

func (e *PincodeMismatchError) Error() string {
	return fmt.Sprintf("pincode mismatch: seller %s, partner %s", e.SellerPincode, e.PartnerPincode)
}

// Notification is one outbound message handed to the messaging collaborator.
type Notification struct {
	RecipientID string
	Title       string
	Body        string
	SentAt      time.Time
}

// Notifier accepts notifications for asynchronous, best-effort delivery.
// Implementations must not block on downstream transport.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Service assigns delivery partners to orders.
type Service struct {
	orders   order.Repository
	users    user.Repository
	notifier Notifier
	now      func() time.Time
}

// NewService creates a delivery assignment Service.
func NewService(orders order.Repository, users user.Repository, notifier Notifier) *Service {
	return &Service{orders: orders, users: users, notifier: notifier, now: time.Now}
}

// Assign validates the partner against the order's seller by pincode, records
// the assignment, forces the order to CONFIRMED, and emits notifications to
// partner and seller. Passing a nil partnerID unassigns without touching the
// order status. Notification failures are logged, never fatal.
func (s *Service) Assign(ctx context.Context, orderID string, partnerID *string) (*order.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if partnerID == nil {
		return s.orders.UnassignPartner(ctx, o.ID)
	}

	partner, err := s.users.GetByID(ctx, *partnerID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, errors.Wrap(err, "resolve partner")
	}
	if partner.Role != user.RoleDelivery {
		return nil, ErrInvalidPartner
	}

	seller, err := s.users.GetByID(ctx, o.SellerID)
	if err != nil {
		return nil, errors.Wrap(err, "resolve seller")
	}

	sellerPin, ok := sellerPincode(seller)
	if !ok {
		return nil, ErrSellerPincodeUnknown
	}
	partnerPin := strings.TrimSpace(partner.Pincode)
	if partnerPin == "" {
		return nil, ErrPartnerPincodeUnknown
	}

	// String comparison, not numeric: leading zeros are significant.
	if sellerPin != partnerPin {
		return nil, &PincodeMismatchError{SellerPincode: sellerPin, PartnerPincode: partnerPin}
	}

	updated, err := s.orders.AssignPartner(ctx, o.ID, partner.ID, order.StatusConfirmed)
	if err != nil {
		return nil, errors.Wrap(err, "assign partner")
	}

	s.sendAssignmentNotifications(ctx, updated, partner, seller)
	return updated, nil
}

// sendAssignmentNotifications enqueues the pickup instructions for the
// partner and the confirmation for the seller. Best-effort only.
func (s *Service) sendAssignmentNotifications(ctx context.Context, o *order.Order, partner, seller *user.User) {
	lg := zctx.From(ctx)
	now := s.now()

	msgs := []Notification{
		{
			RecipientID: partner.ID,
			Title:       "New delivery assignment",
			Body: fmt.Sprintf("Pick up order %s from %s (%s) and deliver to %s, %s %s.",
				o.ID, seller.Name, seller.Address, o.Address.FullAddress, o.Address.City, o.Address.Pincode),
			SentAt: now,
		},
		{
			RecipientID: seller.ID,
			Title:       "Delivery partner assigned",
			Body: fmt.Sprintf("%s (%s) will pick up order %s.",
				partner.Name, partner.Mobile, o.ID),
			SentAt: now,
		},
	}

	for _, n := range msgs {
		if err := s.notifier.Notify(ctx, n); err != nil {
			lg.Warn("assignment notification dropped",
				zap.String("order_id", o.ID),
				zap.String("recipient_id", n.RecipientID),
				zap.Error(err),
			)
		}
	}
}

var pincodeRe = regexp.MustCompile(`\b[0-9]{6}\b`)

// sellerPincode resolves the seller's pincode: the structured profile field
// first, then a 6-digit token extracted from the free-text address.
func sellerPincode(seller *user.User) (string, bool) {
	if pin := strings.TrimSpace(seller.Pincode); pin != "" {
		return pin, true
	}
	if m := pincodeRe.FindString(seller.Address); m != "" {
		return m, true
	}
	return "", false
}
