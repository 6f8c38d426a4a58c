package order

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of an order.
//
// PLACED is the only initial state and CANCELLED is terminal for buyers.
// Sellers and admins may move an order between any of the non-initial states
// without a progression graph. That laxity matches how operations actually
// runs the marketplace (orders get corrected backwards all the time); the
// allow-list below makes it an explicit policy instead of an accident.
type Status string

const (
	StatusPlaced    Status = "PLACED"
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// Actor is the role attempting a status change.
type Actor string

const (
	ActorBuyer  Actor = "buyer"
	ActorSeller Actor = "seller"
	ActorAdmin  Actor = "admin"
)

// InvalidStatusError indicates a status string that parses to no known state.
type InvalidStatusError struct {
	Input string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid order status %q", e.Input)
}

// UnauthorizedTransitionError indicates an actor attempted a transition their
// role does not allow.
type UnauthorizedTransitionError struct {
	Actor Actor
	From  Status
	To    Status
}

func (e *UnauthorizedTransitionError) Error() string {
	return fmt.Sprintf("%s may not move order from %s to %s", e.Actor, e.From, e.To)
}

// ParseStatus normalizes a status string: case-insensitive, with the legacy
// alias COMPLETED accepted for DELIVERED.
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PLACED":
		return StatusPlaced, nil
	case "PENDING":
		return StatusPending, nil
	case "CONFIRMED":
		return StatusConfirmed, nil
	case "SHIPPED":
		return StatusShipped, nil
	case "DELIVERED", "COMPLETED":
		return StatusDelivered, nil
	case "CANCELLED":
		return StatusCancelled, nil
	default:
		return "", &InvalidStatusError{Input: s}
	}
}

// CanSet reports whether actor may move an order from one status to another.
// Buyers may only cancel an order that is still PLACED. Sellers and admins
// may set any state except the initial PLACED.
func CanSet(actor Actor, from, to Status) error {
	switch actor {
	case ActorBuyer:
		if from == StatusPlaced && to == StatusCancelled {
			return nil
		}
	case ActorSeller, ActorAdmin:
		if to != StatusPlaced {
			return nil
		}
	}
	return &UnauthorizedTransitionError{Actor: actor, From: from, To: to}
}
