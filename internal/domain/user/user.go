// Package user holds marketplace participants: buyers, sellers, delivery
// partners and admins. Authentication lives upstream; this package only
// models identity and the profile fields the fulfillment pipeline needs.
package user

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested user does not exist.
var ErrNotFound = errors.New("user not found")

// ErrUnknownRole is returned by ParseRole for an unrecognized role string.
var ErrUnknownRole = errors.New("unknown role")

// Role identifies what a user is allowed to do.
type Role string

const (
	RoleBuyer    Role = "buyer"
	RoleSeller   Role = "seller"
	RoleDelivery Role = "delivery"
	RoleAdmin    Role = "admin"
)

// User is a marketplace participant. Pincode and Address are only populated
// for sellers and delivery partners; Pincode may be empty for legacy sellers
// whose service area lives inside the free-text Address.
type User struct {
	ID      string
	Name    string
	Mobile  string
	Role    Role
	Pincode string
	Address string
}

// ParseRole normalizes a role string, case-insensitively.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buyer":
		return RoleBuyer, nil
	case "seller":
		return RoleSeller, nil
	case "delivery":
		return RoleDelivery, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return "", ErrUnknownRole
	}
}

// Repository defines lookup operations for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
}
