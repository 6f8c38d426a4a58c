// Package product holds the catalog read model used during checkout.
package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Price, commission
// and category are snapshotted onto order lines at checkout time.
type Product struct {
	ID                string
	SellerID          string
	Title             string
	Price             decimal.Decimal
	Stock             int
	CommissionPercent decimal.Decimal
	Category          string
}

// Repository defines read operations for the product catalog. Stock mutation
// happens only inside the checkout transaction (see checkout.Store).
type Repository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
}
