package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/shubhanshu-a32/katelog/internal/domain/offer"
)

const (
	getOfferByCodeSQL = `SELECT code, tagline, kind, value, min_cart_amount, expiry_date, categories, active
		FROM offers WHERE UPPER(code) = UPPER($1)`

	deactivateExpiredOffersSQL = `UPDATE offers SET active = FALSE
		WHERE active AND expiry_date IS NOT NULL AND expiry_date < $1`
)

var _ offer.Repository = (*OfferRepository)(nil)

// OfferRepository implements offer.Repository backed by PostgreSQL.
type OfferRepository struct {
	pool *pgxpool.Pool
}

// NewOfferRepository returns an OfferRepository that uses the given pool.
func NewOfferRepository(pool *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{pool: pool}
}

// FindByCode looks up an offer by its code (case-insensitive). Inactive
// offers are returned as-is; the domain layer decides whether an inactive or
// expired offer is an error, so callers get a precise failure reason.
func (r *OfferRepository) FindByCode(ctx context.Context, code string) (*offer.Offer, error) {
	rows, err := r.pool.Query(ctx, getOfferByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding offer by code %q: %w", code, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOffer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, offer.ErrNotFound
		}
		return nil, fmt.Errorf("finding offer by code %q: %w", code, err)
	}
	return &o, nil
}

// DeactivateExpired flips active off for offers past their expiry date.
func (r *OfferRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, deactivateExpiredOffersSQL, now)
	if err != nil {
		return 0, fmt.Errorf("deactivating expired offers: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanOffer(row pgx.CollectableRow) (offer.Offer, error) {
	var (
		o          offer.Offer
		kind       string
		value      decimal.Decimal
		minCart    decimal.Decimal
		expiryDate *time.Time
	)
	err := row.Scan(&o.Code, &o.Tagline, &kind, &value, &minCart, &expiryDate, &o.Categories, &o.IsActive)
	o.Kind = offer.Kind(kind)
	o.Value = value
	o.MinCartAmount = minCart
	o.ExpiryDate = expiryDate
	return o, err
}
