package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shubhanshu-a32/katelog/internal/domain/checkout"
)

const (
	insertOrderSQL = `INSERT INTO orders (id, buyer_id, seller_id, items, total_amount,
		shipping_charge, discount_amount, coupon_code, discount_remark,
		status, payment_mode, payment_status, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	insertAnalyticsSQL = `INSERT INTO seller_analytics (id, order_id, seller_id,
		platform_commission, total_commission_percentage, delivery_partner_fee,
		final_total, seller_earning, platform_commission_status, delivery_partner_fee_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	// Conditional decrement: zero rows affected means the stock check lost a
	// race and the whole checkout must abort.
	decrementStockSQL = `UPDATE products SET stock = stock - $2
		WHERE id = $1 AND stock >= $2`

	stockForErrorSQL = `SELECT title, stock FROM products WHERE id = $1`

	insertOfferUsageSQL = `INSERT INTO offer_usages (code, buyer_id, original_amount,
		discount_amount, final_amount, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
)

var _ checkout.Store = (*CheckoutStore)(nil)

// CheckoutStore persists a whole checkout unit in one transaction.
type CheckoutStore struct {
	pool *pgxpool.Pool
}

// NewCheckoutStore returns a CheckoutStore that uses the given pool.
func NewCheckoutStore(pool *pgxpool.Pool) *CheckoutStore {
	return &CheckoutStore{pool: pool}
}

// CreateCheckout writes all orders, analytics records, stock decrements and
// the offer usage entry atomically. Any failure rolls the unit back, so a
// checkout never leaves partially created sibling orders behind.
func (s *CheckoutStore) CreateCheckout(ctx context.Context, unit *checkout.Unit) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning checkout tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i := range unit.Orders {
		o := &unit.Orders[i]

		itemsJSON, err := json.Marshal(o.Items)
		if err != nil {
			return fmt.Errorf("marshaling items for order %q: %w", o.ID, err)
		}
		addressJSON, err := json.Marshal(o.Address)
		if err != nil {
			return fmt.Errorf("marshaling address for order %q: %w", o.ID, err)
		}

		_, err = tx.Exec(ctx, insertOrderSQL,
			o.ID, o.BuyerID, o.SellerID, itemsJSON, o.TotalAmount,
			o.ShippingCharge, o.DiscountAmount, o.CouponCode, o.DiscountRemark,
			string(o.Status), string(o.PaymentMode), string(o.PaymentStatus),
			addressJSON, o.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("creating order %q: %w", o.ID, err)
		}
	}

	for _, rec := range unit.Records {
		_, err := tx.Exec(ctx, insertAnalyticsSQL,
			rec.ID, rec.OrderID, rec.SellerID,
			rec.PlatformCommission, rec.TotalCommissionPercentage, rec.DeliveryPartnerFee,
			rec.FinalTotal, rec.SellerEarning,
			string(rec.PlatformCommissionStatus), string(rec.DeliveryPartnerFeeStatus),
		)
		if err != nil {
			return fmt.Errorf("creating analytics record for order %q: %w", rec.OrderID, err)
		}
	}

	for _, dec := range unit.Decrements {
		tag, err := tx.Exec(ctx, decrementStockSQL, dec.ProductID, dec.Quantity)
		if err != nil {
			return fmt.Errorf("decrementing stock for %q: %w", dec.ProductID, err)
		}
		if tag.RowsAffected() == 0 {
			return s.stockError(ctx, tx, dec.ProductID)
		}
	}

	if u := unit.Usage; u != nil {
		_, err := tx.Exec(ctx, insertOfferUsageSQL,
			u.Code, u.Usage.BuyerID, u.Usage.OriginalAmount,
			u.Usage.DiscountAmount, u.Usage.FinalAmount, u.Usage.AppliedAt,
		)
		if err != nil {
			return fmt.Errorf("appending usage for offer %q: %w", u.Code, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing checkout: %w", err)
	}
	return nil
}

// stockError builds the descriptive InsufficientStockError for a failed
// conditional decrement.
func (s *CheckoutStore) stockError(ctx context.Context, tx pgx.Tx, productID string) error {
	var (
		title string
		stock int
	)
	err := tx.QueryRow(ctx, stockForErrorSQL, productID).Scan(&title, &stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &checkout.ProductNotFoundError{ProductID: productID}
		}
		return fmt.Errorf("reading stock for %q: %w", productID, err)
	}
	return &checkout.InsufficientStockError{ProductID: productID, Title: title, Available: stock}
}
