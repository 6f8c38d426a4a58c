package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/shubhanshu-a32/katelog/internal/domain/order"
)

const orderColumns = `id, buyer_id, seller_id, delivery_partner_id, items,
	total_amount, shipping_charge, discount_amount, coupon_code, discount_remark,
	status, payment_mode, payment_status, address, created_at`

const (
	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersByBuyerSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE buyer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	listOrdersBySellerSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE seller_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	updateOrderStatusSQL = `UPDATE orders SET status = $2 WHERE id = $1
		RETURNING ` + orderColumns

	assignPartnerSQL = `UPDATE orders SET delivery_partner_id = $2, status = $3 WHERE id = $1
		RETURNING ` + orderColumns

	unassignPartnerSQL = `UPDATE orders SET delivery_partner_id = NULL WHERE id = $1
		RETURNING ` + orderColumns

	buyerStatsSQL = `SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders WHERE buyer_id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Order
// creation is not here: orders are only written through CheckoutStore.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// GetByID returns a single order by identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	return r.queryOne(ctx, getOrderByIDSQL, id)
}

// ListByBuyer returns the buyer's orders, newest first.
func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID string, page order.Page) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByBuyerSQL, buyerID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("listing orders for buyer %q: %w", buyerID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// ListBySeller returns the seller's orders, newest first.
func (r *OrderRepository) ListBySeller(ctx context.Context, sellerID string, page order.Page) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersBySellerSQL, sellerID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("listing orders for seller %q: %w", sellerID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// UpdateStatus sets the order status and returns the updated order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) (*order.Order, error) {
	return r.queryOne(ctx, updateOrderStatusSQL, id, string(status))
}

// AssignPartner sets the delivery partner and status in one statement.
func (r *OrderRepository) AssignPartner(ctx context.Context, id, partnerID string, status order.Status) (*order.Order, error) {
	return r.queryOne(ctx, assignPartnerSQL, id, partnerID, string(status))
}

// UnassignPartner clears the delivery partner, leaving status untouched.
func (r *OrderRepository) UnassignPartner(ctx context.Context, id string) (*order.Order, error) {
	return r.queryOne(ctx, unassignPartnerSQL, id)
}

// StatsByBuyer returns order count and total spent for one buyer.
func (r *OrderRepository) StatsByBuyer(ctx context.Context, buyerID string) (*order.BuyerStats, error) {
	var (
		count int
		spent decimal.Decimal
	)
	err := r.pool.QueryRow(ctx, buyerStatsSQL, buyerID).Scan(&count, &spent)
	if err != nil {
		return nil, fmt.Errorf("buyer stats for %q: %w", buyerID, err)
	}
	return &order.BuyerStats{TotalOrders: count, TotalSpent: spent}, nil
}

func (r *OrderRepository) queryOne(ctx context.Context, sql string, args ...any) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying order: %w", err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("querying order: %w", err)
	}
	return &o, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o           order.Order
		itemsJSON   []byte
		addressJSON []byte
		total       decimal.Decimal
		shipping    decimal.Decimal
		discount    decimal.Decimal
		status      string
		mode        string
		payStatus   string
		createdAt   time.Time
	)
	err := row.Scan(
		&o.ID, &o.BuyerID, &o.SellerID, &o.DeliveryPartnerID, &itemsJSON,
		&total, &shipping, &discount, &o.CouponCode, &o.DiscountRemark,
		&status, &mode, &payStatus, &addressJSON, &createdAt,
	)
	if err != nil {
		return o, err
	}

	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return o, fmt.Errorf("unmarshaling order items: %w", err)
	}
	if err := json.Unmarshal(addressJSON, &o.Address); err != nil {
		return o, fmt.Errorf("unmarshaling order address: %w", err)
	}

	o.TotalAmount = total
	o.ShippingCharge = shipping
	o.DiscountAmount = discount
	o.Status = order.Status(status)
	o.PaymentMode = order.PaymentMode(mode)
	o.PaymentStatus = order.PaymentStatus(payStatus)
	o.CreatedAt = createdAt
	return o, nil
}
