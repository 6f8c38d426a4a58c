package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/shubhanshu-a32/katelog/internal/domain/analytics"
)

const analyticsColumns = `id, order_id, seller_id, platform_commission,
	total_commission_percentage, delivery_partner_fee, final_total, seller_earning,
	platform_commission_status, delivery_partner_fee_status`

const (
	getAnalyticsByIDSQL = `SELECT ` + analyticsColumns + ` FROM seller_analytics WHERE id = $1`

	listAnalyticsBySellerSQL = `SELECT ` + analyticsColumns + ` FROM seller_analytics
		WHERE seller_id = $1 ORDER BY created_at DESC`

	updateSettlementSQL = `UPDATE seller_analytics SET
		platform_commission_status = COALESCE($2, platform_commission_status),
		delivery_partner_fee_status = COALESCE($3, delivery_partner_fee_status)
		WHERE id = $1
		RETURNING ` + analyticsColumns
)

var _ analytics.Recorder = (*AnalyticsRepository)(nil)

// AnalyticsRepository implements analytics.Recorder backed by PostgreSQL.
// Record creation happens inside CheckoutStore's transaction.
type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository returns an AnalyticsRepository using the given pool.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

// GetByID returns one analytics record.
func (r *AnalyticsRepository) GetByID(ctx context.Context, id string) (*analytics.Record, error) {
	rows, err := r.pool.Query(ctx, getAnalyticsByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting analytics record %q: %w", id, err)
	}

	rec, err := pgx.CollectExactlyOneRow(rows, scanAnalytics)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, analytics.ErrNotFound
		}
		return nil, fmt.Errorf("getting analytics record %q: %w", id, err)
	}
	return &rec, nil
}

// ListBySeller returns the seller's records, newest first.
func (r *AnalyticsRepository) ListBySeller(ctx context.Context, sellerID string) ([]analytics.Record, error) {
	rows, err := r.pool.Query(ctx, listAnalyticsBySellerSQL, sellerID)
	if err != nil {
		return nil, fmt.Errorf("listing analytics for seller %q: %w", sellerID, err)
	}
	return pgx.CollectRows(rows, scanAnalytics)
}

// UpdateSettlement updates either or both settlement flags; nil leaves a flag
// unchanged.
func (r *AnalyticsRepository) UpdateSettlement(ctx context.Context, id string, platform, deliveryFee *analytics.SettlementStatus) (*analytics.Record, error) {
	var platformStr, feeStr *string
	if platform != nil {
		s := string(*platform)
		platformStr = &s
	}
	if deliveryFee != nil {
		s := string(*deliveryFee)
		feeStr = &s
	}

	rows, err := r.pool.Query(ctx, updateSettlementSQL, id, platformStr, feeStr)
	if err != nil {
		return nil, fmt.Errorf("updating settlement for %q: %w", id, err)
	}

	rec, err := pgx.CollectExactlyOneRow(rows, scanAnalytics)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, analytics.ErrNotFound
		}
		return nil, fmt.Errorf("updating settlement for %q: %w", id, err)
	}
	return &rec, nil
}

func scanAnalytics(row pgx.CollectableRow) (analytics.Record, error) {
	var (
		rec                   analytics.Record
		commission            decimal.Decimal
		percent               decimal.Decimal
		fee                   decimal.Decimal
		finalTotal            decimal.Decimal
		earning               decimal.Decimal
		platformStatus        string
		deliveryPartnerStatus string
	)
	err := row.Scan(
		&rec.ID, &rec.OrderID, &rec.SellerID, &commission,
		&percent, &fee, &finalTotal, &earning,
		&platformStatus, &deliveryPartnerStatus,
	)
	rec.PlatformCommission = commission
	rec.TotalCommissionPercentage = percent
	rec.DeliveryPartnerFee = fee
	rec.FinalTotal = finalTotal
	rec.SellerEarning = earning
	rec.PlatformCommissionStatus = analytics.SettlementStatus(platformStatus)
	rec.DeliveryPartnerFeeStatus = analytics.SettlementStatus(deliveryPartnerStatus)
	return rec, err
}
