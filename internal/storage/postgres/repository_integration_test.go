//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shubhanshu-a32/katelog/internal/domain/analytics"
	"github.com/shubhanshu-a32/katelog/internal/domain/checkout"
	"github.com/shubhanshu-a32/katelog/internal/domain/offer"
	"github.com/shubhanshu-a32/katelog/internal/domain/order"
	"github.com/shubhanshu-a32/katelog/internal/storage/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryIntegrationTestSuite runs the storage layer against a real
// PostgreSQL container.
type RepositoryIntegrationTestSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool

	users     *postgres.UserRepository
	products  *postgres.ProductRepository
	offers    *postgres.OfferRepository
	orders    *postgres.OrderRepository
	analytics *postgres.AnalyticsRepository
	store     *postgres.CheckoutStore
}

func (s *RepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("katelog_test"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	pool, err := postgres.NewPool(ctx, connStr)
	s.Require().NoError(err)
	s.pool = pool

	s.Require().NoError(postgres.RunMigrations(ctx, pool))

	s.users = postgres.NewUserRepository(pool)
	s.products = postgres.NewProductRepository(pool)
	s.offers = postgres.NewOfferRepository(pool)
	s.orders = postgres.NewOrderRepository(pool)
	s.analytics = postgres.NewAnalyticsRepository(pool)
	s.store = postgres.NewCheckoutStore(pool)
}

func (s *RepositoryIntegrationTestSuite) SetupTest() {
	ctx := context.Background()
	_, err := s.pool.Exec(ctx,
		`TRUNCATE TABLE offer_usages, seller_analytics, orders, offers, products, users`)
	s.Require().NoError(err)
}

func (s *RepositoryIntegrationTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		s.Require().NoError(s.container.Terminate(context.Background()))
	}
}

// --- Fixtures ---

func (s *RepositoryIntegrationTestSuite) seedSeller(id string) {
	_, err := s.pool.Exec(context.Background(),
		`INSERT INTO users (id, name, mobile, role, pincode, address)
		 VALUES ($1, 'Seller', '+91-98', 'seller', '411001', 'MG Road, Pune 411001')`, id)
	s.Require().NoError(err)
}

func (s *RepositoryIntegrationTestSuite) seedProduct(id, sellerID string, price decimal.Decimal, stock int) {
	_, err := s.pool.Exec(context.Background(),
		`INSERT INTO products (id, seller_id, title, price, stock, commission_percent, category)
		 VALUES ($1, $2, 'Widget', $3, $4, 10, 'electronics')`, id, sellerID, price, stock)
	s.Require().NoError(err)
}

func (s *RepositoryIntegrationTestSuite) newUnit(buyerID, sellerID, productID string, qty int) *checkout.Unit {
	orderID := uuid.New().String()
	return &checkout.Unit{
		Orders: []order.Order{{
			ID:             orderID,
			BuyerID:        buyerID,
			SellerID:       sellerID,
			Items:          []order.Line{{ProductID: productID, Quantity: qty, Price: decimal.NewFromInt(300), CommissionPercent: decimal.NewFromInt(10), Category: "electronics"}},
			TotalAmount:    decimal.NewFromInt(380),
			ShippingCharge: decimal.NewFromInt(80),
			DiscountAmount: decimal.Zero,
			Status:         order.StatusPlaced,
			PaymentMode:    order.PaymentCOD,
			PaymentStatus:  order.PaymentPending,
			Address:        order.Address{FullAddress: "Flat 4B", City: "Pune", State: "MH", Pincode: "411001"},
			CreatedAt:      time.Now().UTC(),
		}},
		Records: []analytics.Record{{
			ID:       uuid.New().String(),
			OrderID:  orderID,
			SellerID: sellerID,
			Financials: analytics.Financials{
				PlatformCommission:        decimal.NewFromInt(30),
				TotalCommissionPercentage: decimal.NewFromInt(10),
				DeliveryPartnerFee:        decimal.NewFromInt(64),
				FinalTotal:                decimal.NewFromInt(380),
				SellerEarning:             decimal.NewFromInt(270),
			},
			PlatformCommissionStatus: analytics.SettlementPending,
			DeliveryPartnerFeeStatus: analytics.SettlementPending,
		}},
		Decrements: []checkout.StockDecrement{{ProductID: productID, Quantity: qty}},
	}
}

// --- Tests ---

func (s *RepositoryIntegrationTestSuite) TestCheckout_PersistsUnitAtomically() {
	ctx := context.Background()
	sellerID := uuid.New().String()
	productID := uuid.New().String()
	s.seedSeller(sellerID)
	s.seedProduct(productID, sellerID, decimal.NewFromInt(300), 5)

	unit := s.newUnit(uuid.New().String(), sellerID, productID, 2)
	s.Require().NoError(s.store.CreateCheckout(ctx, unit))

	got, err := s.orders.GetByID(ctx, unit.Orders[0].ID)
	s.Require().NoError(err)
	s.Equal(sellerID, got.SellerID)
	s.Require().Len(got.Items, 1)
	s.True(got.TotalAmount.Equal(decimal.NewFromInt(380)))

	p, err := s.products.GetByID(ctx, productID)
	s.Require().NoError(err)
	s.Equal(3, p.Stock)

	recs, err := s.analytics.ListBySeller(ctx, sellerID)
	s.Require().NoError(err)
	s.Require().Len(recs, 1)
	s.Equal(unit.Orders[0].ID, recs[0].OrderID)
}

func (s *RepositoryIntegrationTestSuite) TestCheckout_InsufficientStockRollsBack() {
	ctx := context.Background()
	sellerID := uuid.New().String()
	productID := uuid.New().String()
	s.seedSeller(sellerID)
	s.seedProduct(productID, sellerID, decimal.NewFromInt(300), 1)

	unit := s.newUnit(uuid.New().String(), sellerID, productID, 5)
	err := s.store.CreateCheckout(ctx, unit)

	var stockErr *checkout.InsufficientStockError
	s.Require().ErrorAs(err, &stockErr)
	s.Equal(productID, stockErr.ProductID)
	s.Equal(1, stockErr.Available)

	// Nothing from the unit may survive the rollback.
	_, err = s.orders.GetByID(ctx, unit.Orders[0].ID)
	s.ErrorIs(err, order.ErrNotFound)

	p, err := s.products.GetByID(ctx, productID)
	s.Require().NoError(err)
	s.Equal(1, p.Stock)
}

func (s *RepositoryIntegrationTestSuite) TestCheckout_AppendsOfferUsage() {
	ctx := context.Background()
	sellerID := uuid.New().String()
	productID := uuid.New().String()
	buyerID := uuid.New().String()
	s.seedSeller(sellerID)
	s.seedProduct(productID, sellerID, decimal.NewFromInt(300), 5)

	_, err := s.pool.Exec(ctx,
		`INSERT INTO offers (code, tagline, kind, value, min_cart_amount, categories, active)
		 VALUES ('SAVE10', '10% off', 'percentage', 10, 0, '{}', TRUE)`)
	s.Require().NoError(err)

	unit := s.newUnit(buyerID, sellerID, productID, 1)
	unit.Usage = &checkout.OfferUsage{
		Code: "SAVE10",
		Usage: offer.Usage{
			BuyerID:        buyerID,
			OriginalAmount: decimal.NewFromInt(300),
			DiscountAmount: decimal.NewFromInt(30),
			FinalAmount:    decimal.NewFromInt(270),
			AppliedAt:      time.Now().UTC(),
		},
	}
	s.Require().NoError(s.store.CreateCheckout(ctx, unit))

	var count int
	s.Require().NoError(s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM offer_usages WHERE code = 'SAVE10' AND buyer_id = $1`, buyerID).Scan(&count))
	s.Equal(1, count)
}

func (s *RepositoryIntegrationTestSuite) TestOfferRepository_CaseInsensitiveLookupAndExpiry() {
	ctx := context.Background()
	expired := time.Now().Add(-24 * time.Hour).UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO offers (code, tagline, kind, value, min_cart_amount, expiry_date, categories, active)
		 VALUES ('GONE', 'old', 'flat', 50, 0, $1, '{}', TRUE)`, expired)
	s.Require().NoError(err)

	o, err := s.offers.FindByCode(ctx, "gone")
	s.Require().NoError(err)
	s.Equal("GONE", o.Code)
	s.True(o.IsActive)

	n, err := s.offers.DeactivateExpired(ctx, time.Now())
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	o, err = s.offers.FindByCode(ctx, "GONE")
	s.Require().NoError(err)
	s.False(o.IsActive)
}

func (s *RepositoryIntegrationTestSuite) TestOrderRepository_StatusAndAssignment() {
	ctx := context.Background()
	sellerID := uuid.New().String()
	productID := uuid.New().String()
	partnerID := uuid.New().String()
	s.seedSeller(sellerID)
	s.seedProduct(productID, sellerID, decimal.NewFromInt(300), 5)

	unit := s.newUnit(uuid.New().String(), sellerID, productID, 1)
	s.Require().NoError(s.store.CreateCheckout(ctx, unit))
	orderID := unit.Orders[0].ID

	updated, err := s.orders.AssignPartner(ctx, orderID, partnerID, order.StatusConfirmed)
	s.Require().NoError(err)
	s.Require().NotNil(updated.DeliveryPartnerID)
	s.Equal(partnerID, *updated.DeliveryPartnerID)
	s.Equal(order.StatusConfirmed, updated.Status)

	updated, err = s.orders.UnassignPartner(ctx, orderID)
	s.Require().NoError(err)
	s.Nil(updated.DeliveryPartnerID)
	s.Equal(order.StatusConfirmed, updated.Status)

	updated, err = s.orders.UpdateStatus(ctx, orderID, order.StatusShipped)
	s.Require().NoError(err)
	s.Equal(order.StatusShipped, updated.Status)

	_, err = s.orders.UpdateStatus(ctx, uuid.New().String(), order.StatusShipped)
	s.ErrorIs(err, order.ErrNotFound)
}

func (s *RepositoryIntegrationTestSuite) TestOrderRepository_ListAndStats() {
	ctx := context.Background()
	sellerID := uuid.New().String()
	productID := uuid.New().String()
	buyerID := uuid.New().String()
	s.seedSeller(sellerID)
	s.seedProduct(productID, sellerID, decimal.NewFromInt(300), 10)

	for range 3 {
		unit := s.newUnit(buyerID, sellerID, productID, 1)
		s.Require().NoError(s.store.CreateCheckout(ctx, unit))
	}

	orders, err := s.orders.ListByBuyer(ctx, buyerID, order.Page{Limit: 2})
	s.Require().NoError(err)
	s.Len(orders, 2)

	stats, err := s.orders.StatsByBuyer(ctx, buyerID)
	s.Require().NoError(err)
	s.Equal(3, stats.TotalOrders)
	s.True(stats.TotalSpent.Equal(decimal.NewFromInt(1140)))
}

func (s *RepositoryIntegrationTestSuite) TestAnalyticsRepository_Settlement() {
	ctx := context.Background()
	sellerID := uuid.New().String()
	productID := uuid.New().String()
	s.seedSeller(sellerID)
	s.seedProduct(productID, sellerID, decimal.NewFromInt(300), 5)

	unit := s.newUnit(uuid.New().String(), sellerID, productID, 1)
	s.Require().NoError(s.store.CreateCheckout(ctx, unit))
	recID := unit.Records[0].ID

	completed := analytics.SettlementCompleted
	rec, err := s.analytics.UpdateSettlement(ctx, recID, &completed, nil)
	s.Require().NoError(err)
	s.Equal(analytics.SettlementCompleted, rec.PlatformCommissionStatus)
	s.Equal(analytics.SettlementPending, rec.DeliveryPartnerFeeStatus)

	got, err := s.analytics.GetByID(ctx, recID)
	s.Require().NoError(err)
	s.Equal(analytics.SettlementCompleted, got.PlatformCommissionStatus)

	_, err = s.analytics.UpdateSettlement(ctx, uuid.New().String(), &completed, nil)
	s.ErrorIs(err, analytics.ErrNotFound)
}

func (s *RepositoryIntegrationTestSuite) TestUserRepository_GetByID() {
	ctx := context.Background()
	sellerID := uuid.New().String()
	s.seedSeller(sellerID)

	u, err := s.users.GetByID(ctx, sellerID)
	s.Require().NoError(err)
	s.Equal("411001", u.Pincode)

	_, err = s.users.GetByID(ctx, uuid.New().String())
	s.Require().Error(err)
}

func TestRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(RepositoryIntegrationTestSuite))
}
