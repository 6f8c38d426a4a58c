// Command seed-db loads users, products and offers from JSON files into the
// database. Intended for local development and demo environments.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/shubhanshu-a32/katelog/internal/storage/postgres"
)

type userJSON struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Mobile  string `json:"mobile"`
	Role    string `json:"role"`
	Pincode string `json:"pincode"`
	Address string `json:"address"`
}

type productJSON struct {
	ID                string          `json:"id"`
	SellerID          string          `json:"sellerId"`
	Title             string          `json:"title"`
	Price             decimal.Decimal `json:"price"`
	Stock             int             `json:"stock"`
	CommissionPercent decimal.Decimal `json:"commissionPercent"`
	Category          string          `json:"category"`
}

type offerJSON struct {
	Code          string          `json:"code"`
	Tagline       string          `json:"tagline"`
	Kind          string          `json:"kind"`
	Value         decimal.Decimal `json:"value"`
	MinCartAmount decimal.Decimal `json:"minCartAmount"`
	ExpiryDate    *time.Time      `json:"expiryDate"`
	Categories    []string        `json:"categories"`
	Active        bool            `json:"active"`
}

func main() {
	var (
		databaseURL string
		seedDir     string
	)
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedDir, "seed-dir", "db/seed", "directory holding users.json, products.json, offers.json")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedDir); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedDir string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedUsers(ctx, pool, seedDir+"/users.json"); err != nil {
		return errors.Wrap(err, "seed users")
	}
	if err := seedProducts(ctx, pool, seedDir+"/products.json"); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedOffers(ctx, pool, seedDir+"/offers.json"); err != nil {
		return errors.Wrap(err, "seed offers")
	}
	return nil
}

func readJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(err, "parse JSON")
	}
	return items, nil
}

const upsertUserSQL = `INSERT INTO users (id, name, mobile, role, pincode, address)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name, mobile = EXCLUDED.mobile, role = EXCLUDED.role,
		pincode = EXCLUDED.pincode, address = EXCLUDED.address`

func seedUsers(ctx context.Context, pool *pgxpool.Pool, path string) error {
	users, err := readJSON[userJSON](path)
	if err != nil {
		return err
	}
	for _, u := range users {
		_, err := pool.Exec(ctx, upsertUserSQL, u.ID, u.Name, u.Mobile, u.Role, u.Pincode, u.Address)
		if err != nil {
			return errors.Wrapf(err, "upsert user %s", u.ID)
		}
	}
	slog.Info("seeded users", slog.Int("count", len(users)))
	return nil
}

const upsertProductSQL = `INSERT INTO products (id, seller_id, title, price, stock, commission_percent, category)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO UPDATE SET
		seller_id = EXCLUDED.seller_id, title = EXCLUDED.title, price = EXCLUDED.price,
		stock = EXCLUDED.stock, commission_percent = EXCLUDED.commission_percent,
		category = EXCLUDED.category`

func seedProducts(ctx context.Context, pool *pgxpool.Pool, path string) error {
	products, err := readJSON[productJSON](path)
	if err != nil {
		return err
	}
	for _, p := range products {
		_, err := pool.Exec(ctx, upsertProductSQL,
			p.ID, p.SellerID, p.Title, p.Price, p.Stock, p.CommissionPercent, p.Category)
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
	}
	slog.Info("seeded products", slog.Int("count", len(products)))
	return nil
}

const upsertOfferSQL = `INSERT INTO offers (code, tagline, kind, value, min_cart_amount, expiry_date, categories, active)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (code) DO UPDATE SET
		tagline = EXCLUDED.tagline, kind = EXCLUDED.kind, value = EXCLUDED.value,
		min_cart_amount = EXCLUDED.min_cart_amount, expiry_date = EXCLUDED.expiry_date,
		categories = EXCLUDED.categories, active = EXCLUDED.active`

func seedOffers(ctx context.Context, pool *pgxpool.Pool, path string) error {
	offers, err := readJSON[offerJSON](path)
	if err != nil {
		return err
	}
	for _, o := range offers {
		_, err := pool.Exec(ctx, upsertOfferSQL,
			o.Code, o.Tagline, o.Kind, o.Value, o.MinCartAmount, o.ExpiryDate, o.Categories, o.Active)
		if err != nil {
			return errors.Wrapf(err, "upsert offer %s", o.Code)
		}
	}
	slog.Info("seeded offers", slog.Int("count", len(offers)))
	return nil
}
