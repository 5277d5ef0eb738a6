// Command seed-db loads the product catalog, a starter set of discount codes,
// and a demo session token into PostgreSQL. It is idempotent: rows are
// upserted by primary key.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rawanamrrr/alanod-api/internal/repository"
)

type productJSON struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Image    struct {
		Thumbnail string `json:"thumbnail"`
		Mobile    string `json:"mobile"`
		Tablet    string `json:"tablet"`
		Desktop   string `json:"desktop"`
	} `json:"image"`
}

type codeSeed struct {
	Code         string
	Kind         string
	OriginalKind string
	Value        decimal.Decimal
	MaxDiscount  decimal.Decimal
	MinPurchase  decimal.Decimal
	UsageLimit   int
	ValidFrom    *time.Time
	ValidUntil   *time.Time
	BuyX         int
	GetX         int
	Percent      decimal.Decimal
	Description  string
}

func main() {
	var (
		databaseURL  string
		productsFile string
		sessionToken string
		tokenPepper  string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&sessionToken, "session-token", "", "demo session token to seed (or ALANOD_SEED_TOKEN env)")
	flag.StringVar(&tokenPepper, "token-pepper", "", "HMAC pepper for session token hashing (or ALANOD_TOKEN_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if sessionToken == "" {
		sessionToken = os.Getenv("ALANOD_SEED_TOKEN")
	}
	if tokenPepper == "" {
		tokenPepper = os.Getenv("ALANOD_TOKEN_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, sessionToken, tokenPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, sessionToken, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedDiscountCodes(ctx, pool); err != nil {
		return errors.Wrap(err, "seed discount codes")
	}

	if sessionToken != "" {
		if err := seedSessionToken(ctx, pool, sessionToken, pepper); err != nil {
			return errors.Wrap(err, "seed session token")
		}
	}

	return nil
}

const upsertProductSQL = `
INSERT INTO products (id, name, price, category, image_thumbnail, image_mobile, image_tablet, image_desktop)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    price = EXCLUDED.price,
    category = EXCLUDED.category,
    image_thumbnail = EXCLUDED.image_thumbnail,
    image_mobile = EXCLUDED.image_mobile,
    image_tablet = EXCLUDED.image_tablet,
    image_desktop = EXCLUDED.image_desktop
`

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		if _, err := pool.Exec(ctx, upsertProductSQL,
			p.ID, p.Name, p.Price, p.Category,
			p.Image.Thumbnail, p.Image.Mobile, p.Image.Tablet, p.Image.Desktop,
		); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

const upsertCodeSQL = `
INSERT INTO discount_codes (
    code, active, discount_type, original_type, value, max_discount,
    min_purchase, usage_limit, valid_from, valid_until, buy_x, get_x,
    discount_percentage, description
)
VALUES ($1, TRUE, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (code) DO UPDATE SET
    active = TRUE,
    discount_type = EXCLUDED.discount_type,
    original_type = EXCLUDED.original_type,
    value = EXCLUDED.value,
    max_discount = EXCLUDED.max_discount,
    min_purchase = EXCLUDED.min_purchase,
    usage_limit = EXCLUDED.usage_limit,
    valid_from = EXCLUDED.valid_from,
    valid_until = EXCLUDED.valid_until,
    buy_x = EXCLUDED.buy_x,
    get_x = EXCLUDED.get_x,
    discount_percentage = EXCLUDED.discount_percentage,
    description = EXCLUDED.description
`

func seedDiscountCodes(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding discount codes")

	nextMonth := time.Now().AddDate(0, 1, 0)

	codes := []codeSeed{
		{
			Code:        "WELCOME10",
			Kind:        "percentage",
			Value:       decimal.NewFromInt(10),
			MaxDiscount: decimal.NewFromInt(200),
			UsageLimit:  1,
			Description: "10% off your first order, capped at 200",
		},
		{
			Code:        "SAR50",
			Kind:        "fixed",
			Value:       decimal.NewFromInt(50),
			MinPurchase: decimal.NewFromInt(300),
			ValidUntil:  &nextMonth,
			Description: "50 off orders of 300 or more",
		},
		{
			Code:        "B2G1",
			Kind:        "buyXgetX",
			BuyX:        2,
			GetX:        1,
			Description: "Buy 2 get 1 free, cheapest items free",
		},
		{
			Code:        "DUOHALF",
			Kind:        "buyXgetYpercent",
			BuyX:        2,
			Percent:     decimal.NewFromInt(50),
			Description: "Buy 2, get 50% off the cheapest item",
		},
		{
			// Legacy row: stored as percentage for settlement reporting, priced
			// with its original composite kind.
			Code:         "OLDB2G1",
			Kind:         "percentage",
			OriginalKind: "buyXgetX",
			BuyX:         2,
			GetX:         1,
			Description:  "Legacy buy 2 get 1 free",
		},
	}

	for _, c := range codes {
		var original *string
		if c.OriginalKind != "" {
			original = &c.OriginalKind
		}
		if _, err := pool.Exec(ctx, upsertCodeSQL,
			c.Code, c.Kind, original, c.Value, c.MaxDiscount, c.MinPurchase,
			c.UsageLimit, c.ValidFrom, c.ValidUntil, c.BuyX, c.GetX,
			c.Percent, c.Description,
		); err != nil {
			return errors.Wrapf(err, "upsert discount code %s", c.Code)
		}

		slog.Info("upserted discount code", slog.String("code", c.Code), slog.String("description", c.Description))
	}

	return nil
}

const upsertSessionTokenSQL = `
INSERT INTO session_tokens (id, token_hash, user_id, email, active)
VALUES ($1, $2, $3, $4, TRUE)
ON CONFLICT (id) DO UPDATE SET
    token_hash = EXCLUDED.token_hash,
    user_id = EXCLUDED.user_id,
    email = EXCLUDED.email,
    active = TRUE
`

func seedSessionToken(ctx context.Context, pool *pgxpool.Pool, token, pepper string) error {
	slog.Info("seeding demo session token")

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(token))
	tokenHash := hex.EncodeToString(mac.Sum(nil))

	if _, err := pool.Exec(ctx, upsertSessionTokenSQL,
		"demo", tokenHash, "demo-user", "demo@example.com",
	); err != nil {
		return errors.Wrap(err, "upsert demo session token")
	}

	slog.Info("upserted session token", slog.String("id", "demo"), slog.String("user_id", "demo-user"))

	return nil
}
