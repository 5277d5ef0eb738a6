package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rawanamrrr/alanod-api/internal/domain/discount"
	"github.com/rawanamrrr/alanod-api/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (id, user_id, items, shipping_address,
		subtotal, discount, total, discount_code, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	countUsageByUserSQL = `SELECT COUNT(*) FROM orders
		WHERE user_id = $1 AND discount_code = $2`

	// Guest usage is matched by text containment over the stored shipping
	// address, mirroring how guest orders were historically scoped before the
	// address gained a dedicated email column.
	countUsageByEmailSQL = `SELECT COUNT(*) FROM orders
		WHERE shipping_address::text ILIKE '%' || $1 || '%' AND discount_code = $2`
)

var (
	_ order.Repository      = (*OrderRepository)(nil)
	_ discount.UsageCounter = (*OrderRepository)(nil)
)

// OrderRepository implements order.Repository and discount.UsageCounter
// backed by PostgreSQL. Usage counting reads the same rows checkout writes,
// so a code's consumption is tracked without a separate counter.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. Items and the shipping address are serialized
// to JSON for storage in JSONB columns.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}
	addressJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshaling shipping address: %w", err)
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.UserID, itemsJSON, addressJSON,
		o.Subtotal, o.Discount, o.Total, o.DiscountCode, o.Status,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	return nil
}

// CountByUser counts prior orders by the given user that consumed the code.
func (r *OrderRepository) CountByUser(ctx context.Context, userID, code string) (int, error) {
	var n int64
	err := r.pool.QueryRow(ctx, countUsageByUserSQL, userID, code).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting usage for user %q code %q: %w", userID, code, err)
	}
	return int(n), nil
}

// CountByGuestEmail counts prior guest orders whose shipping address contains
// the given email and whose discount code matches.
func (r *OrderRepository) CountByGuestEmail(ctx context.Context, email, code string) (int, error) {
	var n int64
	err := r.pool.QueryRow(ctx, countUsageByEmailSQL, email, code).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting usage for email %q code %q: %w", email, code, err)
	}
	return int(n), nil
}
