package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rawanamrrr/alanod-api/internal/domain/discount"
)

const findActiveCodeSQL = `SELECT code, discount_type, original_type, value, max_discount,
	min_purchase, usage_limit, valid_from, valid_until, buy_x, get_x,
	discount_percentage, description
	FROM discount_codes WHERE UPPER(code) = UPPER($1) AND active = TRUE`

var _ discount.CodeRepository = (*DiscountCodeRepository)(nil)

// DiscountCodeRepository implements discount.CodeRepository backed by
// PostgreSQL.
type DiscountCodeRepository struct {
	pool *pgxpool.Pool
}

// NewDiscountCodeRepository returns a DiscountCodeRepository that uses the
// given pool.
func NewDiscountCodeRepository(pool *pgxpool.Pool) *DiscountCodeRepository {
	return &DiscountCodeRepository{pool: pool}
}

// FindActiveByCode looks up an active discount code case-insensitively.
// Inactive rows are filtered in SQL, so they are indistinguishable from
// absent ones: both return discount.ErrInvalidCode.
func (r *DiscountCodeRepository) FindActiveByCode(ctx context.Context, code string) (*discount.Code, error) {
	rows, err := r.pool.Query(ctx, findActiveCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding discount code %q: %w", code, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanDiscountCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, discount.ErrInvalidCode
		}
		return nil, fmt.Errorf("finding discount code %q: %w", code, err)
	}
	return &c, nil
}

func scanDiscountCode(row pgx.CollectableRow) (discount.Code, error) {
	var (
		c            discount.Code
		discountType string
		originalType *string
		value        decimal.Decimal
		maxDiscount  decimal.Decimal
		minPurchase  decimal.Decimal
		usageLimit   int32
		validFrom    *time.Time
		validUntil   *time.Time
		buyX         int32
		getX         int32
		percent      decimal.Decimal
	)
	err := row.Scan(
		&c.Code, &discountType, &originalType, &value, &maxDiscount,
		&minPurchase, &usageLimit, &validFrom, &validUntil, &buyX, &getX,
		&percent, &c.Description,
	)
	c.Active = true
	c.Kind = discount.Kind(discountType)
	if originalType != nil {
		c.LegacyKind = discount.Kind(*originalType)
	}
	c.Value = value
	c.MaxDiscount = maxDiscount
	c.MinPurchase = minPurchase
	c.UsageLimit = int(usageLimit)
	c.ValidFrom = validFrom
	c.ValidUntil = validUntil
	c.BuyX = int(buyX)
	c.GetX = int(getX)
	c.Percent = percent
	return c, err
}
