// Package discount implements the discount-code pricing engine: code lookup,
// eligibility gating (temporal window, per-customer usage limit, minimum order
// amount) and the pricing strategies that compute the discount for a cart.
package discount

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Kind enumerates the supported discount code strategies.
type Kind string

const (
	// KindPercentage applies a percentage-based discount to the subtotal.
	KindPercentage Kind = "percentage"
	// KindFixed applies a fixed monetary discount capped at the subtotal.
	KindFixed Kind = "fixed"
	// KindBuyXGetX gives the cheapest GetX units free for every BuyX+GetX units.
	KindBuyXGetX Kind = "buyXgetX"
	// KindBuyXGetYPercent discounts the cheapest unit by Percent once the cart
	// holds at least BuyX units.
	KindBuyXGetYPercent Kind = "buyXgetYpercent"
)

// Code is a stored discount code. The engine never mutates it; usage grows
// implicitly as completed orders referencing the code are written elsewhere.
type Code struct {
	Code        string
	Active      bool
	Kind        Kind
	LegacyKind  Kind // original_type column; overrides Kind for legacy rows
	Value       decimal.Decimal
	MaxDiscount decimal.Decimal // zero means uncapped
	MinPurchase decimal.Decimal // zero means no minimum
	UsageLimit  int             // zero means unlimited
	ValidFrom   *time.Time
	ValidUntil  *time.Time
	BuyX        int
	GetX        int
	Percent     decimal.Decimal // discount_percentage for buyXgetYpercent
	Description string
}

// EffectiveKind resolves the strategy to price with. Composite codes created
// before the schema gained dedicated kinds store their real kind in the legacy
// column while Kind keeps the underlying settlement type.
func (c *Code) EffectiveKind() Kind {
	if c.LegacyKind != "" {
		return c.LegacyKind
	}
	return c.Kind
}

// Item is a cart line item used for discount calculation.
type Item struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

// Cart is a snapshot of the order being priced: the pre-discount subtotal and
// the line items, all in the same currency unit as the code's thresholds.
type Cart struct {
	OrderAmount decimal.Decimal
	Items       []Item
}

// TotalQuantity returns the sum of quantities across all items.
func (c Cart) TotalQuantity() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Identity scopes the usage-limit check. A registered user carries UserID;
// a guest carries an optional Email. A guest without an email cannot be
// scoped, so the usage check is skipped for them.
type Identity struct {
	UserID string
	Email  string
}

// User returns a registered-user identity.
func User(id string) Identity { return Identity{UserID: id} }

// Guest returns a guest identity with an optional email.
func Guest(email string) Identity { return Identity{Email: email} }

// Registered reports whether the identity belongs to a registered user.
func (i Identity) Registered() bool { return i.UserID != "" }

// Pricing is the successful result of resolving a code against a cart.
type Pricing struct {
	Code    string // stored canonical code
	Kind    Kind   // effective kind the discount was priced with
	Value   decimal.Decimal
	Amount  decimal.Decimal
	Details Details
}

// Details carries the strategy-specific breakdown of a computed discount.
// It is a closed set: one concrete type per Kind.
type Details interface{ isDetails() }

// PercentageDetails describes a percentage discount.
type PercentageDetails struct {
	Percentage decimal.Decimal
}

// FixedDetails describes a fixed-amount discount.
type FixedDetails struct {
	FixedAmount decimal.Decimal
}

// BuyXGetXDetails describes a buy-X-get-X-free discount.
type BuyXGetXDetails struct {
	BuyX           int
	GetX           int
	FreeItemsCount int
}

// BuyXGetYPercentDetails describes a buy-X-get-Y%-off-next-item discount.
type BuyXGetYPercentDetails struct {
	BuyX               int
	DiscountPercentage decimal.Decimal
}

func (PercentageDetails) isDetails()      {}
func (FixedDetails) isDetails()           {}
func (BuyXGetXDetails) isDetails()        {}
func (BuyXGetYPercentDetails) isDetails() {}

// CodeRepository provides lookup of active discount codes.
type CodeRepository interface {
	// FindActiveByCode returns the active code matching the given normalized
	// code case-insensitively. Inactive and absent codes are indistinguishable:
	// both return ErrInvalidCode.
	FindActiveByCode(ctx context.Context, code string) (*Code, error)
}

// UsageCounter counts prior orders that consumed a code, scoped to an identity.
type UsageCounter interface {
	CountByUser(ctx context.Context, userID, code string) (int, error)
	CountByGuestEmail(ctx context.Context, email, code string) (int, error)
}
