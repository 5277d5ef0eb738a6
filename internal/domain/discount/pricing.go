package discount

import (
	"slices"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

// Price dispatches on the code's effective kind and computes the discount for
// the given cart. Eligibility gating (temporal window, usage limit, minimum
// order) is the Resolver's job; Price assumes the code already passed it.
//
// No rounding happens here: percentage and fixed amounts are raw decimal
// arithmetic, the buy-X strategies sum raw unit prices. Rounding is a
// presentation concern downstream.
func Price(c *Code, cart Cart) (*Pricing, error) {
	kind := c.EffectiveKind()
	switch kind {
	case KindPercentage:
		return result(c, kind, pricePercentage(c, cart), PercentageDetails{Percentage: c.Value}), nil
	case KindFixed:
		return result(c, kind, priceFixed(c, cart), FixedDetails{FixedAmount: c.Value}), nil
	case KindBuyXGetX:
		return priceBuyXGetX(c, cart)
	case KindBuyXGetYPercent:
		return priceBuyXGetYPercent(c, cart)
	default:
		return nil, ErrUnsupportedKind
	}
}

func result(c *Code, kind Kind, amount decimal.Decimal, details Details) *Pricing {
	return &Pricing{
		Code:    c.Code,
		Kind:    kind,
		Value:   c.Value,
		Amount:  amount,
		Details: details,
	}
}

func pricePercentage(c *Code, cart Cart) decimal.Decimal {
	amount := cart.OrderAmount.Mul(c.Value).Div(hundred)
	if c.MaxDiscount.IsPositive() && amount.GreaterThan(c.MaxDiscount) {
		amount = c.MaxDiscount
	}
	return floorAtZero(amount)
}

func priceFixed(c *Code, cart Cart) decimal.Decimal {
	return floorAtZero(decimal.Min(c.Value, cart.OrderAmount))
}

// priceBuyXGetX gives GetX units free per full set of BuyX+GetX units. Free
// units are always the cheapest ones in the cart, so the customer never loses
// value to enumeration order and the per-set economics stay predictable.
func priceBuyXGetX(c *Code, cart Cart) (*Pricing, error) {
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if c.BuyX <= 0 || c.GetX <= 0 {
		return nil, ErrInvalidConfig
	}

	totalQty := cart.TotalQuantity()
	minRequired := c.BuyX + c.GetX
	if totalQty < minRequired {
		return nil, &InsufficientItemsError{
			Kind:            KindBuyXGetX,
			Needed:          minRequired - totalQty,
			BuyX:            c.BuyX,
			GetX:            c.GetX,
			MinimumRequired: minRequired,
		}
	}

	sets := totalQty / minRequired
	freeCount := sets * c.GetX

	units := expandUnits(cart.Items)
	amount := zero
	for _, price := range units[:freeCount] {
		amount = amount.Add(price)
	}

	return result(c, KindBuyXGetX, floorAtZero(amount), BuyXGetXDetails{
		BuyX:           c.BuyX,
		GetX:           c.GetX,
		FreeItemsCount: freeCount,
	}), nil
}

// priceBuyXGetYPercent applies the code's percentage to the single cheapest
// unit once the cart holds at least BuyX units.
func priceBuyXGetYPercent(c *Code, cart Cart) (*Pricing, error) {
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if c.BuyX <= 0 || !c.Percent.IsPositive() {
		return nil, ErrInvalidConfig
	}

	totalQty := cart.TotalQuantity()
	if totalQty < c.BuyX {
		return nil, &InsufficientItemsError{
			Kind:    KindBuyXGetYPercent,
			Needed:  c.BuyX - totalQty,
			BuyX:    c.BuyX,
			Percent: c.Percent,
		}
	}

	units := expandUnits(cart.Items)
	amount := units[0].Mul(c.Percent).Div(hundred)

	return result(c, KindBuyXGetYPercent, floorAtZero(amount), BuyXGetYPercentDetails{
		BuyX:               c.BuyX,
		DiscountPercentage: c.Percent,
	}), nil
}

// expandUnits flattens items into one price per unit (respecting quantity) and
// stable-sorts ascending by price. The sort is keyed on price only so ties
// keep their original per-item order.
func expandUnits(items []Item) []decimal.Decimal {
	units := make([]decimal.Decimal, 0, len(items))
	for _, item := range items {
		for range item.Quantity {
			units = append(units, item.Price)
		}
	}
	slices.SortStableFunc(units, func(a, b decimal.Decimal) int {
		return a.Cmp(b)
	})
	return units
}

// floorAtZero clamps negative values to zero.
func floorAtZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return zero
	}
	return d
}
