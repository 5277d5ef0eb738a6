package discount

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel rejections. Every eligibility failure is an expected outcome
// modeled as a value, never a panic; infrastructure errors are wrapped and
// therefore distinguishable from all of these.
var (
	// ErrInvalidCode is returned when no active code matches. Inactive codes
	// deliberately produce the same rejection as absent ones.
	ErrInvalidCode = errors.New("Invalid discount code")
	// ErrNotYetValid is returned when now precedes the code's valid-from time.
	ErrNotYetValid = errors.New("Discount code is not yet valid")
	// ErrExpired is returned when now is past the code's valid-until time.
	ErrExpired = errors.New("Discount code has expired")
	// ErrEmptyCart is returned when a composite strategy is priced against a
	// cart with no items.
	ErrEmptyCart = errors.New("Add items to your cart to apply this discount")
	// ErrInvalidConfig is returned when a composite code row is missing its
	// quantity or percentage parameters. Well-formed stored rows never hit
	// this; it guards rows arriving from an untyped store.
	ErrInvalidConfig = errors.New("Invalid discount code configuration")
	// ErrUnsupportedKind is returned for an effective kind outside the closed
	// Kind set.
	ErrUnsupportedKind = errors.New("This discount code type is not supported")
)

// UsageLimitError is returned when the identity has already consumed the code
// UsageLimit times.
type UsageLimitError struct {
	Limit int
	Guest bool
}

func (e *UsageLimitError) Error() string {
	if e.Guest {
		return fmt.Sprintf("This email has already used this discount code %d times.", e.Limit)
	}
	return fmt.Sprintf("You have already used this discount code %d times.", e.Limit)
}

// MinOrderError is returned when the order subtotal is below the code's
// minimum purchase amount. Remaining is how much more the customer must spend.
type MinOrderError struct {
	Minimum   decimal.Decimal
	Remaining decimal.Decimal
}

func (e *MinOrderError) Error() string {
	return fmt.Sprintf("minimum order amount %s not met, %s remaining", e.Minimum, e.Remaining)
}

// InsufficientItemsError is returned when a composite strategy needs more
// units in the cart than the customer has.
type InsufficientItemsError struct {
	Kind            Kind
	Needed          int
	BuyX            int
	GetX            int             // buyXgetX only
	MinimumRequired int             // buyXgetX only
	Percent         decimal.Decimal // buyXgetYpercent only
}

func (e *InsufficientItemsError) Error() string {
	if e.Kind == KindBuyXGetYPercent {
		return fmt.Sprintf("Add %d more item(s) to get %s%% off on the next item (Buy %d Get %s%% Off)",
			e.Needed, e.Percent, e.BuyX, e.Percent)
	}
	return fmt.Sprintf("Add %d more item(s) to your cart to apply this discount (Buy %d Get %d Free - minimum %d items required)",
		e.Needed, e.BuyX, e.GetX, e.MinimumRequired)
}
