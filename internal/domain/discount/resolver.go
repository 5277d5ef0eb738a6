package discount

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// Resolver decides whether a candidate code applies to a cart and identity,
// how much it is worth, and which strategy produced the value. Each gate
// short-circuits with a specific rejection; only store failures surface as
// wrapped infrastructure errors.
//
// The resolver is stateless and safe for concurrent use. The usage check
// reads a snapshot of prior orders, so two concurrent checkouts can both pass
// validation and push usage slightly past the limit; that race is accepted
// for this low-contention promo-code flow.
type Resolver struct {
	codes CodeRepository
	usage UsageCounter
	now   func() time.Time
}

// NewResolver creates a Resolver backed by the given code store and usage
// counter.
func NewResolver(codes CodeRepository, usage UsageCounter) *Resolver {
	return &Resolver{codes: codes, usage: usage, now: time.Now}
}

// Resolve normalizes the candidate code and runs the eligibility gates in
// order: lookup, temporal window, identity-scoped usage limit, minimum order
// amount, then strategy pricing.
func (r *Resolver) Resolve(ctx context.Context, rawCode string, cart Cart, id Identity) (*Pricing, error) {
	code := strings.ToUpper(strings.TrimSpace(rawCode))

	c, err := r.codes.FindActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			return nil, ErrInvalidCode
		}
		return nil, errors.Wrap(err, "lookup discount code")
	}

	now := r.now()

	// Window bounds are inclusive: a code is rejected strictly outside
	// [ValidFrom, ValidUntil].
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return nil, ErrNotYetValid
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return nil, ErrExpired
	}

	if err := r.checkUsage(ctx, c, id); err != nil {
		return nil, err
	}

	if c.MinPurchase.IsPositive() && cart.OrderAmount.LessThan(c.MinPurchase) {
		return nil, &MinOrderError{
			Minimum:   c.MinPurchase,
			Remaining: c.MinPurchase.Sub(cart.OrderAmount),
		}
	}

	return Price(c, cart)
}

// checkUsage enforces the per-customer usage limit. Registered users are
// counted by user ID, guests by the email on their prior orders' shipping
// addresses. A guest without an email cannot be scoped and skips the check;
// that permissiveness is intentional and externally observable, so it is
// preserved rather than tightened here.
func (r *Resolver) checkUsage(ctx context.Context, c *Code, id Identity) error {
	if c.UsageLimit <= 0 {
		return nil
	}

	switch {
	case id.Registered():
		n, err := r.usage.CountByUser(ctx, id.UserID, c.Code)
		if err != nil {
			return errors.Wrap(err, "count user usage")
		}
		if n >= c.UsageLimit {
			return &UsageLimitError{Limit: c.UsageLimit}
		}
	case id.Email != "":
		n, err := r.usage.CountByGuestEmail(ctx, id.Email, c.Code)
		if err != nil {
			return errors.Wrap(err, "count guest usage")
		}
		if n >= c.UsageLimit {
			return &UsageLimitError{Limit: c.UsageLimit, Guest: true}
		}
	}

	return nil
}
