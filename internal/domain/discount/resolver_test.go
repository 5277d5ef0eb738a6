package discount

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCodeRepo struct {
	code       *Code
	err        error
	lookedUp   string
	lookupHits int
}

func (m *mockCodeRepo) FindActiveByCode(_ context.Context, code string) (*Code, error) {
	m.lookedUp = code
	m.lookupHits++
	return m.code, m.err
}

type mockUsageCounter struct {
	userCount   int
	guestCount  int
	err         error
	userCalls   int
	guestCalls  int
	lastUserID  string
	lastEmail   string
	countedCode string
}

func (m *mockUsageCounter) CountByUser(_ context.Context, userID, code string) (int, error) {
	m.userCalls++
	m.lastUserID = userID
	m.countedCode = code
	return m.userCount, m.err
}

func (m *mockUsageCounter) CountByGuestEmail(_ context.Context, email, code string) (int, error) {
	m.guestCalls++
	m.lastEmail = email
	m.countedCode = code
	return m.guestCount, m.err
}

func newTestResolver(codes *mockCodeRepo, usage *mockUsageCounter, now time.Time) *Resolver {
	r := NewResolver(codes, usage)
	r.now = func() time.Time { return now }
	return r
}

func TestResolver_NormalizesCodeBeforeLookup(t *testing.T) {
	stored := &Code{Code: "SAVE10", Active: true, Kind: KindPercentage, Value: dec(10)}
	cart := cartOf(100, Item{ProductID: "p1", Price: dec(100), Quantity: 1})

	for _, raw := range []string{" save10 ", "SAVE10", "Save10", "\tsAvE10\n"} {
		repo := &mockCodeRepo{code: stored}
		r := newTestResolver(repo, &mockUsageCounter{}, time.Now())

		got, err := r.Resolve(context.Background(), raw, cart, Guest(""))
		require.NoError(t, err, "input %q", raw)
		assert.Equal(t, "SAVE10", repo.lookedUp, "input %q", raw)
		assert.Equal(t, "SAVE10", got.Code)
		assert.True(t, dec(10).Equal(got.Amount))
	}
}

func TestResolver_UnknownCode(t *testing.T) {
	r := newTestResolver(&mockCodeRepo{err: ErrInvalidCode}, &mockUsageCounter{}, time.Now())

	_, err := r.Resolve(context.Background(), "BOGUS", cartOf(100), Guest(""))
	require.ErrorIs(t, err, ErrInvalidCode)
}

func TestResolver_StoreFailureIsNotARejection(t *testing.T) {
	storeErr := errors.New("connection refused")
	r := newTestResolver(&mockCodeRepo{err: storeErr}, &mockUsageCounter{}, time.Now())

	_, err := r.Resolve(context.Background(), "SAVE10", cartOf(100), Guest(""))
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrInvalidCode)
}

func TestResolver_TemporalWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)
	cart := cartOf(100, Item{ProductID: "p1", Price: dec(100), Quantity: 1})

	tests := []struct {
		name       string
		validFrom  *time.Time
		validUntil *time.Time
		wantErr    error
	}{
		{name: "open-ended code is valid", wantErr: nil},
		{name: "not yet valid", validFrom: &future, wantErr: ErrNotYetValid},
		{name: "expired", validUntil: &past, wantErr: ErrExpired},
		{name: "inside window", validFrom: &past, validUntil: &future, wantErr: nil},
		// Bounds are inclusive: valid exactly at the edges.
		{name: "valid exactly at valid_from", validFrom: &now, wantErr: nil},
		{name: "valid exactly at valid_until", validUntil: &now, wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockCodeRepo{code: &Code{
				Code: "WINDOW", Active: true, Kind: KindPercentage, Value: dec(10),
				ValidFrom: tt.validFrom, ValidUntil: tt.validUntil,
			}}
			r := newTestResolver(repo, &mockUsageCounter{}, now)

			_, err := r.Resolve(context.Background(), "WINDOW", cart, Guest(""))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestResolver_ExpiredJustPastBoundary(t *testing.T) {
	until := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := &mockCodeRepo{code: &Code{
		Code: "EDGE", Active: true, Kind: KindFixed, Value: dec(5), ValidUntil: &until,
	}}
	r := newTestResolver(repo, &mockUsageCounter{}, until.Add(time.Microsecond))

	_, err := r.Resolve(context.Background(), "EDGE", cartOf(100), Guest(""))
	require.ErrorIs(t, err, ErrExpired)
}

func TestResolver_UsageLimit(t *testing.T) {
	limited := &Code{Code: "ONCE", Active: true, Kind: KindFixed, Value: dec(5), UsageLimit: 3}
	cart := cartOf(100, Item{ProductID: "p1", Price: dec(100), Quantity: 1})

	t.Run("user at the limit is rejected with the limit in the message", func(t *testing.T) {
		usage := &mockUsageCounter{userCount: 3}
		r := newTestResolver(&mockCodeRepo{code: limited}, usage, time.Now())

		_, err := r.Resolve(context.Background(), "ONCE", cart, User("u-42"))
		var limitErr *UsageLimitError
		require.ErrorAs(t, err, &limitErr)
		assert.Equal(t, 3, limitErr.Limit)
		assert.False(t, limitErr.Guest)
		assert.Contains(t, limitErr.Error(), "You have already used this discount code 3 times.")
		assert.Equal(t, "u-42", usage.lastUserID)
		assert.Equal(t, "ONCE", usage.countedCode)
	})

	t.Run("user one below the limit succeeds", func(t *testing.T) {
		usage := &mockUsageCounter{userCount: 2}
		r := newTestResolver(&mockCodeRepo{code: limited}, usage, time.Now())

		_, err := r.Resolve(context.Background(), "ONCE", cart, User("u-42"))
		require.NoError(t, err)
	})

	t.Run("guest with email is scoped by email", func(t *testing.T) {
		usage := &mockUsageCounter{guestCount: 3}
		r := newTestResolver(&mockCodeRepo{code: limited}, usage, time.Now())

		_, err := r.Resolve(context.Background(), "ONCE", cart, Guest("amal@example.com"))
		var limitErr *UsageLimitError
		require.ErrorAs(t, err, &limitErr)
		assert.True(t, limitErr.Guest)
		assert.Contains(t, limitErr.Error(), "This email has already used this discount code 3 times.")
		assert.Equal(t, "amal@example.com", usage.lastEmail)
	})

	t.Run("guest without email bypasses the check", func(t *testing.T) {
		usage := &mockUsageCounter{userCount: 99, guestCount: 99}
		r := newTestResolver(&mockCodeRepo{code: limited}, usage, time.Now())

		_, err := r.Resolve(context.Background(), "ONCE", cart, Guest(""))
		require.NoError(t, err)
		assert.Zero(t, usage.userCalls)
		assert.Zero(t, usage.guestCalls)
	})

	t.Run("unlimited code never counts", func(t *testing.T) {
		unlimited := &Code{Code: "FOREVER", Active: true, Kind: KindFixed, Value: dec(5)}
		usage := &mockUsageCounter{userCount: 9999}
		r := newTestResolver(&mockCodeRepo{code: unlimited}, usage, time.Now())

		_, err := r.Resolve(context.Background(), "FOREVER", cart, User("u-42"))
		require.NoError(t, err)
		assert.Zero(t, usage.userCalls)
	})

	t.Run("counter failure surfaces as infrastructure error", func(t *testing.T) {
		usage := &mockUsageCounter{err: errors.New("query timeout")}
		r := newTestResolver(&mockCodeRepo{code: limited}, usage, time.Now())

		_, err := r.Resolve(context.Background(), "ONCE", cart, User("u-42"))
		require.Error(t, err)
		var limitErr *UsageLimitError
		assert.False(t, errors.As(err, &limitErr))
	})
}

func TestResolver_MinOrderAmount(t *testing.T) {
	repo := &mockCodeRepo{code: &Code{
		Code: "SPEND100", Active: true, Kind: KindPercentage, Value: dec(10), MinPurchase: dec(100),
	}}
	r := newTestResolver(repo, &mockUsageCounter{}, time.Now())

	_, err := r.Resolve(context.Background(), "SPEND100", cartOf(63), Guest(""))
	var minErr *MinOrderError
	require.ErrorAs(t, err, &minErr)
	assert.True(t, dec(100).Equal(minErr.Minimum))
	assert.True(t, dec(37).Equal(minErr.Remaining), "remaining %s", minErr.Remaining)

	// Exactly at the minimum passes.
	_, err = r.Resolve(context.Background(), "SPEND100", cartOf(100), Guest(""))
	require.NoError(t, err)
}

func TestResolver_Idempotent(t *testing.T) {
	repo := &mockCodeRepo{code: &Code{
		Code: "SAVE10", Active: true, Kind: KindPercentage, Value: dec(10),
	}}
	usage := &mockUsageCounter{}
	r := newTestResolver(repo, usage, time.Now())
	cart := cartOf(250, Item{ProductID: "p1", Price: dec(125), Quantity: 2})

	first, err := r.Resolve(context.Background(), "SAVE10", cart, User("u-1"))
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "SAVE10", cart, User("u-1"))
	require.NoError(t, err)

	assert.True(t, first.Amount.Equal(second.Amount))
	assert.Equal(t, first.Kind, second.Kind)
	assert.Equal(t, first.Details, second.Details)
	// The resolver performs reads only.
	assert.Equal(t, 2, repo.lookupHits)
}
