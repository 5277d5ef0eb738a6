package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rawanamrrr/alanod-api/internal/domain/auth"
)

const getSessionByHashSQL = `SELECT id, token_hash, user_id, email
	FROM session_tokens WHERE token_hash = $1 AND active = TRUE`

var _ auth.Repository = (*SessionTokenRepository)(nil)

// SessionTokenRepository provides session token lookups backed by PostgreSQL.
type SessionTokenRepository struct {
	pool *pgxpool.Pool
}

// NewSessionTokenRepository returns a SessionTokenRepository that uses the
// given pool.
func NewSessionTokenRepository(pool *pgxpool.Pool) *SessionTokenRepository {
	return &SessionTokenRepository{pool: pool}
}

// FindByHash looks up an active session token by its HMAC-SHA256 hash.
func (r *SessionTokenRepository) FindByHash(ctx context.Context, hash string) (*auth.SessionInfo, error) {
	var info auth.SessionInfo
	err := r.pool.QueryRow(ctx, getSessionByHashSQL, hash).Scan(
		&info.ID, &info.TokenHash, &info.UserID, &info.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session token not found: %w", err)
		}
		return nil, fmt.Errorf("finding session token by hash: %w", err)
	}
	return &info, nil
}
