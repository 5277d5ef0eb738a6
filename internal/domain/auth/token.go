package auth

import "context"

// SessionInfo holds the identity data for a validated session token.
type SessionInfo struct {
	ID        string
	TokenHash string
	UserID    string
	Email     string
}

// Repository provides lookup of session tokens by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*SessionInfo, error)
}
