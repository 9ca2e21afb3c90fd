package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenService issues and verifies signed session tokens.
type TokenService interface {
	// GenerateToken returns a new signed token for userID. Every call yields a
	// distinct token, even within the same second.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken verifies the signature and algorithm of tokenString and
	// returns its claims, or ErrInvalidToken.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the verified contents of a session token.
type Claims struct {
	UserID   uuid.UUID `json:"uid"`
	Subject  string    `json:"sub"`
	IssuedAt time.Time `json:"iat"`
	ID       string    `json:"jti"`
}
