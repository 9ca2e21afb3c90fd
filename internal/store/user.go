package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/finance-api/internal/domain"
)

// UserStore persists users together with their valid session tokens.
type UserStore interface {
	// Create saves a new user and its initial tokens in one write.
	// A plaintext Password is hashed first and then cleared.
	// Returns ErrEmailExists if the email is already registered.
	Create(ctx context.Context, user *domain.User) error

	// GetByID returns the user with its tokens, or ErrUserNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail looks up a user by normalized email, or returns ErrUserNotFound.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByIDWithToken returns the user only if token is currently one of its
	// valid tokens. Both a missing user and a missing token yield ErrUserNotFound.
	GetByIDWithToken(ctx context.Context, id uuid.UUID, token string) (*domain.User, error)

	// AddToken appends token to the user's valid tokens.
	AddToken(ctx context.Context, userID uuid.UUID, token string) error

	// RemoveToken removes token from the user's valid tokens. Removing a
	// token that is not present is not an error.
	RemoveToken(ctx context.Context, userID uuid.UUID, token string) error

	// Update saves email and password changes. The password is rehashed only
	// when a new plaintext is set.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes the user, its tokens and its records.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a store bound to tx.
	WithTx(tx *sql.Tx) UserStore
}
