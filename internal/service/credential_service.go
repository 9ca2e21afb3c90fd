package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/finance-api/internal/domain"
	"github.com/phrazzld/finance-api/internal/platform/logger"
	"github.com/phrazzld/finance-api/internal/redact"
	"github.com/phrazzld/finance-api/internal/service/auth"
	"github.com/phrazzld/finance-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// CredentialService manages identities and their session tokens.
type CredentialService interface {
	// Register creates an identity and its first session token.
	Register(ctx context.Context, email, password string) (*domain.User, string, error)

	// AuthenticateByPassword returns the identity matching email and password.
	// An unknown email and a wrong password both yield ErrInvalidCredentials.
	AuthenticateByPassword(ctx context.Context, email, password string) (*domain.User, error)

	// IssueToken signs a new token, adds it to the user's token set and
	// appends it to user.Tokens.
	IssueToken(ctx context.Context, user *domain.User) (string, error)

	// RevokeToken removes exactly token from the user's token set.
	// Revoking a token that is not present succeeds.
	RevokeToken(ctx context.Context, user *domain.User, token string) error

	// Login is AuthenticateByPassword followed by IssueToken.
	Login(ctx context.Context, email, password string) (*domain.User, string, error)

	// Authenticate resolves a bearer token to its identity. The signature must
	// verify and the token must still be in the identity's token set.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// dummyPassword is hashed once so that logins for unknown emails still
// perform a full bcrypt comparison.
const dummyPassword = "dummy-password-for-timing"

// CredentialServiceImpl implements CredentialService.
type CredentialServiceImpl struct {
	users     store.UserStore
	tokens    auth.TokenService
	verifier  auth.PasswordVerifier
	dummyHash string
	logger    *slog.Logger
}

var _ CredentialService = (*CredentialServiceImpl)(nil)

// NewCredentialService creates a CredentialService. bcryptCost should match
// the cost the user store hashes with.
func NewCredentialService(
	users store.UserStore,
	tokens auth.TokenService,
	verifier auth.PasswordVerifier,
	bcryptCost int,
	logger *slog.Logger,
) *CredentialServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dummyPassword), bcryptCost)
	if err != nil {
		hash, _ = bcrypt.GenerateFromPassword([]byte(dummyPassword), bcrypt.DefaultCost)
	}

	return &CredentialServiceImpl{
		users:     users,
		tokens:    tokens,
		verifier:  verifier,
		dummyHash: string(hash),
		logger:    logger.With(slog.String("component", "credential_service")),
	}
}

// Register implements CredentialService.Register.
func (s *CredentialServiceImpl) Register(
	ctx context.Context,
	email, password string,
) (*domain.User, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, password)
	if err != nil {
		log.Debug("registration rejected", slog.String("reason", err.Error()))
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	user.AddToken(token)

	// The user and its first token are written together
	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case store.IsDuplicateError(err):
			log.Debug("registration with existing email")
			return nil, "", ErrDuplicateIdentity
		case errors.Is(err, domain.ErrValidation):
			return nil, "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		log.Error("failed to create user", slog.String("error", redact.Error(err)))
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, token, nil
}

// AuthenticateByPassword implements CredentialService.AuthenticateByPassword.
func (s *CredentialServiceImpl) AuthenticateByPassword(
	ctx context.Context,
	email, password string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if store.IsNotFoundError(err) {
			_ = s.verifier.Compare(s.dummyHash, password)
			log.Debug("login for unknown email")
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to look up user", slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		if domain.IsPasswordMismatch(err) {
			log.Debug("login with wrong password", slog.String("user_id", user.ID.String()))
		} else {
			// a corrupt stored hash still reads as bad credentials to the caller
			log.Error("password comparison failed",
				slog.String("user_id", user.ID.String()),
				slog.String("error", redact.Error(err)))
		}
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// IssueToken implements CredentialService.IssueToken.
func (s *CredentialServiceImpl) IssueToken(ctx context.Context, user *domain.User) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.users.AddToken(ctx, user.ID, token); err != nil {
		if store.IsNotFoundError(err) {
			return "", ErrUnauthenticated
		}
		log.Error("failed to store token",
			slog.String("user_id", user.ID.String()),
			slog.String("error", redact.Error(err)))
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	user.AddToken(token)

	log.Debug("token issued", slog.String("user_id", user.ID.String()))
	return token, nil
}

// RevokeToken implements CredentialService.RevokeToken.
func (s *CredentialServiceImpl) RevokeToken(ctx context.Context, user *domain.User, token string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.users.RemoveToken(ctx, user.ID, token); err != nil {
		log.Error("failed to revoke token",
			slog.String("user_id", user.ID.String()),
			slog.String("error", redact.Error(err)))
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	user.RemoveToken(token)

	log.Debug("token revoked", slog.String("user_id", user.ID.String()))
	return nil
}

// Login implements CredentialService.Login.
func (s *CredentialServiceImpl) Login(
	ctx context.Context,
	email, password string,
) (*domain.User, string, error) {
	user, err := s.AuthenticateByPassword(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.IssueToken(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate implements CredentialService.Authenticate.
func (s *CredentialServiceImpl) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	claims, err := s.tokens.ValidateToken(ctx, token)
	if err != nil {
		log.Debug("token rejected", slog.String("reason", err.Error()))
		return nil, ErrUnauthenticated
	}

	user, err := s.users.GetByIDWithToken(ctx, claims.UserID, token)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("token not in user's token set", slog.String("user_id", claims.UserID.String()))
			return nil, ErrUnauthenticated
		}
		log.Error("failed to load user for token",
			slog.String("user_id", claims.UserID.String()),
			slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	return user, nil
}
