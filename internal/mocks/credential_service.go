package mocks

import (
	"context"

	"github.com/phrazzld/finance-api/internal/domain"
	"github.com/phrazzld/finance-api/internal/service"
)

// MockCredentialService implements service.CredentialService with function
// fields. Unset functions return Err.
type MockCredentialService struct {
	RegisterFn               func(ctx context.Context, email, password string) (*domain.User, string, error)
	AuthenticateByPasswordFn func(ctx context.Context, email, password string) (*domain.User, error)
	IssueTokenFn             func(ctx context.Context, user *domain.User) (string, error)
	RevokeTokenFn            func(ctx context.Context, user *domain.User, token string) error
	LoginFn                  func(ctx context.Context, email, password string) (*domain.User, string, error)
	AuthenticateFn           func(ctx context.Context, token string) (*domain.User, error)

	Err error
}

var _ service.CredentialService = (*MockCredentialService)(nil)

// Register implements service.CredentialService.
func (m *MockCredentialService) Register(ctx context.Context, email, password string) (*domain.User, string, error) {
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, email, password)
	}
	return nil, "", m.Err
}

// AuthenticateByPassword implements service.CredentialService.
func (m *MockCredentialService) AuthenticateByPassword(
	ctx context.Context,
	email, password string,
) (*domain.User, error) {
	if m.AuthenticateByPasswordFn != nil {
		return m.AuthenticateByPasswordFn(ctx, email, password)
	}
	return nil, m.Err
}

// IssueToken implements service.CredentialService.
func (m *MockCredentialService) IssueToken(ctx context.Context, user *domain.User) (string, error) {
	if m.IssueTokenFn != nil {
		return m.IssueTokenFn(ctx, user)
	}
	return "", m.Err
}

// RevokeToken implements service.CredentialService.
func (m *MockCredentialService) RevokeToken(ctx context.Context, user *domain.User, token string) error {
	if m.RevokeTokenFn != nil {
		return m.RevokeTokenFn(ctx, user, token)
	}
	return m.Err
}

// Login implements service.CredentialService.
func (m *MockCredentialService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	if m.LoginFn != nil {
		return m.LoginFn(ctx, email, password)
	}
	return nil, "", m.Err
}

// Authenticate implements service.CredentialService.
func (m *MockCredentialService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx, token)
	}
	return nil, m.Err
}
