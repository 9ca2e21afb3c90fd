// Package mocks provides hand-written mocks of the store and service
// interfaces for tests.
//
// Most mocks use function fields: set only the methods a test cares about and
// the rest fall back to the struct's default values. TestifyMockUserStore uses
// testify/mock for tests that need call expectations.
//
//	tokens := &mocks.MockTokenService{
//		ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
//			return nil, auth.ErrInvalidToken
//		},
//	}
package mocks
