package mocks

import "github.com/phrazzld/finance-api/internal/service/auth"

// MockPasswordVerifier implements auth.PasswordVerifier and counts calls.
type MockPasswordVerifier struct {
	CompareFn func(hashedPassword, password string) error
	Err       error
	Calls     int
}

var _ auth.PasswordVerifier = (*MockPasswordVerifier)(nil)

// Compare implements auth.PasswordVerifier.
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.Calls++
	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	return m.Err
}
