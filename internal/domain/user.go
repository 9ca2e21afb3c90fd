package domain

import (
	"errors"
	"net/mail"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User validation errors. All of them satisfy errors.Is(err, ErrValidation).
var (
	ErrEmptyUserID         = NewValidationError("id", "cannot be empty", nil)
	ErrEmptyEmail          = NewValidationError("email", "cannot be empty", nil)
	ErrInvalidEmail        = NewValidationError("email", "must be a valid email address", nil)
	ErrWeakPassword        = NewValidationError("password", "must be at least 8 characters long and contain lowercase, uppercase, number and symbol characters", nil)
	ErrPasswordTooLong     = NewValidationError("password", "must be at most 72 bytes long", nil)
	ErrEmptyHashedPassword = NewValidationError("password", "cannot be empty", nil)
)

// Password length limits. bcrypt ignores everything past 72 bytes.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// User is a registered identity. Tokens lists the session tokens that are
// currently valid for the user, oldest first; a token stops authenticating
// the moment it is removed from this list.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // Plaintext, only set between a mutation and the next save
	HashedPassword string    `json:"-"`
	Tokens         []string  `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given email and plaintext password.
// The email is normalized; the password must be hashed (HashPassword) before the
// user is stored.
func NewUser(email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Email:     NormalizeEmail(email),
		Password:  password,
		Tokens:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	if !ValidateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	if u.Password != "" {
		return ValidatePasswordStrength(u.Password)
	}

	// Stored users carry only the hash
	if u.HashedPassword == "" {
		return ErrEmptyHashedPassword
	}

	return nil
}

// HashPassword replaces the plaintext Password with its bcrypt hash.
// It is a no-op when no plaintext is set, so saving a user whose password did
// not change never rehashes it.
func (u *User) HashPassword(cost int) error {
	if u.Password == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
	if err != nil {
		return err
	}

	u.HashedPassword = string(hash)
	u.Password = ""
	return nil
}

// HasToken reports whether token is currently valid for the user.
func (u *User) HasToken(token string) bool {
	return slices.Contains(u.Tokens, token)
}

// AddToken appends token to the user's valid tokens.
func (u *User) AddToken(token string) {
	u.Tokens = append(u.Tokens, token)
}

// RemoveToken drops every occurrence of token. Removing an unknown token is a no-op.
func (u *User) RemoveToken(token string) {
	u.Tokens = slices.DeleteFunc(u.Tokens, func(t string) bool { return t == token })
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmailFormat reports whether email is a bare RFC 5322 address
// (no display name, no angle brackets).
func ValidateEmailFormat(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	return at > 0 && strings.Contains(email[at+1:], ".")
}

// ValidatePasswordStrength requires at least MinPasswordLength characters with one
// lowercase letter, one uppercase letter, one digit and one symbol.
func ValidatePasswordStrength(password string) error {
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if len([]rune(password)) < MinPasswordLength {
		return ErrWeakPassword
	}

	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			symbol = true
		}
	}

	if !lower || !upper || !digit || !symbol {
		return ErrWeakPassword
	}
	return nil
}

// IsPasswordMismatch reports whether err is bcrypt's mismatch error.
func IsPasswordMismatch(err error) bool {
	return errors.Is(err, bcrypt.ErrMismatchedHashAndPassword)
}
