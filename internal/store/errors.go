package store

import (
	"errors"
	"fmt"
)

// Common store errors. Implementations map their driver errors onto these so
// that callers never depend on a specific database.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate indicates a uniqueness constraint was violated.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity indicates the entity failed validation before being stored.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed indicates the surrounding transaction could not complete.
	ErrTransactionFailed = errors.New("transaction failed")

	ErrUserNotFound   = fmt.Errorf("%w: user", ErrNotFound)
	ErrRecordNotFound = fmt.Errorf("%w: record", ErrNotFound)

	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)
)

// IsNotFoundError reports whether err is any of the not-found errors.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is any of the uniqueness errors.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError adds the entity and operation to a failed store call.
type StoreError struct {
	Entity    string // e.g. "user", "record"
	Operation string // e.g. "create", "update"
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Operation, e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a StoreError.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
