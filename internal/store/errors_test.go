package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "base not found", err: ErrNotFound, expected: true},
		{name: "user not found", err: ErrUserNotFound, expected: true},
		{name: "record not found", err: ErrRecordNotFound, expected: true},
		{name: "wrapped record not found", err: fmt.Errorf("lookup: %w", ErrRecordNotFound), expected: true},
		{name: "store error wrapping not found", err: NewStoreError("record", "get", "missing", ErrRecordNotFound), expected: true},
		{name: "duplicate", err: ErrEmailExists, expected: false},
		{name: "unrelated", err: errors.New("boom"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "duplicate", err: ErrDuplicate, expected: true},
		{name: "email exists", err: ErrEmailExists, expected: true},
		{name: "wrapped email exists", err: fmt.Errorf("create: %w", ErrEmailExists), expected: true},
		{name: "not found", err: ErrUserNotFound, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDuplicateError(tt.err))
		})
	}
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection reset")

	err := NewStoreError("record", "update", "query failed", cause)
	assert.Equal(t, "update record failed: query failed: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewStoreError("user", "create", "invalid", nil)
	assert.Equal(t, "create user failed: invalid", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
