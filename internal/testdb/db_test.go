package testdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTestDatabaseURL(t *testing.T) {
	t.Run("prefers DATABASE_URL", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://primary")
		t.Setenv("FINANCE_TEST_DB_URL", "postgres://fallback")
		assert.Equal(t, "postgres://primary", GetTestDatabaseURL())
		assert.True(t, IsIntegrationTestEnvironment())
	})

	t.Run("falls back to FINANCE_TEST_DB_URL", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("FINANCE_TEST_DB_URL", "postgres://fallback")
		assert.Equal(t, "postgres://fallback", GetTestDatabaseURL())
	})

	t.Run("nothing configured", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("FINANCE_TEST_DB_URL", "")
		assert.Empty(t, GetTestDatabaseURL())
		assert.False(t, IsIntegrationTestEnvironment())
	})
}
