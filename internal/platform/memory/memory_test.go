package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/finance-api/internal/domain"
	"github.com/phrazzld/finance-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUser(t *testing.T, email string) *domain.User {
	t.Helper()
	u, err := domain.NewUser(email, "Str0ng!Pass")
	require.NoError(t, err)
	return u
}

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	users := New(bcrypt.MinCost).Users()

	alice := newUser(t, "alice@example.com")
	alice.AddToken("t1")
	require.NoError(t, users.Create(ctx, alice))
	assert.Empty(t, alice.Password)
	assert.NotEmpty(t, alice.HashedPassword)

	t.Run("duplicate email", func(t *testing.T) {
		err := users.Create(ctx, newUser(t, "Alice@Example.com"))
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("lookups", func(t *testing.T) {
		got, err := users.GetByEmail(ctx, " ALICE@example.com ")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)

		_, err = users.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("tokens", func(t *testing.T) {
		require.NoError(t, users.AddToken(ctx, alice.ID, "t2"))

		got, err := users.GetByIDWithToken(ctx, alice.ID, "t1")
		require.NoError(t, err)
		assert.Equal(t, []string{"t1", "t2"}, got.Tokens)

		require.NoError(t, users.RemoveToken(ctx, alice.ID, "t1"))
		require.NoError(t, users.RemoveToken(ctx, alice.ID, "t1"))

		_, err = users.GetByIDWithToken(ctx, alice.ID, "t1")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		_, err = users.GetByIDWithToken(ctx, alice.ID, "t2")
		assert.NoError(t, err)

		assert.ErrorIs(t, users.AddToken(ctx, uuid.New(), "x"), store.ErrUserNotFound)
	})

	t.Run("returned users are copies", func(t *testing.T) {
		got, err := users.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		got.AddToken("forged")

		_, err = users.GetByIDWithToken(ctx, alice.ID, "forged")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("update email", func(t *testing.T) {
		got, err := users.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		got.Email = "alice2@example.com"
		require.NoError(t, users.Update(ctx, got))

		_, err = users.GetByEmail(ctx, "alice@example.com")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		_, err = users.GetByEmail(ctx, "alice2@example.com")
		assert.NoError(t, err)
	})
}

func TestRecordStore(t *testing.T) {
	ctx := context.Background()
	s := New(bcrypt.MinCost)
	users, records := s.Users(), s.Records()

	owner := newUser(t, "owner@example.com")
	other := newUser(t, "other@example.com")
	require.NoError(t, users.Create(ctx, owner))
	require.NoError(t, users.Create(ctx, other))

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		r, err := domain.NewRecord(owner.ID, domain.RecordTypeIncome, float64(i), "")
		require.NoError(t, err)
		require.NoError(t, records.Create(ctx, r))
		ids = append(ids, r.ID)
	}

	listed, err := records.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	for i, r := range listed {
		assert.Equal(t, ids[i], r.ID)
	}

	empty, err := records.ListByOwner(ctx, other.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = records.GetByIDAndOwner(ctx, ids[0], other.ID)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)

	foreign := *listed[0]
	foreign.UserID = other.ID
	assert.ErrorIs(t, records.Update(ctx, &foreign), store.ErrRecordNotFound)
	assert.ErrorIs(t, records.Delete(ctx, ids[0], other.ID), store.ErrRecordNotFound)

	orphan, err := domain.NewRecord(uuid.New(), domain.RecordTypeOutcome, 1, "")
	require.NoError(t, err)
	assert.ErrorIs(t, records.Create(ctx, orphan), store.ErrUserNotFound)

	require.NoError(t, users.Delete(ctx, owner.ID))
	listed, err = records.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, listed, "records should go with their owner")
}

func TestConcurrentRegistrationSameEmail(t *testing.T) {
	ctx := context.Background()
	users := New(bcrypt.MinCost).Users()

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := domain.NewUser("race@example.com", "Str0ng!Pass")
			if err != nil {
				errs[i] = fmt.Errorf("setup: %w", err)
				return
			}
			errs[i] = users.Create(ctx, u)
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, store.ErrEmailExists)
	}
	assert.Equal(t, 1, created)
}
