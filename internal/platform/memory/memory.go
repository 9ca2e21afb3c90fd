// Package memory implements the store interfaces in process memory. Data is
// lost on restart; it backs unit tests and the "memory" database driver.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/finance-api/internal/domain"
	"github.com/phrazzld/finance-api/internal/store"
)

// Store holds users and records behind a single mutex, so every method is
// atomic with respect to every other.
type Store struct {
	mu         sync.Mutex
	bcryptCost int
	users      map[uuid.UUID]*domain.User
	emails     map[string]uuid.UUID
	records    []*domain.Record // insertion order
}

// New creates an empty store that hashes passwords with bcryptCost.
func New(bcryptCost int) *Store {
	return &Store{
		bcryptCost: bcryptCost,
		users:      map[uuid.UUID]*domain.User{},
		emails:     map[string]uuid.UUID{},
	}
}

// Users returns the store.UserStore view.
func (s *Store) Users() *UserStore { return &UserStore{s: s} }

// Records returns the store.RecordStore view.
func (s *Store) Records() *RecordStore { return &RecordStore{s: s} }

func copyUser(u *domain.User) *domain.User {
	c := *u
	c.Tokens = slices.Clone(u.Tokens)
	if c.Tokens == nil {
		c.Tokens = []string{}
	}
	return &c
}

func copyRecord(r *domain.Record) *domain.Record {
	c := *r
	return &c
}

// UserStore implements store.UserStore.
type UserStore struct{ s *Store }

var _ store.UserStore = (*UserStore)(nil)

// WithTx returns the same store; memory writes are already atomic.
func (u *UserStore) WithTx(*sql.Tx) store.UserStore { return u }

// Create implements store.UserStore.Create.
func (u *UserStore) Create(_ context.Context, user *domain.User) error {
	user.Email = domain.NormalizeEmail(user.Email)
	if err := user.Validate(); err != nil {
		return err
	}

	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if _, taken := u.s.emails[user.Email]; taken {
		return store.ErrEmailExists
	}
	if _, taken := u.s.users[user.ID]; taken {
		return fmt.Errorf("%w: user id", store.ErrDuplicate)
	}

	if err := user.HashPassword(u.s.bcryptCost); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	u.s.users[user.ID] = copyUser(user)
	u.s.emails[user.Email] = user.ID
	return nil
}

// GetByID implements store.UserStore.GetByID.
func (u *UserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user, ok := u.s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return copyUser(user), nil
}

// GetByEmail implements store.UserStore.GetByEmail.
func (u *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	id, ok := u.s.emails[domain.NormalizeEmail(email)]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return copyUser(u.s.users[id]), nil
}

// GetByIDWithToken implements store.UserStore.GetByIDWithToken.
func (u *UserStore) GetByIDWithToken(_ context.Context, id uuid.UUID, token string) (*domain.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user, ok := u.s.users[id]
	if !ok || !user.HasToken(token) {
		return nil, store.ErrUserNotFound
	}
	return copyUser(user), nil
}

// AddToken implements store.UserStore.AddToken.
func (u *UserStore) AddToken(_ context.Context, userID uuid.UUID, token string) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user, ok := u.s.users[userID]
	if !ok {
		return store.ErrUserNotFound
	}
	user.AddToken(token)
	return nil
}

// RemoveToken implements store.UserStore.RemoveToken.
func (u *UserStore) RemoveToken(_ context.Context, userID uuid.UUID, token string) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if user, ok := u.s.users[userID]; ok {
		user.RemoveToken(token)
	}
	return nil
}

// Update implements store.UserStore.Update. Tokens are left as stored.
func (u *UserStore) Update(_ context.Context, user *domain.User) error {
	user.Email = domain.NormalizeEmail(user.Email)
	if err := user.Validate(); err != nil {
		return err
	}

	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	existing, ok := u.s.users[user.ID]
	if !ok {
		return store.ErrUserNotFound
	}
	if owner, taken := u.s.emails[user.Email]; taken && owner != user.ID {
		return store.ErrEmailExists
	}

	if err := user.HashPassword(u.s.bcryptCost); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.UpdatedAt = time.Now().UTC()

	delete(u.s.emails, existing.Email)
	existing.Email = user.Email
	existing.HashedPassword = user.HashedPassword
	existing.UpdatedAt = user.UpdatedAt
	u.s.emails[existing.Email] = existing.ID
	return nil
}

// Delete implements store.UserStore.Delete.
func (u *UserStore) Delete(_ context.Context, id uuid.UUID) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user, ok := u.s.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	delete(u.s.emails, user.Email)
	delete(u.s.users, id)
	u.s.records = slices.DeleteFunc(u.s.records, func(r *domain.Record) bool {
		return r.UserID == id
	})
	return nil
}

// RecordStore implements store.RecordStore.
type RecordStore struct{ s *Store }

var _ store.RecordStore = (*RecordStore)(nil)

// WithTx returns the same store.
func (r *RecordStore) WithTx(*sql.Tx) store.RecordStore { return r }

// Create implements store.RecordStore.Create.
func (r *RecordStore) Create(_ context.Context, record *domain.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[record.UserID]; !ok {
		return store.ErrUserNotFound
	}
	if r.indexOf(record.ID, record.UserID) >= 0 {
		return fmt.Errorf("%w: record id", store.ErrDuplicate)
	}
	r.s.records = append(r.s.records, copyRecord(record))
	return nil
}

// indexOf returns the position of the record with id owned by ownerID, or -1.
// The caller must hold the lock.
func (r *RecordStore) indexOf(id, ownerID uuid.UUID) int {
	return slices.IndexFunc(r.s.records, func(rec *domain.Record) bool {
		return rec.ID == id && rec.UserID == ownerID
	})
}

// ListByOwner implements store.RecordStore.ListByOwner.
func (r *RecordStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*domain.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []*domain.Record{}
	for _, rec := range r.s.records {
		if rec.UserID == ownerID {
			out = append(out, copyRecord(rec))
		}
	}
	return out, nil
}

// GetByIDAndOwner implements store.RecordStore.GetByIDAndOwner.
func (r *RecordStore) GetByIDAndOwner(_ context.Context, id, ownerID uuid.UUID) (*domain.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.indexOf(id, ownerID)
	if i < 0 {
		return nil, store.ErrRecordNotFound
	}
	return copyRecord(r.s.records[i]), nil
}

// Update implements store.RecordStore.Update.
func (r *RecordStore) Update(_ context.Context, record *domain.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.indexOf(record.ID, record.UserID)
	if i < 0 {
		return store.ErrRecordNotFound
	}
	stored := r.s.records[i]
	stored.Type = record.Type
	stored.Value = record.Value
	stored.Description = record.Description
	stored.UpdatedAt = record.UpdatedAt
	return nil
}

// Delete implements store.RecordStore.Delete.
func (r *RecordStore) Delete(_ context.Context, id, ownerID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.indexOf(id, ownerID)
	if i < 0 {
		return store.ErrRecordNotFound
	}
	r.s.records = slices.Delete(r.s.records, i, i+1)
	return nil
}
