package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/finance-api/internal/domain"
	"github.com/phrazzld/finance-api/internal/store"
)

// MockRecordStore implements store.RecordStore with function fields.
// Unset functions return Err.
type MockRecordStore struct {
	CreateFn          func(ctx context.Context, record *domain.Record) error
	ListByOwnerFn     func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Record, error)
	GetByIDAndOwnerFn func(ctx context.Context, id, ownerID uuid.UUID) (*domain.Record, error)
	UpdateFn          func(ctx context.Context, record *domain.Record) error
	DeleteFn          func(ctx context.Context, id, ownerID uuid.UUID) error

	Err error
}

var _ store.RecordStore = (*MockRecordStore)(nil)

// Create implements store.RecordStore.
func (m *MockRecordStore) Create(ctx context.Context, record *domain.Record) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, record)
	}
	return m.Err
}

// ListByOwner implements store.RecordStore.
func (m *MockRecordStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Record, error) {
	if m.ListByOwnerFn != nil {
		return m.ListByOwnerFn(ctx, ownerID)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return []*domain.Record{}, nil
}

// GetByIDAndOwner implements store.RecordStore.
func (m *MockRecordStore) GetByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Record, error) {
	if m.GetByIDAndOwnerFn != nil {
		return m.GetByIDAndOwnerFn(ctx, id, ownerID)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return nil, store.ErrRecordNotFound
}

// Update implements store.RecordStore.
func (m *MockRecordStore) Update(ctx context.Context, record *domain.Record) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, record)
	}
	return m.Err
}

// Delete implements store.RecordStore.
func (m *MockRecordStore) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id, ownerID)
	}
	return m.Err
}

// WithTx returns the mock itself.
func (m *MockRecordStore) WithTx(*sql.Tx) store.RecordStore { return m }
