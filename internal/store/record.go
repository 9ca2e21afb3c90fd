package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/finance-api/internal/domain"
)

// RecordStore persists financial records. Lookups, updates and deletes all
// filter by record id AND owner id; a miss returns ErrRecordNotFound.
type RecordStore interface {
	// Create saves a new record. The record must already be valid.
	Create(ctx context.Context, record *domain.Record) error

	// ListByOwner returns the owner's records in insertion order.
	// The result is never nil.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Record, error)

	GetByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Record, error)

	// Update saves type, value, description and updated_at of an owned record.
	Update(ctx context.Context, record *domain.Record) error

	Delete(ctx context.Context, id, ownerID uuid.UUID) error

	WithTx(tx *sql.Tx) RecordStore
}
