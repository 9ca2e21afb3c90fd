package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/finance-api/internal/domain"
	"github.com/phrazzld/finance-api/internal/platform/logger"
	"github.com/phrazzld/finance-api/internal/redact"
	"github.com/phrazzld/finance-api/internal/store"
)

// RecordInput is the caller-supplied part of a new record. The owner is not
// part of it; it always comes from the authenticated identity.
type RecordInput struct {
	Type        domain.RecordType
	Value       float64
	Description string
}

// RecordService exposes records scoped to their owner. A record owned by
// someone else behaves exactly like one that does not exist.
type RecordService interface {
	Create(ctx context.Context, ownerID uuid.UUID, input RecordInput) (*domain.Record, error)

	// ListOwned returns the owner's records in creation order.
	ListOwned(ctx context.Context, ownerID uuid.UUID) ([]*domain.Record, error)

	// Update applies patch to an owned record. A patch that names an owner is
	// rejected with ErrInvalidInput before any lookup.
	Update(ctx context.Context, ownerID, recordID uuid.UUID, patch domain.RecordPatch) (*domain.Record, error)

	// Delete removes an owned record and returns it.
	Delete(ctx context.Context, ownerID, recordID uuid.UUID) (*domain.Record, error)
}

// RecordServiceImpl implements RecordService.
type RecordServiceImpl struct {
	records store.RecordStore
	db      *sql.DB
	logger  *slog.Logger
}

var _ RecordService = (*RecordServiceImpl)(nil)

// NewRecordService creates a RecordService. When db is non-nil, the
// read-then-write operations run in a transaction on it.
func NewRecordService(records store.RecordStore, db *sql.DB, logger *slog.Logger) *RecordServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordServiceImpl{
		records: records,
		db:      db,
		logger:  logger.With(slog.String("component", "record_service")),
	}
}

func (s *RecordServiceImpl) inTx(ctx context.Context, fn func(records store.RecordStore) error) error {
	if s.db == nil {
		return fn(s.records)
	}
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(s.records.WithTx(tx))
	})
}

// Create implements RecordService.Create.
func (s *RecordServiceImpl) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	input RecordInput,
) (*domain.Record, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	record, err := domain.NewRecord(ownerID, input.Type, input.Value, input.Description)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := s.records.Create(ctx, record); err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrUnauthenticated
		}
		log.Error("failed to create record",
			slog.String("user_id", ownerID.String()),
			slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	return record, nil
}

// ListOwned implements RecordService.ListOwned.
func (s *RecordServiceImpl) ListOwned(ctx context.Context, ownerID uuid.UUID) ([]*domain.Record, error) {
	records, err := s.records.ListByOwner(ctx, ownerID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list records",
			slog.String("user_id", ownerID.String()),
			slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}

// Update implements RecordService.Update.
func (s *RecordServiceImpl) Update(
	ctx context.Context,
	ownerID, recordID uuid.UUID,
	patch domain.RecordPatch,
) (*domain.Record, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := patch.Validate(); err != nil {
		log.Debug("record patch rejected",
			slog.String("record_id", recordID.String()),
			slog.String("reason", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	var updated *domain.Record
	err := s.inTx(ctx, func(records store.RecordStore) error {
		record, err := records.GetByIDAndOwner(ctx, recordID, ownerID)
		if err != nil {
			return err
		}
		patch.Apply(record)
		if err := records.Update(ctx, record); err != nil {
			return err
		}
		updated = record
		return nil
	})
	if err != nil {
		return nil, s.mapStoreError(ctx, "update", recordID, err)
	}

	log.Debug("record updated", slog.String("record_id", recordID.String()))
	return updated, nil
}

// Delete implements RecordService.Delete.
func (s *RecordServiceImpl) Delete(ctx context.Context, ownerID, recordID uuid.UUID) (*domain.Record, error) {
	var deleted *domain.Record
	err := s.inTx(ctx, func(records store.RecordStore) error {
		record, err := records.GetByIDAndOwner(ctx, recordID, ownerID)
		if err != nil {
			return err
		}
		if err := records.Delete(ctx, recordID, ownerID); err != nil {
			return err
		}
		deleted = record
		return nil
	})
	if err != nil {
		return nil, s.mapStoreError(ctx, "delete", recordID, err)
	}

	return deleted, nil
}

func (s *RecordServiceImpl) mapStoreError(ctx context.Context, op string, recordID uuid.UUID, err error) error {
	switch {
	case store.IsNotFoundError(err):
		return ErrNotFound
	case errors.Is(err, domain.ErrValidation):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Error("record operation failed",
		slog.String("operation", op),
		slog.String("record_id", recordID.String()),
		slog.String("error", redact.Error(err)))
	return fmt.Errorf("failed to %s record: %w", op, err)
}
