package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/finance-api/internal/domain"
	"github.com/phrazzld/finance-api/internal/platform/logger"
	"github.com/phrazzld/finance-api/internal/redact"
	"github.com/phrazzld/finance-api/internal/store"
)

// PostgresRecordStore implements store.RecordStore.
type PostgresRecordStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRecordStore creates a record store on db.
func NewPostgresRecordStore(db store.DBTX, logger *slog.Logger) *PostgresRecordStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRecordStore{
		db:     db,
		logger: logger.With(slog.String("component", "record_store")),
	}
}

var _ store.RecordStore = (*PostgresRecordStore)(nil)

// WithTx returns a store that runs every query on tx.
func (s *PostgresRecordStore) WithTx(tx *sql.Tx) store.RecordStore {
	return &PostgresRecordStore{db: tx, logger: s.logger}
}

// Create implements store.RecordStore.Create.
func (s *PostgresRecordStore) Create(ctx context.Context, record *domain.Record) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("record validation failed during create",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()))
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (id, user_id, type, value, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		record.ID,
		record.UserID,
		string(record.Type),
		record.Value,
		record.Description,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("record owner does not exist",
				slog.String("record_id", record.ID.String()),
				slog.String("user_id", record.UserID.String()))
			return store.ErrUserNotFound
		}
		log.Error("failed to create record",
			slog.String("record_id", record.ID.String()),
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("record", "create", "insert failed", MapError(err))
	}

	log.Info("record created",
		slog.String("record_id", record.ID.String()),
		slog.String("user_id", record.UserID.String()),
		slog.String("type", string(record.Type)))
	return nil
}

const selectRecord = `SELECT id, user_id, type, value, description, created_at, updated_at FROM records`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.Record, error) {
	var r domain.Record
	var recordType string
	if err := row.Scan(
		&r.ID,
		&r.UserID,
		&recordType,
		&r.Value,
		&r.Description,
		&r.CreatedAt,
		&r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	r.Type = domain.RecordType(recordType)
	return &r, nil
}

// ListByOwner implements store.RecordStore.ListByOwner.
func (s *PostgresRecordStore) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
) (records []*domain.Record, err error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, selectRecord+` WHERE user_id = $1 ORDER BY seq`, ownerID)
	if err != nil {
		log.Error("failed to list records",
			slog.String("user_id", ownerID.String()),
			slog.String("error", redact.Error(err)))
		return nil, store.NewStoreError("record", "list", "query failed", MapError(err))
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = store.NewStoreError("record", "list", "close rows", cerr)
		}
	}()

	records = []*domain.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, store.NewStoreError("record", "list", "scan failed", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("record", "list", "iteration failed", MapError(err))
	}

	log.Debug("records listed",
		slog.String("user_id", ownerID.String()),
		slog.Int("count", len(records)))
	return records, nil
}

// GetByIDAndOwner implements store.RecordStore.GetByIDAndOwner.
func (s *PostgresRecordStore) GetByIDAndOwner(
	ctx context.Context,
	id, ownerID uuid.UUID,
) (*domain.Record, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx, selectRecord+` WHERE id = $1 AND user_id = $2`, id, ownerID)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("record not found", slog.String("record_id", id.String()))
			return nil, store.ErrRecordNotFound
		}
		log.Error("failed to get record",
			slog.String("record_id", id.String()),
			slog.String("error", redact.Error(err)))
		return nil, store.NewStoreError("record", "get", "query failed", MapError(err))
	}
	return record, nil
}

// Update implements store.RecordStore.Update. The owner column is part of
// the filter and is never written.
func (s *PostgresRecordStore) Update(ctx context.Context, record *domain.Record) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE records SET type = $3, value = $4, description = $5, updated_at = $6
		WHERE id = $1 AND user_id = $2
	`,
		record.ID,
		record.UserID,
		string(record.Type),
		record.Value,
		record.Description,
		record.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update record",
			slog.String("record_id", record.ID.String()),
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("record", "update", "update failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrRecordNotFound); err != nil {
		return err
	}

	log.Info("record updated", slog.String("record_id", record.ID.String()))
	return nil
}

// Delete implements store.RecordStore.Delete.
func (s *PostgresRecordStore) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		log.Error("failed to delete record",
			slog.String("record_id", id.String()),
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("record", "delete", "delete failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrRecordNotFound); err != nil {
		return err
	}

	log.Info("record deleted", slog.String("record_id", id.String()))
	return nil
}
