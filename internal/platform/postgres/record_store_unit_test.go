package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/finance-api/internal/domain"
	"github.com/phrazzld/finance-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var recordColumns = []string{"id", "user_id", "type", "value", "description", "created_at", "updated_at"}

func newMockRecordStore(t *testing.T) (*PostgresRecordStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRecordStore(db, nil), mock
}

func TestPostgresRecordStore_Create(t *testing.T) {
	s, mock := newMockRecordStore(t)

	record, err := domain.NewRecord(uuid.New(), domain.RecordTypeIncome, 100, "salary")
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO records").
		WithArgs(record.ID, record.UserID, "income", 100.0, "salary", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, s.Create(context.Background(), record))

	mock.ExpectExec("INSERT INTO records").
		WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode})
	assert.ErrorIs(t, s.Create(context.Background(), record), store.ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecordStore_ListByOwner(t *testing.T) {
	s, mock := newMockRecordStore(t)
	owner := uuid.New()
	first, second := uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("FROM records WHERE user_id = \\$1 ORDER BY seq").
		WithArgs(owner).
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow(first.String(), owner.String(), "income", 10.0, "a", now, now).
			AddRow(second.String(), owner.String(), "outcome", 2.5, "b", now, now))

	records, err := s.ListByOwner(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, first, records[0].ID)
	assert.Equal(t, domain.RecordTypeOutcome, records[1].Type)
	assert.Equal(t, 2.5, records[1].Value)

	mock.ExpectQuery("FROM records").
		WithArgs(owner).
		WillReturnRows(sqlmock.NewRows(recordColumns))

	records, err = s.ListByOwner(context.Background(), owner)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecordStore_ScopedByOwner(t *testing.T) {
	s, mock := newMockRecordStore(t)
	id, owner := uuid.New(), uuid.New()

	mock.ExpectQuery("WHERE id = \\$1 AND user_id = \\$2").
		WithArgs(id, owner).
		WillReturnRows(sqlmock.NewRows(recordColumns))
	_, err := s.GetByIDAndOwner(context.Background(), id, owner)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)

	record := &domain.Record{ID: id, UserID: owner, Type: domain.RecordTypeIncome, Value: 1}
	mock.ExpectExec("UPDATE records").
		WithArgs(id, owner, "income", 1.0, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, s.Update(context.Background(), record), store.ErrRecordNotFound)

	mock.ExpectExec("DELETE FROM records WHERE id = \\$1 AND user_id = \\$2").
		WithArgs(id, owner).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, s.Delete(context.Background(), id, owner), store.ErrRecordNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
