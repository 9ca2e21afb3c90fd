package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/finance-api/internal/domain"
	"github.com/phrazzld/finance-api/internal/platform/logger"
	"github.com/phrazzld/finance-api/internal/redact"
	"github.com/phrazzld/finance-api/internal/store"
)

// PostgresUserStore implements store.UserStore. Tokens live in the
// user_tokens table, one row per valid token.
type PostgresUserStore struct {
	db         store.DBTX
	bcryptCost int
	logger     *slog.Logger
}

// NewPostgresUserStore creates a user store on db. If logger is nil the
// default logger is used.
func NewPostgresUserStore(db store.DBTX, bcryptCost int, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:         db,
		bcryptCost: bcryptCost,
		logger:     logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx returns a store that runs every query on tx.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{
		db:         tx,
		bcryptCost: s.bcryptCost,
		logger:     s.logger,
	}
}

// atomically runs fn in a transaction. When the store is already bound to a
// transaction, fn runs on it and the caller owns commit and rollback.
func (s *PostgresUserStore) atomically(ctx context.Context, fn func(q store.DBTX) error) error {
	db, ok := s.db.(*sql.DB)
	if !ok {
		return fn(s.db)
	}
	return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(tx)
	})
}

// Create implements store.UserStore.Create.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	if err := user.HashPassword(s.bcryptCost); err != nil {
		log.Error("failed to hash password", slog.String("user_id", user.ID.String()))
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err := s.atomically(ctx, func(q store.DBTX) error {
		_, err := q.ExecContext(ctx, `
			INSERT INTO users (id, email, hashed_password, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`, user.ID, user.Email, user.HashedPassword, user.CreatedAt, user.UpdatedAt)
		if err != nil {
			return err
		}

		for _, token := range user.Tokens {
			if err := insertToken(ctx, q, user.ID, token); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("email already registered", slog.String("user_id", user.ID.String()))
			return store.ErrEmailExists
		}
		log.Error("failed to create user",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", user.ID.String()))
		return store.NewStoreError("user", "create", "insert failed", MapError(err))
	}

	log.Info("user created", slog.String("user_id", user.ID.String()))
	return nil
}

const selectUser = `SELECT u.id, u.email, u.hashed_password, u.created_at, u.updated_at FROM users u`

// GetByID implements store.UserStore.GetByID.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, "get", selectUser+` WHERE u.id = $1`, id)
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, "get_by_email", selectUser+` WHERE u.email = $1`, domain.NormalizeEmail(email))
}

// GetByIDWithToken implements store.UserStore.GetByIDWithToken. The id and
// the token are matched in the same query.
func (s *PostgresUserStore) GetByIDWithToken(
	ctx context.Context,
	id uuid.UUID,
	token string,
) (*domain.User, error) {
	return s.getOne(ctx, "get_by_token", selectUser+`
		WHERE u.id = $1
		  AND EXISTS (SELECT 1 FROM user_tokens t WHERE t.user_id = u.id AND t.token = $2)
	`, id, token)
}

func (s *PostgresUserStore) getOne(ctx context.Context, op, query string, args ...any) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found", slog.String("operation", op))
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user",
			slog.String("operation", op),
			slog.String("error", redact.Error(err)))
		return nil, store.NewStoreError("user", op, "query failed", MapError(err))
	}

	tokens, err := loadTokens(ctx, s.db, user.ID)
	if err != nil {
		log.Error("failed to load user tokens",
			slog.String("user_id", user.ID.String()),
			slog.String("error", redact.Error(err)))
		return nil, store.NewStoreError("user", op, "token query failed", MapError(err))
	}
	user.Tokens = tokens

	return &user, nil
}

func loadTokens(ctx context.Context, q store.DBTX, userID uuid.UUID) (tokens []string, err error) {
	rows, err := q.QueryContext(ctx,
		`SELECT token FROM user_tokens WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	tokens = []string{}
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

func insertToken(ctx context.Context, q store.DBTX, userID uuid.UUID, token string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO user_tokens (user_id, token, created_at) VALUES ($1, $2, $3)`,
		userID, token, time.Now().UTC())
	return err
}

// AddToken implements store.UserStore.AddToken.
func (s *PostgresUserStore) AddToken(ctx context.Context, userID uuid.UUID, token string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := insertToken(ctx, s.db, userID, token); err != nil {
		if IsForeignKeyViolation(err) {
			return store.ErrUserNotFound
		}
		log.Error("failed to add token",
			slog.String("user_id", userID.String()),
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("user", "add_token", "insert failed", MapError(err))
	}

	log.Debug("token added", slog.String("user_id", userID.String()))
	return nil
}

// RemoveToken implements store.UserStore.RemoveToken.
func (s *PostgresUserStore) RemoveToken(ctx context.Context, userID uuid.UUID, token string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM user_tokens WHERE user_id = $1 AND token = $2`, userID, token)
	if err != nil {
		log.Error("failed to remove token",
			slog.String("user_id", userID.String()),
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("user", "remove_token", "delete failed", MapError(err))
	}

	log.Debug("token removed", slog.String("user_id", userID.String()))
	return nil
}

// Update implements store.UserStore.Update. Tokens are managed only through
// AddToken and RemoveToken.
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user.Email = domain.NormalizeEmail(user.Email)
	if err := user.Validate(); err != nil {
		return err
	}
	if err := user.HashPassword(s.bcryptCost); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET email = $2, hashed_password = $3, updated_at = $4
		WHERE id = $1
	`, user.ID, user.Email, user.HashedPassword, user.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrEmailExists
		}
		log.Error("failed to update user",
			slog.String("user_id", user.ID.String()),
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("user", "update", "update failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	log.Info("user updated", slog.String("user_id", user.ID.String()))
	return nil
}

// Delete implements store.UserStore.Delete. Tokens and records go with the
// user through ON DELETE CASCADE.
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete user",
			slog.String("user_id", id.String()),
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("user", "delete", "delete failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	log.Info("user deleted", slog.String("user_id", id.String()))
	return nil
}
