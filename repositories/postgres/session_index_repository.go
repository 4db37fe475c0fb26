package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/upb/identity-core/repositories"
	"go.uber.org/zap"
)

// SessionIndexRepository implements the repositories.SessionIndexRepository
// interface against the public-schema session_index table.
type SessionIndexRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSessionIndexRepository creates a new session index repository
func NewSessionIndexRepository(db *DB, logger *zap.Logger) repositories.SessionIndexRepository {
	return &SessionIndexRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert records or replaces the schema for a token hash
func (r *SessionIndexRepository) Upsert(ctx context.Context, tokenHash string, userID uuid.UUID, schema string) error {
	query := `
		INSERT INTO session_index (token_hash, user_id, schema_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE
		SET user_id = EXCLUDED.user_id, schema_name = EXCLUDED.schema_name
	`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, tokenHash, userID, schema); err != nil {
		return fmt.Errorf("failed to upsert session index entry: %w", err)
	}

	r.logger.Debug("session index entry upserted",
		zap.String("user_id", userID.String()),
		zap.String("schema", schema),
	)
	return nil
}

// Lookup returns the schema recorded for a token hash
func (r *SessionIndexRepository) Lookup(ctx context.Context, tokenHash string) (string, error) {
	query := `SELECT schema_name FROM session_index WHERE token_hash = $1`

	executor := GetExecutor(ctx, r.db)
	var schema string
	err := executor.QueryRowContext(ctx, query, tokenHash).Scan(&schema)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("session index entry: %w", repositories.ErrNotFound)
		}
		return "", fmt.Errorf("failed to look up session index: %w", err)
	}

	return schema, nil
}

// DeleteForUser removes all index entries for the user
func (r *SessionIndexRepository) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM session_index WHERE user_id = $1`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete session index entries: %w", err)
	}

	r.logger.Debug("session index entries deleted", zap.String("user_id", userID.String()))
	return nil
}
