package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/upb/identity-core/models"
	"github.com/upb/identity-core/repositories"
	"go.uber.org/zap"
)

// SessionRepository implements the repositories.SessionRepository interface.
// Sessions live in the same schema as their owning user.
type SessionRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB, logger *zap.Logger) repositories.SessionRepository {
	return &SessionRepository{
		db:     db,
		logger: logger,
	}
}

// FindValidByToken retrieves the session matching the raw token joined with
// its owning user. Revoked sessions, expired sessions and soft-deleted users
// all fall through to ErrNotFound.
func (r *SessionRepository) FindValidByToken(ctx context.Context, schema string, token string) (*models.RefreshSession, *models.User, error) {
	query := fmt.Sprintf(`
		SELECT s.id, s.user_id, s.token, s.expires_at, s.revoked, s.created_at,
		       u.id, u.email, u.first_name, u.last_name, u.role, u.company_id,
		       u.two_factor_secret, u.two_factor_enabled, u.created_at, u.updated_at, u.deleted_at
		FROM %s s
		JOIN %s u ON u.id = s.user_id
		WHERE s.token = $1
		  AND s.revoked = false
		  AND s.expires_at > NOW()
		  AND u.deleted_at IS NULL
	`, tableRef(schema, "user_sessions"), tableRef(schema, "users"))

	executor := GetExecutor(ctx, r.db)

	session := &models.RefreshSession{}
	user := &models.User{}
	var companyID uuid.NullUUID
	var twoFactorSecret sql.NullString
	var deletedAt sql.NullTime

	err := executor.QueryRowContext(ctx, query, token).Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&session.ExpiresAt,
		&session.Revoked,
		&session.CreatedAt,
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&companyID,
		&twoFactorSecret,
		&user.TwoFactorEnabled,
		&user.CreatedAt,
		&user.UpdatedAt,
		&deletedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, fmt.Errorf("session in schema %s: %w", schema, repositories.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("failed to get session: %w", err)
	}

	if companyID.Valid {
		user.CompanyID = &companyID.UUID
	}
	if twoFactorSecret.Valid {
		user.TwoFactorSecret = &twoFactorSecret.String
	}
	if deletedAt.Valid {
		user.DeletedAt = &deletedAt.Time
	}

	return session, user, nil
}

// Create persists a new refresh session
func (r *SessionRepository) Create(ctx context.Context, schema string, session *models.RefreshSession) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, token, expires_at, revoked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, tableRef(schema, "user_sessions"))

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.Token,
		session.ExpiresAt,
		session.Revoked,
		session.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	r.logger.Debug("session created",
		zap.String("id", session.ID.String()),
		zap.String("user_id", session.UserID.String()),
		zap.String("schema", schema),
	)
	return nil
}

// DeleteAllForUser removes every session owned by the user. Deleting zero
// rows is not an error, switching always clears before inserting.
func (r *SessionRepository) DeleteAllForUser(ctx context.Context, schema string, userID uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, tableRef(schema, "user_sessions"))

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	r.logger.Debug("sessions deleted",
		zap.String("user_id", userID.String()),
		zap.String("schema", schema),
		zap.Int64("count", rowsAffected),
	)
	return nil
}
