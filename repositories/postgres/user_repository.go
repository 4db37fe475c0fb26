package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/upb/identity-core/models"
	"github.com/upb/identity-core/repositories"
	"go.uber.org/zap"
)

// userColumns is the scan list shared by the user queries.
const userColumns = "id, email, first_name, last_name, role, company_id, two_factor_secret, two_factor_enabled, created_at, updated_at, deleted_at"

// UserRepository implements the repositories.UserRepository interface.
// Every query is qualified with the schema passed by the caller.
type UserRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, logger *zap.Logger) repositories.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new user in the given schema
func (r *UserRepository) Create(ctx context.Context, schema string, user *models.User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, email, first_name, last_name, role, company_id, two_factor_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, tableRef(schema, "users"))

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Role,
		user.CompanyID,
		user.TwoFactorEnabled,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Debug("user created",
		zap.String("id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("schema", schema),
	)
	return nil
}

// GetByID retrieves a non-deleted user by ID from the given schema
func (r *UserRepository) GetByID(ctx context.Context, schema string, id uuid.UUID) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND deleted_at IS NULL
	`, userColumns, tableRef(schema, "users"))

	executor := GetExecutor(ctx, r.db)
	row := executor.QueryRowContext(ctx, query, id)

	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user %s in schema %s: %w", id, schema, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a non-deleted user by email from the given schema
func (r *UserRepository) GetByEmail(ctx context.Context, schema string, email string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE email = $1 AND deleted_at IS NULL
	`, userColumns, tableRef(schema, "users"))

	executor := GetExecutor(ctx, r.db)
	row := executor.QueryRowContext(ctx, query, email)

	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user %s in schema %s: %w", email, schema, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// SetTwoFactorSecret stores an unconfirmed two-factor secret on the user.
// A pending secret from an earlier enrollment is overwritten.
func (r *UserRepository) SetTwoFactorSecret(ctx context.Context, schema string, id uuid.UUID, secret string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET two_factor_secret = $2,
		    two_factor_enabled = false,
		    updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL
	`, tableRef(schema, "users"))

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id, secret, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set two-factor secret: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user %s in schema %s: %w", id, schema, repositories.ErrNotFound)
	}

	r.logger.Debug("two-factor secret stored",
		zap.String("id", id.String()),
		zap.String("schema", schema),
	)
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var companyID uuid.NullUUID
	var twoFactorSecret sql.NullString
	var deletedAt sql.NullTime

	err := row.Scan(
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
		return nil, err
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

	return user, nil
}
