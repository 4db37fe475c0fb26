package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/identity-core/models"
)

// ErrNotFound is returned by repositories when a lookup matches no row.
// Callers that scan across tenant schemas rely on it to tell "no match
// here" apart from a real failure.
var ErrNotFound = errors.New("not found")

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// CompanyRepository handles company data operations. Companies live only
// in the public schema.
type CompanyRepository interface {
	// Create creates a new company
	Create(ctx context.Context, company *models.Company) error

	// GetByID retrieves a company by ID, soft-deleted rows included
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)

	// ListActive retrieves all companies with an active schema status,
	// excluding soft-deleted rows, in ascending id order
	ListActive(ctx context.Context) ([]*models.Company, error)
}

// UserRepository handles user data operations. Every method takes the
// schema holding the user; callers must only pass schemas vetted by the
// tenant directory.
type UserRepository interface {
	// Create creates a new user in the given schema
	Create(ctx context.Context, schema string, user *models.User) error

	// GetByID retrieves a non-deleted user by ID from the given schema
	GetByID(ctx context.Context, schema string, id uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a non-deleted user by email from the given schema
	GetByEmail(ctx context.Context, schema string, email string) (*models.User, error)

	// SetTwoFactorSecret stores an unconfirmed two-factor secret on the
	// user, replacing any pending one
	SetTwoFactorSecret(ctx context.Context, schema string, id uuid.UUID, secret string) error
}

// SessionRepository handles refresh session data operations, schema-scoped
// like UserRepository.
type SessionRepository interface {
	// FindValidByToken retrieves the session matching the raw token value
	// joined with its owning non-deleted user. Expired or revoked sessions
	// do not match.
	FindValidByToken(ctx context.Context, schema string, token string) (*models.RefreshSession, *models.User, error)

	// Create persists a new refresh session
	Create(ctx context.Context, schema string, session *models.RefreshSession) error

	// DeleteAllForUser removes every session owned by the user
	DeleteAllForUser(ctx context.Context, schema string, userID uuid.UUID) error
}

// SessionIndexRepository maintains the public-schema lookup table mapping
// hashed refresh tokens to the schema holding the session. It is a cache
// in front of the tenant scan, kept in step with session writes.
type SessionIndexRepository interface {
	// Upsert records or replaces the schema for a token hash
	Upsert(ctx context.Context, tokenHash string, userID uuid.UUID, schema string) error

	// Lookup returns the schema recorded for a token hash
	Lookup(ctx context.Context, tokenHash string) (string, error)

	// DeleteForUser removes all index entries for the user
	DeleteForUser(ctx context.Context, userID uuid.UUID) error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Companies    CompanyRepository
	Users        UserRepository
	Sessions     SessionRepository
	SessionIndex SessionIndexRepository
}
