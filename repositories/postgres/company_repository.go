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

// CompanyRepository implements the repositories.CompanyRepository interface.
// Companies only exist in the public schema, so no schema qualification here.
type CompanyRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *DB, logger *zap.Logger) repositories.CompanyRepository {
	return &CompanyRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new company
func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	query := `
		INSERT INTO companies (id, name, schema_name, schema_status, parent_company_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		company.ID,
		company.Name,
		company.SchemaName,
		company.SchemaStatus,
		company.ParentCompanyID,
		company.CreatedAt,
		company.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}

	r.logger.Debug("company created", zap.String("id", company.ID.String()), zap.String("name", company.Name))
	return nil
}

// GetByID retrieves a company by ID, soft-deleted rows included so that
// callers can report deletion distinctly.
func (r *CompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	query := `
		SELECT id, name, schema_name, schema_status, parent_company_id, created_at, updated_at, deleted_at
		FROM companies
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	company := &models.Company{}
	var schemaName sql.NullString
	var parentID uuid.NullUUID
	var deletedAt sql.NullTime

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&company.ID,
		&company.Name,
		&schemaName,
		&company.SchemaStatus,
		&parentID,
		&company.CreatedAt,
		&company.UpdatedAt,
		&deletedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("company %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	if schemaName.Valid {
		company.SchemaName = &schemaName.String
	}
	if parentID.Valid {
		company.ParentCompanyID = &parentID.UUID
	}
	if deletedAt.Valid {
		company.DeletedAt = &deletedAt.Time
	}

	return company, nil
}

// ListActive retrieves all non-deleted companies with an active schema
// status. Ordering is ascending by id so scans visit tenants in a stable
// order across calls.
func (r *CompanyRepository) ListActive(ctx context.Context) ([]*models.Company, error) {
	query := `
		SELECT id, name, schema_name, schema_status, parent_company_id, created_at, updated_at, deleted_at
		FROM companies
		WHERE schema_status = $1 AND deleted_at IS NULL
		ORDER BY id ASC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, models.SchemaStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	defer rows.Close()

	var companies []*models.Company
	for rows.Next() {
		company := &models.Company{}
		var schemaName sql.NullString
		var parentID uuid.NullUUID
		var deletedAt sql.NullTime

		err := rows.Scan(
			&company.ID,
			&company.Name,
			&schemaName,
			&company.SchemaStatus,
			&parentID,
			&company.CreatedAt,
			&company.UpdatedAt,
			&deletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}

		if schemaName.Valid {
			company.SchemaName = &schemaName.String
		}
		if parentID.Valid {
			company.ParentCompanyID = &parentID.UUID
		}
		if deletedAt.Valid {
			company.DeletedAt = &deletedAt.Time
		}

		companies = append(companies, company)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating company rows: %w", err)
	}

	return companies, nil
}
