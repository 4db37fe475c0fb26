package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/upb/identity-core/models"
	"github.com/upb/identity-core/repositories"
	"go.uber.org/zap"
)

// schemaNamePattern matches valid tenant schema names. Anything outside it
// never reaches a query.
var schemaNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// DirectoryService is the tenant directory: it lists the active tenants
// and vets schema names before any schema-qualified query runs.
type DirectoryService struct {
	companies repositories.CompanyRepository
	logger    *zap.Logger
}

// NewDirectoryService creates a new directory service
func NewDirectoryService(companies repositories.CompanyRepository, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{
		companies: companies,
		logger:    logger,
	}
}

// ListActive returns the non-deleted companies with an active schema
// status, in ascending id order.
func (s *DirectoryService) ListActive(ctx context.Context) ([]*models.Company, error) {
	companies, err := s.companies.ListActive(ctx)
	if err != nil {
		return nil, WrapInternal("failed to list active companies", err)
	}
	return companies, nil
}

// ActiveSchemas returns the schemas of resolvable tenants in scan order.
// The public schema is not included; scans prepend it themselves.
func (s *DirectoryService) ActiveSchemas(ctx context.Context) ([]string, error) {
	companies, err := s.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	schemas := make([]string, 0, len(companies))
	for _, company := range companies {
		if !company.Resolvable() {
			continue
		}
		schema := company.Schema()
		if !ValidSchemaName(schema) {
			s.logger.Warn("company has invalid schema name, skipping",
				zap.String("company_id", company.ID.String()),
				zap.String("schema", schema),
			)
			continue
		}
		schemas = append(schemas, schema)
	}

	return schemas, nil
}

// GetCompany retrieves a company by id, soft-deleted rows included
func (s *DirectoryService) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, WrapInternal("failed to get company", err)
	}
	return company, nil
}

// KnownSchema reports whether the schema is the public schema or belongs
// to an active tenant. Resolvers and session writers call this before
// qualifying queries with a schema taken from stored data.
func (s *DirectoryService) KnownSchema(ctx context.Context, schema string) (bool, error) {
	if !ValidSchemaName(schema) {
		return false, nil
	}
	if schema == models.PublicSchema {
		return true, nil
	}

	schemas, err := s.ActiveSchemas(ctx)
	if err != nil {
		return false, err
	}
	for _, known := range schemas {
		if known == schema {
			return true, nil
		}
	}
	return false, nil
}

// ValidSchemaName reports whether the name is shaped like a schema this
// service would ever create.
func ValidSchemaName(schema string) bool {
	return schemaNamePattern.MatchString(schema)
}

// RequireKnownSchema returns a validation error unless the schema passes
// KnownSchema.
func (s *DirectoryService) RequireKnownSchema(ctx context.Context, schema string) error {
	known, err := s.KnownSchema(ctx, schema)
	if err != nil {
		return err
	}
	if !known {
		return NewDomainError(ErrorTypeValidation, fmt.Sprintf("unknown tenant schema %q", schema), nil)
	}
	return nil
}
