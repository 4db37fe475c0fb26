package models

import (
	"time"

	"github.com/google/uuid"
)

// PublicSchema is the schema holding platform-level accounts and the
// cross-tenant session records created by company switching.
const PublicSchema = "public"

// SchemaStatusActive marks a tenant schema as provisioned and usable.
// Companies with any other status are excluded from resolution and from
// switch targets.
const SchemaStatusActive = "active"

// Company represents a tenant of the platform. A company without a schema
// name lives in the public schema.
type Company struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	SchemaName      *string    `json:"schema_name,omitempty" db:"schema_name"`
	SchemaStatus    string     `json:"schema_status" db:"schema_status"`
	ParentCompanyID *uuid.UUID `json:"parent_company_id,omitempty" db:"parent_company_id"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// TableName returns the table name for the Company model
func (Company) TableName() string {
	return "companies"
}

// NewCompany creates a new Company instance
func NewCompany(name string, schemaName *string, parentID *uuid.UUID) *Company {
	now := time.Now()
	return &Company{
		ID:              uuid.New(),
		Name:            name,
		SchemaName:      schemaName,
		SchemaStatus:    SchemaStatusActive,
		ParentCompanyID: parentID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Schema returns the schema holding this company's data, defaulting to
// the public schema when none is assigned.
func (c *Company) Schema() string {
	if c.SchemaName == nil || *c.SchemaName == "" {
		return PublicSchema
	}
	return *c.SchemaName
}

// IsDeleted returns true if the company is soft-deleted
func (c *Company) IsDeleted() bool {
	return c.DeletedAt != nil
}

// Resolvable returns true if the company participates in tenant-schema
// resolution: active schema status, a schema assigned, not soft-deleted.
func (c *Company) Resolvable() bool {
	return c.SchemaStatus == SchemaStatusActive && c.SchemaName != nil && *c.SchemaName != "" && !c.IsDeleted()
}
