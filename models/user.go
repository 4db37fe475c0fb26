package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents the role of a user within the platform
type UserRole string

const (
	// Platform roles allowed to switch company context
	RoleSuperAdmin   UserRole = "super_admin"
	RolePartnerAdmin UserRole = "partner_admin"
	RolePartnerUser  UserRole = "partner_user"

	// Tenant-scoped roles
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// Elevated returns true for roles that may request a company context switch.
func (r UserRole) Elevated() bool {
	switch r {
	case RoleSuperAdmin, RolePartnerAdmin, RolePartnerUser:
		return true
	}
	return false
}

// User represents a user account. A user lives in exactly one schema;
// platform users live in public.
type User struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	Email            string     `json:"email" db:"email"`
	FirstName        string     `json:"firstName" db:"first_name"`
	LastName         string     `json:"lastName" db:"last_name"`
	Role             UserRole   `json:"role" db:"role"`
	CompanyID        *uuid.UUID `json:"companyId,omitempty" db:"company_id"`
	TwoFactorSecret  *string    `json:"-" db:"two_factor_secret"`
	TwoFactorEnabled bool       `json:"twoFactorEnabled" db:"two_factor_enabled"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt" db:"updated_at"`
	DeletedAt        *time.Time `json:"-" db:"deleted_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance
func NewUser(email, firstName, lastName string, role UserRole, companyID *uuid.UUID) *User {
	now := time.Now()
	return &User{
		ID:        uuid.New(),
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
		CompanyID: companyID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsDeleted returns true if the user has been soft deleted
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}
