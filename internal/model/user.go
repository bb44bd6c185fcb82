package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is a global user role. Users are the only entity shared across tenants.
type Role string

const (
	RoleSuperAdmin  Role = "SUPER_ADMIN"
	RoleTenantOwner Role = "TENANT_OWNER"
	RoleTenantStaff Role = "TENANT_STAFF"
	RoleCustomer    Role = "CUSTOMER"
)

// CanOwnTenant reports whether the role may register a store
func (r Role) CanOwnTenant() bool {
	return r == RoleTenantOwner || r == RoleSuperAdmin
}

// User represents the user model stored in the database
type User struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Email     string         `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Name      string         `json:"name" gorm:"type:varchar(255)"`
	Password  string         `json:"-" gorm:"type:varchar(255);not null"`
	Role      Role           `json:"role" gorm:"type:varchar(32);not null;default:CUSTOMER"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate assigns the id
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// All lists every model for auto-migration, parents before children
func All() []interface{} {
	return []interface{}{
		&User{},
		&Tenant{},
		&Asset{},
		&Setting{},
		&Product{},
		&ProductVariant{},
		&Order{},
		&OrderItem{},
	}
}
