package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant is a merchant store, addressed by its subdomain.
// Subdomain and OwnerID carry unique indexes; those indexes, not pre-checks,
// are what keep concurrent registrations from both succeeding.
type Tenant struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Subdomain   string         `json:"subdomain" gorm:"type:varchar(63);uniqueIndex;not null"`
	OwnerID     uuid.UUID      `json:"owner_id" gorm:"type:uuid;uniqueIndex;not null"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	Email       string         `json:"email" gorm:"type:varchar(255)"`
	Published   bool           `json:"published" gorm:"not null;default:false"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate assigns the id
func (t *Tenant) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// IsOwnedBy reports whether userID owns the tenant
func (t *Tenant) IsOwnedBy(userID uuid.UUID) bool {
	return userID != uuid.Nil && t.OwnerID == userID
}
