package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Asset references a file held by the object store (logo, favicon)
type Asset struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	URL       string    `json:"url" gorm:"type:varchar(2048);not null"`
	PublicID  string    `json:"public_id" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns the id
func (a *Asset) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
