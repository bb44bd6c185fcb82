package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Setting is the branding of a tenant's storefront, at most one per tenant
type Setting struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID       uuid.UUID  `json:"-" gorm:"type:uuid;uniqueIndex;not null"`
	PrimaryColor   string     `json:"primary_color" gorm:"type:varchar(7)"`
	SecondaryColor string     `json:"secondary_color" gorm:"type:varchar(7)"`
	AccentColor    string     `json:"accent_color" gorm:"type:varchar(7)"`
	HeroTitle      string     `json:"hero_title" gorm:"type:varchar(255)"`
	HeroSubtitle   string     `json:"hero_subtitle" gorm:"type:varchar(500)"`
	AboutText      string     `json:"about_text" gorm:"type:text"`
	LogoID         *uuid.UUID `json:"-" gorm:"type:uuid"`
	FaviconID      *uuid.UUID `json:"-" gorm:"type:uuid"`
	Logo           *Asset     `json:"logo,omitempty" gorm:"foreignKey:LogoID"`
	Favicon        *Asset     `json:"favicon,omitempty" gorm:"foreignKey:FaviconID"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// BeforeCreate assigns the id
func (s *Setting) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
