package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is the state of a placed order
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Order is a customer purchase placed on one tenant's storefront
type Order struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID       `json:"-" gorm:"type:uuid;index;not null"`
	Number        string          `json:"number" gorm:"type:varchar(32);not null"`
	CustomerName  string          `json:"customer_name" gorm:"type:varchar(255);not null"`
	CustomerEmail string          `json:"customer_email" gorm:"type:varchar(255);not null"`
	Status        OrderStatus     `json:"status" gorm:"type:varchar(16);not null;default:PENDING"`
	Total         decimal.Decimal `json:"total" gorm:"type:numeric(12,2);not null"`
	Items         []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// BeforeCreate assigns the id and a human readable order number
func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Number == "" {
		o.Number = "ORD-" + o.ID.String()[:8]
	}
	return nil
}

// OrderItem is one line of an order; name and price are copied at purchase time
type OrderItem struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `json:"-" gorm:"type:uuid;index;not null"`
	ProductID uuid.UUID       `json:"product_id" gorm:"type:uuid;not null"`
	Name      string          `json:"name" gorm:"type:varchar(255);not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	LineTotal decimal.Decimal `json:"line_total" gorm:"type:numeric(12,2);not null"`
}

// BeforeCreate assigns the id
func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
