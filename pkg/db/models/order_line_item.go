package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderLineItem freezes the price of a per-store stock record at order time.
type OrderLineItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;index" json:"orderId"`
	ProductStoreID uuid.UUID `gorm:"column:product_store_id;type:uuid;not null" json:"productStoreId"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null" json:"productId"`
	Quantity       int       `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice      int64     `gorm:"column:unit_price;not null" json:"unitPrice"`
	LinePrice      int64     `gorm:"column:line_price;not null" json:"linePrice"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`

	Product *Product `gorm:"foreignKey:ProductID;references:ID" json:"product,omitempty"`
}

func (OrderLineItem) TableName() string { return "order_line_items" }

func (li *OrderLineItem) BeforeCreate(*gorm.DB) error {
	ensureID(&li.ID)
	return nil
}
