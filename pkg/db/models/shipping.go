package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/LeDucTai-11/MyStore-BE/pkg/db/types"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
)

// Shipping binds a courier to an order. TriedShipperIDs is the exclusion set
// consulted when a courier rejects.
type Shipping struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderID         uuid.UUID            `gorm:"column:order_id;type:uuid;not null;uniqueIndex" json:"orderId"`
	StoreID         uuid.UUID            `gorm:"column:store_id;type:uuid;not null" json:"storeId"`
	ShipperID       uuid.UUID            `gorm:"column:shipper_id;type:uuid;not null;index" json:"shipperId"`
	Status          enums.ShippingStatus `gorm:"column:status;type:text;not null" json:"status"`
	TriedShipperIDs dbtypes.UUIDArray    `gorm:"column:tried_shipper_ids;type:jsonb;not null" json:"triedShipperIds"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	Order *Order `gorm:"foreignKey:OrderID;references:ID" json:"order,omitempty"`
	Store *Store `gorm:"foreignKey:StoreID;references:ID" json:"store,omitempty"`
}

func (Shipping) TableName() string { return "shippings" }

func (s *Shipping) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
