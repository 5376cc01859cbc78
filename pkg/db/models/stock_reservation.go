package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
)

// StockReservation records that an order holds stock (and optionally a voucher
// redemption). Release flips it to RELEASED exactly once.
type StockReservation struct {
	ID         uuid.UUID               `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderID    uuid.UUID               `gorm:"column:order_id;type:uuid;not null;uniqueIndex" json:"orderId"`
	UserID     uuid.UUID               `gorm:"column:user_id;type:uuid;not null" json:"userId"`
	VoucherID  *uuid.UUID              `gorm:"column:voucher_id;type:uuid" json:"voucherId,omitempty"`
	Status     enums.ReservationStatus `gorm:"column:status;type:text;not null" json:"status"`
	ReleasedAt *time.Time              `gorm:"column:released_at" json:"releasedAt,omitempty"`
	CreatedAt  time.Time               `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (StockReservation) TableName() string { return "stock_reservations" }

func (r *StockReservation) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
