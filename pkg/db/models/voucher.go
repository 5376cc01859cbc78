package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
)

// Voucher holds a redeemable discount and its remaining quantity.
type Voucher struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Code          string              `gorm:"column:code;type:text;not null;uniqueIndex" json:"code"`
	Description   *string             `gorm:"column:description;type:text" json:"description,omitempty"`
	Type          enums.VoucherType   `gorm:"column:type;type:text;not null" json:"type"`
	DiscountValue int64               `gorm:"column:discount_value;not null" json:"discountValue"`
	MinValueOrder int64               `gorm:"column:min_value_order;not null;default:0" json:"minValueOrder"`
	Quantity      int                 `gorm:"column:quantity;not null;default:0" json:"quantity"`
	StartDate     time.Time           `gorm:"column:start_date;not null" json:"startDate"`
	EndDate       time.Time           `gorm:"column:end_date;not null" json:"endDate"`
	Status        enums.VoucherStatus `gorm:"column:status;type:text;not null;default:ACTIVE" json:"status"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Voucher) TableName() string { return "vouchers" }

func (v *Voucher) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	if v.Status == "" {
		v.Status = enums.VoucherStatusActive
	}
	return nil
}

// ActiveAt reports whether the validity window covers t.
func (v Voucher) ActiveAt(t time.Time) bool {
	return !t.Before(v.StartDate) && !t.After(v.EndDate)
}

// VoucherRedemption is one member of a voucher's redemption set.
type VoucherRedemption struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	VoucherID uuid.UUID `gorm:"column:voucher_id;type:uuid;not null;uniqueIndex:idx_voucher_redemptions_voucher_user" json:"voucherId"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_voucher_redemptions_voucher_user" json:"userId"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null" json:"orderId"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (VoucherRedemption) TableName() string { return "voucher_redemptions" }

func (r *VoucherRedemption) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
