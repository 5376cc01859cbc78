package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
)

// Order is the aggregate root of the lifecycle state machine. Discount and
// total are derived on read and never stored.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	StoreID         uuid.UUID           `gorm:"column:store_id;type:uuid;not null" json:"storeId"`
	CreatedBy       uuid.UUID           `gorm:"column:created_by;type:uuid;not null" json:"createdBy"`
	Subtotal        int64               `gorm:"column:subtotal;not null" json:"subtotal"`
	ShippingFee     int64               `gorm:"column:shipping_fee;not null;default:0" json:"shippingFee"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null" json:"paymentMethod"`
	Status          enums.OrderStatus   `gorm:"column:status;type:text;not null" json:"status"`
	VoucherID       *uuid.UUID          `gorm:"column:voucher_id;type:uuid" json:"voucherId,omitempty"`
	Address         string              `gorm:"column:address;type:text;not null" json:"address"`
	Contact         OrderContact        `gorm:"column:contact;type:jsonb;not null" json:"contact"`
	CancelExpiredAt *time.Time          `gorm:"column:cancel_expired_at" json:"cancelExpiredAt,omitempty"`
	PaymentURL      *string             `gorm:"column:payment_url;type:text" json:"paymentUrl,omitempty"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	LineItems []OrderLineItem `gorm:"foreignKey:OrderID;references:ID" json:"lineItems,omitempty"`
	Voucher   *Voucher        `gorm:"foreignKey:VoucherID;references:ID" json:"voucher,omitempty"`
	Creator   *User           `gorm:"foreignKey:CreatedBy;references:ID" json:"creator,omitempty"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// OrderContact is the delivery contact block captured at placement.
type OrderContact struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}

func (c OrderContact) Value() (driver.Value, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (c *OrderContact) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = OrderContact{}
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("OrderContact: unsupported Scan type %T", src)
	}
}

// FullName joins the contact names for search results and notifications.
func (c OrderContact) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}
