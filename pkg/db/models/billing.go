package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bill is an immutable receipt issued once an order is confirmed or paid.
type Bill struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID  `gorm:"column:order_id;type:uuid;not null;uniqueIndex" json:"orderId"`
	CreatedBy *uuid.UUID `gorm:"column:created_by;type:uuid" json:"createdBy,omitempty"`
	Amount    int64      `gorm:"column:amount;not null" json:"amount"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`

	Order *Order `gorm:"foreignKey:OrderID;references:ID" json:"order,omitempty"`
}

func (Bill) TableName() string { return "bills" }

func (b *Bill) BeforeCreate(*gorm.DB) error {
	ensureID(&b.ID)
	return nil
}

// Payment records a gateway-confirmed banking payment.
type Payment struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderID           uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex" json:"orderId"`
	Amount            int64     `gorm:"column:amount;not null" json:"amount"`
	BankCode          *string   `gorm:"column:bank_code;type:text" json:"bankCode,omitempty"`
	TransactionNumber string    `gorm:"column:transaction_number;type:text;not null" json:"transactionNumber"`
	CardType          *string   `gorm:"column:card_type;type:text" json:"cardType,omitempty"`
	OrderInfo         string    `gorm:"column:order_info;type:text;not null" json:"orderInfo"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (Payment) TableName() string { return "payments" }

func (p *Payment) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
