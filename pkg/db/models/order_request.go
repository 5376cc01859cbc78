package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
)

// OrderRequest is an approval-gated intent to create or cancel an order.
type OrderRequest struct {
	ID         uuid.UUID              `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderID    uuid.UUID              `gorm:"column:order_id;type:uuid;not null;index" json:"orderId"`
	Type       enums.OrderRequestType `gorm:"column:type;type:text;not null" json:"type"`
	Status     enums.RequestStatus    `gorm:"column:status;type:text;not null" json:"status"`
	CreatedBy  uuid.UUID              `gorm:"column:created_by;type:uuid;not null" json:"createdBy"`
	ApprovedAt *time.Time             `gorm:"column:approved_at" json:"approvedAt,omitempty"`
	ApprovedBy *uuid.UUID             `gorm:"column:approved_by;type:uuid" json:"approvedBy,omitempty"`
	CanceledAt *time.Time             `gorm:"column:canceled_at" json:"canceledAt,omitempty"`
	CanceledBy *uuid.UUID             `gorm:"column:canceled_by;type:uuid" json:"canceledBy,omitempty"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time              `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	Order *Order `gorm:"foreignKey:OrderID;references:ID" json:"order,omitempty"`
}

func (OrderRequest) TableName() string { return "order_requests" }

func (r *OrderRequest) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
