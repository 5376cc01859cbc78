package payloads

import (
	"time"

	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	"github.com/google/uuid"
)

// OrderPlacedEvent is emitted once an order and its reservation are committed.
type OrderPlacedEvent struct {
	OrderID       uuid.UUID           `json:"orderId"`
	StoreID       uuid.UUID           `json:"storeId"`
	CreatedBy     uuid.UUID           `json:"createdBy"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
	Total         int64               `json:"total"`
}

// OrderStatusChangedEvent covers forward transitions of the lifecycle.
type OrderStatusChangedEvent struct {
	OrderID uuid.UUID         `json:"orderId"`
	From    enums.OrderStatus `json:"from"`
	To      enums.OrderStatus `json:"to"`
	ActorID *uuid.UUID        `json:"actorId,omitempty"`
}

// OrderCanceledEvent is emitted by every cancellation path after reversal.
type OrderCanceledEvent struct {
	OrderID    uuid.UUID         `json:"orderId"`
	CreatedBy  uuid.UUID         `json:"createdBy"`
	From       enums.OrderStatus `json:"from"`
	Reason     string            `json:"reason"`
	CanceledAt time.Time         `json:"canceledAt"`
}

// OrderRequestDecidedEvent records an approval decision.
type OrderRequestDecidedEvent struct {
	RequestID uuid.UUID              `json:"requestId"`
	OrderID   uuid.UUID              `json:"orderId"`
	Type      enums.OrderRequestType `json:"type"`
	Status    enums.RequestStatus    `json:"status"`
	DecidedBy uuid.UUID              `json:"decidedBy"`
}

// ShippingAssignedEvent is emitted whenever a courier is (re)assigned.
type ShippingAssignedEvent struct {
	ShippingID uuid.UUID `json:"shippingId"`
	OrderID    uuid.UUID `json:"orderId"`
	StoreID    uuid.UUID `json:"storeId"`
	ShipperID  uuid.UUID `json:"shipperId"`
}

// BillIssuedEvent mirrors the immutable bill row.
type BillIssuedEvent struct {
	BillID    uuid.UUID  `json:"billId"`
	OrderID   uuid.UUID  `json:"orderId"`
	Amount    int64      `json:"amount"`
	CreatedBy *uuid.UUID `json:"createdBy,omitempty"`
}

// NotificationRequestedEvent asks the notification worker to alert a user.
type NotificationRequestedEvent struct {
	UserID   uuid.UUID                  `json:"userId"`
	OrderID  uuid.UUID                  `json:"orderId"`
	Template enums.NotificationTemplate `json:"template"`
	Data     map[string]any             `json:"data,omitempty"`
}
