package enums

import "fmt"

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateOrder        OutboxAggregateType = "order"
	AggregateOrderRequest OutboxAggregateType = "order_request"
	AggregateShipping     OutboxAggregateType = "shipping"
	AggregateVoucher      OutboxAggregateType = "voucher"
	AggregateBill         OutboxAggregateType = "bill"
	AggregateNotification OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateOrderRequest,
	AggregateShipping,
	AggregateVoucher,
	AggregateBill,
	AggregateNotification,
}

// IsValid reports whether the value matches a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType names a domain event written to the outbox.
type OutboxEventType string

const (
	EventOrderPlaced           OutboxEventType = "order_placed"
	EventOrderConfirmed        OutboxEventType = "order_confirmed"
	EventOrderPaymentConfirmed OutboxEventType = "order_payment_confirmed"
	EventOrderDelivering       OutboxEventType = "order_delivering"
	EventOrderCompleted        OutboxEventType = "order_completed"
	EventOrderCanceled         OutboxEventType = "order_canceled"
	EventOrderRequestDecided   OutboxEventType = "order_request_decided"
	EventShippingAssigned      OutboxEventType = "shipping_assigned"
	EventBillIssued            OutboxEventType = "bill_issued"
	EventNotificationRequested OutboxEventType = "notification_requested"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderPlaced,
	EventOrderConfirmed,
	EventOrderPaymentConfirmed,
	EventOrderDelivering,
	EventOrderCompleted,
	EventOrderCanceled,
	EventOrderRequestDecided,
	EventShippingAssigned,
	EventBillIssued,
	EventNotificationRequested,
}

// IsValid reports whether the value matches a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}
