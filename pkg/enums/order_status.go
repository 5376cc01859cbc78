package enums

import "fmt"

// OrderStatus tracks an order through the lifecycle state machine.
type OrderStatus string

const (
	OrderStatusPendingConfirm   OrderStatus = "PENDING_CONFIRM"
	OrderStatusConfirmed        OrderStatus = "CONFIRMED"
	OrderStatusPendingPayment   OrderStatus = "PENDING_PAYMENT"
	OrderStatusPaymentConfirmed OrderStatus = "PAYMENT_CONFIRMED"
	OrderStatusDelivering       OrderStatus = "DELIVERING"
	OrderStatusCompleted        OrderStatus = "COMPLETED"
	OrderStatusCanceled         OrderStatus = "CANCELED"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPendingConfirm,
	OrderStatusConfirmed,
	OrderStatusPendingPayment,
	OrderStatusPaymentConfirmed,
	OrderStatusDelivering,
	OrderStatusCompleted,
	OrderStatusCanceled,
}

// orderTransitions lists the forward edges. CANCELED is reachable from every
// non-terminal state and is handled in CanTransitionTo.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPendingConfirm:   {OrderStatusConfirmed, OrderStatusPaymentConfirmed},
	OrderStatusPendingPayment:   {OrderStatusPaymentConfirmed},
	OrderStatusConfirmed:        {OrderStatusDelivering},
	OrderStatusPaymentConfirmed: {OrderStatusDelivering},
	OrderStatusDelivering:       {OrderStatusCompleted},
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCanceled
}

// CanTransitionTo reports whether the state machine allows s -> next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == OrderStatusCanceled {
		return true
	}
	for _, candidate := range orderTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// FilterGroup expands a listing filter into the statuses it matches.
// CONFIRMED also covers PAYMENT_CONFIRMED and PENDING_CONFIRM also covers
// PENDING_PAYMENT, so staff see cash and banking orders in the same bucket.
func (s OrderStatus) FilterGroup() []OrderStatus {
	switch s {
	case OrderStatusConfirmed:
		return []OrderStatus{OrderStatusConfirmed, OrderStatusPaymentConfirmed}
	case OrderStatusPendingConfirm:
		return []OrderStatus{OrderStatusPendingConfirm, OrderStatusPendingPayment}
	default:
		return []OrderStatus{s}
	}
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
