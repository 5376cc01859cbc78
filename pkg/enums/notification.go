package enums

import "fmt"

// NotificationType groups in-app notifications for the customer UI.
type NotificationType string

const (
	NotificationTypeOrder    NotificationType = "order"
	NotificationTypePayment  NotificationType = "payment"
	NotificationTypeShipping NotificationType = "shipping"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOrder,
	NotificationTypePayment,
	NotificationTypeShipping,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}

// NotificationTemplate names the message a customer receives.
type NotificationTemplate string

const (
	TemplateOrderDetails       NotificationTemplate = "order_details"
	TemplateOrderConfirmed     NotificationTemplate = "order_confirmed"
	TemplateOrderCanceled      NotificationTemplate = "order_canceled"
	TemplateCancelRejected     NotificationTemplate = "cancel_request_rejected"
	TemplatePaymentConfirmed   NotificationTemplate = "payment_confirmed"
	TemplateShippingAssigned   NotificationTemplate = "shipping_assigned"
	TemplateNoCourierAvailable NotificationTemplate = "no_courier_available"
	TemplateOrderCompleted     NotificationTemplate = "order_completed"
)

// Type returns the notification bucket for the template.
func (t NotificationTemplate) Type() NotificationType {
	switch t {
	case TemplatePaymentConfirmed:
		return NotificationTypePayment
	case TemplateShippingAssigned, TemplateNoCourierAvailable, TemplateOrderCompleted:
		return NotificationTypeShipping
	default:
		return NotificationTypeOrder
	}
}
