package notifications

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
)

type rendered struct {
	Title   string
	Message string
	Link    string
}

func render(template enums.NotificationTemplate, orderID uuid.UUID, data map[string]any) rendered {
	short := orderID.String()[:8]
	link := fmt.Sprintf("/orders/%s", orderID)
	switch template {
	case enums.TemplateOrderDetails:
		return rendered{"Order placed", fmt.Sprintf("Your order %s was placed. Total: %s VND.", short, amount(data)), link}
	case enums.TemplateOrderConfirmed:
		return rendered{"Order confirmed", fmt.Sprintf("Your order %s has been confirmed.", short), link}
	case enums.TemplateOrderCanceled:
		msg := fmt.Sprintf("Your order %s was canceled.", short)
		if reason, ok := data["reason"].(string); ok && reason != "" {
			msg = fmt.Sprintf("Your order %s was canceled (%s).", short, reason)
		}
		return rendered{"Order canceled", msg, link}
	case enums.TemplateCancelRejected:
		return rendered{"Cancellation rejected", fmt.Sprintf("Your request to cancel order %s was rejected.", short), link}
	case enums.TemplatePaymentConfirmed:
		return rendered{"Payment received", fmt.Sprintf("We received %s VND for order %s.", amount(data), short), link}
	case enums.TemplateShippingAssigned:
		return rendered{"Courier assigned", fmt.Sprintf("A courier is on the way for order %s.", short), link}
	case enums.TemplateNoCourierAvailable:
		return rendered{"No courier available", fmt.Sprintf("No courier could take order %s, so it was canceled.", short), link}
	case enums.TemplateOrderCompleted:
		return rendered{"Order delivered", fmt.Sprintf("Order %s has been delivered.", short), link}
	default:
		return rendered{"Order update", fmt.Sprintf("Order %s was updated.", short), link}
	}
}

// amount tolerates the float64 that JSON decoding produces.
func amount(data map[string]any) string {
	switch v := data["total"].(type) {
	case float64:
		return fmt.Sprintf("%.0f", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case int:
		return fmt.Sprintf("%d", v)
	default:
		return "0"
	}
}
