package enums

import (
	"fmt"
	"strings"
)

// PaymentMethod describes how a customer settles an order.
type PaymentMethod string

const (
	PaymentMethodCOD     PaymentMethod = "COD"
	PaymentMethodBanking PaymentMethod = "BANKING"
)

func (p PaymentMethod) String() string {
	return string(p)
}

func (p PaymentMethod) IsValid() bool {
	return p == PaymentMethodCOD || p == PaymentMethodBanking
}

// IsPrepaid reports whether the order is settled through the payment
// gateway before it ships.
func (p PaymentMethod) IsPrepaid() bool {
	return p == PaymentMethodBanking
}

// ConfirmedStatus is the status an approved order of this method moves to.
func (p PaymentMethod) ConfirmedStatus() OrderStatus {
	if p.IsPrepaid() {
		return OrderStatusPaymentConfirmed
	}
	return OrderStatusConfirmed
}

// ParsePaymentMethod accepts any letter case.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	method := PaymentMethod(strings.ToUpper(strings.TrimSpace(value)))
	if !method.IsValid() {
		return "", fmt.Errorf("invalid payment method %q", value)
	}
	return method, nil
}
