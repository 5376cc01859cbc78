package push

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	KindDelivery = "delivery"
	KindCustomer = "customer"
)

// Message is a best-effort real-time notice addressed to one user.
type Message struct {
	Kind    string
	UserID  uuid.UUID
	Payload any
}

// Topic is the logical channel name, e.g. delivery/<courierId>.
func (m Message) Topic() string {
	return fmt.Sprintf("%s/%s", m.Kind, m.UserID)
}

func Delivery(courierID uuid.UUID, payload any) Message {
	return Message{Kind: KindDelivery, UserID: courierID, Payload: payload}
}

func Customer(userID uuid.UUID, payload any) Message {
	return Message{Kind: KindCustomer, UserID: userID, Payload: payload}
}

// DeliveryRequest is pushed to a courier when an assignment is offered.
type DeliveryRequest struct {
	Status       int       `json:"status"`
	StoreAddress string    `json:"storeAddress"`
	UserID       uuid.UUID `json:"userId"`
	ShippingID   uuid.UUID `json:"shippingId"`
}

// OrderUpdate is pushed to a customer when their order changes.
type OrderUpdate struct {
	OrderID uuid.UUID `json:"orderId"`
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
}

// parseTopic splits "<prefix>:<kind>/<userId>" back into its parts.
func parseTopic(prefix, channel string) (string, uuid.UUID, error) {
	rest := strings.TrimPrefix(channel, prefix+":")
	if rest == channel && prefix != "" {
		return "", uuid.Nil, fmt.Errorf("channel %q outside prefix %q", channel, prefix)
	}
	kind, rawID, ok := strings.Cut(rest, "/")
	if !ok {
		return "", uuid.Nil, fmt.Errorf("malformed push channel %q", channel)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("malformed push channel %q: %w", channel, err)
	}
	return kind, id, nil
}
