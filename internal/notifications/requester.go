package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox/payloads"
)

// Request asks for a user to be told about an order.
type Request struct {
	UserID   uuid.UUID
	OrderID  uuid.UUID
	Template enums.NotificationTemplate
	Data     map[string]any
}

// Requester queues notification requests on the outbox inside the caller's
// transaction. The worker turns them into rows once the transaction commits.
type Requester struct {
	outbox outbox.Emitter
}

func NewRequester(emitter outbox.Emitter) (*Requester, error) {
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &Requester{outbox: emitter}, nil
}

func (r *Requester) Request(ctx context.Context, tx *gorm.DB, req Request) error {
	if req.UserID == uuid.Nil {
		return fmt.Errorf("notification recipient required")
	}
	return r.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventNotificationRequested,
		AggregateType: enums.AggregateNotification,
		AggregateID:   req.OrderID,
		Data: payloads.NotificationRequestedEvent{
			UserID:   req.UserID,
			OrderID:  req.OrderID,
			Template: req.Template,
			Data:     req.Data,
		},
	})
}
