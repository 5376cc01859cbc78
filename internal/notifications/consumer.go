package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox/payloads"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox/registry"
)

const notificationConsumer = "notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type payloadDecoder interface {
	Decode(eventType enums.OutboxEventType, version int, payload json.RawMessage) (any, error)
}

type idempotencyManager interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer turns notification_requested outbox events into in-app rows.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	idempotency  idempotencyManager
	decoders     payloadDecoder
	logg         *logger.Logger
}

// NewConsumer builds the notification consumer.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, manager idempotencyManager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("notification subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		decoders:     registry.NotificationDecoders(),
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		logCtx := c.logg.WithField(ctx, "message_id", msg.ID)
		result := c.handle(logCtx, msg.Attributes["event_type"], msg.Data)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) handle(ctx context.Context, eventType string, data []byte) processResult {
	logCtx := c.logg.WithField(ctx, "event_type", eventType)

	if eventType != string(enums.EventNotificationRequested) {
		c.logg.Info(logCtx, "skipping non-notification event")
		return processResult{ack: true}
	}

	envelope, err := outbox.ParseEnvelope(data)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}
	eventID := envelope.ID()

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, notificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	decoded, err := c.decoders.Decode(enums.EventNotificationRequested, envelope.Version, envelope.Data)
	if err != nil {
		c.logg.Error(c.logg.WithField(logCtx, "version", envelope.Version), "notification payload dropped", err)
		return processResult{ack: true}
	}
	payload, ok := decoded.(payloads.NotificationRequestedEvent)
	if !ok {
		c.logg.Warn(logCtx, "unexpected notification payload type")
		return processResult{ack: true}
	}
	if payload.UserID == uuid.Nil {
		c.logg.Warn(logCtx, "notification without recipient dropped")
		return processResult{ack: true}
	}

	logCtx = c.logg.WithUserID(logCtx, payload.UserID.String())
	logCtx = c.logg.WithOrderID(logCtx, payload.OrderID.String())

	content := render(payload.Template, payload.OrderID, payload.Data)
	notification := &models.Notification{
		UserID:  payload.UserID,
		Type:    payload.Template.Type(),
		Title:   content.Title,
		Message: content.Message,
		Link:    &content.Link,
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		c.logg.Error(logCtx, "notification insert failed", err)
		_ = c.idempotency.Delete(ctx, notificationConsumer, eventID)
		return processResult{nack: true}
	}

	c.logg.Info(logCtx, "user notified")
	return processResult{ack: true}
}
