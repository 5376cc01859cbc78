package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	pkgerrors "github.com/LeDucTai-11/MyStore-BE/pkg/errors"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
	"github.com/LeDucTai-11/MyStore-BE/pkg/metrics"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox/payloads"
)

// Lifecycle applies forward transitions of the order state machine.
// Cancellation goes through Canceler instead.
type Lifecycle struct {
	repo    Repository
	outbox  outbox.Emitter
	metrics *metrics.OrderMetrics
	logg    *logger.Logger
}

func NewLifecycle(repo Repository, emitter outbox.Emitter, m *metrics.OrderMetrics, logg *logger.Logger) (*Lifecycle, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &Lifecycle{repo: repo, outbox: emitter, metrics: m, logg: logg}, nil
}

// Load locks and returns the order inside tx.
func (l *Lifecycle) Load(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error) {
	order, err := l.repo.WithTx(tx).FindForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// Advance moves order to next when the state machine allows it and the row
// still holds the status the caller loaded. updates are written alongside
// the status. On success order.Status is updated in place.
func (l *Lifecycle) Advance(ctx context.Context, tx *gorm.DB, order *models.Order, next enums.OrderStatus, actorID *uuid.UUID, updates map[string]any) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	if next == enums.OrderStatusCanceled {
		return fmt.Errorf("cancellation must go through the canceler")
	}
	from := order.Status
	if !from.CanTransitionTo(next) {
		return pkgerrors.Newf(pkgerrors.CodeStateConflict, "order cannot move from %s to %s", from, next)
	}

	affected, err := l.repo.WithTx(tx).UpdateStatus(ctx, order.ID, from, next, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently")
	}
	order.Status = next

	if err := l.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     transitionEvent(next),
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actorRef(actorID),
		Data: payloads.OrderStatusChangedEvent{
			OrderID: order.ID,
			From:    from,
			To:      next,
			ActorID: actorID,
		},
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order transition")
	}

	l.metrics.ObserveTransition(string(next))
	if l.logg != nil {
		logCtx := l.logg.WithOrderID(ctx, order.ID.String())
		logCtx = l.logg.WithFields(logCtx, map[string]any{"from": from, "to": next})
		if actorID != nil {
			logCtx = l.logg.WithUserID(logCtx, actorID.String())
		}
		l.logg.Info(logCtx, "order status changed")
	}
	return nil
}

func transitionEvent(status enums.OrderStatus) enums.OutboxEventType {
	switch status {
	case enums.OrderStatusConfirmed:
		return enums.EventOrderConfirmed
	case enums.OrderStatusPaymentConfirmed:
		return enums.EventOrderPaymentConfirmed
	case enums.OrderStatusDelivering:
		return enums.EventOrderDelivering
	case enums.OrderStatusCompleted:
		return enums.EventOrderCompleted
	default:
		return enums.EventOrderPlaced
	}
}

func actorRef(actorID *uuid.UUID) *outbox.ActorRef {
	if actorID == nil {
		return nil
	}
	return &outbox.ActorRef{UserID: *actorID}
}
