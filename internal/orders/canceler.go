package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/internal/inventory"
	"github.com/LeDucTai-11/MyStore-BE/internal/notifications"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	pkgerrors "github.com/LeDucTai-11/MyStore-BE/pkg/errors"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
	"github.com/LeDucTai-11/MyStore-BE/pkg/metrics"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox/payloads"
)

// Cancellation reasons recorded on the order_canceled event.
const (
	ReasonCreateRejected = "create request rejected"
	ReasonCancelApproved = "cancel request approved"
	ReasonPaymentExpired = "payment confirmation deadline passed"
	ReasonNoCourier      = "no courier available"
)

type stockReleaser interface {
	Release(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
}

type voucherReleaser interface {
	Release(ctx context.Context, tx *gorm.DB, voucherID, userID uuid.UUID) error
}

type notifier interface {
	Request(ctx context.Context, tx *gorm.DB, req notifications.Request) error
}

// CancelerParams groups the collaborators of the reversal procedure.
type CancelerParams struct {
	Repo     Repository
	Stock    stockReleaser
	Vouchers voucherReleaser
	Outbox   outbox.Emitter
	Notifier notifier
	Metrics  *metrics.OrderMetrics
	Logger   *logger.Logger
}

// Canceler is the one place an order is canceled. Every path (rejected
// creation, approved cancel request, payment expiry, courier exhaustion)
// runs the same reversal.
type Canceler struct {
	repo     Repository
	stock    stockReleaser
	vouchers voucherReleaser
	outbox   outbox.Emitter
	notifier notifier
	metrics  *metrics.OrderMetrics
	logg     *logger.Logger
	now      func() time.Time
}

func NewCanceler(params CancelerParams) (*Canceler, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("orders repository required")
	case params.Stock == nil:
		return nil, fmt.Errorf("stock releaser required")
	case params.Vouchers == nil:
		return nil, fmt.Errorf("voucher releaser required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox emitter required")
	case params.Notifier == nil:
		return nil, fmt.Errorf("notifier required")
	}
	return &Canceler{
		repo:     params.Repo,
		stock:    params.Stock,
		vouchers: params.Vouchers,
		outbox:   params.Outbox,
		notifier: params.Notifier,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      time.Now,
	}, nil
}

// Cancel moves the order to CANCELED and reverses its reservation and
// voucher redemption inside tx. Canceling an already canceled order is a
// no-op, so reversal never runs twice.
func (c *Canceler) Cancel(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, reason string) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	repo := c.repo.WithTx(tx)
	order, err := repo.FindForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.Status == enums.OrderStatusCanceled {
		return nil
	}
	if !order.Status.CanTransitionTo(enums.OrderStatusCanceled) {
		return pkgerrors.Newf(pkgerrors.CodeStateConflict, "order in status %s cannot be canceled", order.Status)
	}

	if err := c.stock.Release(ctx, tx, order.ID); err != nil && !errors.Is(err, inventory.ErrAlreadyReleased) {
		return err
	}
	if order.VoucherID != nil {
		if err := c.vouchers.Release(ctx, tx, *order.VoucherID, order.CreatedBy); err != nil {
			return err
		}
	}

	now := c.now().UTC()
	affected, err := repo.UpdateStatus(ctx, order.ID, order.Status, enums.OrderStatusCanceled, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently")
	}
	if err := repo.CancelOpenShippings(ctx, order.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel shippings")
	}
	if err := repo.RejectPendingRequests(ctx, order.ID, now); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject pending requests")
	}

	if err := c.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderCanceled,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		OccurredAt:    now,
		Data: payloads.OrderCanceledEvent{
			OrderID:    order.ID,
			CreatedBy:  order.CreatedBy,
			From:       order.Status,
			Reason:     reason,
			CanceledAt: now,
		},
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order canceled")
	}
	if err := c.notifier.Request(ctx, tx, notifications.Request{
		UserID:   order.CreatedBy,
		OrderID:  order.ID,
		Template: enums.TemplateOrderCanceled,
		Data:     map[string]any{"reason": reason},
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "request cancel notification")
	}

	c.metrics.ObserveTransition(string(enums.OrderStatusCanceled))
	if c.logg != nil {
		logCtx := c.logg.WithOrderID(ctx, order.ID.String())
		logCtx = c.logg.WithFields(logCtx, map[string]any{"from": order.Status, "reason": reason})
		c.logg.Info(logCtx, "order canceled")
	}
	return nil
}
