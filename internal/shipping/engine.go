package shipping

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/internal/notifications"
	"github.com/LeDucTai-11/MyStore-BE/internal/push"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	dbtypes "github.com/LeDucTai-11/MyStore-BE/pkg/db/types"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	pkgerrors "github.com/LeDucTai-11/MyStore-BE/pkg/errors"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
	"github.com/LeDucTai-11/MyStore-BE/pkg/metrics"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox/payloads"
	"github.com/LeDucTai-11/MyStore-BE/pkg/pagination"
)

// ErrNoCourierAvailable means every courier of the store was tried and the
// order was canceled. Callers treat it as handled.
var ErrNoCourierAvailable = errors.New("no courier available")

const reasonNoCourier = "no courier available"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type canceler interface {
	Cancel(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, reason string) error
}

type notifier interface {
	Request(ctx context.Context, tx *gorm.DB, req notifications.Request) error
}

type pushPublisher interface {
	PublishAll(ctx context.Context, msgs []push.Message)
}

// DecideInput is a courier's answer to an offered assignment.
type DecideInput struct {
	ShippingID uuid.UUID
	CourierID  uuid.UUID
	Status     enums.RequestStatus
}

// EngineParams groups the engine's collaborators.
type EngineParams struct {
	Repo     Repository
	Tx       txRunner
	Canceler canceler
	Outbox   outbox.Emitter
	Notifier notifier
	Push     pushPublisher
	Metrics  *metrics.OrderMetrics
	Logger   *logger.Logger
}

// Engine offers orders to couriers one at a time until somebody accepts or
// the store runs out of couriers.
type Engine struct {
	repo     Repository
	tx       txRunner
	canceler canceler
	outbox   outbox.Emitter
	notifier notifier
	push     pushPublisher
	metrics  *metrics.OrderMetrics
	logg     *logger.Logger
}

func NewEngine(params EngineParams) (*Engine, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("shipping repository required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Canceler == nil:
		return nil, fmt.Errorf("order canceler required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox emitter required")
	case params.Notifier == nil:
		return nil, fmt.Errorf("notifier required")
	}
	return &Engine{
		repo:     params.Repo,
		tx:       params.Tx,
		canceler: params.Canceler,
		outbox:   params.Outbox,
		notifier: params.Notifier,
		push:     params.Push,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

// Assign offers a confirmed order to the first available courier inside tx
// and returns the pushes to send once tx commits. With no courier the order
// is canceled and ErrNoCourierAvailable is returned with the customer push.
func (e *Engine) Assign(ctx context.Context, tx *gorm.DB, order *models.Order) ([]push.Message, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	repo := e.repo.WithTx(tx)
	existing, err := repo.FindByOrder(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipping")
	}
	if existing != nil {
		return nil, nil
	}

	courier, err := repo.FindCourier(ctx, order.StoreID, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find courier")
	}
	if courier == nil {
		msgs, err := e.exhaust(ctx, tx, order.ID, order.CreatedBy)
		if err != nil {
			return nil, err
		}
		return msgs, ErrNoCourierAvailable
	}

	shipping := &models.Shipping{
		OrderID:         order.ID,
		StoreID:         order.StoreID,
		ShipperID:       courier.ID,
		Status:          enums.ShippingStatusPending,
		TriedShipperIDs: dbtypes.UUIDArray{courier.ID},
	}
	if err := repo.Create(ctx, shipping); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shipping")
	}
	msg, err := e.offer(ctx, tx, shipping, order.CreatedBy)
	if err != nil {
		return nil, err
	}
	return []push.Message{msg}, nil
}

// offer records the assignment event and builds the courier push.
func (e *Engine) offer(ctx context.Context, tx *gorm.DB, shipping *models.Shipping, customerID uuid.UUID) (push.Message, error) {
	store, err := e.repo.WithTx(tx).FindStore(ctx, shipping.StoreID)
	if err != nil {
		return push.Message{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	if err := e.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventShippingAssigned,
		AggregateType: enums.AggregateShipping,
		AggregateID:   shipping.ID,
		Data: payloads.ShippingAssignedEvent{
			ShippingID: shipping.ID,
			OrderID:    shipping.OrderID,
			StoreID:    shipping.StoreID,
			ShipperID:  shipping.ShipperID,
		},
	}); err != nil {
		return push.Message{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit shipping assigned")
	}
	if e.logg != nil {
		logCtx := e.logg.WithOrderID(ctx, shipping.OrderID.String())
		logCtx = e.logg.WithFields(logCtx, map[string]any{
			"shipping_id": shipping.ID.String(),
			"shipper_id":  shipping.ShipperID.String(),
			"tried":       len(shipping.TriedShipperIDs),
		})
		e.logg.Info(logCtx, "shipping offered")
	}
	return push.Delivery(shipping.ShipperID, push.DeliveryRequest{
		Status:       0,
		StoreAddress: store.Address,
		UserID:       customerID,
		ShippingID:   shipping.ID,
	}), nil
}

// exhaust cancels the order and tells the customer nobody can deliver it.
func (e *Engine) exhaust(ctx context.Context, tx *gorm.DB, orderID, customerID uuid.UUID) ([]push.Message, error) {
	if err := e.canceler.Cancel(ctx, tx, orderID, reasonNoCourier); err != nil {
		return nil, err
	}
	if err := e.notifier.Request(ctx, tx, notifications.Request{
		UserID:   customerID,
		OrderID:  orderID,
		Template: enums.TemplateNoCourierAvailable,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "request courier notification")
	}
	if e.logg != nil {
		e.logg.Warn(e.logg.WithOrderID(ctx, orderID.String()), "no courier available, order canceled")
	}
	return []push.Message{push.Customer(customerID, push.OrderUpdate{
		OrderID: orderID,
		Status:  string(enums.OrderStatusCanceled),
		Message: reasonNoCourier,
	})}, nil
}

// Decide applies a courier's answer. Approval starts delivery; rejection
// moves the offer to the next untried courier or cancels the order.
func (e *Engine) Decide(ctx context.Context, input DecideInput) (*models.Shipping, error) {
	if !input.Status.IsDecision() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be APPROVED or REJECTED")
	}
	if e.logg != nil {
		ctx = e.logg.WithCourierID(ctx, input.CourierID.String())
	}

	var (
		result *models.Shipping
		pushes []push.Message
	)
	err := e.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := e.repo.WithTx(tx)
		shipping, err := e.loadShipping(ctx, repo, input.ShippingID)
		if err != nil {
			return err
		}
		if shipping.Status != enums.ShippingStatusPending {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "shipping is %s", shipping.Status)
		}
		if shipping.ShipperID != input.CourierID {
			return pkgerrors.New(pkgerrors.CodeConflict, "shipping is assigned to another courier")
		}
		order, err := e.loadOrder(ctx, repo, shipping.OrderID)
		if err != nil {
			return err
		}

		if input.Status == enums.RequestStatusApproved {
			if err := e.setShippingStatus(ctx, repo, shipping, enums.ShippingStatusApproved); err != nil {
				return err
			}
			if err := e.advanceOrder(ctx, tx, order, enums.OrderStatusDelivering, input.CourierID); err != nil {
				return err
			}
			pushes = append(pushes, push.Customer(order.CreatedBy, push.OrderUpdate{
				OrderID: order.ID,
				Status:  string(enums.OrderStatusDelivering),
			}))
			result = shipping
			return nil
		}

		next, err := repo.FindCourier(ctx, shipping.StoreID, shipping.TriedShipperIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find courier")
		}
		if next == nil {
			if err := e.setShippingStatus(ctx, repo, shipping, enums.ShippingStatusRejected); err != nil {
				return err
			}
			msgs, err := e.exhaust(ctx, tx, order.ID, order.CreatedBy)
			if err != nil {
				return err
			}
			pushes = append(pushes, msgs...)
			result = shipping
			return nil
		}

		tried := shipping.TriedShipperIDs.With(next.ID)
		affected, err := repo.Update(ctx, shipping.ID, enums.ShippingStatusPending, map[string]any{
			"shipper_id":        next.ID,
			"tried_shipper_ids": tried,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reassign shipping")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "shipping changed concurrently")
		}
		shipping.ShipperID = next.ID
		shipping.TriedShipperIDs = tried
		msg, err := e.offer(ctx, tx, shipping, order.CreatedBy)
		if err != nil {
			return err
		}
		pushes = append(pushes, msg)
		result = shipping
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.publish(ctx, pushes)
	return result, nil
}

// Complete closes an approved assignment and the order with it.
func (e *Engine) Complete(ctx context.Context, shippingID, courierID uuid.UUID) (*models.Shipping, error) {
	var (
		result *models.Shipping
		pushes []push.Message
	)
	err := e.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := e.repo.WithTx(tx)
		shipping, err := e.loadShipping(ctx, repo, shippingID)
		if err != nil {
			return err
		}
		if shipping.ShipperID != courierID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "shipping not found")
		}
		if shipping.Status != enums.ShippingStatusApproved {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "shipping is %s", shipping.Status)
		}
		order, err := e.loadOrder(ctx, repo, shipping.OrderID)
		if err != nil {
			return err
		}
		if err := e.setShippingStatus(ctx, repo, shipping, enums.ShippingStatusCompleted); err != nil {
			return err
		}
		if err := e.advanceOrder(ctx, tx, order, enums.OrderStatusCompleted, courierID); err != nil {
			return err
		}
		if err := e.notifier.Request(ctx, tx, notifications.Request{
			UserID:   order.CreatedBy,
			OrderID:  order.ID,
			Template: enums.TemplateOrderCompleted,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "request completion notification")
		}
		pushes = append(pushes, push.Customer(order.CreatedBy, push.OrderUpdate{
			OrderID: order.ID,
			Status:  string(enums.OrderStatusCompleted),
		}))
		result = shipping
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.publish(ctx, pushes)
	return result, nil
}

// ListMine returns the courier's assignments, newest first.
func (e *Engine) ListMine(ctx context.Context, courierID uuid.UUID, page pagination.Page) (*pagination.PageResult[models.Shipping], error) {
	page = page.Normalize()
	rows, total, err := e.repo.ListByShipper(ctx, courierID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shippings")
	}
	if rows == nil {
		rows = []models.Shipping{}
	}
	return &pagination.PageResult[models.Shipping]{Items: rows, Total: total, Limit: page.Limit, Offset: page.Offset}, nil
}

func (e *Engine) loadShipping(ctx context.Context, repo Repository, id uuid.UUID) (*models.Shipping, error) {
	shipping, err := repo.FindForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipping not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipping")
	}
	return shipping, nil
}

func (e *Engine) loadOrder(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (e *Engine) setShippingStatus(ctx context.Context, repo Repository, shipping *models.Shipping, next enums.ShippingStatus) error {
	affected, err := repo.Update(ctx, shipping.ID, shipping.Status, map[string]any{"status": next})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shipping")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "shipping changed concurrently")
	}
	shipping.Status = next
	return nil
}

func (e *Engine) advanceOrder(ctx context.Context, tx *gorm.DB, order *models.Order, next enums.OrderStatus, courierID uuid.UUID) error {
	from := order.Status
	if !from.CanTransitionTo(next) {
		return pkgerrors.Newf(pkgerrors.CodeStateConflict, "order cannot move from %s to %s", from, next)
	}
	affected, err := e.repo.WithTx(tx).UpdateOrderStatus(ctx, order.ID, from, next)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently")
	}
	order.Status = next

	event := enums.EventOrderDelivering
	if next == enums.OrderStatusCompleted {
		event = enums.EventOrderCompleted
	}
	actor := courierID
	if err := e.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     event,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         &outbox.ActorRef{UserID: courierID, Role: string(enums.UserRoleShipper)},
		Data: payloads.OrderStatusChangedEvent{
			OrderID: order.ID,
			From:    from,
			To:      next,
			ActorID: &actor,
		},
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order transition")
	}
	e.metrics.ObserveTransition(string(next))
	if e.logg != nil {
		logCtx := e.logg.WithOrderID(ctx, order.ID.String())
		logCtx = e.logg.WithFields(logCtx, map[string]any{"from": from, "to": next})
		e.logg.Info(logCtx, "order status changed")
	}
	return nil
}

func (e *Engine) publish(ctx context.Context, msgs []push.Message) {
	if e.push == nil || len(msgs) == 0 {
		return
	}
	e.push.PublishAll(ctx, msgs)
}
