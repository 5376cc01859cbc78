package orderrequests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/internal/notifications"
	"github.com/LeDucTai-11/MyStore-BE/internal/orders"
	"github.com/LeDucTai-11/MyStore-BE/internal/push"
	"github.com/LeDucTai-11/MyStore-BE/internal/shipping"
	"github.com/LeDucTai-11/MyStore-BE/pkg/config"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	pkgerrors "github.com/LeDucTai-11/MyStore-BE/pkg/errors"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox/payloads"
	"github.com/LeDucTai-11/MyStore-BE/pkg/pagination"
)

const pendingRequestConstraint = "idx_order_requests_pending"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type orderLifecycle interface {
	Load(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error)
	Advance(ctx context.Context, tx *gorm.DB, order *models.Order, next enums.OrderStatus, actorID *uuid.UUID, updates map[string]any) error
}

type orderCanceler interface {
	Cancel(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, reason string) error
}

type billIssuer interface {
	Issue(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, issuer *uuid.UUID, amount int64) (*models.Bill, error)
}

type courierAssigner interface {
	Assign(ctx context.Context, tx *gorm.DB, order *models.Order) ([]push.Message, error)
}

type notifier interface {
	Request(ctx context.Context, tx *gorm.DB, req notifications.Request) error
}

type pushPublisher interface {
	PublishAll(ctx context.Context, msgs []push.Message)
}

// CancelInput is a customer's request to cancel their order.
type CancelInput struct {
	OrderID     uuid.UUID
	RequesterID uuid.UUID
}

// DecideInput is a staff decision on a pending request.
type DecideInput struct {
	RequestID uuid.UUID
	DeciderID uuid.UUID
	Status    enums.RequestStatus
}

// ListParams filters the staff listing.
type ListParams struct {
	Status        *enums.RequestStatus
	Type          *enums.OrderRequestType
	PaymentMethod *enums.PaymentMethod
	Page          pagination.Page
}

// WorkflowParams groups the workflow collaborators.
type WorkflowParams struct {
	Repo      Repository
	Tx        txRunner
	Lifecycle orderLifecycle
	Canceler  orderCanceler
	Bills     billIssuer
	Shipping  courierAssigner
	Notifier  notifier
	Push      pushPublisher
	Outbox    outbox.Emitter
	Config    config.OrdersConfig
	Logger    *logger.Logger
}

// Workflow gates order creation and cancellation behind staff approval.
type Workflow struct {
	repo      Repository
	tx        txRunner
	lifecycle orderLifecycle
	canceler  orderCanceler
	bills     billIssuer
	shipping  courierAssigner
	notifier  notifier
	push      pushPublisher
	outbox    outbox.Emitter
	cfg       config.OrdersConfig
	logg      *logger.Logger
	now       func() time.Time
}

func NewWorkflow(params WorkflowParams) (*Workflow, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("order request repository required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Lifecycle == nil:
		return nil, fmt.Errorf("order lifecycle required")
	case params.Canceler == nil:
		return nil, fmt.Errorf("order canceler required")
	case params.Bills == nil:
		return nil, fmt.Errorf("bill issuer required")
	case params.Shipping == nil:
		return nil, fmt.Errorf("courier assigner required")
	case params.Notifier == nil:
		return nil, fmt.Errorf("notifier required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &Workflow{
		repo:      params.Repo,
		tx:        params.Tx,
		lifecycle: params.Lifecycle,
		canceler:  params.Canceler,
		bills:     params.Bills,
		shipping:  params.Shipping,
		notifier:  params.Notifier,
		push:      params.Push,
		outbox:    params.Outbox,
		cfg:       params.Config,
		logg:      params.Logger,
		now:       time.Now,
	}, nil
}

// RequestCreate opens the CREATE request for a freshly placed order inside
// the placement transaction.
func (w *Workflow) RequestCreate(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	_, err := w.open(ctx, w.repo.WithTx(tx), order.ID, order.CreatedBy, enums.OrderRequestTypeCreate)
	return err
}

func (w *Workflow) open(ctx context.Context, repo Repository, orderID, createdBy uuid.UUID, requestType enums.OrderRequestType) (*models.OrderRequest, error) {
	pending, err := repo.FindPending(ctx, orderID, requestType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pending request")
	}
	if pending != nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "a %s request is already pending for this order", requestType)
	}
	req := &models.OrderRequest{
		OrderID:   orderID,
		Type:      requestType,
		Status:    enums.RequestStatusPending,
		CreatedBy: createdBy,
	}
	if err := repo.Create(ctx, req); err != nil {
		if db.IsUniqueViolation(err, pendingRequestConstraint) {
			return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "a %s request is already pending for this order", requestType)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order request")
	}
	if w.logg != nil {
		logCtx := w.logg.WithOrderID(ctx, orderID.String())
		logCtx = w.logg.WithFields(logCtx, map[string]any{"request_id": req.ID.String(), "type": requestType})
		w.logg.Info(logCtx, "order request opened")
	}
	return req, nil
}

// RequestCancel asks to cancel an order. An outstanding CREATE request is
// rejected on the spot instead, which cancels the order right away.
func (w *Workflow) RequestCancel(ctx context.Context, input CancelInput) (*models.OrderRequest, error) {
	if w.logg != nil {
		ctx = w.logg.WithUserID(ctx, input.RequesterID.String())
	}
	var result *models.OrderRequest
	err := w.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := w.repo.WithTx(tx)
		order, err := w.lifecycle.Load(ctx, tx, input.OrderID)
		if err != nil {
			return err
		}
		if order.CreatedBy != input.RequesterID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the order creator can request cancellation")
		}

		pendingCreate, err := repo.FindPending(ctx, order.ID, enums.OrderRequestTypeCreate)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pending request")
		}
		if pendingCreate != nil {
			if err := w.resolve(ctx, tx, pendingCreate, enums.RequestStatusRejected, input.RequesterID); err != nil {
				return err
			}
			if err := w.canceler.Cancel(ctx, tx, order.ID, orders.ReasonCreateRejected); err != nil {
				return err
			}
			result = pendingCreate
			return nil
		}

		if err := w.checkCancellable(order); err != nil {
			return err
		}
		req, err := w.open(ctx, repo, order.ID, input.RequesterID, enums.OrderRequestTypeCancel)
		if err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// checkCancellable: PENDING_CONFIRM always, CONFIRMED until
// cancel_expired_at. Every other status names itself in the error.
func (w *Workflow) checkCancellable(order *models.Order) error {
	switch order.Status {
	case enums.OrderStatusPendingConfirm:
		return nil
	case enums.OrderStatusConfirmed:
		if order.CancelExpiredAt != nil && !order.CancelExpiredAt.Before(w.now().UTC()) {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order not cancellable after deadline")
	default:
		return pkgerrors.Newf(pkgerrors.CodeStateConflict, "order is %s and cannot be canceled", order.Status)
	}
}

// Decide approves or rejects a pending request and applies its effect on
// the order in the same transaction.
func (w *Workflow) Decide(ctx context.Context, input DecideInput) (*models.OrderRequest, error) {
	if !input.Status.IsDecision() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be APPROVED or REJECTED")
	}
	if w.logg != nil {
		ctx = w.logg.WithUserID(ctx, input.DeciderID.String())
	}

	var (
		result *models.OrderRequest
		pushes []push.Message
	)
	err := w.tx.WithTx(ctx, func(tx *gorm.DB) error {
		req, err := w.repo.WithTx(tx).FindForUpdate(ctx, input.RequestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order request")
		}
		if req.Status != enums.RequestStatusPending {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "order request already %s", req.Status)
		}
		order, err := w.lifecycle.Load(ctx, tx, req.OrderID)
		if err != nil {
			return err
		}
		if err := w.resolve(ctx, tx, req, input.Status, input.DeciderID); err != nil {
			return err
		}

		approved := input.Status == enums.RequestStatusApproved
		switch {
		case req.Type == enums.OrderRequestTypeCreate && approved:
			msgs, err := w.confirm(ctx, tx, order, input.DeciderID)
			if err != nil {
				return err
			}
			pushes = msgs
		case req.Type == enums.OrderRequestTypeCreate:
			if err := w.canceler.Cancel(ctx, tx, order.ID, orders.ReasonCreateRejected); err != nil {
				return err
			}
		case approved:
			if err := w.canceler.Cancel(ctx, tx, order.ID, orders.ReasonCancelApproved); err != nil {
				return err
			}
		default:
			if err := w.notifier.Request(ctx, tx, notifications.Request{
				UserID:   req.CreatedBy,
				OrderID:  order.ID,
				Template: enums.TemplateCancelRejected,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "request cancel rejection notification")
			}
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	if w.push != nil && len(pushes) > 0 {
		w.push.PublishAll(ctx, pushes)
	}
	return result, nil
}

// confirm applies an approved CREATE: the order gets its cancel deadline and
// a courier, then a bill. When no courier is left the order is already
// canceled, so neither the bill nor the confirmation is sent.
func (w *Workflow) confirm(ctx context.Context, tx *gorm.DB, order *models.Order, deciderID uuid.UUID) ([]push.Message, error) {
	next := order.PaymentMethod.ConfirmedStatus()
	deadline := w.now().UTC().Add(w.cfg.CancelWindow)
	if err := w.lifecycle.Advance(ctx, tx, order, next, &deciderID, map[string]any{"cancel_expired_at": deadline}); err != nil {
		return nil, err
	}
	order.CancelExpiredAt = &deadline

	msgs, err := w.shipping.Assign(ctx, tx, order)
	if errors.Is(err, shipping.ErrNoCourierAvailable) {
		return msgs, nil
	}
	if err != nil {
		return nil, err
	}

	totals := orders.ComputeTotals(order)
	if _, err := w.bills.Issue(ctx, tx, order.ID, nil, totals.Total); err != nil {
		return nil, err
	}
	if err := w.notifier.Request(ctx, tx, notifications.Request{
		UserID:   order.CreatedBy,
		OrderID:  order.ID,
		Template: enums.TemplateOrderConfirmed,
		Data:     map[string]any{"total": totals.Total},
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "request confirmation notification")
	}
	return msgs, nil
}

// resolve stamps the decision on the request and records it on the outbox.
func (w *Workflow) resolve(ctx context.Context, tx *gorm.DB, req *models.OrderRequest, status enums.RequestStatus, actorID uuid.UUID) error {
	now := w.now().UTC()
	updates := map[string]any{"status": status}
	if status == enums.RequestStatusApproved {
		updates["approved_at"] = now
		updates["approved_by"] = actorID
	} else {
		updates["canceled_at"] = now
		updates["canceled_by"] = actorID
	}
	affected, err := w.repo.WithTx(tx).Resolve(ctx, req.ID, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve order request")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order request already decided")
	}
	req.Status = status
	if status == enums.RequestStatusApproved {
		req.ApprovedAt, req.ApprovedBy = &now, &actorID
	} else {
		req.CanceledAt, req.CanceledBy = &now, &actorID
	}

	if err := w.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderRequestDecided,
		AggregateType: enums.AggregateOrderRequest,
		AggregateID:   req.ID,
		Actor:         &outbox.ActorRef{UserID: actorID},
		Data: payloads.OrderRequestDecidedEvent{
			RequestID: req.ID,
			OrderID:   req.OrderID,
			Type:      req.Type,
			Status:    status,
			DecidedBy: actorID,
		},
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit request decided")
	}
	if w.logg != nil {
		logCtx := w.logg.WithOrderID(ctx, req.OrderID.String())
		logCtx = w.logg.WithFields(logCtx, map[string]any{
			"request_id": req.ID.String(),
			"type":       req.Type,
			"status":     status,
		})
		w.logg.Info(logCtx, "order request decided")
	}
	return nil
}

func (w *Workflow) Get(ctx context.Context, id uuid.UUID) (*models.OrderRequest, error) {
	req, err := w.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order request")
	}
	return req, nil
}

func (w *Workflow) List(ctx context.Context, params ListParams) (*pagination.PageResult[models.OrderRequest], error) {
	return w.list(ctx, ListQuery{
		Status:        params.Status,
		Type:          params.Type,
		PaymentMethod: params.PaymentMethod,
		Page:          params.Page.Normalize(),
	})
}

func (w *Workflow) ListMine(ctx context.Context, userID uuid.UUID, page pagination.Page) (*pagination.PageResult[models.OrderRequest], error) {
	return w.list(ctx, ListQuery{CreatedBy: &userID, Page: page.Normalize()})
}

func (w *Workflow) list(ctx context.Context, query ListQuery) (*pagination.PageResult[models.OrderRequest], error) {
	rows, total, err := w.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order requests")
	}
	if rows == nil {
		rows = []models.OrderRequest{}
	}
	return &pagination.PageResult[models.OrderRequest]{
		Items:  rows,
		Total:  total,
		Limit:  query.Page.Limit,
		Offset: query.Page.Offset,
	}, nil
}
