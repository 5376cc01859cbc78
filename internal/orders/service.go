package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/internal/inventory"
	"github.com/LeDucTai-11/MyStore-BE/internal/notifications"
	"github.com/LeDucTai-11/MyStore-BE/internal/push"
	"github.com/LeDucTai-11/MyStore-BE/internal/shipping"
	"github.com/LeDucTai-11/MyStore-BE/internal/vouchers"
	"github.com/LeDucTai-11/MyStore-BE/pkg/config"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	pkgerrors "github.com/LeDucTai-11/MyStore-BE/pkg/errors"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
	"github.com/LeDucTai-11/MyStore-BE/pkg/metrics"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox/payloads"
	"github.com/LeDucTai-11/MyStore-BE/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockLedger interface {
	Quote(ctx context.Context, tx *gorm.DB, lines []inventory.Line) ([]inventory.PricedLine, error)
	Reserve(ctx context.Context, tx *gorm.DB, input inventory.ReserveInput) ([]inventory.PricedLine, error)
}

type voucherRedeemer interface {
	Redeem(ctx context.Context, tx *gorm.DB, input vouchers.RedeemInput) (*models.Voucher, error)
}

type creationRequester interface {
	RequestCreate(ctx context.Context, tx *gorm.DB, order *models.Order) error
}

type courierAssigner interface {
	Assign(ctx context.Context, tx *gorm.DB, order *models.Order) ([]push.Message, error)
}

type billIssuer interface {
	Issue(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, issuer *uuid.UUID, amount int64) (*models.Bill, error)
}

type paymentLinker interface {
	PaymentURL(order *models.Order, clientIP, origin string) (string, error)
}

type pushPublisher interface {
	PublishAll(ctx context.Context, msgs []push.Message)
}

// Service exposes placement and the read side of orders.
type Service interface {
	Place(ctx context.Context, input PlaceInput) (*OrderView, error)
	Get(ctx context.Context, orderID, actorID uuid.UUID, role enums.UserRole) (*OrderView, error)
	List(ctx context.Context, params ListParams) (*pagination.PageResult[OrderView], error)
	ListMine(ctx context.Context, userID uuid.UUID, page pagination.Page) (*pagination.PageResult[OrderView], error)
}

// ServiceParams groups the collaborators placement touches.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Stock    stockLedger
	Vouchers voucherRedeemer
	Requests creationRequester
	Shipping courierAssigner
	Bills    billIssuer
	Payments paymentLinker
	Push     pushPublisher
	Outbox   outbox.Emitter
	Notifier notifier
	Config   config.OrdersConfig
	Metrics  *metrics.OrderMetrics
	Logger   *logger.Logger
}

type service struct {
	repo     Repository
	tx       txRunner
	stock    stockLedger
	vouchers voucherRedeemer
	requests creationRequester
	shipping courierAssigner
	bills    billIssuer
	payments paymentLinker
	push     pushPublisher
	outbox   outbox.Emitter
	notifier notifier
	cfg      config.OrdersConfig
	metrics  *metrics.OrderMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the orders service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("orders repository required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Stock == nil:
		return nil, fmt.Errorf("stock ledger required")
	case params.Vouchers == nil:
		return nil, fmt.Errorf("voucher redeemer required")
	case params.Requests == nil:
		return nil, fmt.Errorf("order request workflow required")
	case params.Shipping == nil:
		return nil, fmt.Errorf("courier assigner required")
	case params.Bills == nil:
		return nil, fmt.Errorf("bill issuer required")
	case params.Payments == nil:
		return nil, fmt.Errorf("payment linker required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox emitter required")
	case params.Notifier == nil:
		return nil, fmt.Errorf("notifier required")
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		stock:    params.Stock,
		vouchers: params.Vouchers,
		requests: params.Requests,
		shipping: params.Shipping,
		bills:    params.Bills,
		payments: params.Payments,
		push:     params.Push,
		outbox:   params.Outbox,
		notifier: params.Notifier,
		cfg:      params.Config,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      time.Now,
	}, nil
}

// Place reserves stock, redeems the voucher and creates the order in its
// initial status in one transaction. Pushes produced by courier assignment
// go out only after commit.
func (s *service) Place(ctx context.Context, input PlaceInput) (*OrderView, error) {
	if err := validatePlaceInput(input); err != nil {
		return nil, err
	}
	if s.logg != nil {
		ctx = s.logg.WithUserID(ctx, input.ActorID.String())
		ctx = s.logg.WithActorRole(ctx, string(input.ActorRole))
	}

	var (
		orderID uuid.UUID
		pushes  []push.Message
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, msgs, err := s.place(ctx, tx, input)
		if err != nil {
			return err
		}
		orderID = order.ID
		pushes = msgs
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.push != nil {
		s.push.PublishAll(ctx, pushes)
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	view := NewOrderView(*order)
	return &view, nil
}

func (s *service) place(ctx context.Context, tx *gorm.DB, input PlaceInput) (*models.Order, []push.Message, error) {
	lines := make([]inventory.Line, 0, len(input.Items))
	for _, item := range input.Items {
		lines = append(lines, inventory.Line{ProductStoreID: item.ProductStoreID, Quantity: item.Quantity})
	}
	priced, err := s.stock.Quote(ctx, tx, lines)
	if err != nil {
		return nil, nil, err
	}

	now := s.now().UTC()
	order := &models.Order{
		ID:            uuid.New(),
		StoreID:       priced[0].StoreID,
		CreatedBy:     input.ActorID,
		ShippingFee:   input.ShippingFee,
		PaymentMethod: input.PaymentMethod,
		VoucherID:     input.VoucherID,
		Address:       input.Contact.Address,
		Contact:       input.Contact,
		Status:        initialStatus(input),
	}
	if order.Status == enums.OrderStatusConfirmed {
		deadline := now.Add(s.cfg.CancelWindow)
		order.CancelExpiredAt = &deadline
	}
	items := make([]models.OrderLineItem, 0, len(priced))
	for _, line := range priced {
		order.Subtotal += line.LinePrice()
		items = append(items, models.OrderLineItem{
			OrderID:        order.ID,
			ProductStoreID: line.ProductStoreID,
			ProductID:      line.ProductID,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
			LinePrice:      line.LinePrice(),
		})
	}

	repo := s.repo.WithTx(tx)
	if err := repo.Create(ctx, order); err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	if err := repo.CreateLineItems(ctx, items); err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order line items")
	}
	order.LineItems = items

	if _, err := s.stock.Reserve(ctx, tx, inventory.ReserveInput{
		OrderID:   order.ID,
		UserID:    input.ActorID,
		VoucherID: input.VoucherID,
		Lines:     lines,
	}); err != nil {
		return nil, nil, err
	}
	if input.VoucherID != nil {
		voucher, err := s.vouchers.Redeem(ctx, tx, vouchers.RedeemInput{
			VoucherID: *input.VoucherID,
			UserID:    input.ActorID,
			OrderID:   order.ID,
			Subtotal:  order.Subtotal,
		})
		if err != nil {
			return nil, nil, err
		}
		order.Voucher = voucher
	}
	totals := ComputeTotals(order)

	if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         &outbox.ActorRef{UserID: input.ActorID, Role: string(input.ActorRole)},
		Data: payloads.OrderPlacedEvent{
			OrderID:       order.ID,
			StoreID:       order.StoreID,
			CreatedBy:     order.CreatedBy,
			Status:        order.Status,
			PaymentMethod: order.PaymentMethod,
			Total:         totals.Total,
		},
	}); err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order placed")
	}
	if err := s.notifier.Request(ctx, tx, notifications.Request{
		UserID:   order.CreatedBy,
		OrderID:  order.ID,
		Template: enums.TemplateOrderDetails,
		Data:     map[string]any{"total": totals.Total},
	}); err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "request order notification")
	}
	s.metrics.ObserveTransition(string(order.Status))
	if s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, order.ID.String())
		logCtx = s.logg.WithStoreID(logCtx, order.StoreID.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{"status": order.Status, "total": totals.Total})
		s.logg.Info(logCtx, "order placed")
	}

	var pushes []push.Message
	switch order.Status {
	case enums.OrderStatusPendingConfirm:
		if err := s.requests.RequestCreate(ctx, tx, order); err != nil {
			return nil, nil, err
		}
	case enums.OrderStatusPendingPayment:
		paymentURL, err := s.payments.PaymentURL(order, input.ClientIP, input.Origin)
		if err != nil {
			return nil, nil, err
		}
		if err := repo.SetPaymentURL(ctx, order.ID, paymentURL); err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store payment url")
		}
		order.PaymentURL = &paymentURL
	case enums.OrderStatusConfirmed:
		// No courier cancels the order inside Assign; there is nothing to bill.
		msgs, err := s.shipping.Assign(ctx, tx, order)
		pushes = msgs
		if errors.Is(err, shipping.ErrNoCourierAvailable) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		issuer := input.ActorID
		if _, err := s.bills.Issue(ctx, tx, order.ID, &issuer, totals.Total); err != nil {
			return nil, nil, err
		}
	}
	return order, pushes, nil
}

// initialStatus: banking waits for payment, staff-placed cash orders skip
// approval, everyone else needs a CREATE request decided.
func initialStatus(input PlaceInput) enums.OrderStatus {
	switch {
	case input.PaymentMethod.IsPrepaid():
		return enums.OrderStatusPendingPayment
	case input.ActorRole.IsStaff():
		return enums.OrderStatusConfirmed
	default:
		return enums.OrderStatusPendingConfirm
	}
}

func validatePlaceInput(input PlaceInput) error {
	switch {
	case input.ActorID == uuid.Nil:
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor required")
	case len(input.Items) == 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	case !input.PaymentMethod.IsValid():
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	case input.ShippingFee < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping fee must not be negative")
	case strings.TrimSpace(input.Contact.Address) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "contact address is required")
	}
	return nil
}

// Get returns the order detail. Customers only see their own orders.
func (s *service) Get(ctx context.Context, orderID, actorID uuid.UUID, role enums.UserRole) (*OrderView, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if role == enums.UserRoleUser && order.CreatedBy != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	view := NewOrderView(*order)
	return &view, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*pagination.PageResult[OrderView], error) {
	query := ListQuery{
		PaymentMethod: params.PaymentMethod,
		Search:        params.Search,
		Page:          params.Page.Normalize(),
	}
	if params.Status != nil {
		query.Statuses = params.Status.FilterGroup()
	}
	return s.list(ctx, query)
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, page pagination.Page) (*pagination.PageResult[OrderView], error) {
	return s.list(ctx, ListQuery{CreatedBy: &userID, Page: page.Normalize()})
}

func (s *service) list(ctx context.Context, query ListQuery) (*pagination.PageResult[OrderView], error) {
	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return &pagination.PageResult[OrderView]{
		Items:  newOrderViews(rows),
		Total:  total,
		Limit:  query.Page.Limit,
		Offset: query.Page.Offset,
	}, nil
}
