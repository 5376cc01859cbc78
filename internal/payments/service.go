package payments

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
	"github.com/LeDucTai-11/MyStore-BE/pkg/db"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	pkgerrors "github.com/LeDucTai-11/MyStore-BE/pkg/errors"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
	"github.com/LeDucTai-11/MyStore-BE/pkg/vnpay"
)

const (
	paramTxnRef    = "vnp_TxnRef"
	paramAmount    = "vnp_Amount"
	paramOrderInfo = "vnp_OrderInfo"
	paramPayDate   = "vnp_PayDate"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gateway interface {
	BuildPaymentURL(params vnpay.PaymentParams) (string, error)
	VerifySignature(params map[string]string) error
	Query(ctx context.Context, input vnpay.QueryInput) (*vnpay.QueryResult, error)
}

type orderLifecycle interface {
	Load(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error)
	Advance(ctx context.Context, tx *gorm.DB, order *models.Order, next enums.OrderStatus, actorID *uuid.UUID, updates map[string]any) error
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

// ConfirmInput is the client's relay of the gateway callback. Amount is the
// storefront's copy and must agree with the signed vnp_Amount.
type ConfirmInput struct {
	OrderID           uuid.UUID
	ActorID           uuid.UUID
	Amount            int64
	BankCode          *string
	TransactionNumber string
	CardType          *string
	OrderInfo         string
	VNPParams         map[string]string
	ClientIP          string
}

// ServiceParams groups the payment service collaborators.
type ServiceParams struct {
	Repo         Repository
	Tx           txRunner
	Gateway      gateway
	Lifecycle    orderLifecycle
	Bills        billIssuer
	Shipping     courierAssigner
	Notifier     notifier
	Push         pushPublisher
	QueryTimeout time.Duration
	Logger       *logger.Logger
}

// Service confirms banking payments and builds checkout links.
type Service struct {
	repo         Repository
	tx           txRunner
	gateway      gateway
	lifecycle    orderLifecycle
	bills        billIssuer
	shipping     courierAssigner
	notifier     notifier
	push         pushPublisher
	queryTimeout time.Duration
	logg         *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("payments repository required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Gateway == nil:
		return nil, fmt.Errorf("payment gateway required")
	case params.Lifecycle == nil:
		return nil, fmt.Errorf("order lifecycle required")
	case params.Bills == nil:
		return nil, fmt.Errorf("bill issuer required")
	case params.Shipping == nil:
		return nil, fmt.Errorf("courier assigner required")
	case params.Notifier == nil:
		return nil, fmt.Errorf("notifier required")
	}
	return &Service{
		repo:         params.Repo,
		tx:           params.Tx,
		gateway:      params.Gateway,
		lifecycle:    params.Lifecycle,
		bills:        params.Bills,
		shipping:     params.Shipping,
		notifier:     params.Notifier,
		push:         params.Push,
		queryTimeout: params.QueryTimeout,
		logg:         params.Logger,
	}, nil
}

// PaymentURL signs the checkout redirect for the order's current total.
func (s *Service) PaymentURL(order *models.Order, clientIP, origin string) (string, error) {
	totals := orders.ComputeTotals(order)
	return s.gateway.BuildPaymentURL(vnpay.PaymentParams{
		OrderID: order.ID,
		Amount:  totals.Total,
		IPAddr:  clientIP,
		Origin:  origin,
	})
}

// Confirm verifies a gateway callback and, when the gateway agrees the
// transaction settled for the order's current total, records the payment
// and moves the order on. The amount is taken from the signed callback and
// the gateway query, never from the unsigned body. Nothing is written when
// any check fails.
func (s *Service) Confirm(ctx context.Context, input ConfirmInput) (*models.Payment, error) {
	if s.logg != nil {
		ctx = s.logg.WithOrderID(ctx, input.OrderID.String())
		ctx = s.logg.WithUserID(ctx, input.ActorID.String())
	}
	if input.VNPParams[paramTxnRef] != input.OrderID.String() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "transaction reference does not match order")
	}
	if err := s.gateway.VerifySignature(input.VNPParams); err != nil {
		return nil, err
	}
	paid, err := vnpay.ParseAmount(input.VNPParams[paramAmount])
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid callback amount")
	}
	if input.Amount != paid {
		return nil, amountMismatch(paid, input.Amount)
	}
	if err := s.verifyWithGateway(ctx, input, paid); err != nil {
		return nil, err
	}

	var (
		payment *models.Payment
		pushes  []push.Message
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.lifecycle.Load(ctx, tx, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusPendingPayment {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "order is %s, not awaiting payment", order.Status)
		}
		totals := orders.ComputeTotals(order)
		if paid != totals.Total {
			return amountMismatch(totals.Total, paid)
		}

		payment = &models.Payment{
			OrderID:           order.ID,
			Amount:            paid,
			BankCode:          input.BankCode,
			TransactionNumber: input.TransactionNumber,
			CardType:          input.CardType,
			OrderInfo:         input.OrderInfo,
		}
		if err := s.repo.WithTx(tx).Create(ctx, payment); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "payment already recorded")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}

		actor := input.ActorID
		if err := s.lifecycle.Advance(ctx, tx, order, enums.OrderStatusPaymentConfirmed, &actor, nil); err != nil {
			return err
		}
		if err := s.notifier.Request(ctx, tx, notifications.Request{
			UserID:   order.CreatedBy,
			OrderID:  order.ID,
			Template: enums.TemplatePaymentConfirmed,
			Data:     map[string]any{"total": totals.Total},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "request payment notification")
		}
		msgs, err := s.shipping.Assign(ctx, tx, order)
		pushes = msgs
		if errors.Is(err, shipping.ErrNoCourierAvailable) {
			return nil
		}
		if err != nil {
			return err
		}
		// Bills are issued only for orders that go out for delivery.
		if _, err := s.bills.Issue(ctx, tx, order.ID, nil, totals.Total); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.push != nil && len(pushes) > 0 {
		s.push.PublishAll(ctx, pushes)
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "amount", paid), "payment confirmed")
	}
	return payment, nil
}

func (s *Service) verifyWithGateway(ctx context.Context, input ConfirmInput, paid int64) error {
	queryCtx := ctx
	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}
	result, err := s.gateway.Query(queryCtx, vnpay.QueryInput{
		TxnRef:          input.VNPParams[paramTxnRef],
		OrderInfo:       input.VNPParams[paramOrderInfo],
		TransactionDate: input.VNPParams[paramPayDate],
		IPAddr:          input.ClientIP,
	})
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "vnpay query failed", err)
		}
		if pkgerrors.As(err) == nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query payment gateway")
		}
		return err
	}
	if !result.Successful() {
		return pkgerrors.New(pkgerrors.CodeConflict, "payment not successful").
			WithDetails(map[string]any{
				"responseCode":      result.ResponseCode,
				"transactionStatus": result.TransactionStatus,
			})
	}
	settled, err := vnpay.ParseAmount(result.Amount)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query payment gateway")
	}
	if settled != paid {
		return amountMismatch(settled, paid)
	}
	return nil
}

func amountMismatch(expected, received int64) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeConflict, "amount mismatch").
		WithDetails(map[string]any{"expected": expected, "received": received})
}
