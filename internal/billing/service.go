package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/pkg/db"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	pkgerrors "github.com/LeDucTai-11/MyStore-BE/pkg/errors"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox/payloads"
	"github.com/LeDucTai-11/MyStore-BE/pkg/pagination"
)

// ServiceParams groups dependencies for the billing service.
type ServiceParams struct {
	Repo   Repository
	Outbox outbox.Emitter
	Logger *logger.Logger
}

// Service issues and lists bills.
type Service struct {
	repo   Repository
	outbox outbox.Emitter
	logg   *logger.Logger
}

// ListParams filters bill listings. CreatedBy narrows to bills a staff member issued.
type ListParams struct {
	CreatedBy *uuid.UUID
	Page      pagination.Page
}

// NewService builds a billing service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Outbox == nil {
		return nil, errors.New("outbox is required")
	}
	return &Service{repo: params.Repo, outbox: params.Outbox, logg: params.Logger}, nil
}

// Issue creates the bill for an order inside tx. issuer is nil when the bill
// comes from an automated path such as payment confirmation. A second call
// for the same order returns the existing bill.
func (s *Service) Issue(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, issuer *uuid.UUID, amount int64) (*models.Bill, error) {
	if tx == nil {
		return nil, errors.New("transaction required")
	}
	repo := s.repo.WithTx(tx)
	existing, err := repo.FindBillByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bill")
	}
	if existing != nil {
		return existing, nil
	}

	bill := &models.Bill{OrderID: orderID, CreatedBy: issuer, Amount: amount}
	if err := repo.CreateBill(ctx, bill); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "bill already issued")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create bill")
	}

	if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventBillIssued,
		AggregateType: enums.AggregateBill,
		AggregateID:   bill.ID,
		Data: payloads.BillIssuedEvent{
			BillID:    bill.ID,
			OrderID:   orderID,
			Amount:    amount,
			CreatedBy: issuer,
		},
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit bill issued")
	}

	if s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, orderID.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{"bill_id": bill.ID.String(), "amount": amount})
		s.logg.Info(logCtx, "bill issued")
	}
	return bill, nil
}

func (s *Service) List(ctx context.Context, params ListParams) (*pagination.PageResult[models.Bill], error) {
	page := params.Page.Normalize()
	bills, total, err := s.repo.ListBills(ctx, ListBillsQuery{CreatedBy: params.CreatedBy, Page: page})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bills")
	}
	if bills == nil {
		bills = []models.Bill{}
	}
	return &pagination.PageResult[models.Bill]{
		Items:  bills,
		Total:  total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}, nil
}
