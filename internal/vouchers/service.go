package vouchers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/pkg/db"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	pkgerrors "github.com/LeDucTai-11/MyStore-BE/pkg/errors"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
	"github.com/LeDucTai-11/MyStore-BE/pkg/pagination"
)

// Service exposes voucher administration.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Voucher, error)
	List(ctx context.Context, params ListParams) (*pagination.PageResult[models.Voucher], error)
	Get(ctx context.Context, id uuid.UUID) (*models.Voucher, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Voucher, error)
	Archive(ctx context.Context, id uuid.UUID) error
}

type CreateInput struct {
	Code          string
	Description   *string
	Type          enums.VoucherType
	DiscountValue int64
	MinValueOrder int64
	Quantity      int
	StartDate     time.Time
	EndDate       time.Time
}

// UpdateInput applies only the fields that are set.
type UpdateInput struct {
	Code          *string
	Description   *string
	Type          *enums.VoucherType
	DiscountValue *int64
	MinValueOrder *int64
	Quantity      *int
	StartDate     *time.Time
	EndDate       *time.Time
}

type ListParams struct {
	Search string
	Valid  *bool
	Page   pagination.Page
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("voucher repository required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Voucher, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	voucher := &models.Voucher{
		Code:          code,
		Description:   input.Description,
		Type:          input.Type,
		DiscountValue: input.DiscountValue,
		MinValueOrder: input.MinValueOrder,
		Quantity:      input.Quantity,
		StartDate:     input.StartDate.UTC(),
		EndDate:       input.EndDate.UTC(),
		Status:        enums.VoucherStatusActive,
	}
	if err := validateVoucher(voucher); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup voucher code")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "voucher code already exists")
	}
	if err := s.repo.Create(ctx, voucher); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "voucher code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create voucher")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "voucher_id", voucher.ID.String()), "voucher created")
	}
	return voucher, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*pagination.PageResult[models.Voucher], error) {
	page := params.Page.Normalize()
	rows, total, err := s.repo.List(ctx, ListFilter{
		Search: params.Search,
		Valid:  params.Valid,
		Now:    s.now().UTC(),
		Page:   page,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vouchers")
	}
	if rows == nil {
		rows = []models.Voucher{}
	}
	return &pagination.PageResult[models.Voucher]{
		Items:  rows,
		Total:  total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Voucher, error) {
	voucher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "voucher not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load voucher")
	}
	if voucher.Status == enums.VoucherStatusArchived {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "voucher not found")
	}
	return voucher, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Voucher, error) {
	voucher, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Code != nil {
		code := strings.TrimSpace(*input.Code)
		if code == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
		}
		existing, err := s.repo.FindByCode(ctx, code)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup voucher code")
		}
		if existing != nil && existing.ID != voucher.ID {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "voucher code already exists")
		}
		voucher.Code = code
	}
	if input.Description != nil {
		voucher.Description = input.Description
	}
	if input.Type != nil {
		voucher.Type = *input.Type
	}
	if input.DiscountValue != nil {
		voucher.DiscountValue = *input.DiscountValue
	}
	if input.MinValueOrder != nil {
		voucher.MinValueOrder = *input.MinValueOrder
	}
	if input.Quantity != nil {
		voucher.Quantity = *input.Quantity
	}
	if input.StartDate != nil {
		voucher.StartDate = input.StartDate.UTC()
	}
	if input.EndDate != nil {
		voucher.EndDate = input.EndDate.UTC()
	}
	if err := validateVoucher(voucher); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, voucher); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "voucher code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update voucher")
	}
	return voucher, nil
}

// Archive hides the voucher from listings and redemption. Existing orders
// keep their reference.
func (s *service) Archive(ctx context.Context, id uuid.UUID) error {
	voucher, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	voucher.Status = enums.VoucherStatusArchived
	if err := s.repo.Save(ctx, voucher); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "archive voucher")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "voucher_id", voucher.ID.String()), "voucher archived")
	}
	return nil
}

func validateVoucher(v *models.Voucher) error {
	if !v.Type.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid voucher type %q", v.Type)
	}
	if v.DiscountValue <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "discountValue must be positive")
	}
	if v.Type == enums.VoucherTypePercentage && v.DiscountValue > 100 {
		return pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100")
	}
	if v.MinValueOrder < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "minValueOrder cannot be negative")
	}
	if v.Quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if v.StartDate.IsZero() || v.EndDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "startDate and endDate are required")
	}
	if v.StartDate.After(v.EndDate) {
		return pkgerrors.New(pkgerrors.CodeValidation, "startDate must not be after endDate")
	}
	return nil
}
