package billing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/pagination"
)

// Repository handles bill persistence. Bills are create-only.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateBill(ctx context.Context, bill *models.Bill) error
	// FindBillByOrder returns nil without error when the order has no bill.
	FindBillByOrder(ctx context.Context, orderID uuid.UUID) (*models.Bill, error)
	ListBills(ctx context.Context, params ListBillsQuery) ([]models.Bill, int64, error)
}

// ListBillsQuery configures bill listings.
type ListBillsQuery struct {
	CreatedBy *uuid.UUID
	Page      pagination.Page
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a billing repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateBill(ctx context.Context, bill *models.Bill) error {
	return r.db.WithContext(ctx).Omit("Order").Create(bill).Error
}

func (r *repository) FindBillByOrder(ctx context.Context, orderID uuid.UUID) (*models.Bill, error) {
	var bill models.Bill
	res := r.db.WithContext(ctx).Where("order_id = ?", orderID).Limit(1).Find(&bill)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &bill, nil
}

func (r *repository) ListBills(ctx context.Context, params ListBillsQuery) ([]models.Bill, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Bill{})
	if params.CreatedBy != nil {
		query = query.Where("created_by = ?", *params.CreatedBy)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var bills []models.Bill
	err := query.
		Preload("Order").
		Order("created_at DESC").
		Order("id DESC").
		Limit(params.Page.Limit).
		Offset(params.Page.Offset).
		Find(&bills).Error
	return bills, total, err
}
