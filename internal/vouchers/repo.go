package vouchers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	"github.com/LeDucTai-11/MyStore-BE/pkg/pagination"
)

// ListFilter narrows voucher listings. Valid compares the validity window
// against Now when set.
type ListFilter struct {
	Search string
	Valid  *bool
	Now    time.Time
	Page   pagination.Page
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, voucher *models.Voucher) error
	Save(ctx context.Context, voucher *models.Voucher) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Voucher, error)
	FindByCode(ctx context.Context, code string) (*models.Voucher, error)
	List(ctx context.Context, filter ListFilter) ([]models.Voucher, int64, error)
	DecrementQuantity(ctx context.Context, id uuid.UUID) (int64, error)
	IncrementQuantity(ctx context.Context, id uuid.UUID) error
	HasRedemption(ctx context.Context, voucherID, userID uuid.UUID) (bool, error)
	CreateRedemption(ctx context.Context, redemption *models.VoucherRedemption) error
	DeleteRedemption(ctx context.Context, voucherID, userID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, voucher *models.Voucher) error {
	return r.db.WithContext(ctx).Create(voucher).Error
}

func (r *repository) Save(ctx context.Context, voucher *models.Voucher) error {
	return r.db.WithContext(ctx).Save(voucher).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Voucher, error) {
	var voucher models.Voucher
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&voucher).Error; err != nil {
		return nil, err
	}
	return &voucher, nil
}

// FindByCode returns nil without error when no voucher uses the code.
func (r *repository) FindByCode(ctx context.Context, code string) (*models.Voucher, error) {
	var voucher models.Voucher
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&voucher).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Voucher, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Voucher{}).
		Where("status = ?", enums.VoucherStatusActive)
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(code) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if filter.Valid != nil {
		if *filter.Valid {
			query = query.Where("start_date <= ? AND end_date >= ?", filter.Now, filter.Now)
		} else {
			query = query.Where("(start_date > ? OR end_date < ?)", filter.Now, filter.Now)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Voucher
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(filter.Page.Limit).
		Offset(filter.Page.Offset).
		Find(&rows).Error
	return rows, total, err
}

func (r *repository) DecrementQuantity(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Voucher{}).
		Where("id = ? AND quantity >= 1", id).
		UpdateColumn("quantity", gorm.Expr("quantity - 1"))
	return res.RowsAffected, res.Error
}

func (r *repository) IncrementQuantity(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Voucher{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + 1")).Error
}

func (r *repository) HasRedemption(ctx context.Context, voucherID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VoucherRedemption{}).
		Where("voucher_id = ? AND user_id = ?", voucherID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CreateRedemption(ctx context.Context, redemption *models.VoucherRedemption) error {
	return r.db.WithContext(ctx).Create(redemption).Error
}

func (r *repository) DeleteRedemption(ctx context.Context, voucherID, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("voucher_id = ? AND user_id = ?", voucherID, userID).
		Delete(&models.VoucherRedemption{})
	return res.RowsAffected, res.Error
}
