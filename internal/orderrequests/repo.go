package orderrequests

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/pkg/db"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	"github.com/LeDucTai-11/MyStore-BE/pkg/pagination"
)

// Repository persists order requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, req *models.OrderRequest) error
	FindPending(ctx context.Context, orderID uuid.UUID, requestType enums.OrderRequestType) (*models.OrderRequest, error)
	FindForUpdate(ctx context.Context, id uuid.UUID) (*models.OrderRequest, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.OrderRequest, error)
	Resolve(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error)
	List(ctx context.Context, query ListQuery) ([]models.OrderRequest, int64, error)
}

// ListQuery filters request listings.
type ListQuery struct {
	Status        *enums.RequestStatus
	Type          *enums.OrderRequestType
	PaymentMethod *enums.PaymentMethod
	CreatedBy     *uuid.UUID
	Page          pagination.Page
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

func (r *repository) Create(ctx context.Context, req *models.OrderRequest) error {
	return r.db.WithContext(ctx).Omit("Order").Create(req).Error
}

func (r *repository) FindPending(ctx context.Context, orderID uuid.UUID, requestType enums.OrderRequestType) (*models.OrderRequest, error) {
	var rows []models.OrderRequest
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND type = ? AND status = ?", orderID, requestType, enums.RequestStatusPending).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.OrderRequest, error) {
	var req models.OrderRequest
	if err := db.ForUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.OrderRequest, error) {
	var req models.OrderRequest
	err := r.db.WithContext(ctx).
		Preload("Order").
		Preload("Order.LineItems").
		Preload("Order.Voucher").
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Resolve updates a request only while it is still PENDING.
func (r *repository) Resolve(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	values := map[string]any{"updated_at": time.Now().UTC()}
	for key, value := range updates {
		values[key] = value
	}
	res := r.db.WithContext(ctx).
		Model(&models.OrderRequest{}).
		Where("id = ? AND status = ?", id, enums.RequestStatusPending).
		Updates(values)
	return res.RowsAffected, res.Error
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.OrderRequest, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.OrderRequest{})
	if query.Status != nil {
		q = q.Where("order_requests.status = ?", *query.Status)
	}
	if query.Type != nil {
		q = q.Where("order_requests.type = ?", *query.Type)
	}
	if query.CreatedBy != nil {
		q = q.Where("order_requests.created_by = ?", *query.CreatedBy)
	}
	if query.PaymentMethod != nil {
		q = q.Joins("JOIN orders ON orders.id = order_requests.order_id").
			Where("orders.payment_method = ?", *query.PaymentMethod)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.OrderRequest
	err := q.
		Preload("Order").
		Preload("Order.Voucher").
		Order("order_requests.created_at DESC").
		Order("order_requests.id DESC").
		Limit(query.Page.Limit).
		Offset(query.Page.Offset).
		Find(&rows).Error
	return rows, total, err
}
